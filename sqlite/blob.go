package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/docgap"
)

var _ docgap.ObjectStore = (*ObjectStore)(nil)

// ObjectStore implements docgap.ObjectStore on the blobs table.
type ObjectStore struct {
	db *DB
}

// NewObjectStore creates a new ObjectStore.
func NewObjectStore(db *DB) *ObjectStore {
	return &ObjectStore{db: db}
}

// BlobInfo describes a stored blob without its value.
type BlobInfo struct {
	Key         string
	Size        int
	ContentHash string
	UpdatedAt   time.Time
}

// BlobFilter narrows List results. Offset applies only with a Limit.
type BlobFilter struct {
	Prefix string
	Limit  int
	Offset int
}

// hashContent returns the hex-encoded xxHash of data.
func hashContent(data []byte) string {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], xxhash.Sum64(data))
	return hex.EncodeToString(b[:])
}

// Get returns the blob stored under key.
func (s *ObjectStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM blobs WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, docgap.Errorf(docgap.ENOTFOUND, "key %q not found", key)
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Put stores data under key. Rewriting identical content leaves the row,
// including its timestamp, untouched.
func (s *ObjectStore) Put(ctx context.Context, key string, data []byte) error {
	if key == "" {
		return docgap.Errorf(docgap.EINVALID, "key required")
	}
	if data == nil {
		data = []byte{}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO blobs (key, value, content_hash, size, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			content_hash = excluded.content_hash,
			size = excluded.size,
			updated_at = excluded.updated_at
		WHERE blobs.content_hash != excluded.content_hash
	`, key, data, hashContent(data), len(data), time.Now().UTC().Format(time.RFC3339))
	return err
}

// Delete removes key. Missing keys are ignored.
func (s *ObjectStore) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM blobs WHERE key = ?`, key)
	return err
}

// List returns blob metadata ordered by key.
func (s *ObjectStore) List(ctx context.Context, filter BlobFilter) ([]*BlobInfo, error) {
	var query strings.Builder
	var args []any
	query.WriteString(`SELECT key, size, content_hash, updated_at FROM blobs`)
	if filter.Prefix != "" {
		query.WriteString(` WHERE substr(key, 1, ?) = ?`)
		args = append(args, len(filter.Prefix), filter.Prefix)
	}
	query.WriteString(` ORDER BY key`)
	if filter.Limit > 0 {
		query.WriteString(` LIMIT ? OFFSET ?`)
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	infos := make([]*BlobInfo, 0)
	for rows.Next() {
		var info BlobInfo
		var updatedAt string
		if err := rows.Scan(&info.Key, &info.Size, &info.ContentHash, &updatedAt); err != nil {
			return nil, err
		}
		if info.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
			return nil, fmt.Errorf("blob %q: bad updated_at: %w", info.Key, err)
		}
		infos = append(infos, &info)
	}
	return infos, rows.Err()
}
