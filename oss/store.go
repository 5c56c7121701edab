// Package oss implements docgap.ObjectStore on Alibaba Cloud Object Storage
// Service.
package oss

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	sdk "github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/fwojciec/docgap"
)

// Config locates a bucket.
type Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	AccessKeySecret string `mapstructure:"access_key_secret"`
	Bucket          string `mapstructure:"bucket"`
	Prefix          string `mapstructure:"prefix"`
	DisableSSL      bool   `mapstructure:"disable_ssl"`
}

// Open connects to the bucket described by cfg.
func Open(cfg Config, opts ...sdk.ClientOption) (*ObjectStore, error) {
	endpoint, err := normalizeEndpoint(cfg.Endpoint, cfg.DisableSSL)
	if err != nil {
		return nil, err
	}
	client, err := sdk.New(endpoint, cfg.AccessKeyID, cfg.AccessKeySecret, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating OSS client: %w", err)
	}
	bucket, err := client.Bucket(cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("opening OSS bucket %q: %w", cfg.Bucket, err)
	}
	return NewObjectStore(bucket, cfg.Prefix), nil
}

var _ docgap.ObjectStore = (*ObjectStore)(nil)

// ObjectStore stores blobs as OSS objects under an optional key prefix.
type ObjectStore struct {
	bucket *sdk.Bucket
	prefix string
}

// NewObjectStore creates a new ObjectStore on bucket.
func NewObjectStore(bucket *sdk.Bucket, prefix string) *ObjectStore {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &ObjectStore{bucket: bucket, prefix: prefix}
}

func (s *ObjectStore) Get(ctx context.Context, key string) ([]byte, error) {
	body, err := s.bucket.GetObject(s.prefix+key, sdk.WithContext(ctx))
	if IsNotFound(err) {
		return nil, docgap.Errorf(docgap.ENOTFOUND, "object %q not found", key)
	}
	if err != nil {
		return nil, fmt.Errorf("oss get %s: %w", key, err)
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("oss read %s: %w", key, err)
	}
	return data, nil
}

func (s *ObjectStore) Put(ctx context.Context, key string, data []byte) error {
	if key == "" {
		return docgap.Errorf(docgap.EINVALID, "key required")
	}
	err := s.bucket.PutObject(s.prefix+key, bytes.NewReader(data),
		sdk.WithContext(ctx),
		sdk.ContentLength(int64(len(data))),
		sdk.ContentType("application/json"),
	)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("oss put %s: %w", key, err)
	}
	return nil
}

func (s *ObjectStore) Delete(ctx context.Context, key string) error {
	if err := s.bucket.DeleteObject(s.prefix+key, sdk.WithContext(ctx)); err != nil && !IsNotFound(err) {
		return fmt.Errorf("oss delete %s: %w", key, err)
	}
	return nil
}

// IsNotFound reports whether err is an OSS missing-object error.
func IsNotFound(err error) bool {
	var svcErr sdk.ServiceError
	if errors.As(err, &svcErr) {
		return svcErr.Code == "NoSuchKey" || svcErr.StatusCode == http.StatusNotFound
	}
	return false
}

// normalizeEndpoint adds a scheme to bare host endpoints.
func normalizeEndpoint(endpoint string, disableSSL bool) (string, error) {
	trimmed := strings.TrimSpace(endpoint)
	if trimmed == "" {
		return "", docgap.Errorf(docgap.EINVALID, "OSS endpoint required")
	}
	if u, err := url.Parse(trimmed); err == nil && u.Scheme != "" && u.Host != "" {
		return trimmed, nil
	}
	u, err := url.Parse("//" + trimmed)
	if err != nil || u.Host == "" {
		return "", docgap.Errorf(docgap.EINVALID, "invalid OSS endpoint %q", endpoint)
	}
	scheme := "https"
	if disableSSL {
		scheme = "http"
	}
	return scheme + "://" + u.Host + strings.TrimSuffix(u.Path, "/"), nil
}
