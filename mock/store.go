package mock

import (
	"context"

	"github.com/fwojciec/docgap"
)

var _ docgap.ObjectStore = (*ObjectStore)(nil)

// ObjectStore is a mock implementation of docgap.ObjectStore.
type ObjectStore struct {
	GetFn    func(ctx context.Context, key string) ([]byte, error)
	PutFn    func(ctx context.Context, key string, data []byte) error
	DeleteFn func(ctx context.Context, key string) error
}

func (s *ObjectStore) Get(ctx context.Context, key string) ([]byte, error) {
	return s.GetFn(ctx, key)
}

func (s *ObjectStore) Put(ctx context.Context, key string, data []byte) error {
	return s.PutFn(ctx, key, data)
}

func (s *ObjectStore) Delete(ctx context.Context, key string) error {
	return s.DeleteFn(ctx, key)
}
