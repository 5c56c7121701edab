//go:build integration

package redis_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/fwojciec/docgap"
	docgapredis "github.com/fwojciec/docgap/redis"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustOpen(t *testing.T) *redis.Client {
	t.Helper()

	addr := os.Getenv("DOCGAP_REDIS_ADDR")
	if addr == "" {
		t.Skip("DOCGAP_REDIS_ADDR not set")
	}
	client, err := docgapredis.Open(context.Background(), addr, os.Getenv("DOCGAP_REDIS_PASSWORD"), 0)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client
}

func TestObjectStore_Integration(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := docgapredis.NewObjectStore(mustOpen(t), docgapredis.WithPrefix("docgap-test:"+uuid.NewString()+":"))

	_, err := store.Get(ctx, "embeddings/example.com.json")
	assert.Equal(t, docgap.ENOTFOUND, docgap.ErrorCode(err))

	require.NoError(t, store.Put(ctx, "embeddings/example.com.json", []byte(`[]`)))
	data, err := store.Get(ctx, "embeddings/example.com.json")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(data))

	require.NoError(t, store.Put(ctx, "embeddings/other.com.json", []byte(`[]`)))
	n, err := store.DeletePrefix(ctx, "embeddings/")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, store.Delete(ctx, "embeddings/example.com.json"))
}

func TestProgressPublisher_Integration(t *testing.T) {
	t.Parallel()

	client := mustOpen(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	session := uuid.NewString()
	events, err := docgapredis.Subscribe(ctx, client, session)
	require.NoError(t, err)

	docgapredis.NewProgressPublisher(client, nil).Publish(ctx, session, docgap.ProgressEvent{
		Type:  docgap.ProgressStarted,
		Total: 3,
	})

	select {
	case event := <-events:
		assert.Equal(t, docgap.ProgressStarted, event.Type)
		assert.Equal(t, 3, event.Total)
	case <-ctx.Done():
		t.Fatal("no progress event received")
	}
}
