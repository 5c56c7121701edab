package redis_test

import (
	"testing"

	docgapredis "github.com/fwojciec/docgap/redis"
	"github.com/stretchr/testify/assert"
)

func TestChannel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "docgap:progress:sess-1", docgapredis.Channel("sess-1"))
}
