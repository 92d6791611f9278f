package database

import (
	"context"
	"io"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)
	log := zerolog.New(io.Discard)

	rdb, err := NewRedisClient(context.Background(), "redis://"+mr.Addr()+"/0", log)
	require.NoError(t, err)
	defer rdb.Close()
	assert.NoError(t, rdb.Set(context.Background(), "k", "v", 0).Err())

	_, err = NewRedisClient(context.Background(), "not a url", log)
	assert.Error(t, err)
}
