package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_PutAndDelete(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	s := NewLocalStorage(dir)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "abc.png", strings.NewReader("png-bytes"), 9, "image/png"))

	raw, err := os.ReadFile(filepath.Join(dir, "abc.png"))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(raw))
	assert.Equal(t, "/uploads/abc.png", s.URL("abc.png"))

	require.NoError(t, s.Delete(ctx, "abc.png"))
	_, err = os.Stat(filepath.Join(dir, "abc.png"))
	assert.True(t, os.IsNotExist(err))

	// Deleting twice is fine.
	assert.NoError(t, s.Delete(ctx, "abc.png"))
}

func TestLocalStorage_KeysCannotEscapeDir(t *testing.T) {
	dir := t.TempDir()
	s := NewLocalStorage(dir)

	require.NoError(t, s.Put(context.Background(), "../../evil.png", strings.NewReader("x"), 1, "image/png"))

	_, err := os.Stat(filepath.Join(dir, "evil.png"))
	assert.NoError(t, err)
}
