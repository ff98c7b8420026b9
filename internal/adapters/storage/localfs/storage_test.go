package localfs_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promosink/apparel/internal/adapters/storage/localfs"
	"github.com/promosink/apparel/internal/domain"
)

func TestStoreWritesFile(t *testing.T) {
	dir := t.TempDir()
	s := localfs.New(dir)

	url, err := s.Store(context.Background(), "my logo.png", strings.NewReader("png bytes"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/uploads/"))
	assert.True(t, strings.HasSuffix(url, "-my_logo.png"))

	data, err := os.ReadFile(filepath.Join(dir, strings.TrimPrefix(url, "/uploads/")))
	require.NoError(t, err)
	assert.Equal(t, "png bytes", string(data))
}

func TestStoreStripsPathComponents(t *testing.T) {
	dir := t.TempDir()
	s := localfs.New(dir)

	url, err := s.Store(context.Background(), "../../etc/passwd", strings.NewReader("x"))
	require.NoError(t, err)
	assert.NotContains(t, url, "..")
	assert.True(t, strings.HasSuffix(url, "-passwd"))
}

func TestStoreUnavailableDir(t *testing.T) {
	s := localfs.New(filepath.Join(t.TempDir(), "missing", "deeper"))

	_, err := s.Store(context.Background(), "a.png", strings.NewReader("x"))
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
}
