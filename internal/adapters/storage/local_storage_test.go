package storage

import (
	"context"
	"io"
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_SaveAndOpen(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	path, size, err := s.Save(context.Background(), "visit-1", "Prescription.PDF", strings.NewReader("scan bytes"))
	require.NoError(t, err)
	assert.Equal(t, int64(10), size)
	assert.True(t, strings.HasPrefix(path, "visit-1/"))
	assert.True(t, strings.HasSuffix(path, ".pdf"))

	rc, err := s.Open(context.Background(), path)
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "scan bytes", string(data))
}

func TestLocalStorage_SaveKeepsDistinctFiles(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	a, _, err := s.Save(context.Background(), "visit-1", "trf.jpg", strings.NewReader("a"))
	require.NoError(t, err)
	b, _, err := s.Save(context.Background(), "visit-1", "trf.jpg", strings.NewReader("b"))
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestLocalStorage_RejectsTraversal(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, _, err = s.Save(context.Background(), "../escape", "x.pdf", strings.NewReader("x"))
	assert.Error(t, err)

	_, err = s.Open(context.Background(), "../../etc/passwd")
	assert.Error(t, err)

	_, err = s.Open(context.Background(), "/etc/passwd")
	assert.Error(t, err)
}

func TestLocalStorage_Delete(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	path, _, err := s.Save(context.Background(), "visit-1", "rx.pdf", strings.NewReader("x"))
	require.NoError(t, err)

	require.NoError(t, s.Delete(context.Background(), path))
	_, err = s.Open(context.Background(), path)
	assert.ErrorIs(t, err, fs.ErrNotExist)

	assert.NoError(t, s.Delete(context.Background(), path), "deleting twice is not an error")
	assert.Error(t, s.Delete(context.Background(), "../outside.pdf"))
	assert.Error(t, s.Delete(context.Background(), ""))
}
