package storage

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageSaveReadDelete(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	name, err := s.Save("2024/catalog.csv", []byte("id,title\n"))
	require.NoError(t, err)
	assert.Equal(t, "2024/catalog.csv", name)

	data, err := s.Read(name)
	require.NoError(t, err)
	assert.Equal(t, "id,title\n", string(data))

	require.NoError(t, s.Delete(name))
	require.NoError(t, s.Delete(name))
	_, err = s.Read(name)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestLocalStorageRejectsEscapingPaths(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = s.Save("../outside.txt", []byte("x"))
	assert.Error(t, err)
	_, err = s.Read("/etc/passwd")
	assert.Error(t, err)
}

func TestLocalStorageCleanupOlderThan(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStorage(dir)
	require.NoError(t, err)

	_, err = s.Save("old.csv", []byte("old"))
	require.NoError(t, err)
	_, err = s.Save("fresh.csv", []byte("fresh"))
	require.NoError(t, err)
	past := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(dir, "old.csv"), past, past))

	deleted, err := s.CleanupOlderThan(24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, []string{"old.csv"}, deleted)

	_, err = s.Read("fresh.csv")
	assert.NoError(t, err)
}
