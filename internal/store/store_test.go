package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, found, err := s.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.Set(ctx, "files", []byte(`{"version":1}`)))
	value, found, err := s.Get(ctx, "files")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `{"version":1}`, string(value))

	require.NoError(t, s.Set(ctx, "files", []byte(`{"version":2}`)))
	value, _, err = s.Get(ctx, "files")
	require.NoError(t, err)
	assert.Equal(t, `{"version":2}`, string(value))

	require.NoError(t, s.Delete(ctx, "files"))
	require.NoError(t, s.Delete(ctx, "files"))
	_, found, err = s.Get(ctx, "files")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemory())
}

func TestMemoryStoreCopiesValues(t *testing.T) {
	s := NewMemory()
	input := []byte("abc")
	require.NoError(t, s.Set(context.Background(), "k", input))
	input[0] = 'x'

	value, _, err := s.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(value))
}

func TestFileStore(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFile(dir)
	require.NoError(t, err)
	exerciseStore(t, s)
}

func TestFileStoreSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFile(dir)
	require.NoError(t, err)
	require.NoError(t, s.Set(context.Background(), "edu_notes_files", []byte("[]")))

	_, err = os.Stat(filepath.Join(dir, "edu_notes_files.json"))
	require.NoError(t, err)

	reopened, err := NewFile(dir)
	require.NoError(t, err)
	value, found, err := reopened.Get(context.Background(), "edu_notes_files")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "[]", string(value))
}

func TestFileStoreEscapesKeys(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFile(dir)
	require.NoError(t, err)
	require.NoError(t, s.Set(context.Background(), "../escape", []byte("x")))

	value, found, err := s.Get(context.Background(), "../escape")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "x", string(value))
	_, err = os.Stat(filepath.Join(filepath.Dir(dir), "escape.json"))
	assert.True(t, os.IsNotExist(err))
}

func TestUnavailableStoreDegrades(t *testing.T) {
	s := Unavailable{}
	ctx := context.Background()
	require.NoError(t, s.Set(ctx, "files", []byte("[]")))
	value, found, err := s.Get(ctx, "files")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, value)
	assert.NoError(t, s.Delete(ctx, "files"))
	assert.NoError(t, s.Close())
}

func TestWithPrefix(t *testing.T) {
	mem := NewMemory()
	s := WithPrefix(mem, "edu_notes_")
	require.NoError(t, s.Set(context.Background(), "files", []byte("[]")))

	_, found, err := mem.Get(context.Background(), "edu_notes_files")
	require.NoError(t, err)
	assert.True(t, found)

	assert.Same(t, mem, WithPrefix(mem, ""))
}

func TestRedisStoreWrapsConnectionErrors(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	s := NewRedis(client)
	defer s.Close()

	_, found, err := s.Get(context.Background(), "files")
	require.Error(t, err)
	assert.False(t, found)
	assert.Contains(t, err.Error(), "redis get files")
	assert.Error(t, s.Set(context.Background(), "files", []byte("[]")))
}

type recordingObserver struct {
	mu  sync.Mutex
	ops []string
	err []error
}

func (o *recordingObserver) ObserveStoreOperation(op string, err error, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.ops = append(o.ops, op)
	o.err = append(o.err, err)
}

type failingStore struct{ *Memory }

func (*failingStore) Set(context.Context, string, []byte) error { return errors.New("disk full") }

func TestInstrumentedStore(t *testing.T) {
	observer := &recordingObserver{}
	s := NewInstrumented(NewMemory(), observer, nil)
	exerciseStore(t, s)
	assert.Contains(t, observer.ops, "get")
	assert.Contains(t, observer.ops, "set")
	assert.Contains(t, observer.ops, "delete")

	failing := NewInstrumented(&failingStore{Memory: NewMemory()}, observer, nil)
	err := failing.Set(context.Background(), "files", nil)
	require.EqualError(t, err, "disk full")
	assert.EqualError(t, observer.err[len(observer.err)-1], "disk full")
}
