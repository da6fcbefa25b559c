package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/noah-isme/edunotes-api/internal/store"
	appErrors "github.com/noah-isme/edunotes-api/pkg/errors"
)

// collectionVersion is written into every envelope. Version 0 is the bare JSON array layout.
const collectionVersion = 1

type envelope[T any] struct {
	Version int `json:"version"`
	Items   []T `json:"items"`
}

type lockKey struct {
	store store.Store
	key   string
}

// keyLocks holds one mutex per (store, key) so every repository touching the
// same collection serialises its read-modify-write cycle.
var keyLocks sync.Map

func lockFor(s store.Store, key string) *sync.Mutex {
	mu, _ := keyLocks.LoadOrStore(lockKey{store: s, key: key}, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// collection is one ordered sequence of records persisted whole under a single key.
type collection[T any] struct {
	store store.Store
	key   string
	mu    *sync.Mutex
}

func newCollection[T any](s store.Store, key string) *collection[T] {
	return &collection[T]{store: s, key: key, mu: lockFor(s, key)}
}

// read returns a freshly decoded copy of the collection.
func (c *collection[T]) read(ctx context.Context) ([]T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	items, _, err := c.load(ctx)
	return items, err
}

// update runs fn over the current items and persists the result when fn reports a change.
func (c *collection[T]) update(ctx context.Context, fn func(items []T) ([]T, bool, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	items, _, err := c.load(ctx)
	if err != nil {
		return err
	}
	next, changed, err := fn(items)
	if err != nil || !changed {
		return err
	}
	return c.save(ctx, next)
}

// seed writes items only when the key has never been written. A stored empty
// collection counts as written.
func (c *collection[T]) seed(ctx context.Context, items []T) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, found, err := c.store.Get(ctx, c.key)
	if err != nil {
		return false, fmt.Errorf("check %s: %w", c.key, err)
	}
	if found {
		return false, nil
	}
	if err := c.save(ctx, items); err != nil {
		return false, err
	}
	return true, nil
}

func (c *collection[T]) load(ctx context.Context) ([]T, bool, error) {
	raw, found, err := c.store.Get(ctx, c.key)
	if err != nil {
		return nil, false, fmt.Errorf("load %s: %w", c.key, err)
	}
	if !found {
		return []T{}, false, nil
	}
	items, err := decodeCollection[T](raw)
	if err != nil {
		return nil, true, appErrors.Wrap(err, appErrors.ErrMalformedData.Code, appErrors.ErrMalformedData.Status,
			fmt.Sprintf("collection %s is malformed", c.key))
	}
	return items, true, nil
}

func (c *collection[T]) save(ctx context.Context, items []T) error {
	if items == nil {
		items = []T{}
	}
	payload, err := json.Marshal(envelope[T]{Version: collectionVersion, Items: items})
	if err != nil {
		return fmt.Errorf("encode %s: %w", c.key, err)
	}
	if err := c.store.Set(ctx, c.key, payload); err != nil {
		return fmt.Errorf("save %s: %w", c.key, err)
	}
	return nil
}

func decodeCollection[T any](raw []byte) ([]T, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("decode legacy array: %w", err)
		}
		if items == nil {
			items = []T{}
		}
		return items, nil
	}

	var env envelope[T]
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	if env.Version < 1 || env.Version > collectionVersion {
		return nil, fmt.Errorf("unsupported collection version %d", env.Version)
	}
	if env.Items == nil {
		env.Items = []T{}
	}
	return env.Items, nil
}

func prepend[T any](items []T, item T) []T {
	out := make([]T, 0, len(items)+1)
	out = append(out, item)
	return append(out, items...)
}
