package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"

	"github.com/noah-isme/edunotes-api/pkg/storage"
)

// File stores one JSON document per key under a directory, surviving restarts.
type File struct {
	files *storage.LocalStorage
}

// NewFile opens (creating when needed) a file-backed store rooted at dir.
func NewFile(dir string) (*File, error) {
	files, err := storage.NewLocalStorage(dir)
	if err != nil {
		return nil, fmt.Errorf("open file store: %w", err)
	}
	return &File{files: files}, nil
}

func fileName(key string) string {
	return url.PathEscape(key) + ".json"
}

func (f *File) Get(_ context.Context, key string) ([]byte, bool, error) {
	data, err := f.files.Read(fileName(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("file store get %s: %w", key, err)
	}
	return data, true, nil
}

func (f *File) Set(_ context.Context, key string, value []byte) error {
	if _, err := f.files.Save(fileName(key), value); err != nil {
		return fmt.Errorf("file store set %s: %w", key, err)
	}
	return nil
}

func (f *File) Delete(_ context.Context, key string) error {
	if err := f.files.Delete(fileName(key)); err != nil {
		return fmt.Errorf("file store delete %s: %w", key, err)
	}
	return nil
}

func (f *File) Close() error { return nil }
