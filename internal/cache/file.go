package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"goldpricebot/internal/snapshot"
)

// File stores the snapshot as a JSON file on local disk.
type File struct {
	Path string
}

func (f *File) Load(_ context.Context) (*snapshot.Snapshot, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return snapshot.New(), nil
		}
		return nil, err
	}
	return snapshot.Decode(data)
}

func (f *File) Save(_ context.Context, snap *snapshot.Snapshot) error {
	data, err := snapshot.Encode(snap)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o750); err != nil {
		return err
	}
	return os.WriteFile(f.Path, data, 0o644)
}
