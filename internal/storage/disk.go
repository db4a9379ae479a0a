package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"
)

type diskStore struct {
	dir string
	seq atomic.Int64
}

// NewDisk returns a BlobStore writing blobs as flat files under dir.
func NewDisk(dir string) (BlobStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &diskStore{dir: dir}, nil
}

func (s *diskStore) Put(data []byte, nameHint string) (string, error) {
	ext := sanitizeExt(filepath.Ext(nameHint))

	// Millisecond timestamp plus a process-unique counter keeps refs from
	// concurrent uploads distinct; O_EXCL guards against anything slipping
	// through (clock jumps, a restart reusing a counter value).
	for {
		ref := fmt.Sprintf("%d-%d%s", time.Now().UnixMilli(), s.seq.Add(1), ext)

		f, err := os.OpenFile(filepath.Join(s.dir, ref), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", err
		}

		if _, err := f.Write(data); err != nil {
			f.Close()
			os.Remove(filepath.Join(s.dir, ref))
			return "", err
		}
		if err := f.Close(); err != nil {
			os.Remove(filepath.Join(s.dir, ref))
			return "", err
		}

		return ref, nil
	}
}

func (s *diskStore) Get(ref string) ([]byte, error) {
	clean, ok := cleanRef(ref)
	if !ok {
		return nil, ErrBlobNotFound
	}

	data, err := os.ReadFile(filepath.Join(s.dir, clean))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrBlobNotFound
	}
	if err != nil {
		return nil, err
	}

	return data, nil
}

func (s *diskStore) Remove(ref string) error {
	clean, ok := cleanRef(ref)
	if !ok {
		return ErrBlobNotFound
	}

	err := os.Remove(filepath.Join(s.dir, clean))
	if errors.Is(err, fs.ErrNotExist) {
		return ErrBlobNotFound
	}
	return err
}

// cleanRef rejects anything that could escape the store directory.
func cleanRef(ref string) (string, bool) {
	if ref == "" || ref != filepath.Base(ref) || strings.HasPrefix(ref, ".") {
		return "", false
	}
	return ref, true
}

func sanitizeExt(ext string) string {
	if ext == "" || len(ext) > 16 || ext != filepath.Base(ext) {
		return ""
	}
	return strings.ToLower(ext)
}
