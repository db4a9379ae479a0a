package storage

import "errors"

var ErrBlobNotFound = errors.New("blob not found")

// BlobStore persists uploaded media bytes and hands back a stable reference.
// A ref returned by Put must never be reused for different bytes.
type BlobStore interface {
	Put(data []byte, nameHint string) (string, error)
	Get(ref string) ([]byte, error)
	Remove(ref string) error
}
