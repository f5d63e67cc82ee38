// Package blob implements the blob-store client: listing, reading, writing
// and deleting key-addressed binary objects, plus issuing time-limited signed
// read URLs. The backing store is S3-compatible.
package blob

import (
	"context"
	"fmt"
	"time"
)

// Object is one entry of a blob listing.
type Object struct {
	Key  string
	Size int64
}

// Store is the blob-store surface the synchronizer depends on.
//
// Put has store-native overwrite semantics: it is not conditional, so a
// caller that needs uniqueness must pre-check with List.
type Store interface {
	// List returns objects under prefix in lexicographic key order.
	List(ctx context.Context, prefix string) ([]Object, error)

	// Put writes body under key. An existing object is overwritten.
	Put(ctx context.Context, key string, body []byte, contentType string) error

	// Get reads the object stored under key.
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete removes the object stored under key.
	Delete(ctx context.Context, key string) error

	// SignedURL issues a time-limited read URL for key. It does not verify
	// that the key exists; an expired or dangling URL fails at fetch time.
	SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// ErrorKind classifies blob-store failures.
type ErrorKind string

const (
	KindNetwork  ErrorKind = "network"
	KindNotFound ErrorKind = "not_found"
	KindDenied   ErrorKind = "denied"
)

// Error is a classified blob-store failure. Match the class with errors.As.
type Error struct {
	Kind ErrorKind
	Op   string
	Key  string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("blob %s %q: %s: %v", e.Op, e.Key, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
