package storage

import (
	"context"
	"io"
)

// Object describes a file to be stored.
type Object struct {
	Key         string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Service stores uploaded profile pictures and returns the URL they are served from.
type Service interface {
	Put(ctx context.Context, obj Object) (string, error)
	Delete(ctx context.Context, key string) error
}
