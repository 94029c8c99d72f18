package storage

import (
	"context"
	"io"
	"time"
)

// Object describes a single upload.
type Object struct {
	Bucket      string
	Key         string
	Body        io.Reader
	ContentType string
}

// Service writes export documents to remote object storage.
type Service interface {
	Upload(ctx context.Context, obj Object) (string, error)
	GetObjectURL(ctx context.Context, bucket, key string, expires time.Duration) (string, error)
}
