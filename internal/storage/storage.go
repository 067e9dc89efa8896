package storage

import (
	"context"
	"io"
)

// Image is an uploaded picture waiting to be stored.
type Image struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Object describes where an image ended up.
type Object struct {
	Key string
	URL string
}

// UploadOptions conveys upload destination metadata.
type UploadOptions struct {
	Bucket        string
	KeyPrefix     string
	PublicBaseURL string
}

// Service stores profile images in remote object storage.
type Service interface {
	UploadImage(ctx context.Context, img Image) (Object, error)
	Delete(ctx context.Context, key string) error
}
