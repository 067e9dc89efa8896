package storage

import (
	"context"
	"fmt"
	"mime"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
	"github.com/samber/oops"
)

type objectUploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

type objectDeleter interface {
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Service uploads images to Amazon S3 (or compatible APIs).
type S3Service struct {
	client   objectDeleter
	uploader objectUploader
	opts     UploadOptions
	newID    func() string
}

func NewS3Service(client *s3.Client, opts UploadOptions) (*S3Service, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("storage bucket is required")
	}
	return &S3Service{
		client:   client,
		uploader: manager.NewUploader(client),
		opts:     opts,
		newID:    uuid.NewString,
	}, nil
}

func (s *S3Service) UploadImage(ctx context.Context, img Image) (Object, error) {
	key := s.objectKey(img.Filename)
	errb := oops.Code("UPLOAD_FAILED").With("bucket", s.opts.Bucket).With("key", key)

	if img.Body == nil {
		return Object{}, errb.Errorf("image body is empty")
	}

	contentType := img.ContentType
	if contentType == "" {
		contentType = mime.TypeByExtension(path.Ext(img.Filename))
	}

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.opts.Bucket),
		Key:    aws.String(key),
		Body:   img.Body,
		ACL:    types.ObjectCannedACLPublicRead,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if img.Size > 0 {
		input.ContentLength = aws.Int64(img.Size)
	}

	output, err := s.uploader.Upload(ctx, input)
	if err != nil {
		return Object{}, errb.Wrapf(err, "upload %s", img.Filename)
	}

	url := ""
	if base := strings.TrimRight(s.opts.PublicBaseURL, "/"); base != "" {
		url = base + "/" + key
	} else if output != nil {
		url = output.Location
	}
	return Object{Key: key, URL: url}, nil
}

// Delete removes a previously uploaded object.
func (s *S3Service) Delete(ctx context.Context, key string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("object key is required")
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.opts.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete object %s: %w", key, err)
	}
	return nil
}

func (s *S3Service) objectKey(filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	key := "images/" + s.newID() + ext
	if prefix := strings.Trim(s.opts.KeyPrefix, "/"); prefix != "" {
		key = prefix + "/" + key
	}
	return key
}

var _ Service = (*S3Service)(nil)
