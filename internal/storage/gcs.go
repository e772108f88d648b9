package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// GCSType identifies the Google Cloud Storage backend.
const GCSType = "gcs"

type gcsConnection struct {
	client   *gcs.Client
	settings Settings
	name     string
}

var _ Connection = (*gcsConnection)(nil)

// NewGCSConnection creates a Google Cloud Storage connection. When
// settings.CredentialsFile is empty the client falls back to application
// default credentials.
func NewGCSConnection(ctx context.Context, settings Settings, name string) (Connection, error) {
	var opts []option.ClientOption
	if settings.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(settings.CredentialsFile))
	}
	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gcs storage connection '%s': failed to create client: %w", name, err)
	}
	return &gcsConnection{client: client, settings: settings, name: name}, nil
}

func (c *gcsConnection) Close() error { return c.client.Close() }

func (c *gcsConnection) Type() string { return GCSType }

func (c *gcsConnection) Name() string { return c.name }

func (c *gcsConnection) bucketHandle(bucket string) *gcs.BucketHandle {
	if bucket == "" {
		bucket = c.settings.BucketName
	}
	return c.client.Bucket(bucket)
}

func (c *gcsConnection) Upload(ctx context.Context, bucket, objectName string, data io.Reader, contentType string) error {
	w := c.bucketHandle(bucket).Object(objectName).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, data); err != nil {
		w.Close()
		return fmt.Errorf("failed to upload object '%s': %w", objectName, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finalize object '%s': %w", objectName, err)
	}
	return nil
}

func (c *gcsConnection) Download(ctx context.Context, bucket, objectName string) (io.ReadCloser, error) {
	r, err := c.bucketHandle(bucket).Object(objectName).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open object '%s': %w", objectName, err)
	}
	return r, nil
}

func (c *gcsConnection) ListObjects(ctx context.Context, bucket, prefix string, fn func(objectName string) error) error {
	it := c.bucketHandle(bucket).Objects(ctx, &gcs.Query{Prefix: prefix})
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to list objects with prefix '%s': %w", prefix, err)
		}
		if err := fn(attrs.Name); err != nil {
			return err
		}
	}
}

func (c *gcsConnection) DeleteObject(ctx context.Context, bucket, objectName string) error {
	err := c.bucketHandle(bucket).Object(objectName).Delete(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to delete object '%s': %w", objectName, err)
	}
	return nil
}
