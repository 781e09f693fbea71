package cloud

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

const gcsService = "gcs"

// objectWriter opens a writer for one object.
type objectWriter func(ctx context.Context, bucket, object, contentType string) io.WriteCloser

// GCSPublisher writes pins into a Cloud Storage bucket.
type GCSPublisher struct {
	bucket string
	prefix string
	open   objectWriter
	close  func() error
}

// NewGCSPublisher writes to bucket. Without a credentials file, application
// default credentials are used. An empty bucket returns ErrNotConfigured.
func NewGCSPublisher(ctx context.Context, bucket, prefix, credentialsFile string) (*GCSPublisher, error) {
	if strings.TrimSpace(bucket) == "" {
		return nil, ErrNotConfigured
	}
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, &ServiceError{Service: gcsService, Op: "create client", Err: err}
	}
	open := func(ctx context.Context, bucket, object, contentType string) io.WriteCloser {
		w := client.Bucket(bucket).Object(object).NewWriter(ctx)
		w.ContentType = contentType
		w.CacheControl = "public, max-age=86400"
		return w
	}
	return &GCSPublisher{bucket: bucket, prefix: prefix, open: open, close: client.Close}, nil
}

// Close releases the storage client.
func (p *GCSPublisher) Close() error {
	if p.close == nil {
		return nil
	}
	return p.close()
}

// Publish implements Publisher. It returns the object's public URL.
func (p *GCSPublisher) Publish(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	if contentType == "" {
		contentType = "image/png"
	}
	object := objectName(p.prefix, name)

	w := p.open(ctx, p.bucket, object, contentType)
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", &ServiceError{Service: gcsService, Op: "write " + object, Err: err}
	}
	if err := w.Close(); err != nil {
		return "", &ServiceError{Service: gcsService, Op: "write " + object, Err: err}
	}

	return publicURL(p.bucket, object), nil
}

func publicURL(bucket, object string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucket, (&url.URL{Path: object}).EscapedPath())
}
