package output

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/spherical/pdf2text/internal/domain"
	"github.com/spherical/pdf2text/internal/observability"
)

// GCSUploader copies results to Google Cloud Storage.
type GCSUploader struct {
	client       *storage.Client
	skipExisting bool
	logger       *observability.Logger
}

// NewGCSUploader creates a storage client using application default
// credentials unless opts say otherwise.
func NewGCSUploader(ctx context.Context, skipExisting bool, logger *observability.Logger, opts ...option.ClientOption) (*GCSUploader, error) {
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, domain.ConfigError("failed to create storage client", err)
	}
	if logger == nil {
		logger = observability.Nop()
	}
	return &GCSUploader{
		client:       client,
		skipExisting: skipExisting,
		logger:       logger.WithComponent("gcs"),
	}, nil
}

// Upload writes text to the gs://bucket/object uri. With skipExisting set an
// object that is already there is left untouched.
func (u *GCSUploader) Upload(ctx context.Context, uri, text string) error {
	bucket, object, err := ParseGSURI(uri)
	if err != nil {
		return err
	}

	obj := u.client.Bucket(bucket).Object(object)
	if u.skipExisting {
		obj = obj.If(storage.Conditions{DoesNotExist: true})
	}

	writer := obj.NewWriter(ctx)
	writer.ContentType = "text/plain; charset=utf-8"

	if _, err := io.Copy(writer, strings.NewReader(text)); err != nil {
		_ = writer.Close()
		return u.writeError(uri, err)
	}
	if err := writer.Close(); err != nil {
		return u.writeError(uri, err)
	}

	u.logger.Info().Str("uri", uri).Int("bytes", len(text)).Msg("result uploaded")
	return nil
}

func (u *GCSUploader) writeError(uri string, err error) error {
	if isPreconditionFailed(err) {
		u.logger.Info().Str("uri", uri).Msg("object already exists, skipping upload")
		return nil
	}
	return domain.IOError(fmt.Sprintf("failed to upload result to %s", uri), err)
}

// Close releases the storage client.
func (u *GCSUploader) Close() error {
	return u.client.Close()
}

// ParseGSURI splits gs://bucket/path/to/object into bucket and object.
func ParseGSURI(uri string) (bucket, object string, err error) {
	rest, ok := strings.CutPrefix(uri, "gs://")
	if !ok {
		return "", "", domain.ConfigError(fmt.Sprintf("not a gs:// uri: %q", uri), nil)
	}
	bucket, object, _ = strings.Cut(rest, "/")
	if bucket == "" || object == "" || strings.HasSuffix(object, "/") {
		return "", "", domain.ConfigError(fmt.Sprintf("uri %q must name a bucket and an object", uri), nil)
	}
	return bucket, object, nil
}

func isPreconditionFailed(err error) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == http.StatusPreconditionFailed
}
