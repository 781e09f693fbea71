package cloud

import (
	"bytes"
	"context"
	"errors"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/hashicorp/go-hclog"

	httputil "github.com/jmylchreest/drape/internal/util/http"
)

const (
	cloudinaryService = "cloudinary"

	// BackgroundRemovalTransform is the delivery transformation that strips
	// the background and returns a transparent PNG.
	BackgroundRemovalTransform = "e_background_removal/f_png"

	// DefaultFolder holds uploads made by drape.
	DefaultFolder = "drape"
)

// uploadAPI is the subset of the Cloudinary upload API drape uses.
type uploadAPI interface {
	Upload(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error)
	Destroy(ctx context.Context, params uploader.DestroyParams) (*uploader.DestroyResult, error)
}

// fetchFunc downloads a delivery URL.
type fetchFunc func(ctx context.Context, url string) ([]byte, error)

// Cloudinary wraps an authenticated Cloudinary account.
type Cloudinary struct {
	upload uploadAPI
	fetch  fetchFunc
	folder string
	logger hclog.Logger
}

// NewCloudinary connects with a cloudinary:// URL. An empty URL returns
// ErrNotConfigured.
func NewCloudinary(cloudinaryURL string, logger hclog.Logger) (*Cloudinary, error) {
	if strings.TrimSpace(cloudinaryURL) == "" {
		return nil, ErrNotConfigured
	}
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, &ServiceError{Service: cloudinaryService, Op: "initialise", Err: err}
	}
	return newCloudinary(&cld.Upload, nil, logger), nil
}

func newCloudinary(upload uploadAPI, fetch fetchFunc, logger hclog.Logger) *Cloudinary {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	if fetch == nil {
		fetch = func(ctx context.Context, url string) ([]byte, error) {
			return httputil.Fetch(ctx, url, httputil.FetchOptions{})
		}
	}
	return &Cloudinary{upload: upload, fetch: fetch, folder: DefaultFolder, logger: logger}
}

func (c *Cloudinary) put(ctx context.Context, op string, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error) {
	if params.Folder == "" {
		params.Folder = c.folder
	}
	res, err := c.upload.Upload(ctx, file, params)
	if err != nil {
		return nil, &ServiceError{Service: cloudinaryService, Op: op, Err: err}
	}
	if res.Error.Message != "" {
		return nil, &ServiceError{Service: cloudinaryService, Op: op, Err: errors.New(res.Error.Message)}
	}
	if res.SecureURL == "" {
		return nil, &ServiceError{Service: cloudinaryService, Op: op, Err: errors.New("upload returned no URL")}
	}
	return res, nil
}

// RemoveBackground uploads an image (raw bytes or a data URL) and returns the
// background-free PNG. The temporary upload is deleted afterwards.
func (c *Cloudinary) RemoveBackground(ctx context.Context, image []byte) ([]byte, error) {
	if len(image) == 0 {
		return nil, errors.New("image is required")
	}

	var file interface{} = bytes.NewReader(image)
	if bytes.HasPrefix(image, []byte("data:")) {
		file = string(image)
	}

	res, err := c.put(ctx, "upload image", file, uploader.UploadParams{ResourceType: "image"})
	if err != nil {
		return nil, err
	}
	defer c.destroy(ctx, res.PublicID)

	url, err := TransformURL(res.SecureURL, BackgroundRemovalTransform)
	if err != nil {
		return nil, &ServiceError{Service: cloudinaryService, Op: "remove background", Err: err}
	}
	c.logger.Debug("fetching background-removed image", "url", url)

	png, err := c.fetch(ctx, url)
	if err != nil {
		return nil, &ServiceError{Service: cloudinaryService, Op: "remove background", Err: err}
	}
	return png, nil
}

func (c *Cloudinary) destroy(ctx context.Context, publicID string) {
	if publicID == "" {
		return
	}
	if _, err := c.upload.Destroy(context.WithoutCancel(ctx), uploader.DestroyParams{PublicID: publicID}); err != nil {
		c.logger.Warn("failed to delete temporary upload", "public_id", publicID, "error", err)
	}
}

// Publish implements Publisher.
func (c *Cloudinary) Publish(ctx context.Context, name string, data []byte, _ string) (string, error) {
	publicID := strings.TrimSuffix(objectName("", name), ".png")
	res, err := c.put(ctx, "publish pin", bytes.NewReader(data), uploader.UploadParams{
		PublicID:     publicID,
		ResourceType: "image",
		Overwrite:    api.Bool(true),
	})
	if err != nil {
		return "", err
	}
	return res.SecureURL, nil
}

// TransformURL inserts a delivery transformation after the /upload/ segment of
// a Cloudinary delivery URL.
func TransformURL(deliveryURL, transform string) (string, error) {
	const marker = "/upload/"
	i := strings.Index(deliveryURL, marker)
	if i < 0 {
		return "", errors.New("not a cloudinary upload URL: " + deliveryURL)
	}
	i += len(marker)
	return deliveryURL[:i] + strings.Trim(transform, "/") + "/" + deliveryURL[i:], nil
}
