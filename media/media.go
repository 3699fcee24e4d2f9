package media

import (
	"context"
	"errors"
	"fmt"
	"io"

	"newsdesk/logger"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"go.uber.org/zap"
)

const (
	FolderProfiles = "newsdesk/profiles"
	FolderBanners  = "newsdesk/banners"
)

var ErrNotConfigured = errors.New("media: image host not configured")

// Uploader stores an image and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, file io.Reader, folder string) (string, error)
}

type CloudinaryUploader struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinaryUploader(url string) (*CloudinaryUploader, error) {
	cld, err := cloudinary.NewFromURL(url)
	if err != nil {
		return nil, fmt.Errorf("cloudinary configuration error: %w", err)
	}
	return &CloudinaryUploader{cld: cld}, nil
}

func (u *CloudinaryUploader) Upload(ctx context.Context, file io.Reader, folder string) (string, error) {
	params := uploader.UploadParams{
		Folder:         folder,
		Transformation: "c_limit,w_1600,h_1600,q_auto",
	}

	result, err := u.cld.Upload.Upload(ctx, file, params)
	if err != nil {
		return "", fmt.Errorf("uploading to cloudinary: %w", err)
	}
	if result.Error.Message != "" {
		return "", fmt.Errorf("uploading to cloudinary: %s", result.Error.Message)
	}

	logger.Log.Debug("Image uploaded", zap.String("folder", folder), zap.String("url", result.SecureURL))
	return result.SecureURL, nil
}

// Disabled rejects every upload. Requests that carry no file still work.
type Disabled struct{}

func (Disabled) Upload(context.Context, io.Reader, string) (string, error) {
	return "", ErrNotConfigured
}

// New returns a Cloudinary uploader, or Disabled when url is empty.
func New(url string) (Uploader, error) {
	if url == "" {
		return Disabled{}, nil
	}
	return NewCloudinaryUploader(url)
}
