package media

import (
	"context"
	"regexp"
	"strings"
	"time"

	pkgerrors "github.com/vastralane/storefront-backend/pkg/errors"
	"github.com/vastralane/storefront-backend/pkg/imagekit"
)

const (
	productFolder = "/products"
	authParamsTTL = 10 * time.Minute
	maxBase64Len  = 8 << 20
)

var fileNamePattern = regexp.MustCompile(`^[\w.-]{1,120}$`)

// Uploader is the media storage surface the service needs.
type Uploader interface {
	Upload(ctx context.Context, fileBase64, fileName, folder string) (*imagekit.UploadResult, error)
	Delete(ctx context.Context, fileID string) error
	AuthenticationParams(now time.Time, ttl time.Duration) imagekit.AuthParams
}

// UploadInput carries a base64-encoded image for product media.
type UploadInput struct {
	File     string `json:"file" validate:"required"`
	FileName string `json:"file_name" validate:"required,max=120"`
}

// MediaDTO is the stored image reference returned to the caller.
type MediaDTO struct {
	URL    string `json:"url"`
	FileID string `json:"file_id"`
}

// ServiceParams groups dependencies for the media service.
type ServiceParams struct {
	Uploader Uploader
}

// Service exposes product image storage.
type Service interface {
	UploadImage(ctx context.Context, input UploadInput) (MediaDTO, error)
	DeleteImage(ctx context.Context, fileID string) error
	AuthParams(now time.Time) (imagekit.AuthParams, error)
}

type service struct {
	uploader Uploader
}

// NewService builds a media service. The uploader may be nil when no
// credentials are configured; calls then fail with a dependency error.
func NewService(params ServiceParams) (Service, error) {
	return &service{uploader: params.Uploader}, nil
}

// UploadImage pushes a base64 image to the media store.
func (s *service) UploadImage(ctx context.Context, input UploadInput) (MediaDTO, error) {
	if s.uploader == nil {
		return MediaDTO{}, pkgerrors.New(pkgerrors.CodeDependency, "media storage not configured")
	}
	file := strings.TrimSpace(input.File)
	if file == "" {
		return MediaDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "file is required")
	}
	if len(file) > maxBase64Len {
		return MediaDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "file exceeds the upload size limit")
	}
	fileName := strings.TrimSpace(input.FileName)
	if !fileNamePattern.MatchString(fileName) {
		return MediaDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid file name")
	}

	result, err := s.uploader.Upload(ctx, file, fileName, productFolder)
	if err != nil {
		return MediaDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upload image")
	}
	return MediaDTO{URL: result.URL, FileID: result.FileID}, nil
}

// DeleteImage removes a stored image by its file ID.
func (s *service) DeleteImage(ctx context.Context, fileID string) error {
	if s.uploader == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "media storage not configured")
	}
	if strings.TrimSpace(fileID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "file id is required")
	}
	if err := s.uploader.Delete(ctx, fileID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete image")
	}
	return nil
}

// AuthParams returns short-lived credentials for client-side uploads.
func (s *service) AuthParams(now time.Time) (imagekit.AuthParams, error) {
	if s.uploader == nil {
		return imagekit.AuthParams{}, pkgerrors.New(pkgerrors.CodeDependency, "media storage not configured")
	}
	return s.uploader.AuthenticationParams(now, authParamsTTL), nil
}
