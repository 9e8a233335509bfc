package utils

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"github.com/meinhoongagan/nhs-staffing/config"
)

// ErrStorageDisabled is returned by uploads when no file store is configured.
var ErrStorageDisabled = errors.New("file storage is not configured")

// FileStore keeps uploaded nurse documents and returns their public URL.
type FileStore interface {
	Upload(ctx context.Context, file any, filename, folder string) (string, error)
}

// CloudinaryStore uploads to Cloudinary.
type CloudinaryStore struct {
	cld          *cloudinary.Cloudinary
	uploadPreset string
	folder       string
}

func NewCloudinaryStore(cfg *config.Config) (*CloudinaryStore, error) {
	cld, err := cloudinary.NewFromParams(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary: %w", err)
	}
	return &CloudinaryStore{cld: cld, uploadPreset: cfg.CloudinaryUploadPreset, folder: cfg.CloudinaryFolder}, nil
}

// Upload stores file (a path, URL or io.Reader) under folder and returns the secure URL.
// Images are thumbnailed; PDFs are kept as they are.
func (s *CloudinaryStore) Upload(ctx context.Context, file any, filename, folder string) (string, error) {
	params := uploader.UploadParams{
		PublicID:     GeneratePublicID("doc", filename),
		Folder:       strings.Trim(s.folder+"/"+folder, "/"),
		UploadPreset: s.uploadPreset,
	}
	if !strings.EqualFold(filepath.Ext(filename), ".pdf") {
		params.Transformation = "c_limit,w_1600"
	}

	resp, err := s.cld.Upload.Upload(ctx, file, params)
	if err != nil {
		return "", fmt.Errorf("cloudinary upload: %w", err)
	}
	if resp.Error.Message != "" {
		return "", fmt.Errorf("cloudinary upload: %s", resp.Error.Message)
	}
	return resp.SecureURL, nil
}

type disabledStore struct{}

func (disabledStore) Upload(context.Context, any, string, string) (string, error) {
	return "", ErrStorageDisabled
}

// NewDisabledFileStore returns a store whose uploads fail with ErrStorageDisabled.
func NewDisabledFileStore() FileStore {
	return disabledStore{}
}

// NewFileStore returns the Cloudinary store when credentials are configured.
func NewFileStore(cfg *config.Config) (FileStore, error) {
	if !cfg.CloudinaryEnabled() {
		return disabledStore{}, nil
	}
	return NewCloudinaryStore(cfg)
}
