package storage

import (
	"context"
	"fmt"

	"nfccard-backend/internal/config"
)

// New builds the backend selected by cfg.Type ("local" or "s3").
func New(ctx context.Context, cfg config.StorageConfig) (Storage, error) {
	switch cfg.Type {
	case "", "local":
		return NewLocalStorage(cfg.UploadDir)
	case "s3":
		return NewS3Storage(ctx, cfg.S3.Bucket, cfg.S3.Region, cfg.S3.Prefix, cfg.S3.Endpoint)
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
