// Package storage adaptadores de usecase.ImageStore: disco local o bucket S3/MinIO.
package storage

import (
	"context"
	"fmt"

	"github.com/jhoicas/stock-manager-api/internal/application/usecase"
	"github.com/jhoicas/stock-manager-api/pkg/config"
)

// New elige el adaptador según cfg.Driver. Con minio asegura que el bucket exista.
func New(ctx context.Context, cfg config.StorageConfig) (usecase.ImageStore, error) {
	switch cfg.Driver {
	case "", "local":
		return NewLocalStore(cfg.LocalDir, cfg.PublicURL)
	case "minio":
		s, err := NewObjectStore(cfg)
		if err != nil {
			return nil, err
		}
		if err := s.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("storage: driver desconocido %q", cfg.Driver)
	}
}
