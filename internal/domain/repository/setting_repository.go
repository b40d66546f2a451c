package repository

import (
	"context"

	"github.com/jhoicas/stock-manager-api/internal/domain/entity"
)

// SettingRepository pares clave/valor del sistema.
type SettingRepository interface {
	List(ctx context.Context) ([]*entity.SystemSetting, error)
	Get(ctx context.Context, key string) (*entity.SystemSetting, error)
	Upsert(ctx context.Context, s *entity.SystemSetting) error
}
