package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-manager-api/internal/domain/entity"
	"github.com/jhoicas/stock-manager-api/internal/domain/repository"
)

var _ repository.SettingRepository = (*SettingRepo)(nil)

// SettingRepo ajustes clave/valor sobre PostgreSQL.
type SettingRepo struct {
	q Querier
}

// NewSettingRepository construye el adaptador.
func NewSettingRepository(q Querier) *SettingRepo {
	return &SettingRepo{q: q}
}

// List todos los ajustes por clave.
func (r *SettingRepo) List(ctx context.Context) ([]*entity.SystemSetting, error) {
	rows, err := r.q.Query(ctx, `SELECT key, value, description, updated_at FROM system_settings ORDER BY key`)
	if err != nil {
		return nil, wrapErr("list settings", err)
	}
	defer rows.Close()
	list := make([]*entity.SystemSetting, 0)
	for rows.Next() {
		var s entity.SystemSetting
		if err := rows.Scan(&s.Key, &s.Value, &s.Description, &s.UpdatedAt); err != nil {
			return nil, wrapErr("scan setting", err)
		}
		list = append(list, &s)
	}
	return list, wrapErr("list settings", rows.Err())
}

// Get obtiene un ajuste; (nil, nil) si no existe.
func (r *SettingRepo) Get(ctx context.Context, key string) (*entity.SystemSetting, error) {
	var s entity.SystemSetting
	err := r.q.QueryRow(ctx, `SELECT key, value, description, updated_at FROM system_settings WHERE key = $1`, key).
		Scan(&s.Key, &s.Value, &s.Description, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("get setting", err)
	}
	return &s, nil
}

// Upsert crea o reemplaza el ajuste.
func (r *SettingRepo) Upsert(ctx context.Context, s *entity.SystemSetting) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO system_settings (key, value, description, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value, description = EXCLUDED.description, updated_at = EXCLUDED.updated_at`,
		s.Key, s.Value, s.Description, s.UpdatedAt,
	)
	return wrapErr("upsert setting", err)
}
