package repository

import (
	"context"

	"github.com/jhoicas/stock-manager-api/internal/domain/entity"
)

// AuditLogRepository registro de auditoría (solo inserción).
type AuditLogRepository interface {
	Create(ctx context.Context, log *entity.AuditLog) error
}
