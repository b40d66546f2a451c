package repository

import (
	"context"

	"github.com/jhoicas/stock-manager-api/internal/domain/entity"
)

// NotificationRepository persistencia de notificaciones (inserciones simples).
type NotificationRepository interface {
	Create(ctx context.Context, n *entity.Notification) error
	ListByUser(ctx context.Context, userID string, unreadOnly bool, limit, offset int) ([]*entity.Notification, error)
	// MarkRead devuelve domain.ErrNotFound si la notificación no existe o no es del usuario.
	MarkRead(ctx context.Context, id, userID string) error
}
