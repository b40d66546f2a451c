package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/jhoicas/stock-manager-api/internal/application/audit"
	"github.com/jhoicas/stock-manager-api/internal/application/dto"
	"github.com/jhoicas/stock-manager-api/internal/domain"
	"github.com/jhoicas/stock-manager-api/internal/domain/entity"
	"github.com/jhoicas/stock-manager-api/internal/domain/repository"
)

// NotificationUseCase bandeja de avisos del usuario autenticado.
type NotificationUseCase struct {
	repo repository.NotificationRepository
}

// NewNotificationUseCase construye el caso de uso.
func NewNotificationUseCase(repo repository.NotificationRepository) *NotificationUseCase {
	return &NotificationUseCase{repo: repo}
}

// List avisos del usuario, más recientes primero.
func (uc *NotificationUseCase) List(ctx context.Context, userID string, q dto.NotificationListQuery) ([]dto.NotificationResponse, error) {
	q.DefaultPage()
	list, err := uc.repo.ListByUser(ctx, userID, q.UnreadOnly, q.Limit, q.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.NotificationResponse, 0, len(list))
	for _, n := range list {
		out = append(out, dto.ToNotificationResponse(n))
	}
	return out, nil
}

// MarkRead solo sobre avisos propios; ErrNotFound en otro caso.
func (uc *NotificationUseCase) MarkRead(ctx context.Context, userID, id string) error {
	return uc.repo.MarkRead(ctx, id, userID)
}

// SettingUseCase pares clave/valor funcionales.
type SettingUseCase struct {
	repo  repository.SettingRepository
	audit audit.Sink
}

// NewSettingUseCase construye el caso de uso.
func NewSettingUseCase(repo repository.SettingRepository, auditSink audit.Sink) *SettingUseCase {
	return &SettingUseCase{repo: repo, audit: auditSink}
}

// List todos los ajustes.
func (uc *SettingUseCase) List(ctx context.Context) ([]dto.SettingResponse, error) {
	list, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SettingResponse, 0, len(list))
	for _, s := range list {
		out = append(out, dto.ToSettingResponse(s))
	}
	return out, nil
}

// Update crea o reemplaza el valor de key. Sin descripción se conserva la existente.
func (uc *SettingUseCase) Update(ctx context.Context, actorID, key string, in dto.UpdateSettingRequest) (*dto.SettingResponse, error) {
	key = strings.TrimSpace(key)
	if key == "" || len(key) > 100 {
		return nil, domain.ErrInvalidInput
	}
	current, err := uc.repo.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	s := &entity.SystemSetting{Key: key, Value: in.Value, UpdatedAt: time.Now().UTC()}
	switch {
	case in.Description != nil:
		s.Description = *in.Description
	case current != nil:
		s.Description = current.Description
	}
	if err := uc.repo.Upsert(ctx, s); err != nil {
		return nil, err
	}
	uc.audit.Record(ctx, audit.Entry(actorID, "update_setting", "setting", key, in.Value))
	out := dto.ToSettingResponse(s)
	return &out, nil
}
