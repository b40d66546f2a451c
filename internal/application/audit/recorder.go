// Package audit registra las operaciones de escritura. El registro es best effort:
// un fallo al insertar se loguea y nunca revierte la operación auditada.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/stock-manager-api/internal/domain/entity"
	"github.com/jhoicas/stock-manager-api/internal/domain/repository"
	"github.com/jhoicas/stock-manager-api/pkg/logger"
)

// Sink destino de las entradas de auditoría.
type Sink interface {
	Record(ctx context.Context, entry entity.AuditLog)
}

type metaKey struct{}

// RequestMeta origen de la petición (lo inyecta la capa HTTP).
type RequestMeta struct {
	IPAddress string
	UserAgent string
}

// WithRequestMeta adjunta IP y user agent al contexto.
func WithRequestMeta(ctx context.Context, meta RequestMeta) context.Context {
	return context.WithValue(ctx, metaKey{}, meta)
}

func metaFrom(ctx context.Context) RequestMeta {
	m, _ := ctx.Value(metaKey{}).(RequestMeta)
	return m
}

// Recorder implementación de Sink sobre AuditLogRepository.
type Recorder struct {
	repo repository.AuditLogRepository
	log  *logger.Logger
}

// NewRecorder construye el registrador.
func NewRecorder(repo repository.AuditLogRepository, log *logger.Logger) *Recorder {
	return &Recorder{repo: repo, log: log}
}

// Record completa id, fecha y origen y persiste la entrada.
func (r *Recorder) Record(ctx context.Context, entry entity.AuditLog) {
	meta := metaFrom(ctx)
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	if entry.IPAddress == "" {
		entry.IPAddress = meta.IPAddress
	}
	if entry.UserAgent == "" {
		entry.UserAgent = meta.UserAgent
	}
	if len(entry.UserAgent) > 255 {
		entry.UserAgent = entry.UserAgent[:255]
	}
	if err := r.repo.Create(ctx, &entry); err != nil {
		r.log.Warn().Err(err).
			Str("action", entry.Action).
			Str("resource_type", entry.ResourceType).
			Str("resource_id", entry.ResourceID).
			Msg("no se pudo registrar auditoría")
	}
}

// Entry atajo para construir una entrada con actor opcional.
func Entry(actorID, action, resourceType, resourceID, details string) entity.AuditLog {
	e := entity.AuditLog{
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Details:      details,
	}
	if actorID != "" {
		e.UserID = &actorID
	}
	return e
}

// Discard Sink que no registra nada (tests, herramientas de línea de comandos).
type Discard struct{}

// Record no hace nada.
func (Discard) Record(context.Context, entity.AuditLog) {}
