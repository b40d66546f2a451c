package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/stock-manager-api/internal/application/audit"
	"github.com/jhoicas/stock-manager-api/internal/domain"
	"github.com/jhoicas/stock-manager-api/internal/domain/entity"
	"github.com/jhoicas/stock-manager-api/internal/domain/inventory"
	"github.com/jhoicas/stock-manager-api/internal/domain/repository"
	"github.com/jhoicas/stock-manager-api/pkg/logger"
)

// RegisterMovementUseCase registra movimientos IN/OUT de forma transaccional con bloqueo
// de fila (SELECT FOR UPDATE) sobre el producto. Es el único escritor de products.quantity
// y de stock_movements.
type RegisterMovementUseCase struct {
	txRunner      TxRunner
	notifications repository.NotificationRepository
	audit         audit.Sink
	metrics       MovementMetrics
	log           *logger.Logger
	now           func() time.Time
}

// Option configura dependencias opcionales del caso de uso.
type Option func(*RegisterMovementUseCase)

// WithMetrics registra contadores por dirección.
func WithMetrics(m MovementMetrics) Option {
	return func(uc *RegisterMovementUseCase) { uc.metrics = m }
}

// WithClock reemplaza el reloj (tests).
func WithClock(now func() time.Time) Option {
	return func(uc *RegisterMovementUseCase) { uc.now = now }
}

// NewRegisterMovementUseCase construye el caso de uso.
func NewRegisterMovementUseCase(
	txRunner TxRunner,
	notifications repository.NotificationRepository,
	auditSink audit.Sink,
	log *logger.Logger,
	opts ...Option,
) *RegisterMovementUseCase {
	uc := &RegisterMovementUseCase{
		txRunner:      txRunner,
		notifications: notifications,
		audit:         auditSink,
		metrics:       noopMetrics{},
		log:           log.Component("movements"),
		now:           func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// MovementInput entrada del motor.
type MovementInput struct {
	ProductID string
	Type      entity.MovementType
	Quantity  int
	Reason    string
	ActorID   string // vacío si no hay usuario asociado
}

// RecordMovement valida la cantidad, bloquea la fila del producto, calcula la nueva cantidad
// y, dentro de la misma transacción, actualiza el producto e inserta el movimiento.
// Cualquier error deja el estado sin cambios.
func (uc *RegisterMovementUseCase) RecordMovement(ctx context.Context, in MovementInput) (*entity.StockMovement, error) {
	if in.Quantity <= 0 || in.Quantity > inventory.MaxQuantity {
		uc.metrics.MovementRejected("invalid_quantity")
		return nil, domain.ErrInvalidQuantity
	}
	if in.Type != entity.MovementTypeIN && in.Type != entity.MovementTypeOUT {
		uc.metrics.MovementRejected("invalid_type")
		return nil, fmt.Errorf("tipo de movimiento %q: %w", in.Type, domain.ErrInvalidInput)
	}
	if in.ProductID == "" {
		return nil, domain.ErrNotFound
	}

	var (
		mov     *entity.StockMovement
		product *entity.Product
	)
	err := uc.txRunner.Run(ctx, func(productRepo repository.ProductRepository, movRepo repository.StockMovementRepository) error {
		// Bloquea la fila del producto hasta el Commit/Rollback
		p, err := productRepo.GetForUpdate(ctx, in.ProductID)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrNotFound
		}

		newQty, err := inventory.ApplyMovement(p.Quantity, in.Type, in.Quantity)
		if err != nil {
			var insufficient *domain.InsufficientStockError
			if errors.As(err, &insufficient) {
				insufficient.ProductID = p.ID
			}
			return err
		}

		now := uc.now()
		if err := productRepo.UpdateQuantity(ctx, p.ID, newQty, now); err != nil {
			return err
		}
		m := &entity.StockMovement{
			ID:        uuid.New().String(),
			ProductID: p.ID,
			Type:      in.Type,
			Quantity:  in.Quantity,
			Reason:    in.Reason,
			Timestamp: now,
		}
		if in.ActorID != "" {
			actor := in.ActorID
			m.UserID = &actor
		}
		if err := movRepo.Create(ctx, m); err != nil {
			return err
		}

		p.Quantity = newQty
		p.UpdatedAt = now
		mov, product = m, p
		return nil
	})
	if err != nil {
		uc.metrics.MovementRejected(rejectReason(err))
		if errors.Is(err, domain.ErrInsufficientStock) {
			uc.log.Info().Err(err).Str("product_id", in.ProductID).Msg("salida rechazada por stock insuficiente")
		}
		return nil, err
	}

	uc.metrics.MovementRecorded(mov.Type, mov.Quantity)
	uc.log.Info().
		Str("movement_id", mov.ID).
		Str("product_id", mov.ProductID).
		Str("type", string(mov.Type)).
		Int("quantity", mov.Quantity).
		Int("new_quantity", product.Quantity).
		Msg("movimiento registrado")

	uc.audit.Record(ctx, audit.Entry(in.ActorID, "record_movement", "movement", mov.ID,
		fmt.Sprintf("%s %d producto %s", mov.Type, mov.Quantity, mov.ProductID)))

	if mov.Type == entity.MovementTypeOUT && product.IsLowStock() {
		uc.notifyLowStock(ctx, in.ActorID, product)
	}
	return mov, nil
}

// notifyLowStock avisa al actor de que el producto quedó bajo el mínimo (best effort, fuera de la tx).
func (uc *RegisterMovementUseCase) notifyLowStock(ctx context.Context, actorID string, p *entity.Product) {
	if actorID == "" || uc.notifications == nil {
		return
	}
	n := LowStockNotification(actorID, p, uc.now())
	if err := uc.notifications.Create(ctx, n); err != nil {
		uc.log.Warn().Err(err).Str("product_id", p.ID).Msg("no se pudo crear la notificación de stock bajo")
	}
}

// LowStockNotification construye el aviso de stock bajo para un usuario.
func LowStockNotification(userID string, p *entity.Product, at time.Time) *entity.Notification {
	priority := entity.PriorityNormal
	if p.Quantity == 0 {
		priority = entity.PriorityHigh
	}
	return &entity.Notification{
		ID:        uuid.New().String(),
		UserID:    userID,
		Title:     "Stock bajo: " + p.Name,
		Message:   fmt.Sprintf("Quedan %d unidades (mínimo %d).", p.Quantity, p.MinStock),
		Type:      entity.NotificationWarning,
		Priority:  priority,
		CreatedAt: at,
	}
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, domain.ErrInvalidQuantity):
		return "invalid_quantity"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrTimeout):
		return "timeout"
	default:
		return "error"
	}
}
