package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/stock-manager-api/internal/domain/entity"
	"github.com/jhoicas/stock-manager-api/internal/domain/repository"
	"github.com/jhoicas/stock-manager-api/pkg/logger"
)

// LowStockUseCase detecta productos bajo el mínimo y avisa a los administradores.
type LowStockUseCase struct {
	productRepo   repository.ProductRepository
	userRepo      repository.UserRepository
	notifications repository.NotificationRepository
	log           *logger.Logger
}

// NewLowStockUseCase construye el caso de uso.
func NewLowStockUseCase(
	productRepo repository.ProductRepository,
	userRepo repository.UserRepository,
	notifications repository.NotificationRepository,
	log *logger.Logger,
) *LowStockUseCase {
	return &LowStockUseCase{
		productRepo:   productRepo,
		userRepo:      userRepo,
		notifications: notifications,
		log:           log.Component("low_stock"),
	}
}

// List productos con quantity < threshold (o < min_stock si threshold es nil).
func (uc *LowStockUseCase) List(ctx context.Context, threshold *int) ([]*entity.Product, error) {
	return uc.productRepo.ListLowStock(ctx, threshold)
}

// Names nombres de los productos con stock bajo.
func (uc *LowStockUseCase) Names(ctx context.Context, threshold *int) ([]string, error) {
	list, err := uc.List(ctx, threshold)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(list))
	for _, p := range list {
		names = append(names, p.Name)
	}
	return names, nil
}

// Sweep crea una notificación por producto bajo min_stock para cada admin activo.
// Devuelve cuántas notificaciones se crearon; un fallo puntual no detiene el barrido.
func (uc *LowStockUseCase) Sweep(ctx context.Context) (int, error) {
	products, err := uc.productRepo.ListLowStock(ctx, nil)
	if err != nil {
		return 0, err
	}
	if len(products) == 0 {
		return 0, nil
	}
	admins, err := uc.userRepo.ListActiveByRole(ctx, entity.RoleAdmin)
	if err != nil {
		return 0, err
	}

	now := time.Now().UTC()
	created := 0
	for _, admin := range admins {
		for _, p := range products {
			if err := uc.notifications.Create(ctx, LowStockNotification(admin.ID, p, now)); err != nil {
				uc.log.Warn().Err(err).Str("user_id", admin.ID).Str("product_id", p.ID).Msg("notificación no creada")
				continue
			}
			created++
		}
	}
	uc.log.Info().Int("products", len(products)).Int("notifications", created).Msg("barrido de stock bajo")
	return created, nil
}
