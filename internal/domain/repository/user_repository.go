package repository

import (
	"context"
	"time"

	"github.com/jhoicas/stock-manager-api/internal/domain/entity"
)

// UserRepository define el puerto de persistencia para User (almacén de credenciales).
// Los Get* devuelven (nil, nil) si el usuario no existe.
type UserRepository interface {
	// Create devuelve domain.ErrDuplicate si el email o el username ya existen.
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
	UpdatePasswordHash(ctx context.Context, id, hash string) error
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
	// Deactivate pone is_active=false. No existe la operación inversa.
	Deactivate(ctx context.Context, id string) error
	List(ctx context.Context, limit, offset int) ([]*entity.User, error)
	ListActiveByRole(ctx context.Context, role entity.Role) ([]*entity.User, error)
}
