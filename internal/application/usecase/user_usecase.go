package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/stock-manager-api/internal/application/audit"
	"github.com/jhoicas/stock-manager-api/internal/application/dto"
	"github.com/jhoicas/stock-manager-api/internal/domain"
	"github.com/jhoicas/stock-manager-api/internal/domain/entity"
	"github.com/jhoicas/stock-manager-api/internal/domain/repository"
)

// UserUseCase administración de usuarios (solo ADMIN). Los usuarios nunca se borran.
type UserUseCase struct {
	repo   repository.UserRepository
	hasher PasswordHasher
	audit  audit.Sink
}

// NewUserUseCase construye el caso de uso con el puerto de persistencia.
func NewUserUseCase(repo repository.UserRepository, hasher PasswordHasher, auditSink audit.Sink) *UserUseCase {
	return &UserUseCase{repo: repo, hasher: hasher, audit: auditSink}
}

// Create da de alta un usuario activo. Email o username repetidos: ErrDuplicate.
func (uc *UserUseCase) Create(ctx context.Context, actorID string, in dto.CreateUserRequest) (*dto.UserResponse, error) {
	role, ok := entity.ParseRole(in.Role)
	if !ok {
		return nil, fmt.Errorf("rol %q: %w", in.Role, domain.ErrInvalidInput)
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	username := strings.TrimSpace(in.Username)
	if err := uc.checkUnique(ctx, "", email, username); err != nil {
		return nil, err
	}
	hash, err := uc.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	user := &entity.User{
		ID:           uuid.New().String(),
		Email:        email,
		Username:     username,
		FullName:     strings.TrimSpace(in.FullName),
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	uc.audit.Record(ctx, audit.Entry(actorID, "create_user", "user", user.ID, string(role)))
	out := dto.ToUserResponse(user)
	return &out, nil
}

// GetByID obtiene un usuario; ErrUserNotFound si no existe.
func (uc *UserUseCase) GetByID(ctx context.Context, id string) (*dto.UserResponse, error) {
	user, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	out := dto.ToUserResponse(user)
	return &out, nil
}

// List paginado.
func (uc *UserUseCase) List(ctx context.Context, page dto.PageRequest) ([]dto.UserResponse, error) {
	page.DefaultPage()
	list, err := uc.repo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.UserResponse, 0, len(list))
	for _, u := range list {
		out = append(out, dto.ToUserResponse(u))
	}
	return out, nil
}

// Update reemplaza email, username, nombre y rol; la contraseña solo si viene informada.
func (uc *UserUseCase) Update(ctx context.Context, actorID, id string, in dto.UpdateUserRequest) (*dto.UserResponse, error) {
	role, ok := entity.ParseRole(in.Role)
	if !ok {
		return nil, fmt.Errorf("rol %q: %w", in.Role, domain.ErrInvalidInput)
	}
	user, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	username := strings.TrimSpace(in.Username)
	if err := uc.checkUnique(ctx, user.ID, email, username); err != nil {
		return nil, err
	}
	user.Email = email
	user.Username = username
	user.FullName = strings.TrimSpace(in.FullName)
	user.Role = role
	if in.Password != "" {
		hash, err := uc.hasher.Hash(in.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}
	user.UpdatedAt = time.Now().UTC()
	if err := uc.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	uc.audit.Record(ctx, audit.Entry(actorID, "update_user", "user", user.ID, string(role)))
	out := dto.ToUserResponse(user)
	return &out, nil
}

// Deactivate baja lógica. Un admin no puede desactivarse a sí mismo.
func (uc *UserUseCase) Deactivate(ctx context.Context, actorID, id string) error {
	if actorID != "" && actorID == id {
		return fmt.Errorf("%w: no puede desactivar su propia cuenta", domain.ErrInvalidInput)
	}
	if _, err := uc.get(ctx, id); err != nil {
		return err
	}
	if err := uc.repo.Deactivate(ctx, id); err != nil {
		return err
	}
	uc.audit.Record(ctx, audit.Entry(actorID, "deactivate_user", "user", id, ""))
	return nil
}

// ResetPassword fija una contraseña nueva (bcrypt).
func (uc *UserUseCase) ResetPassword(ctx context.Context, actorID, id, newPassword string) error {
	if len(newPassword) < 8 {
		return fmt.Errorf("%w: la contraseña debe tener al menos 8 caracteres", domain.ErrInvalidInput)
	}
	if _, err := uc.get(ctx, id); err != nil {
		return err
	}
	hash, err := uc.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	if err := uc.repo.UpdatePasswordHash(ctx, id, hash); err != nil {
		return err
	}
	uc.audit.Record(ctx, audit.Entry(actorID, "reset_password", "user", id, ""))
	return nil
}

func (uc *UserUseCase) get(ctx context.Context, id string) (*entity.User, error) {
	user, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

// checkUnique comprueba email y username contra otros usuarios distintos de selfID.
func (uc *UserUseCase) checkUnique(ctx context.Context, selfID, email, username string) error {
	byEmail, err := uc.repo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if byEmail != nil && byEmail.ID != selfID {
		return fmt.Errorf("email ya registrado: %w", domain.ErrDuplicate)
	}
	byName, err := uc.repo.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	if byName != nil && byName.ID != selfID {
		return fmt.Errorf("username en uso: %w", domain.ErrDuplicate)
	}
	return nil
}
