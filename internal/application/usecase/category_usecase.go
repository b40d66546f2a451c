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

// CategoryUseCase CRUD de categorías. El borrado está bloqueado mientras haya productos asociados.
type CategoryUseCase struct {
	repo     repository.CategoryRepository
	products repository.ProductRepository
	audit    audit.Sink
}

// NewCategoryUseCase construye el caso de uso.
func NewCategoryUseCase(repo repository.CategoryRepository, products repository.ProductRepository, auditSink audit.Sink) *CategoryUseCase {
	return &CategoryUseCase{repo: repo, products: products, audit: auditSink}
}

// Create nombre único; ErrDuplicate si ya existe.
func (uc *CategoryUseCase) Create(ctx context.Context, actorID string, in dto.CategoryRequest) (*dto.CategoryResponse, error) {
	name := strings.TrimSpace(in.Name)
	if err := uc.checkName(ctx, "", name); err != nil {
		return nil, err
	}
	c := &entity.Category{
		ID:          uuid.New().String(),
		Name:        name,
		Description: in.Description,
		CreatedAt:   time.Now().UTC(),
	}
	if err := uc.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	uc.audit.Record(ctx, audit.Entry(actorID, "create_category", "category", c.ID, c.Name))
	out := dto.ToCategoryResponse(c)
	return &out, nil
}

// GetByID ErrNotFound si no existe.
func (uc *CategoryUseCase) GetByID(ctx context.Context, id string) (*dto.CategoryResponse, error) {
	c, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	out := dto.ToCategoryResponse(c)
	return &out, nil
}

// List todas las categorías por nombre.
func (uc *CategoryUseCase) List(ctx context.Context) ([]dto.CategoryResponse, error) {
	list, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CategoryResponse, 0, len(list))
	for _, c := range list {
		out = append(out, dto.ToCategoryResponse(c))
	}
	return out, nil
}

// Update renombra o cambia la descripción.
func (uc *CategoryUseCase) Update(ctx context.Context, actorID, id string, in dto.CategoryRequest) (*dto.CategoryResponse, error) {
	c, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name != c.Name {
		if err := uc.checkName(ctx, c.ID, name); err != nil {
			return nil, err
		}
	}
	c.Name = name
	c.Description = in.Description
	if err := uc.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	uc.audit.Record(ctx, audit.Entry(actorID, "update_category", "category", c.ID, c.Name))
	out := dto.ToCategoryResponse(c)
	return &out, nil
}

// Delete falla con *domain.CategoryInUseError (ErrConflict) si algún producto la referencia.
func (uc *CategoryUseCase) Delete(ctx context.Context, actorID, id string) error {
	if _, err := uc.get(ctx, id); err != nil {
		return err
	}
	n, err := uc.products.CountByCategory(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return &domain.CategoryInUseError{CategoryID: id, Products: n}
	}
	// Un producto asignado entre el conteo y el DELETE lo frena la FK (ErrConflict)
	if err := uc.repo.Delete(ctx, id); err != nil {
		return err
	}
	uc.audit.Record(ctx, audit.Entry(actorID, "delete_category", "category", id, ""))
	return nil
}

func (uc *CategoryUseCase) get(ctx context.Context, id string) (*entity.Category, error) {
	c, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

func (uc *CategoryUseCase) checkName(ctx context.Context, selfID, name string) error {
	existing, err := uc.repo.GetByName(ctx, name)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != selfID {
		return fmt.Errorf("categoría %q: %w", name, domain.ErrDuplicate)
	}
	return nil
}
