package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-manager-api/internal/application/audit"
	"github.com/jhoicas/stock-manager-api/internal/application/dto"
	"github.com/jhoicas/stock-manager-api/internal/domain"
	"github.com/jhoicas/stock-manager-api/internal/domain/entity"
)

func TestCategoryCreate_NombreDuplicado(t *testing.T) {
	uc := NewCategoryUseCase(newFakeCategories(), newFakeProducts(), audit.Discard{})
	ctx := context.Background()

	_, err := uc.Create(ctx, "u1", dto.CategoryRequest{Name: "Bebidas"})
	require.NoError(t, err)
	_, err = uc.Create(ctx, "u1", dto.CategoryRequest{Name: "Bebidas"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestCategoryUpdate_RenombrarAColisiona(t *testing.T) {
	categories := newFakeCategories(
		&entity.Category{ID: "c1", Name: "Bebidas"},
		&entity.Category{ID: "c2", Name: "Snacks"},
	)
	uc := NewCategoryUseCase(categories, newFakeProducts(), audit.Discard{})
	ctx := context.Background()

	_, err := uc.Update(ctx, "u1", "c2", dto.CategoryRequest{Name: "Bebidas"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	out, err := uc.Update(ctx, "u1", "c2", dto.CategoryRequest{Name: "Snacks", Description: "salados"})
	require.NoError(t, err)
	assert.Equal(t, "salados", out.Description)
}

func TestCategoryDelete_ProtegidaInformaConteo(t *testing.T) {
	cat := "c1"
	categories := newFakeCategories(&entity.Category{ID: cat, Name: "Bebidas"}, &entity.Category{ID: "c2", Name: "Vacía"})
	products := newFakeProducts(
		&entity.Product{ID: "p1", CategoryID: &cat},
		&entity.Product{ID: "p2", CategoryID: &cat},
	)
	uc := NewCategoryUseCase(categories, products, audit.Discard{})
	ctx := context.Background()

	err := uc.Delete(ctx, "u1", cat)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConflict)
	var inUse *domain.CategoryInUseError
	require.True(t, errors.As(err, &inUse))
	assert.Equal(t, 2, inUse.Products)

	require.NoError(t, uc.Delete(ctx, "u1", "c2"))
	_, err = uc.GetByID(ctx, "c2")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCategoryDelete_Inexistente(t *testing.T) {
	uc := NewCategoryUseCase(newFakeCategories(), newFakeProducts(), audit.Discard{})
	assert.ErrorIs(t, uc.Delete(context.Background(), "u1", "zz"), domain.ErrNotFound)
}
