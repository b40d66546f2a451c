package usecase

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-manager-api/internal/application/audit"
	"github.com/jhoicas/stock-manager-api/internal/application/dto"
	"github.com/jhoicas/stock-manager-api/internal/domain"
	"github.com/jhoicas/stock-manager-api/internal/domain/entity"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func newProductUC(products *fakeProducts, categories *fakeCategories, images ImageStore) *ProductUseCase {
	return NewProductUseCase(products, categories, fakeTx{products: products}, images, audit.Discard{})
}

func ptr[T any](v T) *T { return &v }

func TestProductCreate_FijaLineaBaseYMinimoPorDefecto(t *testing.T) {
	products := newFakeProducts()
	uc := newProductUC(products, newFakeCategories(), nil)

	out, err := uc.Create(context.Background(), "u1", dto.CreateProductRequest{
		Name: " Teclado ", Price: decimal.RequireFromString("19.90"), Quantity: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, "Teclado", out.Name)
	assert.Equal(t, 10, out.Quantity)
	assert.Equal(t, 10, out.InitialQuantity)
	assert.Equal(t, DefaultMinStock, out.MinStock)
	assert.Nil(t, out.CategoryID)
}

func TestProductCreate_CategoriaInexistente(t *testing.T) {
	uc := newProductUC(newFakeProducts(), newFakeCategories(), nil)

	_, err := uc.Create(context.Background(), "u1", dto.CreateProductRequest{
		Name: "Mouse", Quantity: 1, CategoryID: ptr("7f2c1f4e-0000-4000-8000-000000000001"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidReference)
}

func TestProductCreate_CategoriaVaciaEsNula(t *testing.T) {
	uc := newProductUC(newFakeProducts(), newFakeCategories(), nil)

	out, err := uc.Create(context.Background(), "u1", dto.CreateProductRequest{Name: "Mouse", CategoryID: ptr("  ")})
	require.NoError(t, err)
	assert.Nil(t, out.CategoryID)
}

func TestProductUpdate_DesplazaLineaBasePorDelta(t *testing.T) {
	products := newFakeProducts(&entity.Product{ID: "p1", Name: "Cable", Quantity: 12, InitialQuantity: 10, MinStock: 5})
	uc := newProductUC(products, newFakeCategories(), nil)

	out, err := uc.Update(context.Background(), "admin", "p1", dto.UpdateProductRequest{
		Name: "Cable USB", Price: decimal.NewFromInt(3), Quantity: 20,
	})
	require.NoError(t, err)
	assert.Equal(t, 20, out.Quantity)
	// 12 = 10 + movimientos netos (+2); tras el ajuste 20 = 18 + 2
	assert.Equal(t, 18, out.InitialQuantity)
	assert.Equal(t, 5, out.MinStock)
}

func TestProductUpdate_Inexistente(t *testing.T) {
	uc := newProductUC(newFakeProducts(), newFakeCategories(), nil)

	_, err := uc.Update(context.Background(), "admin", "nope", dto.UpdateProductRequest{Name: "x"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProduct_ObtenerYBorrar(t *testing.T) {
	products := newFakeProducts(&entity.Product{ID: "p1", Name: "Cable"})
	uc := newProductUC(products, newFakeCategories(), nil)
	ctx := context.Background()

	got, err := uc.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Cable", got.Name)

	require.NoError(t, uc.Delete(ctx, "admin", "p1"))
	_, err = uc.GetByID(ctx, "p1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, uc.Delete(ctx, "admin", "p1"), domain.ErrNotFound)
}

func TestProductList_BusquedaSinDistinguirMayusculas(t *testing.T) {
	products := newFakeProducts(
		&entity.Product{ID: "p1", Name: "Cable HDMI"},
		&entity.Product{ID: "p2", Name: "Teclado"},
	)
	uc := newProductUC(products, newFakeCategories(), nil)

	list, err := uc.List(context.Background(), dto.ProductListQuery{Search: "hdmi"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "p1", list[0].ID)
}

func TestProductUploadImage(t *testing.T) {
	products := newFakeProducts(&entity.Product{ID: "p1", Name: "Cable"})
	images := &memImages{}
	uc := newProductUC(products, newFakeCategories(), images)
	ctx := context.Background()

	out, err := uc.UploadImage(ctx, "u1", "p1", "foto.png", "image/png", pngHeader)
	require.NoError(t, err)
	assert.Equal(t, "foto.png", out.OriginalFilename)
	assert.True(t, strings.HasPrefix(out.ImageURL, "/uploads/"))
	assert.True(t, strings.HasSuffix(out.ImageURL, ".png"))
	assert.Len(t, images.objs, 1)

	stored, _ := products.GetByID(ctx, "p1")
	require.NotNil(t, stored.ImageURL)
	assert.Equal(t, out.ImageURL, *stored.ImageURL)
}

func TestProductUploadImage_Rechazos(t *testing.T) {
	products := newFakeProducts(&entity.Product{ID: "p1", Name: "Cable"})
	uc := newProductUC(products, newFakeCategories(), &memImages{})
	ctx := context.Background()

	cases := []struct {
		name        string
		productID   string
		contentType string
		data        []byte
		want        error
	}{
		{"producto inexistente", "p9", "image/png", pngHeader, domain.ErrNotFound},
		{"tipo no permitido", "p1", "image/gif", []byte("GIF89a"), domain.ErrInvalidInput},
		{"contenido no coincide", "p1", "image/jpeg", pngHeader, domain.ErrInvalidInput},
		{"texto disfrazado", "p1", "image/png", []byte("hola mundo"), domain.ErrInvalidInput},
		{"vacío", "p1", "image/png", nil, domain.ErrInvalidInput},
		{"demasiado grande", "p1", "image/png", append(pngHeader, make([]byte, MaxImageBytes)...), domain.ErrInvalidInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.UploadImage(ctx, "u1", tc.productID, "f", tc.contentType, tc.data)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestProductUploadImage_SinAlmacen(t *testing.T) {
	products := newFakeProducts(&entity.Product{ID: "p1"})
	uc := newProductUC(products, newFakeCategories(), nil)

	_, err := uc.UploadImage(context.Background(), "u1", "p1", "f.png", "image/png", pngHeader)
	assert.ErrorIs(t, err, domain.ErrUnavailable)
}
