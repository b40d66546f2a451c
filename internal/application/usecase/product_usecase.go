package usecase

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/ksuid"

	"github.com/jhoicas/stock-manager-api/internal/application/audit"
	"github.com/jhoicas/stock-manager-api/internal/application/dto"
	"github.com/jhoicas/stock-manager-api/internal/application/inventory"
	"github.com/jhoicas/stock-manager-api/internal/domain"
	"github.com/jhoicas/stock-manager-api/internal/domain/entity"
	"github.com/jhoicas/stock-manager-api/internal/domain/repository"
)

// DefaultMinStock umbral de stock bajo cuando el alta no lo indica.
const DefaultMinStock = 5

// MaxImageBytes tamaño máximo de una imagen de producto.
const MaxImageBytes = 5 << 20

// Tipos de imagen aceptados y su extensión.
var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// ProductUseCase CRUD del libro de productos. La cantidad solo cambia aquí en el alta y
// en el reemplazo administrativo; el resto pasa por el motor de movimientos.
type ProductUseCase struct {
	repo       repository.ProductRepository
	categories repository.CategoryRepository
	txRunner   inventory.TxRunner
	images     ImageStore
	audit      audit.Sink
}

// NewProductUseCase construye el caso de uso. images puede ser nil (subida deshabilitada).
func NewProductUseCase(
	repo repository.ProductRepository,
	categories repository.CategoryRepository,
	txRunner inventory.TxRunner,
	images ImageStore,
	auditSink audit.Sink,
) *ProductUseCase {
	return &ProductUseCase{repo: repo, categories: categories, txRunner: txRunner, images: images, audit: auditSink}
}

// Create da de alta un producto; Quantity pasa a ser también la línea base de conciliación.
func (uc *ProductUseCase) Create(ctx context.Context, actorID string, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if err := uc.checkCategory(ctx, in.CategoryID); err != nil {
		return nil, err
	}
	if in.Price.IsNegative() || in.Quantity < 0 {
		return nil, domain.ErrInvalidInput
	}
	minStock := DefaultMinStock
	if in.MinStock != nil {
		minStock = *in.MinStock
	}
	now := time.Now().UTC()
	product := &entity.Product{
		ID:              uuid.New().String(),
		Name:            strings.TrimSpace(in.Name),
		Description:     in.Description,
		Price:           in.Price,
		Quantity:        in.Quantity,
		InitialQuantity: in.Quantity,
		MinStock:        minStock,
		CategoryID:      emptyToNil(in.CategoryID),
		ImageURL:        emptyToNil(in.ImageURL),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	uc.audit.Record(ctx, audit.Entry(actorID, "create_product", "product", product.ID, product.Name))
	out := dto.ToProductResponse(product)
	return &out, nil
}

// GetByID obtiene un producto; ErrNotFound si no existe.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	out := dto.ToProductResponse(product)
	return &out, nil
}

// Update reemplaza el registro completo. Si la cantidad cambia, la línea base se desplaza
// en el mismo delta para que la conciliación contra el historial siga cuadrando.
// Se hace con la fila bloqueada para no intercalarse con un movimiento.
func (uc *ProductUseCase) Update(ctx context.Context, actorID, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	if err := uc.checkCategory(ctx, in.CategoryID); err != nil {
		return nil, err
	}
	if in.Price.IsNegative() || in.Quantity < 0 {
		return nil, domain.ErrInvalidInput
	}

	var (
		updated *entity.Product
		delta   int
	)
	err := uc.txRunner.Run(ctx, func(productRepo repository.ProductRepository, _ repository.StockMovementRepository) error {
		p, err := productRepo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrNotFound
		}
		delta = in.Quantity - p.Quantity
		p.Name = strings.TrimSpace(in.Name)
		p.Description = in.Description
		p.Price = in.Price
		p.Quantity = in.Quantity
		p.InitialQuantity += delta
		if in.MinStock != nil {
			p.MinStock = *in.MinStock
		}
		p.CategoryID = emptyToNil(in.CategoryID)
		if in.ImageURL != nil {
			p.ImageURL = emptyToNil(in.ImageURL)
		}
		p.UpdatedAt = time.Now().UTC()
		if err := productRepo.Update(ctx, p); err != nil {
			return err
		}
		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	details := ""
	if delta != 0 {
		details = fmt.Sprintf("ajuste administrativo de cantidad %+d", delta)
	}
	uc.audit.Record(ctx, audit.Entry(actorID, "update_product", "product", id, details))
	out := dto.ToProductResponse(updated)
	return &out, nil
}

// Delete borra el producto. Su historial de movimientos se conserva sin referencia.
func (uc *ProductUseCase) Delete(ctx context.Context, actorID, id string) error {
	if err := uc.repo.Delete(ctx, id); err != nil {
		return err
	}
	uc.audit.Record(ctx, audit.Entry(actorID, "delete_product", "product", id, ""))
	return nil
}

// List filtra por nombre y categoría con paginación.
func (uc *ProductUseCase) List(ctx context.Context, q dto.ProductListQuery) ([]dto.ProductResponse, error) {
	q.DefaultPage()
	list, err := uc.repo.List(ctx, repository.ProductFilter{
		Search:     strings.TrimSpace(q.Search),
		CategoryID: q.CategoryID,
		Limit:      q.Limit,
		Offset:     q.Offset,
	})
	if err != nil {
		return nil, err
	}
	return dto.ToProductList(list), nil
}

// LowStock productos con quantity < threshold, o < min_stock si threshold es nil.
func (uc *ProductUseCase) LowStock(ctx context.Context, threshold *int) ([]dto.ProductResponse, error) {
	list, err := uc.repo.ListLowStock(ctx, threshold)
	if err != nil {
		return nil, err
	}
	return dto.ToProductList(list), nil
}

// UploadImage valida el contenido (jpeg/png/webp, máx 5 MB, tipo declarado == tipo real),
// lo guarda en el ImageStore y actualiza la referencia del producto.
func (uc *ProductUseCase) UploadImage(ctx context.Context, actorID, productID, filename, declaredType string, data []byte) (*dto.ImageUploadResponse, error) {
	if uc.images == nil {
		return nil, fmt.Errorf("%w: almacenamiento de imágenes no configurado", domain.ErrUnavailable)
	}
	product, err := uc.repo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}

	contentType, err := checkImage(declaredType, data)
	if err != nil {
		return nil, err
	}
	key := ksuid.New().String() + imageExtensions[contentType]
	url, err := uc.images.Put(ctx, key, bytes.NewReader(data), int64(len(data)), contentType)
	if err != nil {
		return nil, err
	}
	if err := uc.repo.SetImage(ctx, productID, url); err != nil {
		return nil, err
	}
	uc.audit.Record(ctx, audit.Entry(actorID, "upload_image", "product", productID, key))
	return &dto.ImageUploadResponse{OriginalFilename: filename, ImageURL: url}, nil
}

// checkImage devuelve el content type real si es aceptable.
func checkImage(declaredType string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: archivo vacío", domain.ErrInvalidInput)
	}
	if len(data) > MaxImageBytes {
		return "", fmt.Errorf("%w: la imagen supera %d bytes", domain.ErrInvalidInput, MaxImageBytes)
	}
	declared := strings.ToLower(strings.TrimSpace(strings.Split(declaredType, ";")[0]))
	if _, ok := imageExtensions[declared]; !ok {
		return "", fmt.Errorf("%w: tipo de imagen no permitido", domain.ErrInvalidInput)
	}
	sniffed := http.DetectContentType(data)
	if sniffed != declared {
		return "", fmt.Errorf("%w: el contenido no corresponde a %s", domain.ErrInvalidInput, declared)
	}
	return sniffed, nil
}

func (uc *ProductUseCase) checkCategory(ctx context.Context, categoryID *string) error {
	id := emptyToNil(categoryID)
	if id == nil {
		return nil
	}
	c, err := uc.categories.GetByID(ctx, *id)
	if err != nil {
		return err
	}
	if c == nil {
		return fmt.Errorf("categoría %s: %w", *id, domain.ErrInvalidReference)
	}
	return nil
}

func emptyToNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
