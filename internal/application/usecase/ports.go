package usecase

import (
	"context"
	"io"
	"time"

	"github.com/jhoicas/stock-manager-api/internal/application/dto"
	"github.com/jhoicas/stock-manager-api/internal/domain/entity"
)

// ImageStore almacenamiento de imágenes de producto (disco local o S3/MinIO).
type ImageStore interface {
	// Put guarda el objeto bajo key y devuelve la URL pública con la que se referencia.
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
}

// PasswordHasher genera el hash que se persiste; nunca se guarda la contraseña en claro.
type PasswordHasher interface {
	Hash(password string) (string, error)
}

// StockReportData datos del reporte de valor de stock.
type StockReportData struct {
	GeneratedAt time.Time
	Summary     dto.ReportDashboardResponse
	ByCategory  []dto.CategoryValue
	Products    []*entity.Product
}

// StockReportRenderer genera la representación PDF del reporte de valor de stock.
type StockReportRenderer interface {
	RenderStockReport(ctx context.Context, data StockReportData) ([]byte, error)
}
