package http

import (
	"bytes"
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/stock-manager-api/internal/application/dto"
	"github.com/jhoicas/stock-manager-api/internal/application/inventory"
	"github.com/jhoicas/stock-manager-api/internal/application/usecase"
	"github.com/jhoicas/stock-manager-api/internal/domain/entity"
)

// DashboardHandler maneja los endpoints del tablero (lectura).
type DashboardHandler struct {
	reports   *usecase.ReportUseCase
	movements *inventory.MovementQueryUseCase
	lowStock  *inventory.LowStockUseCase
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(reports *usecase.ReportUseCase, movements *inventory.MovementQueryUseCase, lowStock *inventory.LowStockUseCase) *DashboardHandler {
	return &DashboardHandler{reports: reports, movements: movements, lowStock: lowStock}
}

// Stats godoc
// @Summary      Estadísticas globales
// @Description  total_entries y total_exits cuentan registros, no unidades.
// @Tags         dashboard
// @Produce      json
// @Success      200  {object}  dto.DashboardStatsResponse
// @Router       /dashboard/stats [get]
func (h *DashboardHandler) Stats(c *fiber.Ctx) error {
	out, err := h.reports.DashboardStats(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Movements godoc
// @Summary      Historial de movimientos del tablero
// @Tags         dashboard
// @Produce      json
// @Param        product_id  query  string  false  "Filtrar por producto"
// @Param        start_date  query  string  false  "Desde"
// @Param        end_date    query  string  false  "Hasta"
// @Success      200  {array}   dto.MovementResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /dashboard/movements [get]
func (h *DashboardHandler) Movements(c *fiber.Ctx) error {
	var q dto.MovementListQuery
	if ok, err := bindQuery(c, &q); !ok {
		return err
	}
	out, err := h.movements.History(c.UserContext(), q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// MovementStats godoc
// @Summary      Entradas y salidas por periodo
// @Tags         dashboard
// @Produce      json
// @Param        period      query  string  false  "day, week o month"  default(day)
// @Param        start_date  query  string  false  "Desde"
// @Param        end_date    query  string  false  "Hasta"
// @Success      200  {array}   dto.MovementPeriodStat
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /dashboard/movement-stats [get]
func (h *DashboardHandler) MovementStats(c *fiber.Ctx) error {
	var q dto.MovementStatsQuery
	if ok, err := bindQuery(c, &q); !ok {
		return err
	}
	out, err := h.reports.MovementStats(c.UserContext(), q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// LowStock godoc
// @Summary      Productos con stock bajo
// @Tags         dashboard
// @Produce      json
// @Param        threshold  query  int  false  "Umbral; sin él se usa el min_stock de cada producto"
// @Success      200  {array}   dto.ProductResponse
// @Router       /dashboard/low-stock [get]
func (h *DashboardHandler) LowStock(c *fiber.Ctx) error {
	threshold, err := optionalInt(c, "threshold")
	if err != nil {
		return invalidQuery(c)
	}
	list, err := h.lowStock.List(c.UserContext(), threshold)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ToProductList(list))
}

// NotifyLowStock godoc
// @Summary      Nombres de los productos con stock bajo
// @Tags         dashboard
// @Produce      json
// @Param        threshold  query  int  false  "Umbral"
// @Success      200  {object}  dto.LowStockNotifyResponse
// @Router       /dashboard/notify/low-stock [get]
func (h *DashboardHandler) NotifyLowStock(c *fiber.Ctx) error {
	threshold, err := optionalInt(c, "threshold")
	if err != nil {
		return invalidQuery(c)
	}
	names, err := h.lowStock.Names(c.UserContext(), threshold)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.LowStockNotifyResponse{LowStockProducts: names})
}

// Chart godoc
// @Summary      Serie diaria para el gráfico de movimientos
// @Tags         dashboard
// @Produce      json
// @Success      200  {object}  dto.ChartResponse
// @Router       /dashboard/chart/movements [get]
func (h *DashboardHandler) Chart(c *fiber.Ctx) error {
	out, err := h.reports.Chart(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ExportProducts godoc
// @Summary      Exportar productos a CSV
// @Tags         dashboard
// @Produce      text/csv
// @Param        charset  query  string  false  "utf-8 (por defecto) o windows-1252 para Excel"
// @Success      200  {file}  file
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /dashboard/export/products [get]
func (h *DashboardHandler) ExportProducts(c *fiber.Ctx) error {
	charset := strings.ToLower(strings.TrimSpace(c.Query("charset", "utf-8")))
	var enc encoding.Encoding
	switch charset {
	case "utf-8", "utf8":
		charset = "utf-8"
	case "windows-1252", "cp1252":
		charset = "windows-1252"
		enc = charmap.Windows1252
	default:
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_CHARSET", Message: "charset soportado: utf-8 o windows-1252"})
	}

	products, err := h.reports.ExportProducts(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	var buf bytes.Buffer
	if enc == nil {
		err = writeProductsCSV(&buf, products)
	} else {
		// Los caracteres sin representación en el charset se sustituyen.
		tw := transform.NewWriter(&buf, encoding.ReplaceUnsupported(enc.NewEncoder()))
		if err = writeProductsCSV(tw, products); err == nil {
			err = tw.Close()
		}
	}
	if err != nil {
		return writeError(c, err)
	}

	c.Set(fiber.HeaderContentType, "text/csv; charset="+charset)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="products.csv"`)
	return c.Send(buf.Bytes())
}

func writeProductsCSV(w io.Writer, products []*entity.Product) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"ID", "Name", "Description", "Price", "Quantity", "Min Stock", "Created At", "Image URL"}); err != nil {
		return err
	}
	for _, p := range products {
		image := ""
		if p.ImageURL != nil {
			image = *p.ImageURL
		}
		row := []string{
			p.ID,
			p.Name,
			p.Description,
			p.Price.StringFixed(2),
			strconv.Itoa(p.Quantity),
			strconv.Itoa(p.MinStock),
			p.CreatedAt.UTC().Format(time.RFC3339),
			image,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
