package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-manager-api/internal/application/usecase"
)

// ReportHandler reportes de inventario (usuarios autenticados).
type ReportHandler struct {
	uc *usecase.ReportUseCase
}

// NewReportHandler construye el handler.
func NewReportHandler(uc *usecase.ReportUseCase) *ReportHandler {
	return &ReportHandler{uc: uc}
}

// Dashboard godoc
// @Summary      Resumen de inventario
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ReportDashboardResponse
// @Router       /reports/dashboard [get]
func (h *ReportHandler) Dashboard(c *fiber.Ctx) error {
	out, err := h.uc.Dashboard(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// StockValue godoc
// @Summary      Valor del stock
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.StockValueReport
// @Router       /reports/stock-value [get]
func (h *ReportHandler) StockValue(c *fiber.Ctx) error {
	out, err := h.uc.StockValue(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// StockValuePDF godoc
// @Summary      Valor del stock en PDF
// @Tags         reports
// @Security     Bearer
// @Produce      application/pdf
// @Success      200  {file}    file
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /reports/stock-value.pdf [get]
func (h *ReportHandler) StockValuePDF(c *fiber.Ctx) error {
	doc, filename, err := h.uc.StockValuePDF(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="`+filename+`"`)
	return c.Send(doc)
}

// DailyMovements godoc
// @Summary      Movimientos de un día
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        date  query  string  false  "YYYY-MM-DD (por defecto hoy, UTC)"
// @Success      200  {object}  dto.DailyMovementsReport
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /reports/movements/daily [get]
func (h *ReportHandler) DailyMovements(c *fiber.Ctx) error {
	out, err := h.uc.DailyMovements(c.UserContext(), c.Query("date"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// LowStockAlerts godoc
// @Summary      Alertas de stock bajo
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        threshold  query  int  false  "Umbral; sin él se usa el min_stock de cada producto"
// @Success      200  {object}  dto.LowStockAlertReport
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /reports/alerts/low-stock [get]
func (h *ReportHandler) LowStockAlerts(c *fiber.Ctx) error {
	threshold, err := optionalInt(c, "threshold")
	if err != nil {
		return invalidQuery(c)
	}
	out, err := h.uc.LowStockAlerts(c.UserContext(), threshold)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Performance godoc
// @Summary      Rotación de productos
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        days  query  int  false  "Ventana en días"  default(30)
// @Success      200  {object}  dto.PerformanceReport
// @Router       /reports/performance [get]
func (h *ReportHandler) Performance(c *fiber.Ctx) error {
	out, err := h.uc.Performance(c.UserContext(), c.QueryInt("days", 30))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
