package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-manager-api/internal/application/dto"
	"github.com/jhoicas/stock-manager-api/internal/domain"
	"github.com/jhoicas/stock-manager-api/internal/domain/entity"
	"github.com/jhoicas/stock-manager-api/internal/domain/repository"
)

const (
	defaultPerformanceDays = 30
	maxPerformanceDays     = 366
	performanceTopN        = 10
	defaultPeriod          = "day"
)

// ReportUseCase dashboard y reportes. Solo lectura: nunca modifica el libro de stock.
type ReportUseCase struct {
	analytics repository.AnalyticsRepository
	products  repository.ProductRepository
	movements repository.StockMovementRepository
	renderer  StockReportRenderer
	now       func() time.Time
}

// ReportOption configura dependencias opcionales de ReportUseCase.
type ReportOption func(*ReportUseCase)

// WithPDFRenderer habilita el reporte de valor de stock en PDF.
func WithPDFRenderer(r StockReportRenderer) ReportOption {
	return func(uc *ReportUseCase) { uc.renderer = r }
}

// NewReportUseCase construye el caso de uso.
func NewReportUseCase(
	analytics repository.AnalyticsRepository,
	products repository.ProductRepository,
	movements repository.StockMovementRepository,
	opts ...ReportOption,
) *ReportUseCase {
	uc := &ReportUseCase{
		analytics: analytics,
		products:  products,
		movements: movements,
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// DashboardStats productos, unidades y número de registros de entrada/salida.
func (uc *ReportUseCase) DashboardStats(ctx context.Context) (*dto.DashboardStatsResponse, error) {
	inv, mov, err := uc.totals(ctx, nil, nil)
	if err != nil {
		return nil, err
	}
	return &dto.DashboardStatsResponse{
		TotalProducts: inv.TotalProducts,
		TotalStock:    inv.TotalStock,
		TotalEntries:  mov.EntriesCount,
		TotalExits:    mov.ExitsCount,
	}, nil
}

// Dashboard igual que DashboardStats más valor del stock y productos bajo mínimo.
func (uc *ReportUseCase) Dashboard(ctx context.Context) (*dto.ReportDashboardResponse, error) {
	inv, mov, err := uc.totals(ctx, nil, nil)
	if err != nil {
		return nil, err
	}
	return &dto.ReportDashboardResponse{
		TotalProducts:   inv.TotalProducts,
		TotalStock:      inv.TotalStock,
		TotalStockValue: inv.TotalStockValue.Round(2),
		TotalEntries:    mov.EntriesCount,
		TotalExits:      mov.ExitsCount,
		LowStockCount:   inv.LowStockCount,
	}, nil
}

// totals consulta inventario y movimientos en paralelo (consultas independientes).
func (uc *ReportUseCase) totals(ctx context.Context, from, to *time.Time) (repository.InventoryTotals, repository.MovementTotals, error) {
	type invResult struct {
		t   repository.InventoryTotals
		err error
	}
	type movResult struct {
		t   repository.MovementTotals
		err error
	}
	invChan := make(chan invResult, 1)
	movChan := make(chan movResult, 1)

	go func() {
		t, err := uc.analytics.GetInventoryTotals(ctx)
		invChan <- invResult{t, err}
	}()
	go func() {
		t, err := uc.analytics.GetMovementTotals(ctx, from, to)
		movChan <- movResult{t, err}
	}()

	inv := <-invChan
	mov := <-movChan
	if inv.err != nil {
		return inv.t, mov.t, fmt.Errorf("reportes: inventario: %w", inv.err)
	}
	if mov.err != nil {
		return inv.t, mov.t, fmt.Errorf("reportes: movimientos: %w", mov.err)
	}
	return inv.t, mov.t, nil
}

// MovementStats cantidades entradas/salidas agrupadas por día, semana ISO o mes.
func (uc *ReportUseCase) MovementStats(ctx context.Context, q dto.MovementStatsQuery) ([]dto.MovementPeriodStat, error) {
	period := strings.ToLower(strings.TrimSpace(q.Period))
	if period == "" {
		period = defaultPeriod
	}
	from, to, err := parseRange(q.StartDate, q.EndDate)
	if err != nil {
		return nil, err
	}
	buckets, err := uc.analytics.GetMovementBuckets(ctx, period, from, to)
	if err != nil {
		return nil, err
	}
	out := make([]dto.MovementPeriodStat, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, dto.MovementPeriodStat{Period: b.Period, Entries: b.Entries, Exits: b.Exits})
	}
	return out, nil
}

// Chart series diarias (etiquetas ordenadas) para el gráfico de movimientos.
func (uc *ReportUseCase) Chart(ctx context.Context) (*dto.ChartResponse, error) {
	buckets, err := uc.analytics.GetMovementBuckets(ctx, defaultPeriod, nil, nil)
	if err != nil {
		return nil, err
	}
	chart := &dto.ChartResponse{
		Labels:  make([]string, 0, len(buckets)),
		Entries: make([]int, 0, len(buckets)),
		Exits:   make([]int, 0, len(buckets)),
	}
	for _, b := range buckets {
		chart.Labels = append(chart.Labels, b.Period)
		chart.Entries = append(chart.Entries, b.Entries)
		chart.Exits = append(chart.Exits, b.Exits)
	}
	return chart, nil
}

// ExportProducts todos los productos para la exportación CSV.
func (uc *ReportUseCase) ExportProducts(ctx context.Context) ([]*entity.Product, error) {
	return uc.products.List(ctx, repository.ProductFilter{})
}

// StockValue valor total (price × quantity) y desglose por categoría.
func (uc *ReportUseCase) StockValue(ctx context.Context) (*dto.StockValueReport, error) {
	inv, err := uc.analytics.GetInventoryTotals(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := uc.analytics.GetStockValueByCategory(ctx)
	if err != nil {
		return nil, err
	}
	byCategory := make([]dto.CategoryValue, 0, len(rows))
	for _, r := range rows {
		byCategory = append(byCategory, dto.CategoryValue{Category: r.CategoryName, Value: r.Value.Round(2)})
	}
	return &dto.StockValueReport{TotalValue: inv.TotalStockValue.Round(2), ByCategory: byCategory}, nil
}

// StockValuePDF genera el reporte de valor de stock en PDF y el nombre de archivo sugerido.
func (uc *ReportUseCase) StockValuePDF(ctx context.Context) ([]byte, string, error) {
	if uc.renderer == nil {
		return nil, "", fmt.Errorf("%w: generador PDF no configurado", domain.ErrUnavailable)
	}
	summary, err := uc.Dashboard(ctx)
	if err != nil {
		return nil, "", err
	}
	value, err := uc.StockValue(ctx)
	if err != nil {
		return nil, "", err
	}
	products, err := uc.products.List(ctx, repository.ProductFilter{})
	if err != nil {
		return nil, "", err
	}
	now := uc.now()
	doc, err := uc.renderer.RenderStockReport(ctx, StockReportData{
		GeneratedAt: now,
		Summary:     *summary,
		ByCategory:  value.ByCategory,
		Products:    products,
	})
	if err != nil {
		return nil, "", fmt.Errorf("reportes: generar pdf: %w", err)
	}
	return doc, "valor_stock_" + now.Format("20060102") + ".pdf", nil
}

// DailyMovements movimientos de un día (UTC); sin fecha, el día actual.
func (uc *ReportUseCase) DailyMovements(ctx context.Context, date string) (*dto.DailyMovementsReport, error) {
	day := uc.now().Truncate(24 * time.Hour)
	if strings.TrimSpace(date) != "" {
		d, err := dto.ParseDateParam(date, false)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}
		day = d.UTC().Truncate(24 * time.Hour)
	}
	end := day.Add(24*time.Hour - time.Nanosecond)

	list, err := uc.movements.List(ctx, repository.MovementFilter{From: &day, To: &end, Ascending: true})
	if err != nil {
		return nil, err
	}
	report := &dto.DailyMovementsReport{
		Date:           day.Format("2006-01-02"),
		TotalMovements: len(list),
		Movements:      dto.ToMovementList(list),
	}
	for _, m := range list {
		if m.Type == entity.MovementTypeIN {
			report.Entries += m.Quantity
		} else {
			report.Exits += m.Quantity
		}
	}
	report.NetChange = report.Entries - report.Exits
	return report, nil
}

// LowStockAlerts productos bajo threshold (o bajo su min_stock si es nil).
func (uc *ReportUseCase) LowStockAlerts(ctx context.Context, threshold *int) (*dto.LowStockAlertReport, error) {
	list, err := uc.products.ListLowStock(ctx, threshold)
	if err != nil {
		return nil, err
	}
	return &dto.LowStockAlertReport{Count: len(list), Products: dto.ToProductList(list)}, nil
}

// Performance rotación (salidas / stock actual) en los últimos days días; top 10.
func (uc *ReportUseCase) Performance(ctx context.Context, days int) (*dto.PerformanceReport, error) {
	if days <= 0 {
		days = defaultPerformanceDays
	}
	if days > maxPerformanceDays {
		days = maxPerformanceDays
	}
	since := uc.now().AddDate(0, 0, -days)

	totals, err := uc.analytics.GetMovementTotals(ctx, &since, nil)
	if err != nil {
		return nil, err
	}
	rows, err := uc.analytics.GetProductPerformance(ctx, since)
	if err != nil {
		return nil, err
	}
	return &dto.PerformanceReport{
		PeriodDays:         days,
		TotalEntries:       totals.EntriesQty,
		TotalExits:         totals.ExitsQty,
		NetChange:          totals.EntriesQty - totals.ExitsQty,
		ProductPerformance: rankByTurnover(rows, performanceTopN),
	}, nil
}

// rankByTurnover ordena por rotación descendente (empate: más salidas primero) y corta en topN.
func rankByTurnover(rows []repository.ProductPerformanceResult, topN int) []dto.ProductPerformance {
	out := make([]dto.ProductPerformance, 0, len(rows))
	for _, r := range rows {
		rate := 0.0
		if r.CurrentStock > 0 {
			rate, _ = decimal.NewFromInt(int64(r.Exits)).
				Div(decimal.NewFromInt(int64(r.CurrentStock))).
				Round(4).Float64()
		}
		out = append(out, dto.ProductPerformance{
			ProductID:    r.ProductID,
			ProductName:  r.ProductName,
			CurrentStock: r.CurrentStock,
			Entries:      r.Entries,
			Exits:        r.Exits,
			TurnoverRate: rate,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].TurnoverRate != out[j].TurnoverRate {
			return out[i].TurnoverRate > out[j].TurnoverRate
		}
		return out[i].Exits > out[j].Exits
	})
	if len(out) > topN {
		out = out[:topN]
	}
	return out
}

func parseRange(start, end string) (*time.Time, *time.Time, error) {
	from, err := dto.ParseDateParam(start, false)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	to, err := dto.ParseDateParam(end, true)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if from != nil && to != nil && to.Before(*from) {
		return nil, nil, fmt.Errorf("%w: end_date anterior a start_date", domain.ErrInvalidInput)
	}
	return from, to, nil
}
