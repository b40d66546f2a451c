package dto

import "github.com/shopspring/decimal"

// DashboardStatsResponse GET /dashboard/stats. Entradas y salidas cuentan registros.
type DashboardStatsResponse struct {
	TotalProducts int `json:"total_products"`
	TotalStock    int `json:"total_stock"`
	TotalEntries  int `json:"total_entries"`
	TotalExits    int `json:"total_exits"`
}

// MovementPeriodStat entradas/salidas de un periodo.
type MovementPeriodStat struct {
	Period  string `json:"period"`
	Entries int    `json:"entries"`
	Exits   int    `json:"exits"`
}

// MovementStatsQuery GET /dashboard/movement-stats.
type MovementStatsQuery struct {
	Period    string `query:"period" validate:"omitempty,oneof=day week month"`
	StartDate string `query:"start_date"` // RFC3339 o YYYY-MM-DD
	EndDate   string `query:"end_date"`
}

// ChartResponse series diarias para el gráfico de movimientos.
type ChartResponse struct {
	Labels  []string `json:"labels"`
	Entries []int    `json:"entries"`
	Exits   []int    `json:"exits"`
}

// LowStockNotifyResponse GET /dashboard/notify/low-stock.
type LowStockNotifyResponse struct {
	LowStockProducts []string `json:"low_stock_products"`
}

// ReportDashboardResponse GET /reports/dashboard.
type ReportDashboardResponse struct {
	TotalProducts   int             `json:"total_products"`
	TotalStock      int             `json:"total_stock"`
	TotalStockValue decimal.Decimal `json:"total_stock_value"`
	TotalEntries    int             `json:"total_entries"`
	TotalExits      int             `json:"total_exits"`
	LowStockCount   int             `json:"low_stock_count"`
}

// CategoryValue valor del stock de una categoría.
type CategoryValue struct {
	Category string          `json:"category"`
	Value    decimal.Decimal `json:"value"`
}

// StockValueReport GET /reports/stock-value.
type StockValueReport struct {
	TotalValue decimal.Decimal `json:"total_value"`
	ByCategory []CategoryValue `json:"by_category"`
}

// DailyMovementsReport GET /reports/movements/daily.
type DailyMovementsReport struct {
	Date           string             `json:"date"`
	TotalMovements int                `json:"total_movements"`
	Entries        int                `json:"entries"`
	Exits          int                `json:"exits"`
	NetChange      int                `json:"net_change"`
	Movements      []MovementResponse `json:"movements"`
}

// LowStockAlertReport GET /reports/alerts/low-stock.
type LowStockAlertReport struct {
	Count    int               `json:"count"`
	Products []ProductResponse `json:"products"`
}

// ProductPerformance rotación de un producto.
type ProductPerformance struct {
	ProductID    string  `json:"product_id"`
	ProductName  string  `json:"product_name"`
	CurrentStock int     `json:"current_stock"`
	Entries      int     `json:"entries"`
	Exits        int     `json:"exits"`
	TurnoverRate float64 `json:"turnover_rate"`
}

// PerformanceReport GET /reports/performance.
type PerformanceReport struct {
	PeriodDays         int                  `json:"period_days"`
	TotalEntries       int                  `json:"total_entries"`
	TotalExits         int                  `json:"total_exits"`
	NetChange          int                  `json:"net_change"`
	ProductPerformance []ProductPerformance `json:"product_performance"`
}
