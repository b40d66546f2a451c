package http

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/jhoicas/stock-manager-api/internal/application/auth"
	"github.com/jhoicas/stock-manager-api/internal/application/inventory"
	"github.com/jhoicas/stock-manager-api/internal/application/usecase"
	"github.com/jhoicas/stock-manager-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC           *auth.AuthUseCase
	UserUC           *usecase.UserUseCase
	ProductUC        *usecase.ProductUseCase
	CategoryUC       *usecase.CategoryUseCase
	RegisterMovement *inventory.RegisterMovementUseCase
	MovementQuery    *inventory.MovementQueryUseCase
	LowStock         *inventory.LowStockUseCase
	ReportUC         *usecase.ReportUseCase
	NotificationUC   *usecase.NotificationUseCase
	SettingUC        *usecase.SettingUseCase

	// Opcionales.
	Metrics        HTTPObserver
	MetricsHandler http.Handler
	CORSOrigins    string
	UploadsPrefix  string // ruta pública de las imágenes guardadas en disco
	UploadsDir     string
}

// Router registra middlewares y rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{ContextKey: LocalRequestID}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:  corsOrigins(deps.CORSOrigins),
		AllowHeaders:  "Authorization, Content-Type, X-Request-ID",
		ExposeHeaders: "X-Request-ID, Content-Disposition",
	}))
	app.Use(RequestLogger())
	app.Use(RequestMeta())
	if deps.Metrics != nil {
		app.Use(HTTPMetrics(deps.Metrics))
	}
	if deps.MetricsHandler != nil {
		app.Get("/metrics", adaptor.HTTPHandler(deps.MetricsHandler))
	}
	if deps.UploadsDir != "" && strings.HasPrefix(deps.UploadsPrefix, "/") {
		app.Static(deps.UploadsPrefix, deps.UploadsDir)
	}

	authRequired := AuthMiddleware(deps.AuthUC)
	manager := RequireRole(entity.RoleManager)
	admin := RequireRole(entity.RoleAdmin)

	// Auth
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup := app.Group("/auth")
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/refresh", authHandler.Refresh)
	authGroup.Get("/me", authRequired, authHandler.Me)
	authGroup.Post("/logout", authRequired, authHandler.Logout)

	// Users (solo ADMIN)
	userHandler := NewUserHandler(deps.UserUC)
	users := app.Group("/users", authRequired, admin)
	users.Get("/", userHandler.List)
	users.Post("/", userHandler.Create)
	users.Get("/:id", userHandler.GetByID)
	users.Put("/:id", userHandler.Update)
	users.Delete("/:id", userHandler.Deactivate)
	users.Put("/:id/reset-password", userHandler.ResetPassword)

	// Products: lectura pública, alta MANAGER, reemplazo y baja ADMIN
	productHandler := NewProductHandler(deps.ProductUC, deps.MovementQuery)
	products := app.Group("/products")
	products.Get("/", productHandler.List)
	products.Post("/", authRequired, manager, productHandler.Create)
	products.Post("/create", authRequired, manager, productHandler.Create)
	products.Get("/stock/low-stock", productHandler.LowStock)
	products.Post("/upload-image/:id", authRequired, manager, productHandler.UploadImage)
	products.Get("/:id", productHandler.GetByID)
	products.Get("/:id/reconcile", productHandler.Reconcile)
	products.Put("/:id", authRequired, admin, productHandler.Update)
	products.Delete("/:id", authRequired, admin, productHandler.Delete)

	// Movements: lectura pública, registro MANAGER
	movementHandler := NewMovementHandler(deps.RegisterMovement, deps.MovementQuery)
	movements := app.Group("/movements")
	movements.Get("/", movementHandler.List)
	movements.Post("/", authRequired, manager, movementHandler.Register)
	movements.Get("/history", movementHandler.History)
	movements.Get("/stats", movementHandler.Stats)

	// Categories
	categoryHandler := NewCategoryHandler(deps.CategoryUC)
	categories := app.Group("/categories", authRequired)
	categories.Get("/", categoryHandler.List)
	categories.Post("/", manager, categoryHandler.Create)
	categories.Get("/:id", categoryHandler.GetByID)
	categories.Put("/:id", manager, categoryHandler.Update)
	categories.Delete("/:id", manager, categoryHandler.Delete)

	// Dashboard (público)
	dashboardHandler := NewDashboardHandler(deps.ReportUC, deps.MovementQuery, deps.LowStock)
	dashboard := app.Group("/dashboard")
	dashboard.Get("/stats", dashboardHandler.Stats)
	dashboard.Get("/movements", dashboardHandler.Movements)
	dashboard.Get("/movement-stats", dashboardHandler.MovementStats)
	dashboard.Get("/low-stock", dashboardHandler.LowStock)
	dashboard.Get("/chart/movements", dashboardHandler.Chart)
	dashboard.Get("/export/products", dashboardHandler.ExportProducts)
	dashboard.Get("/notify/low-stock", dashboardHandler.NotifyLowStock)

	// Reports
	reportHandler := NewReportHandler(deps.ReportUC)
	reports := app.Group("/reports", authRequired)
	reports.Get("/dashboard", reportHandler.Dashboard)
	reports.Get("/stock-value", reportHandler.StockValue)
	reports.Get("/stock-value.pdf", reportHandler.StockValuePDF)
	reports.Get("/movements/daily", reportHandler.DailyMovements)
	reports.Get("/alerts/low-stock", reportHandler.LowStockAlerts)
	reports.Get("/performance", reportHandler.Performance)

	// Notifications y settings
	notificationHandler := NewNotificationHandler(deps.NotificationUC, deps.SettingUC)
	notifications := app.Group("/notifications", authRequired)
	notifications.Get("/", notificationHandler.List)
	notifications.Patch("/:id/read", notificationHandler.MarkRead)

	settings := app.Group("/settings", authRequired)
	settings.Get("/", notificationHandler.ListSettings)
	settings.Put("/:key", admin, notificationHandler.UpdateSetting)
}

func corsOrigins(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "*"
	}
	return s
}
