package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"

	_ "github.com/jhoicas/stock-manager-api/docs"
	"github.com/jhoicas/stock-manager-api/internal/application/audit"
	"github.com/jhoicas/stock-manager-api/internal/application/auth"
	"github.com/jhoicas/stock-manager-api/internal/application/inventory"
	"github.com/jhoicas/stock-manager-api/internal/application/usecase"
	infrajobs "github.com/jhoicas/stock-manager-api/internal/infrastructure/jobs"
	inframetrics "github.com/jhoicas/stock-manager-api/internal/infrastructure/metrics"
	infrapdf "github.com/jhoicas/stock-manager-api/internal/infrastructure/pdf"
	"github.com/jhoicas/stock-manager-api/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/stock-manager-api/internal/infrastructure/redis"
	"github.com/jhoicas/stock-manager-api/internal/infrastructure/storage"
	httpRouter "github.com/jhoicas/stock-manager-api/internal/interfaces/http"
	"github.com/jhoicas/stock-manager-api/pkg/config"
	"github.com/jhoicas/stock-manager-api/pkg/jwt"
	"github.com/jhoicas/stock-manager-api/pkg/logger"
	"github.com/jhoicas/stock-manager-api/pkg/security"
)

// @title						Stock Manager API
// @version					1.0
// @description				Inventario: productos, movimientos de stock, categorías, reportes y alertas de stock bajo.
// @BasePath					/
// @securityDefinitions.apikey	BearerAuth
// @in							header
// @name						Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("configuración inválida")
	}
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	hasher, err := security.NewPasswordHasher(0, cfg.Security.AllowLegacySHA256)
	if err != nil {
		log.Fatal().Err(err).Msg("backend de hashing de contraseñas")
	}
	tokens, err := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.AccessExpiration, cfg.JWT.RefreshExpiration)
	if err != nil {
		log.Fatal().Err(err).Msg("servicio de tokens")
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if cfg.DB.AutoMigrate {
		if err := postgres.Migrate(ctx, pool, log); err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
	}

	userRepo := postgres.NewUserRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	categoryRepo := postgres.NewCategoryRepository(pool)
	movementRepo := postgres.NewStockMovementRepository(pool)
	notificationRepo := postgres.NewNotificationRepository(pool)
	settingRepo := postgres.NewSettingRepository(pool)
	analyticsRepo := postgres.NewAnalyticsRepository(pool)
	txRunner := postgres.NewTxRunner(pool, cfg.DB.TxTimeout)

	auditSink := audit.NewRecorder(postgres.NewAuditLogRepository(pool), log.Component("audit"))

	// Refresh tokens con revocación solo si hay Redis.
	var refreshStore auth.RefreshStore
	if cfg.Redis.Addr != "" {
		redisClient, err := infraredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer redisClient.Close()
		refreshStore = infraredis.NewRefreshStore(redisClient)
	} else {
		log.Warn().Msg("REDIS_ADDR vacío: refresh tokens sin rotación ni revocación")
	}

	images, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		log.Fatal().Err(err).Msg("almacenamiento de imágenes")
	}
	var uploadsDir, uploadsPrefix string
	if local, ok := images.(*storage.LocalStore); ok {
		uploadsDir = local.Dir()
		uploadsPrefix = cfg.Storage.PublicURL
	}

	metrics := inframetrics.New()

	authUC := auth.NewAuthUseCase(userRepo, tokens, hasher, refreshStore, auditSink, log)
	userUC := usecase.NewUserUseCase(userRepo, hasher, auditSink)
	productUC := usecase.NewProductUseCase(productRepo, categoryRepo, txRunner, images, auditSink)
	categoryUC := usecase.NewCategoryUseCase(categoryRepo, productRepo, auditSink)
	registerMovementUC := inventory.NewRegisterMovementUseCase(
		txRunner, notificationRepo, auditSink, log,
		inventory.WithMetrics(metrics),
	)
	movementQueryUC := inventory.NewMovementQueryUseCase(movementRepo, analyticsRepo)
	lowStockUC := inventory.NewLowStockUseCase(productRepo, userRepo, notificationRepo, log)
	reportUC := usecase.NewReportUseCase(
		analyticsRepo, productRepo, movementRepo,
		usecase.WithPDFRenderer(infrapdf.NewStockReportGenerator(cfg.App.Name)),
	)
	notificationUC := usecase.NewNotificationUseCase(notificationRepo)
	settingUC := usecase.NewSettingUseCase(settingRepo, auditSink)

	scheduler := infrajobs.NewScheduler(lowStockUC, metrics, log)
	if err := scheduler.Start(cfg.Jobs.LowStockCron); err != nil {
		log.Fatal().Err(err).Msg("planificador de tareas")
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ErrorHandler: httpRouter.ErrorHandler,
		BodyLimit:    cfg.HTTP.BodyLimitMB * 1024 * 1024,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Stock Manager API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		if err := pool.Ping(c.UserContext()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "service": cfg.App.Name})
		}
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:           authUC,
		UserUC:           userUC,
		ProductUC:        productUC,
		CategoryUC:       categoryUC,
		RegisterMovement: registerMovementUC,
		MovementQuery:    movementQueryUC,
		LowStock:         lowStockUC,
		ReportUC:         reportUC,
		NotificationUC:   notificationUC,
		SettingUC:        settingUC,
		Metrics:          metrics,
		MetricsHandler:   metrics.Handler(),
		CORSOrigins:      cfg.HTTP.CORSOrigins,
		UploadsPrefix:    uploadsPrefix,
		UploadsDir:       uploadsDir,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	scheduler.Stop(shutdownCtx)

	log.Info().Msg("aplicación detenida")
}
