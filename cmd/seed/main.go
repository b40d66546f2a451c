// seed crea los usuarios iniciales (admin, manager, viewer) y las categorías por defecto
// si no existen. Opcionalmente importa productos desde un CSV.
//
// Uso: go run ./cmd/seed [-charset latin1] [productos.csv]
// Columnas del CSV: nombre,descripcion,precio,cantidad,stock_minimo,categoria
// La contraseña inicial se toma de SEED_PASSWORD.
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/stock-manager-api/internal/application/audit"
	"github.com/jhoicas/stock-manager-api/internal/application/dto"
	"github.com/jhoicas/stock-manager-api/internal/application/usecase"
	"github.com/jhoicas/stock-manager-api/internal/domain"
	"github.com/jhoicas/stock-manager-api/internal/domain/entity"
	"github.com/jhoicas/stock-manager-api/internal/domain/repository"
	"github.com/jhoicas/stock-manager-api/internal/infrastructure/postgres"
	"github.com/jhoicas/stock-manager-api/pkg/config"
	"github.com/jhoicas/stock-manager-api/pkg/logger"
	"github.com/jhoicas/stock-manager-api/pkg/security"
)

var defaultCategories = []dto.CategoryRequest{
	{Name: "General", Description: "Productos sin clasificar"},
	{Name: "Bebidas"},
	{Name: "Alimentos"},
	{Name: "Limpieza"},
	{Name: "Papelería"},
}

func main() {
	charset := flag.String("charset", "utf-8", "codificación del CSV: utf-8 | latin1 | windows-1252")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	password := os.Getenv("SEED_PASSWORD")
	if len(password) < 8 {
		log.Fatal().Msg("SEED_PASSWORD debe tener al menos 8 caracteres")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()
	if err := postgres.Migrate(ctx, pool, log); err != nil {
		log.Fatal().Err(err).Msg("migraciones")
	}

	hasher, err := security.NewPasswordHasher(0, false)
	if err != nil {
		log.Fatal().Err(err).Msg("backend de hashing de contraseñas")
	}

	userRepo := postgres.NewUserRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	categoryRepo := postgres.NewCategoryRepository(pool)
	auditSink := audit.NewRecorder(postgres.NewAuditLogRepository(pool), log.Component("audit"))

	userUC := usecase.NewUserUseCase(userRepo, hasher, auditSink)
	categoryUC := usecase.NewCategoryUseCase(categoryRepo, productRepo, auditSink)
	productUC := usecase.NewProductUseCase(productRepo, categoryRepo, postgres.NewTxRunner(pool, cfg.DB.TxTimeout), nil, auditSink)

	adminID := ""
	for _, role := range []entity.Role{entity.RoleAdmin, entity.RoleManager, entity.RoleViewer} {
		username := strings.ToLower(string(role))
		u, err := userUC.Create(ctx, "", dto.CreateUserRequest{
			Email:    username + "@stock.local",
			Username: username,
			FullName: "Usuario " + username,
			Password: password,
			Role:     string(role),
		})
		switch {
		case errors.Is(err, domain.ErrDuplicate):
			log.Info().Str("username", username).Msg("usuario ya existe")
		case err != nil:
			log.Fatal().Err(err).Str("username", username).Msg("crear usuario")
		default:
			log.Info().Str("username", username).Str("id", u.ID).Msg("usuario creado")
		}
	}
	if admin, err := userRepo.GetByUsername(ctx, "admin"); err == nil && admin != nil {
		adminID = admin.ID
	}

	for _, c := range defaultCategories {
		if _, err := categoryUC.Create(ctx, adminID, c); err != nil && !errors.Is(err, domain.ErrDuplicate) {
			log.Fatal().Err(err).Str("category", c.Name).Msg("crear categoría")
		}
	}
	log.Info().Int("categories", len(defaultCategories)).Msg("categorías por defecto verificadas")

	if flag.NArg() == 0 {
		return
	}
	n, err := importProducts(ctx, flag.Arg(0), *charset, adminID, productUC, categoryUC, productRepo)
	if err != nil {
		log.Fatal().Err(err).Msg("importar productos")
	}
	log.Info().Int("products", n).Msg("productos importados")
}

func decoder(charset string, r io.Reader) (io.Reader, error) {
	switch strings.ToLower(charset) {
	case "", "utf-8", "utf8":
		return r, nil
	case "latin1", "iso-8859-1", "iso8859-1":
		return transform.NewReader(r, charmap.ISO8859_1.NewDecoder()), nil
	case "windows-1252", "cp1252":
		return transform.NewReader(r, charmap.Windows1252.NewDecoder()), nil
	default:
		return nil, fmt.Errorf("charset no soportado %q", charset)
	}
}

// importProducts da de alta cada fila cuyo nombre no exista todavía.
func importProducts(
	ctx context.Context,
	path, charset, actorID string,
	products *usecase.ProductUseCase,
	categories *usecase.CategoryUseCase,
	productRepo repository.ProductRepository,
) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	in, err := decoder(charset, f)
	if err != nil {
		return 0, err
	}

	cats, err := categories.List(ctx)
	if err != nil {
		return 0, err
	}
	categoryIDs := make(map[string]string, len(cats))
	for _, c := range cats {
		categoryIDs[strings.ToLower(c.Name)] = c.ID
	}

	r := csv.NewReader(in)
	r.FieldsPerRecord = 6
	r.TrimLeadingSpace = true
	created := 0
	for line := 1; ; line++ {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return created, err
		}
		if line == 1 && strings.EqualFold(rec[0], "nombre") {
			continue
		}
		req, err := productRow(rec, categoryIDs)
		if err != nil {
			return created, fmt.Errorf("línea %d: %w", line, err)
		}
		exists, err := productExists(ctx, productRepo, req.Name)
		if err != nil {
			return created, err
		}
		if exists {
			continue
		}
		if _, err := products.Create(ctx, actorID, req); err != nil {
			return created, fmt.Errorf("línea %d: %w", line, err)
		}
		created++
	}
	return created, nil
}

func productRow(rec []string, categoryIDs map[string]string) (dto.CreateProductRequest, error) {
	price, err := decimal.NewFromString(strings.TrimSpace(rec[2]))
	if err != nil {
		return dto.CreateProductRequest{}, fmt.Errorf("precio %q: %w", rec[2], err)
	}
	qty, err := strconv.Atoi(strings.TrimSpace(rec[3]))
	if err != nil {
		return dto.CreateProductRequest{}, fmt.Errorf("cantidad %q: %w", rec[3], err)
	}
	req := dto.CreateProductRequest{
		Name:        strings.TrimSpace(rec[0]),
		Description: strings.TrimSpace(rec[1]),
		Price:       price,
		Quantity:    qty,
	}
	if s := strings.TrimSpace(rec[4]); s != "" {
		minStock, err := strconv.Atoi(s)
		if err != nil {
			return dto.CreateProductRequest{}, fmt.Errorf("stock mínimo %q: %w", s, err)
		}
		req.MinStock = &minStock
	}
	if name := strings.ToLower(strings.TrimSpace(rec[5])); name != "" {
		id, ok := categoryIDs[name]
		if !ok {
			return dto.CreateProductRequest{}, fmt.Errorf("categoría %q: %w", rec[5], domain.ErrInvalidReference)
		}
		req.CategoryID = &id
	}
	return req, nil
}

func productExists(ctx context.Context, repo repository.ProductRepository, name string) (bool, error) {
	list, err := repo.List(ctx, repository.ProductFilter{Search: name})
	if err != nil {
		return false, err
	}
	for _, p := range list {
		if strings.EqualFold(p.Name, name) {
			return true, nil
		}
	}
	return false, nil
}
