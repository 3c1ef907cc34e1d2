// @title           Inventory Ledger API
// @version         1.0
// @description     Registro de entradas y salidas de inventario por SKU con bitácora de movimientos recientes.
// @BasePath        /
// @securityDefinitions.apikey Bearer
// @in              header
// @name            Authorization
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	_ "github.com/jhoicas/Inventario-ledger/docs"
	"github.com/jhoicas/Inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/Inventario-ledger/internal/application/usecase"
	"github.com/jhoicas/Inventario-ledger/internal/domain/ledger"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/Inventario-ledger/internal/infrastructure/barcode"
	"github.com/jhoicas/Inventario-ledger/internal/infrastructure/catalog"
	"github.com/jhoicas/Inventario-ledger/internal/infrastructure/metrics"
	"github.com/jhoicas/Inventario-ledger/internal/infrastructure/mongodb"
	infrapdf "github.com/jhoicas/Inventario-ledger/internal/infrastructure/pdf"
	"github.com/jhoicas/Inventario-ledger/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/Inventario-ledger/internal/interfaces/http"
	"github.com/jhoicas/Inventario-ledger/pkg/config"
	"github.com/jhoicas/Inventario-ledger/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("catalog", cfg.Catalog.Driver).
		Int("history_limit", cfg.Ledger.HistoryLimit).
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET es requerido")
	}

	ctx := context.Background()
	m := metrics.New("inventory")

	// Catálogo opcional: sin él, los SKUs nuevos reciben nombre provisional.
	productRepo, closeCatalog, err := openCatalog(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Catalog.Driver).Msg("conexión al catálogo")
	}
	defer closeCatalog()

	ledgerDeps := inventory.LedgerDeps{
		Decoder:  barcode.NewGozxingDecoder(),
		Reports:  infrapdf.NewMarotoReportGenerator(cfg.App.Name),
		Observer: m,
		Logger:   log.Component("ledger"),
	}
	var productUC *usecase.ProductUseCase
	if productRepo != nil {
		lookupCfg := catalog.DefaultConfig()
		lookupCfg.Timeout = cfg.Catalog.LookupTimeout
		lookupCfg.OnStateChange = m.CircuitStateChanged
		ledgerDeps.Catalog = catalog.NewLookup(productRepo, lookupCfg, log.Component("catalog"))
		productUC = usecase.NewProductUseCase(productRepo)
	}

	book := ledger.New(
		ledger.WithHistoryLimit(cfg.Ledger.HistoryLimit),
		ledger.WithPlaceholder(ledger.PlaceholderFormat(cfg.Ledger.PlaceholderFormat)),
	)
	ledgerUC := inventory.NewLedgerUseCase(book, ledgerDeps)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		BodyLimit:    8 * 1024 * 1024, // fotos de escaneo
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Inventory Ledger API",
		}))
	} else {
		log.Warn().Str("file", swaggerFile).Msg("swagger.json no encontrado, /docs deshabilitado")
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		LedgerUC:       ledgerUC,
		ProductUC:      productUC,
		JWTSecret:      cfg.JWT.Secret,
		JWTIssuer:      cfg.JWT.Issuer,
		Logger:         log.Component("http"),
		HTTPObserver:   m,
		MetricsHandler: m.Handler(),
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

	log.Info().Msg("aplicación detenida")
}

// openCatalog abre el almacén del catálogo según CATALOG_DRIVER. Con "none" devuelve repo nil.
func openCatalog(ctx context.Context, cfg *config.Config) (repository.ProductRepository, func(), error) {
	noop := func() {}
	switch cfg.Catalog.Driver {
	case config.CatalogPostgres:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, noop, err
		}
		migrate := func(q postgres.Querier) error { return postgres.Migrate(ctx, q) }
		if err := postgres.NewTxRunner(pool).Run(ctx, migrate); err != nil {
			pool.Close()
			return nil, noop, err
		}
		return postgres.NewProductRepository(pool), pool.Close, nil

	case config.CatalogMongo:
		client, db, err := mongodb.Connect(ctx, cfg.Mongo)
		if err != nil {
			return nil, noop, err
		}
		repo, err := mongodb.NewProductRepository(ctx, db)
		if err != nil {
			_ = client.Disconnect(ctx)
			return nil, noop, fmt.Errorf("preparar colección de productos: %w", err)
		}
		closeFn := func() {
			dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(dctx)
		}
		return repo, closeFn, nil
	}
	return nil, noop, nil
}
