package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/tu-usuario/granja-ventas/internal/application/sales"
	"github.com/tu-usuario/granja-ventas/internal/application/txn"
	"github.com/tu-usuario/granja-ventas/internal/infrastructure/cache"
	"github.com/tu-usuario/granja-ventas/internal/infrastructure/postgres"
	httpRouter "github.com/tu-usuario/granja-ventas/internal/interfaces/http"
	"github.com/tu-usuario/granja-ventas/pkg/config"
	"github.com/tu-usuario/granja-ventas/pkg/logger"
	"github.com/tu-usuario/granja-ventas/pkg/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	// Repositorios sobre el pool (lecturas fuera de transacción)
	customerRepo := postgres.NewCustomerRepository(pool)
	lotRepo := postgres.NewLotRepository(pool)
	batchRepo := postgres.NewProductionBatchRepository(pool)
	saleRepo := postgres.NewSaleRepository(pool)
	invoiceRepo := postgres.NewInvoiceRepository(pool)

	registry := prometheus.NewRegistry()
	stats := metrics.NewExecutorStats(registry)

	txRunner := postgres.NewTxRunner(pool)
	executor := txn.NewExecutor(txRunner, log, stats)
	opts := txn.Options{
		Retries:        cfg.Executor.Retries,
		AttemptTimeout: cfg.Executor.AttemptTimeout,
		BackoffBase:    cfg.Executor.BackoffBase,
		BackoffMax:     cfg.Executor.BackoffMax,
	}
	series := sales.SeriesConfig{
		SalePrefix:    cfg.Series.SalePrefix,
		InvoicePrefix: cfg.Series.InvoicePrefix,
		Pad:           cfg.Series.Pad,
	}

	// Caché de inventario: invalidación fire-and-forget tras el commit
	var invalidator sales.CacheInvalidator = sales.NopInvalidator{}
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		invalidator = cache.NewRedisInvalidator(rdb)
	}

	invoiceUC := sales.NewInvoiceUseCase(executor, saleRepo, invoiceRepo, customerRepo, series, opts)
	saleUC := sales.NewSaleUseCase(
		executor, customerRepo, lotRepo, batchRepo, saleRepo,
		invoiceUC, invalidator, series, opts, log,
	)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 60,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	httpRouter.Router(app, httpRouter.RouterDeps{
		SaleUC:       saleUC,
		InvoiceUC:    invoiceUC,
		LotRepo:      lotRepo,
		CustomerRepo: customerRepo,
		Metrics:      registry,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Fatal().Err(err).Msg("servidor HTTP")
		}
	}()
	log.Info().Str("addr", cfg.HTTP.Addr()).Msg("escuchando")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("apagando servidor")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
}
