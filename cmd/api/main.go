package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/robfig/cron/v3"

	"github.com/farmabit/magistral-api/internal/application/batches"
	"github.com/farmabit/magistral-api/internal/application/manipulation"
	"github.com/farmabit/magistral-api/internal/application/stock"
	"github.com/farmabit/magistral-api/internal/application/traceability"
	"github.com/farmabit/magistral-api/internal/application/usecase"
	"github.com/farmabit/magistral-api/internal/infrastructure/postgres"
	httpRouter "github.com/farmabit/magistral-api/internal/interfaces/http"
	"github.com/farmabit/magistral-api/pkg/config"
	"github.com/farmabit/magistral-api/pkg/logger"
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

	materialRepo := postgres.NewRawMaterialRepository(pool)
	supplierRepo := postgres.NewSupplierRepository(pool)
	batchRepo := postgres.NewBatchRepository(pool)
	movementRepo := postgres.NewStockMovementRepository(pool)
	orderRepo := postgres.NewManipulationOrderRepository(pool)
	stepRepo := postgres.NewManipulationStepRepository(pool)
	formulaRepo := postgres.NewFormulaRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	ledgerUC := stock.NewLedgerUseCase(txRunner)
	queriesUC := stock.NewQueriesUseCase(materialRepo, movementRepo)
	registryUC := batches.NewRegistryUseCase(txRunner, ledgerUC, batchRepo, materialRepo, supplierRepo)
	workflowUC := manipulation.NewWorkflowUseCase(txRunner, ledgerUC, orderRepo, stepRepo, formulaRepo)
	traceUC := traceability.NewUseCase(batchRepo, movementRepo, orderRepo)
	materialUC := usecase.NewMaterialUseCase(materialRepo)
	supplierUC := usecase.NewSupplierUseCase(supplierRepo)

	// Barrido de vencimientos: pasa a EXPIRED los lotes aprobados ya vencidos
	// y asienta la pérdida correspondiente en el libro.
	sweeper := cron.New()
	if _, err := sweeper.AddFunc(cfg.Jobs.ExpirySweepCron, func() {
		expired, err := registryUC.ExpireOverdue(context.Background(), time.Now())
		if err != nil {
			log.Error().Err(err).Msg("barrido de vencimientos")
			return
		}
		if expired > 0 {
			log.Info().Int("lotes", expired).Msg("lotes vencidos asentados")
		}
	}); err != nil {
		log.Fatal().Err(err).Str("cron", cfg.Jobs.ExpirySweepCron).Msg("programar barrido de vencimientos")
	}
	sweeper.Start()
	defer sweeper.Stop()

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Magistral API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		MaterialUC: materialUC,
		SupplierUC: supplierUC,
		RegistryUC: registryUC,
		LedgerUC:   ledgerUC,
		QueriesUC:  queriesUC,
		WorkflowUC: workflowUC,
		TraceUC:    traceUC,
		JWTSecret:  cfg.JWT.Secret,
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
