package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jhoicas/presupuestos-api/internal/application/inventory"
	"github.com/jhoicas/presupuestos-api/internal/application/lifecycle"
	"github.com/jhoicas/presupuestos-api/internal/infrastructure/alert"
	"github.com/jhoicas/presupuestos-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/presupuestos-api/internal/interfaces/http"
	"github.com/jhoicas/presupuestos-api/pkg/config"
	"github.com/jhoicas/presupuestos-api/pkg/logger"
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

	stockRepo := postgres.NewStockRepository(pool)
	movementRepo := postgres.NewInventoryMovementRepository(pool)
	txRunner := postgres.NewTxRunner(pool, time.Duration(cfg.Inventory.LockTimeoutMS)*time.Millisecond)

	notifier := alert.NewLogNotifier(log.Component("alert"))
	inventoryUC := inventory.NewUseCase(txRunner, movementRepo, stockRepo, notifier, log.Component("inventory"))
	dispatcher := lifecycle.NewDispatcher(inventoryUC, log.Component("lifecycle"))

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	httpRouter.Router(app, httpRouter.RouterDeps{
		InventoryUC: inventoryUC,
		Dispatcher:  dispatcher,
		JWTSecret:   cfg.JWT.Secret,
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
