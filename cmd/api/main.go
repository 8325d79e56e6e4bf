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

	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/application/auth"
	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/application/billing"
	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/application/catalog"
	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/application/finance"
	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/application/notify"
	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/application/orders"
	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/application/purchasing"
	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/application/stock"
	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/infrastructure/postgres"
	httpRouter "github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/interfaces/http"
	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/pkg/config"
	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/pkg/logger"
)

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
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	userRepo := postgres.NewUserRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	locationRepo := postgres.NewLocationRepository(pool)
	levelRepo := postgres.NewStockLevelRepository(pool)
	movementRepo := postgres.NewStockMovementRepository(pool)
	invoiceRepo := postgres.NewInvoiceRepository(pool)
	receiptRepo := postgres.NewReceiptRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)
	expenseRepo := postgres.NewExpenseRepository(pool)
	reportRepo := postgres.NewReportRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	dispatcher := notify.NewDispatcher(notify.NewLogNotifier(log), log)

	stockSvc := stock.NewService(txRunner, productRepo, locationRepo, levelRepo, movementRepo, dispatcher, log)
	invoiceSvc := billing.NewInvoiceService(txRunner, stockSvc, invoiceRepo, productRepo, locationRepo, dispatcher, cfg.Settings, log)
	receiptSvc := purchasing.NewReceiptService(txRunner, stockSvc, receiptRepo, productRepo, locationRepo, dispatcher, cfg.Settings, log)
	orderSvc := orders.NewOrderService(txRunner, stockSvc, orderRepo, productRepo, locationRepo, dispatcher, cfg.Settings, log)
	catalogSvc := catalog.NewService(productRepo, locationRepo)
	expenseSvc := finance.NewExpenseService(expenseRepo, locationRepo)
	reportSvc := finance.NewReportService(invoiceRepo, expenseRepo, reportRepo, locationRepo, log)
	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

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
		Title:    "GestionSTOCK API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:     authUC,
		CatalogSvc: catalogSvc,
		StockSvc:   stockSvc,
		InvoiceSvc: invoiceSvc,
		ReceiptSvc: receiptSvc,
		OrderSvc:   orderSvc,
		ExpenseSvc: expenseSvc,
		ReportSvc:  reportSvc,
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

	log.Info().Msg("apagando servidor")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error().Err(err).Msg("apagado del servidor HTTP")
	}
}
