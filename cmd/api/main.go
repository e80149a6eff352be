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
	"github.com/tu-usuario/factura-simple/internal/application/auth"
	"github.com/tu-usuario/factura-simple/internal/application/billing"
	infrafacturae "github.com/tu-usuario/factura-simple/internal/infrastructure/facturae"
	infrapdf "github.com/tu-usuario/factura-simple/internal/infrastructure/pdf"
	"github.com/tu-usuario/factura-simple/internal/infrastructure/postgres"
	httpRouter "github.com/tu-usuario/factura-simple/internal/interfaces/http"
	"github.com/tu-usuario/factura-simple/pkg/config"
	"github.com/tu-usuario/factura-simple/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		App:   cfg.App.Name,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	invoiceRepo := postgres.NewInvoiceRepository(pool)
	clientRepo := postgres.NewClientRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	fiscalCfg := billing.FiscalConfig{
		DefaultSeries:      cfg.Fiscal.DefaultSeries,
		MaxPaymentTermDays: cfg.Fiscal.MaxPaymentTermDays,
		SequencePadding:    cfg.Fiscal.SequencePadding,
		DefaultVATRate:     cfg.Fiscal.DefaultVATRate,
		DefaultIRPFRate:    cfg.Fiscal.DefaultIRPFRate,
	}
	issuer := billing.IssuerInfo{
		Name:    cfg.Issuer.Name,
		NIF:     cfg.Issuer.NIF,
		Address: cfg.Issuer.Address,
		Email:   cfg.Issuer.Email,
	}

	clock := billing.SystemClock{}
	lifecycleUC := billing.NewLifecycleUseCase(invoiceRepo, clientRepo, txRunner, clock, fiscalCfg)
	clientUC := billing.NewClientUseCase(clientRepo, clock)
	importUC := billing.NewImportUseCase(invoiceRepo, clientRepo, lifecycleUC, fiscalCfg)
	exportUC := billing.NewExportUseCase(invoiceRepo)
	documentsUC := billing.NewDocumentUseCase(
		invoiceRepo, clientRepo,
		infrapdf.NewMarotoPDFGenerator(),
		infrafacturae.NewBuilder(),
		issuer,
	)

	authUC, err := auth.NewAuthUseCase(
		auth.DemoUser{Email: cfg.Auth.Email, Password: cfg.Auth.Password, Name: cfg.Auth.Name},
		auth.JWTConfig{
			Secret:     cfg.JWT.Secret,
			ExpMinutes: cfg.JWT.Expiration,
			Issuer:     cfg.JWT.Issuer,
		},
	)
	if err != nil {
		log.Fatal().Err(err).Msg("configuración de autenticación")
	}

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
		Title:    "Factura Simple API",
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:    authUC,
		ClientUC:  clientUC,
		Lifecycle: lifecycleUC,
		ImportUC:  importUC,
		ExportUC:  exportUC,
		Documents: documentsUC,
		JWTSecret: cfg.JWT.Secret,
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
