package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	_ "github.com/jhoicas/produmax-api/docs"
	"github.com/jhoicas/produmax-api/internal/application/auth"
	"github.com/jhoicas/produmax-api/internal/application/catalog"
	"github.com/jhoicas/produmax-api/internal/application/order"
	"github.com/jhoicas/produmax-api/internal/application/usecase"
	domainorder "github.com/jhoicas/produmax-api/internal/domain/order"
	"github.com/jhoicas/produmax-api/internal/infrastructure/migrate"
	"github.com/jhoicas/produmax-api/internal/infrastructure/observability"
	infrapdf "github.com/jhoicas/produmax-api/internal/infrastructure/pdf"
	"github.com/jhoicas/produmax-api/internal/infrastructure/postgres"
	"github.com/jhoicas/produmax-api/internal/infrastructure/storage"
	httpRouter "github.com/jhoicas/produmax-api/internal/interfaces/http"
	"github.com/jhoicas/produmax-api/pkg/config"
	"github.com/jhoicas/produmax-api/pkg/logger"
)

// @title                       Produmax API
// @version                     1.0
// @description                 Pedidos, catálogo de productos y usuarios.
// @BasePath                    /
// @securityDefinitions.apikey  Bearer
// @in                          header
// @name                        Authorization
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

	itemPolicy, err := domainorder.ParsePolicy(cfg.Orders.ItemPolicy)
	if err != nil {
		log.Fatal().Err(err).Msg("configuración de pedidos")
	}
	roleCheck, err := auth.ParseRoleCheckMode(cfg.Auth.RoleCheck)
	if err != nil {
		log.Fatal().Err(err).Msg("configuración de roles")
	}
	if roleCheck == auth.RoleCheckLegacy {
		log.Warn().Msg("AUTH_ROLE_CHECK=legacy: el gate admite a usuarios con un rol distinto al requerido")
	}

	ctx := context.Background()
	if cfg.DB.AutoMigrate {
		if err := migrate.Up(ctx, cfg.DB.ConnectionString()); err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
		log.Info().Msg("migraciones aplicadas")
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	userRepo := postgres.NewUserRepository(pool)
	roleRepo := postgres.NewRoleRepository(pool)
	catalogRepo := postgres.NewCatalogRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	images, err := storage.NewLocalImageStore(cfg.Upload.Dir, "uploads")
	if err != nil {
		log.Fatal().Err(err).Msg("almacén de imágenes")
	}
	metrics := observability.NewMetrics()
	receipts := infrapdf.NewReceiptGenerator(cfg.App.Name)

	tokens := auth.NewTokenService(auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	authUC := auth.NewAuthUseCase(userRepo, roleRepo, tokens)
	gate := auth.NewGate(userRepo, roleRepo, roleCheck)
	orderUC := order.NewOrderUseCase(orderRepo, userRepo, catalogRepo, txRunner, receipts, log, order.Config{
		ItemPolicy:  itemPolicy,
		ItemWorkers: cfg.Orders.ItemWorkers,
	}).WithMetrics(metrics)
	productUC := catalog.NewProductUseCase(catalogRepo, productRepo, images, log, int64(cfg.Upload.MaxBytes))
	userUC := usecase.NewUserUseCase(userRepo, roleRepo)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: httpRouter.ErrorHandler,
	})
	httpRouter.UseCommon(app, httpRouter.CommonOptions{
		Log:         log.Named("http"),
		Metrics:     metrics,
		CORSOrigins: cfg.HTTP.CORSOrigins,
	})

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Produmax API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		if err := pool.Ping(c.UserContext()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "service": cfg.App.Name})
		}
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))
	app.Static("/uploads", cfg.Upload.Dir)

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:    authUC,
		OrderUC:   orderUC,
		ProductUC: productUC,
		UserUC:    userUC,
		Tokens:    tokens,
		Gate:      gate,
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
