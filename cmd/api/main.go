package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jhoicas/inventario-bodegas/internal/application/auth"
	"github.com/jhoicas/inventario-bodegas/internal/application/history"
	"github.com/jhoicas/inventario-bodegas/internal/application/inventory"
	"github.com/jhoicas/inventario-bodegas/internal/application/usecase"
	"github.com/jhoicas/inventario-bodegas/internal/application/withdrawal"
	"github.com/jhoicas/inventario-bodegas/internal/domain/repository"
	"github.com/jhoicas/inventario-bodegas/internal/infrastructure/cache"
	"github.com/jhoicas/inventario-bodegas/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/inventario-bodegas/internal/infrastructure/pdf"
	"github.com/jhoicas/inventario-bodegas/internal/infrastructure/postgres"
	"github.com/jhoicas/inventario-bodegas/internal/infrastructure/seed"
	httpRouter "github.com/jhoicas/inventario-bodegas/internal/interfaces/http"
	"github.com/jhoicas/inventario-bodegas/pkg/config"
	"github.com/jhoicas/inventario-bodegas/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

// barcodeCache une los dos contratos de caché que usan los casos de uso.
type barcodeCache interface {
	inventory.ItemCache
	withdrawal.BarcodeInvalidator
}

func main() {
	migrateFlag := flag.Bool("migrate", false, "aplicar migraciones antes de arrancar (driver postgres)")
	flag.Parse()

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
		Str("store", cfg.Store.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()

	var (
		txRunner withdrawal.TxRunner
		repos    repository.TxRepos
	)
	switch cfg.Store.Driver {
	case config.StoreDriverMemory:
		store := memory.NewStore()
		res, err := seed.Run(ctx, store, log)
		if err != nil {
			log.Fatal().Err(err).Msg("cargar datos demo en memoria")
		}
		log.Warn().Int("items", res.Items).Msg("almacén en memoria: los datos se pierden al reiniciar")
		txRunner, repos = store, store.Repos()
	default:
		if *migrateFlag {
			if err := postgres.Migrate(cfg.DB.ConnectionString()); err != nil {
				log.Fatal().Err(err).Msg("aplicar migraciones")
			}
			log.Info().Msg("migraciones aplicadas")
		}
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		txRunner, repos = postgres.NewTxRunner(pool), postgres.NewRepos(pool)
	}

	var itemCache barcodeCache = cache.Noop{}
	if cfg.Redis.Enabled() {
		rdb, err := cache.NewRedis(ctx, cfg.Redis.URL)
		if err != nil {
			// Sin Redis la API sigue funcionando, solo sin caché.
			log.Warn().Err(err).Msg("redis no disponible, caché deshabilitada")
		} else {
			defer rdb.Close()
			itemCache = cache.NewBarcodeCache(rdb, cfg.Redis.BarcodeTTL)
			log.Info().Dur("ttl", cfg.Redis.BarcodeTTL).Msg("caché de códigos de barras en Redis")
		}
	}

	recorder := history.NewRecorder()

	withdrawalUC := withdrawal.NewUseCase(txRunner, repos.Warehouses, repos.Users, repos.Withdrawals, recorder, log)
	withdrawalUC.SetCache(itemCache)
	withdrawalUC.SetReceiptGenerator(infrapdf.NewReceiptGenerator())

	itemUC := inventory.NewItemUseCase(txRunner, repos.Items, repos.Warehouses, repos.Users, recorder, itemCache, log)
	warehouseUC := usecase.NewWarehouseUseCase(repos.Warehouses)
	userUC := usecase.NewUserUseCase(repos.Users, repos.Warehouses)
	historyUC := history.NewQueryUseCase(repos.History, repos.Warehouses)
	authUC := auth.NewAuthUseCase(repos.Users, auth.JWTConfig{
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
	app.Use(httpRouter.RequestLogger(log))

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Inventario Bodegas API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "store": cfg.Store.Driver})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:       authUC,
		WarehouseUC:  warehouseUC,
		UserUC:       userUC,
		ItemUC:       itemUC,
		WithdrawalUC: withdrawalUC,
		HistoryUC:    historyUC,
		Users:        repos.Users,
		JWTSecret:    cfg.JWT.Secret,
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
