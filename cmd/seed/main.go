// seed aplica las migraciones y carga los datos de demostración en PostgreSQL.
//
// Uso: go run ./cmd/seed
// Lee la misma configuración que la API (DATABASE_URL o DB_*). Se puede ejecutar varias veces.
package main

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-bodegas/internal/infrastructure/postgres"
	"github.com/jhoicas/inventario-bodegas/internal/infrastructure/seed"
	"github.com/jhoicas/inventario-bodegas/pkg/config"
	"github.com/jhoicas/inventario-bodegas/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	if err := postgres.Migrate(cfg.DB.ConnectionString()); err != nil {
		log.Fatal().Err(err).Msg("aplicar migraciones")
	}
	log.Info().Msg("migraciones aplicadas")

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	res, err := seed.Run(ctx, postgres.NewTxRunner(pool), log)
	if err != nil {
		log.Fatal().Err(err).Msg("cargar datos demo")
	}
	log.Info().
		Int("warehouses", res.Warehouses).
		Int("users", res.Users).
		Int("items", res.Items).
		Msg("datos demo cargados")
}
