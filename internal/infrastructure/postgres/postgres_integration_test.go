//go:build integration

package postgres_test

// Pruebas contra PostgreSQL real vía testcontainers.
// Ejecutar con: go test -tags integration ./internal/infrastructure/postgres/... -v

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/inventario-bodegas/internal/application/history"
	"github.com/jhoicas/inventario-bodegas/internal/application/withdrawal"
	"github.com/jhoicas/inventario-bodegas/internal/domain"
	"github.com/jhoicas/inventario-bodegas/internal/domain/entity"
	"github.com/jhoicas/inventario-bodegas/internal/domain/repository"
	"github.com/jhoicas/inventario-bodegas/internal/infrastructure/postgres"
	"github.com/jhoicas/inventario-bodegas/pkg/config"
	"github.com/jhoicas/inventario-bodegas/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
)

func setupPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("bodegas_test"),
		tcPostgres.WithUsername("bodegas"),
		tcPostgres.WithPassword("bodegas"),
		tcPostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	dsn, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	require.NoError(t, postgres.Migrate(dsn))
	// Segunda ejecución sin cambios pendientes no es error.
	require.NoError(t, postgres.Migrate(dsn))

	pool, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: dsn, MaxConns: 20})
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

type fixture struct {
	wh1, wh2 *entity.Warehouse
	user     *entity.User
	martillo *entity.Item
	taladro  *entity.Item
	cinta    *entity.Item
}

func seed(t *testing.T, repos repository.TxRepos) fixture {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()
	f := fixture{
		wh1: &entity.Warehouse{ID: uuid.New().String(), Name: "Bodega Principal", Code: "BP001", IsActive: true, CreatedAt: now, UpdatedAt: now},
		wh2: &entity.Warehouse{ID: uuid.New().String(), Name: "Bodega Secundaria", Code: "BS002", IsActive: true, CreatedAt: now, UpdatedAt: now},
	}
	require.NoError(t, repos.Warehouses.Create(ctx, f.wh1))
	require.NoError(t, repos.Warehouses.Create(ctx, f.wh2))

	f.user = &entity.User{ID: uuid.New().String(), Username: "Operador_Juan", PasswordHash: "x", FullName: "Juan Pérez",
		Role: entity.RoleOperador, WarehouseID: f.wh1.ID, IsActive: true, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, repos.Users.Create(ctx, f.user))

	price := decimal.RequireFromString("15.50")
	f.martillo = &entity.Item{ID: uuid.New().String(), Name: "Martillo", Barcode: "7501234567890", Stock: 25,
		UnitPrice: &price, Obra: "Construcción Casa A", NFactura: "FAC-001", WarehouseID: f.wh1.ID, CreatedAt: now, UpdatedAt: now}
	f.taladro = &entity.Item{ID: uuid.New().String(), Name: "Taladro Eléctrico", Barcode: "7501234567892", Stock: 8,
		Obra: "Construcción Casa B", NFactura: "FAC-002", WarehouseID: f.wh2.ID, CreatedAt: now, UpdatedAt: now}
	f.cinta = &entity.Item{ID: uuid.New().String(), Name: "Cinta Métrica", Barcode: "7501234567896", Stock: 40,
		Obra: "Construcción Casa A", NFactura: "REM-010", WarehouseID: f.wh1.ID, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, repos.Items.Create(ctx, f.martillo))
	require.NoError(t, repos.Items.Create(ctx, f.taladro))
	require.NoError(t, repos.Items.Create(ctx, f.cinta))
	return f
}

func TestPostgres(t *testing.T) {
	pool := setupPool(t)
	ctx := context.Background()
	repos := postgres.NewRepos(pool)
	f := seed(t, repos)

	t.Run("repositorios básicos", func(t *testing.T) {
		got, err := repos.Items.GetByBarcode(ctx, "7501234567890")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "Martillo", got.Name)
		require.NotNil(t, got.UnitPrice)
		assert.True(t, got.UnitPrice.Equal(decimal.RequireFromString("15.50")))

		missing, err := repos.Items.GetByID(ctx, "no-es-uuid")
		require.NoError(t, err)
		assert.Nil(t, missing)

		dup := *f.martillo
		dup.ID = uuid.New().String()
		assert.ErrorIs(t, repos.Items.Create(ctx, &dup), domain.ErrDuplicate)

		found, err := repos.Items.Search(ctx, "fac-00", "", 10, 0)
		require.NoError(t, err)
		assert.Len(t, found, 2)

		found, err = repos.Items.Search(ctx, "MART", f.wh1.ID, 10, 0)
		require.NoError(t, err)
		assert.Len(t, found, 1)

		byObra, err := repos.Items.ListByObra(ctx, "Construcción Casa B", f.wh2.ID)
		require.NoError(t, err)
		assert.Len(t, byObra, 1)

		u, err := repos.Users.GetByUsername(ctx, "Operador_Juan")
		require.NoError(t, err)
		require.NotNil(t, u)
		assert.Equal(t, f.wh1.ID, u.WarehouseID)
	})

	t.Run("decremento condicional nunca deja stock negativo", func(t *testing.T) {
		_, err := repos.Items.DecrementStock(ctx, f.taladro.ID, 9)
		var insufficient *domain.InsufficientStockError
		require.True(t, errors.As(err, &insufficient))
		assert.Equal(t, 8, insufficient.Available)

		got, err := repos.Items.GetByID(ctx, f.taladro.ID)
		require.NoError(t, err)
		assert.Equal(t, 8, got.Stock)
	})

	t.Run("retiro confirmado y rollback completo", func(t *testing.T) {
		uc := withdrawal.NewUseCase(postgres.NewTxRunner(pool), repos.Warehouses, repos.Users,
			repos.Withdrawals, history.NewRecorder(), logger.Nop())

		w, err := uc.Submit(ctx, withdrawal.SubmitInput{
			WarehouseID: f.wh1.ID, Obra: "Casa A", UserID: f.user.ID,
			Lines: []withdrawal.LineInput{{ItemID: f.martillo.ID, Quantity: 5}},
		})
		require.NoError(t, err)

		stored, err := repos.Withdrawals.GetByID(ctx, w.ID)
		require.NoError(t, err)
		require.Len(t, stored.Lines, 1)
		assert.Equal(t, "Martillo", stored.Lines[0].ItemName)

		// Segunda línea pertenece a otra bodega: no se persiste nada.
		_, err = uc.Submit(ctx, withdrawal.SubmitInput{
			WarehouseID: f.wh1.ID, Obra: "Casa A", UserID: f.user.ID,
			Lines: []withdrawal.LineInput{{ItemID: f.martillo.ID, Quantity: 1}, {ItemID: f.taladro.ID, Quantity: 1}},
		})
		require.ErrorIs(t, err, domain.ErrItemWarehouseMismatch)

		got, err := repos.Items.GetByID(ctx, f.martillo.ID)
		require.NoError(t, err)
		assert.Equal(t, 20, got.Stock)

		hist, err := repos.History.ListByWarehouse(ctx, f.wh1.ID, repository.HistoryFilter{Limit: 50})
		require.NoError(t, err)
		require.Len(t, hist, 1)
		assert.Equal(t, entity.ActionWithdrawal, hist[0].ActionType)
		assert.Equal(t, "Juan Pérez", hist[0].UserName)
		assert.Equal(t, "Bodega Principal", hist[0].WarehouseName)
	})

	t.Run("retiros concurrentes respetan el stock", func(t *testing.T) {
		uc := withdrawal.NewUseCase(postgres.NewTxRunner(pool), repos.Warehouses, repos.Users,
			repos.Withdrawals, history.NewRecorder(), logger.Nop())

		// Martillo queda en 20: 8 retiros de 3 -> como mucho 6 pueden confirmarse.
		var wg sync.WaitGroup
		var mu sync.Mutex
		ok, rejected := 0, 0
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := uc.Submit(ctx, withdrawal.SubmitInput{
					WarehouseID: f.wh1.ID, Obra: "Casa A", UserID: f.user.ID,
					Lines: []withdrawal.LineInput{{ItemID: f.martillo.ID, Quantity: 3}},
				})
				mu.Lock()
				defer mu.Unlock()
				if err == nil {
					ok++
				} else if errors.Is(err, domain.ErrInsufficientStock) {
					rejected++
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 6, ok)
		assert.Equal(t, 2, rejected)
		got, err := repos.Items.GetByID(ctx, f.martillo.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, got.Stock)
	})

	t.Run("retiros concurrentes con líneas en orden inverso no hacen deadlock", func(t *testing.T) {
		uc := withdrawal.NewUseCase(postgres.NewTxRunner(pool), repos.Warehouses, repos.Users,
			repos.Withdrawals, history.NewRecorder(), logger.Nop())

		cinta, err := repos.Items.GetByID(ctx, f.cinta.ID)
		require.NoError(t, err)
		before := cinta.Stock

		// Mitad de los retiros piden [cinta, martillo] y la otra mitad [martillo, cinta].
		// El martillo está en 2: solo el primero que llegue con él puede confirmarse.
		var wg sync.WaitGroup
		var mu sync.Mutex
		ok, rejected, other := 0, 0, 0
		for i := 0; i < 10; i++ {
			lines := []withdrawal.LineInput{{ItemID: f.cinta.ID, Quantity: 1}, {ItemID: f.martillo.ID, Quantity: 1}}
			if i%2 == 1 {
				lines[0], lines[1] = lines[1], lines[0]
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := uc.Submit(ctx, withdrawal.SubmitInput{
					WarehouseID: f.wh1.ID, Obra: "Casa A", UserID: f.user.ID, Lines: lines,
				})
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					ok++
				case errors.Is(err, domain.ErrInsufficientStock):
					rejected++
				default:
					other++
				}
			}()
		}
		wg.Wait()

		assert.Zero(t, other, "ningún retiro debe fallar por almacenamiento")
		assert.Equal(t, 2, ok)
		assert.Equal(t, 8, rejected)
		got, err := repos.Items.GetByID(ctx, f.martillo.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, got.Stock)
		got, err = repos.Items.GetByID(ctx, f.cinta.ID)
		require.NoError(t, err)
		assert.Equal(t, before-2, got.Stock)
	})
}
