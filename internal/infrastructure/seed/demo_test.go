package seed_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jhoicas/inventario-bodegas/internal/domain/entity"
	"github.com/jhoicas/inventario-bodegas/internal/domain/repository"
	"github.com/jhoicas/inventario-bodegas/internal/infrastructure/memory"
	"github.com/jhoicas/inventario-bodegas/internal/infrastructure/seed"
	"github.com/jhoicas/inventario-bodegas/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestRun_CargaDatosDemo(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	res, err := seed.Run(ctx, store, logger.Nop())
	require.NoError(t, err)
	assert.Equal(t, seed.Result{Warehouses: 3, Users: 4, Items: 10}, res)

	repos := store.Repos()
	bp, err := repos.Warehouses.GetByCode(ctx, "BP001")
	require.NoError(t, err)
	require.NotNil(t, bp)

	martillo, err := repos.Items.GetByBarcode(ctx, "7501234567890")
	require.NoError(t, err)
	require.NotNil(t, martillo)
	assert.Equal(t, 25, martillo.Stock)
	assert.Equal(t, bp.ID, martillo.WarehouseID)
	assert.Equal(t, "15.5", martillo.UnitPrice.String())

	admin, err := repos.Users.GetByUsername(ctx, "Admin_Santiago")
	require.NoError(t, err)
	require.NotNil(t, admin)
	assert.Equal(t, entity.RoleAdmin, admin.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte("admin123")))

	hist, err := repos.History.ListByWarehouse(ctx, bp.ID, repository.HistoryFilter{ActionType: entity.ActionAddition})
	require.NoError(t, err)
	assert.Len(t, hist, 4, "Casa A tiene 4 ítems en la bodega principal")
	for _, h := range hist {
		assert.Equal(t, "Administrador Santiago", h.UserName)
		assert.Equal(t, "Stock inicial", h.Notes)
	}
}

func TestRun_Idempotente(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	_, err := seed.Run(ctx, store, logger.Nop())
	require.NoError(t, err)
	res, err := seed.Run(ctx, store, logger.Nop())
	require.NoError(t, err)
	assert.Equal(t, seed.Result{}, res)

	list, err := store.Repos().Items.Search(ctx, "7501234", "", 100, 0)
	require.NoError(t, err)
	assert.Len(t, list, 10)
}

// failingHistory hace fallar la primera escritura de historial, después de crear bodegas, usuarios e ítems.
type failingHistory struct{ repository.HistoryRepository }

func (failingHistory) Append(context.Context, *entity.HistoryRecord) error {
	return errors.New("disco lleno")
}

type failingRunner struct{ store *memory.Store }

func (r failingRunner) Run(ctx context.Context, fn func(repos repository.TxRepos) error) error {
	return r.store.Run(ctx, func(repos repository.TxRepos) error {
		repos.History = failingHistory{repos.History}
		return fn(repos)
	})
}

func TestRun_RollbackNoReportaFilasCreadas(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	res, err := seed.Run(ctx, failingRunner{store: store}, logger.Nop())
	require.Error(t, err)
	assert.Equal(t, seed.Result{}, res)

	bp, err := store.Repos().Warehouses.GetByCode(ctx, "BP001")
	require.NoError(t, err)
	assert.Nil(t, bp, "la transacción se revirtió")

	res, err = seed.Run(ctx, store, logger.Nop())
	require.NoError(t, err)
	assert.Equal(t, seed.Result{Warehouses: 3, Users: 4, Items: 10}, res)
}
