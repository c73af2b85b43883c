package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jhoicas/inventario-bodegas/internal/domain"
	"github.com/jhoicas/inventario-bodegas/internal/domain/entity"
	"github.com/jhoicas/inventario-bodegas/internal/domain/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedStore(t *testing.T) (*Store, *entity.Warehouse, *entity.Item) {
	t.Helper()
	ctx := context.Background()
	s := NewStore()
	repos := s.Repos()
	wh := &entity.Warehouse{ID: "w1", Name: "Bodega Principal", Code: "BP001", IsActive: true}
	require.NoError(t, repos.Warehouses.Create(ctx, wh))
	it := &entity.Item{ID: "i1", Name: "Taladro Eléctrico", Barcode: "7501234567892", Stock: 8, NFactura: "FAC-002", WarehouseID: "w1"}
	require.NoError(t, repos.Items.Create(ctx, it))
	return s, wh, it
}

func TestRun_RollbackRestauraElEstado(t *testing.T) {
	s, _, it := seedStore(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.Run(ctx, func(repos repository.TxRepos) error {
		_, err := repos.Items.DecrementStock(ctx, it.ID, 3)
		require.NoError(t, err)
		require.NoError(t, repos.History.Append(ctx, &entity.HistoryRecord{ID: "h1", WarehouseID: "w1"}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := s.Repos().Items.GetByID(ctx, it.ID)
	require.NoError(t, err)
	assert.Equal(t, 8, got.Stock)
	hist, err := s.Repos().History.ListByWarehouse(ctx, "w1", repository.HistoryFilter{})
	require.NoError(t, err)
	assert.Empty(t, hist)
}

func TestRun_CommitPersiste(t *testing.T) {
	s, _, it := seedStore(t)
	ctx := context.Background()

	require.NoError(t, s.Run(ctx, func(repos repository.TxRepos) error {
		_, err := repos.Items.DecrementStock(ctx, it.ID, 3)
		return err
	}))
	got, _ := s.Repos().Items.GetByID(ctx, it.ID)
	assert.Equal(t, 5, got.Stock)
}

func TestDecrementStock_NuncaNegativo(t *testing.T) {
	s, _, it := seedStore(t)
	_, err := s.Repos().Items.DecrementStock(context.Background(), it.ID, 9)

	var insufficient *domain.InsufficientStockError
	require.True(t, errors.As(err, &insufficient))
	assert.Equal(t, 8, insufficient.Available)
	assert.Equal(t, 9, insufficient.Requested)
}

func TestSearch_SinDistinguirMayusculas(t *testing.T) {
	s, _, _ := seedStore(t)
	ctx := context.Background()
	items := s.Repos().Items

	for _, q := range []string{"taladro", "ELÉCTRICO", "fac-002", "456789"} {
		found, err := items.Search(ctx, q, "", 10, 0)
		require.NoError(t, err)
		assert.Len(t, found, 1, q)
	}

	found, err := items.Search(ctx, "taladro", "otra-bodega", 10, 0)
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestCreate_CodigoDeBarrasDuplicado(t *testing.T) {
	s, _, it := seedStore(t)
	dup := *it
	dup.ID = "i2"
	assert.ErrorIs(t, s.Repos().Items.Create(context.Background(), &dup), domain.ErrDuplicate)
}

func TestItemsDevueltosSonCopias(t *testing.T) {
	s, _, it := seedStore(t)
	ctx := context.Background()
	got, _ := s.Repos().Items.GetByID(ctx, it.ID)
	got.Stock = 1000

	again, _ := s.Repos().Items.GetByID(ctx, it.ID)
	assert.Equal(t, 8, again.Stock)
}

func TestHistory_FiltrosYOrden(t *testing.T) {
	s, _, _ := seedStore(t)
	ctx := context.Background()
	h := s.Repos().History
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, h.Append(ctx, &entity.HistoryRecord{ID: "a", ActionType: entity.ActionAddition, WarehouseID: "w1", ActionDate: base}))
	require.NoError(t, h.Append(ctx, &entity.HistoryRecord{ID: "b", ActionType: entity.ActionWithdrawal, WarehouseID: "w1", ActionDate: base.Add(time.Hour)}))
	require.NoError(t, h.Append(ctx, &entity.HistoryRecord{ID: "c", ActionType: entity.ActionWithdrawal, WarehouseID: "w2", ActionDate: base}))

	all, err := h.ListByWarehouse(ctx, "w1", repository.HistoryFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "b", all[0].ID)

	only, err := h.ListByWarehouse(ctx, "w1", repository.HistoryFilter{ActionType: entity.ActionAddition})
	require.NoError(t, err)
	require.Len(t, only, 1)
	assert.Equal(t, "a", only[0].ID)

	from := base.Add(30 * time.Minute)
	ranged, err := h.ListByWarehouse(ctx, "w1", repository.HistoryFilter{From: &from})
	require.NoError(t, err)
	require.Len(t, ranged, 1)
	assert.Equal(t, "b", ranged[0].ID)
}
