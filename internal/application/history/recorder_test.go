package history_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jhoicas/inventario-bodegas/internal/application/history"
	"github.com/jhoicas/inventario-bodegas/internal/domain"
	"github.com/jhoicas/inventario-bodegas/internal/domain/entity"
	"github.com/jhoicas/inventario-bodegas/internal/domain/repository"
	"github.com/jhoicas/inventario-bodegas/internal/infrastructure/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	fixedNow = time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC)
	wh       = &entity.Warehouse{ID: "w1", Name: "Bodega Principal", Code: "BP001", IsActive: true}
	user     = &entity.User{ID: "u1", Username: "Operador_Maria", FullName: "María González"}
	item     = &entity.Item{ID: "i1", Name: "Tornillos", Stock: 180, Obra: "Construcción Casa A", NFactura: "FAC-001", WarehouseID: "w1"}
)

func TestRecord_DesnormalizaNombres(t *testing.T) {
	store := memory.NewStore()
	rec := history.NewRecorder().WithClock(func() time.Time { return fixedNow })

	got, err := rec.Record(context.Background(), store.Repos().History, history.RecordInput{
		ActionType: entity.ActionWithdrawal, Item: item, Quantity: 20, User: user, Warehouse: wh, Notes: "Retiro para obra: Casa A", Obra: "Casa A",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, got.ID)
	assert.Equal(t, "Tornillos", got.ItemName)
	assert.Equal(t, "Casa A", got.Obra)
	assert.Equal(t, "FAC-001", got.NFactura)
	assert.Equal(t, "w1", got.WarehouseID)
	assert.Equal(t, "Bodega Principal", got.WarehouseName)
	assert.Equal(t, "María González", got.UserName)
	assert.Equal(t, fixedNow, got.ActionDate)
}

func TestRecord_ObraPorDefectoDelItemYUsernameSinNombre(t *testing.T) {
	store := memory.NewStore()
	got, err := history.NewRecorder().Record(context.Background(), store.Repos().History, history.RecordInput{
		ActionType: entity.ActionAddition, Item: item, Quantity: 5,
		User: &entity.User{ID: "u2", Username: "Operador_Juan"}, Warehouse: wh,
	})
	require.NoError(t, err)
	assert.Equal(t, "Construcción Casa A", got.Obra)
	assert.Equal(t, "Operador_Juan", got.UserName)
}

func TestRecord_EntradaInvalida(t *testing.T) {
	repo := memory.NewStore().Repos().History
	r := history.NewRecorder()

	_, err := r.Record(context.Background(), repo, history.RecordInput{ActionType: "transfer", Item: item, User: user, Warehouse: wh})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = r.Record(context.Background(), repo, history.RecordInput{ActionType: entity.ActionAddition, Item: item, Warehouse: wh})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

type brokenRepo struct{ repository.HistoryRepository }

func (brokenRepo) Append(context.Context, *entity.HistoryRecord) error { return errors.New("disk full") }

func TestRecord_FallaDeAlmacenamiento(t *testing.T) {
	_, err := history.NewRecorder().Record(context.Background(), brokenRepo{}, history.RecordInput{
		ActionType: entity.ActionAddition, Item: item, Quantity: 1, User: user, Warehouse: wh,
	})
	assert.ErrorIs(t, err, domain.ErrStorage)
}

func TestQuery_ListByWarehouse(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	repos := store.Repos()
	require.NoError(t, repos.Warehouses.Create(ctx, wh))

	clock := fixedNow
	rec := history.NewRecorder().WithClock(func() time.Time { clock = clock.Add(time.Minute); return clock })
	for _, action := range []string{entity.ActionAddition, entity.ActionWithdrawal, entity.ActionWithdrawal} {
		_, err := rec.Record(ctx, repos.History, history.RecordInput{ActionType: action, Item: item, Quantity: 1, User: user, Warehouse: wh})
		require.NoError(t, err)
	}

	q := history.NewQueryUseCase(repos.History, repos.Warehouses)

	all, err := q.ListByWarehouse(ctx, "w1", repository.HistoryFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.True(t, all[0].ActionDate.After(all[2].ActionDate))

	only, err := q.ListByWarehouse(ctx, "w1", repository.HistoryFilter{ActionType: entity.ActionWithdrawal})
	require.NoError(t, err)
	assert.Len(t, only, 2)

	_, err = q.ListByWarehouse(ctx, "w1", repository.HistoryFilter{ActionType: "borrado"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	from, to := fixedNow.Add(time.Hour), fixedNow
	_, err = q.ListByWarehouse(ctx, "w1", repository.HistoryFilter{From: &from, To: &to})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = q.ListByWarehouse(ctx, "nope", repository.HistoryFilter{})
	assert.ErrorIs(t, err, domain.ErrWarehouseNotFound)
}
