package withdrawal_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jhoicas/inventario-bodegas/internal/application/history"
	"github.com/jhoicas/inventario-bodegas/internal/application/withdrawal"
	"github.com/jhoicas/inventario-bodegas/internal/domain"
	"github.com/jhoicas/inventario-bodegas/internal/domain/entity"
	"github.com/jhoicas/inventario-bodegas/internal/domain/repository"
	"github.com/jhoicas/inventario-bodegas/internal/infrastructure/memory"
	"github.com/jhoicas/inventario-bodegas/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── Helpers ──────────────────────────────────────────────────────────────────

type env struct {
	store  *memory.Store
	uc     *withdrawal.UseCase
	w1, w2 *entity.Warehouse
	user   *entity.User
	itemA  *entity.Item // W1, stock 25
	itemC  *entity.Item // W1, stock 10
	itemB  *entity.Item // W2, stock 8
}

func newEnv(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	repos := store.Repos()

	e := &env{
		store: store,
		w1:    &entity.Warehouse{ID: "w1", Name: "Bodega Principal", Code: "BP001", IsActive: true},
		w2:    &entity.Warehouse{ID: "w2", Name: "Bodega Secundaria", Code: "BS002", IsActive: true},
		user:  &entity.User{ID: "u1", Username: "Operador_Juan", FullName: "Juan Pérez", Role: entity.RoleOperador, IsActive: true},
		itemA: &entity.Item{ID: "a", Name: "Martillo", Barcode: "7501234567890", Stock: 25, Obra: "Construcción Casa A", NFactura: "FAC-001", WarehouseID: "w1"},
		itemC: &entity.Item{ID: "c", Name: "Cinta Métrica", Barcode: "7501234567896", Stock: 10, NFactura: "FAC-001", WarehouseID: "w1"},
		itemB: &entity.Item{ID: "b", Name: "Taladro Eléctrico", Barcode: "7501234567892", Stock: 8, NFactura: "FAC-002", WarehouseID: "w2"},
	}
	require.NoError(t, repos.Warehouses.Create(ctx, e.w1))
	require.NoError(t, repos.Warehouses.Create(ctx, e.w2))
	require.NoError(t, repos.Users.Create(ctx, e.user))
	for _, it := range []*entity.Item{e.itemA, e.itemB, e.itemC} {
		require.NoError(t, repos.Items.Create(ctx, it))
	}
	e.uc = newUseCase(store, store)
	return e
}

func newUseCase(store *memory.Store, runner withdrawal.TxRunner) *withdrawal.UseCase {
	repos := store.Repos()
	return withdrawal.NewUseCase(runner, repos.Warehouses, repos.Users, repos.Withdrawals, history.NewRecorder(), logger.Nop())
}

func (e *env) stock(t *testing.T, id string) int {
	t.Helper()
	it, err := e.store.Repos().Items.GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, it)
	return it.Stock
}

func (e *env) history(t *testing.T, warehouseID string) []*entity.HistoryRecord {
	t.Helper()
	list, err := e.store.Repos().History.ListByWarehouse(context.Background(), warehouseID, repository.HistoryFilter{})
	require.NoError(t, err)
	return list
}

func (e *env) withdrawals(t *testing.T, warehouseID string) []*entity.Withdrawal {
	t.Helper()
	list, err := e.store.Repos().Withdrawals.ListByWarehouse(context.Background(), warehouseID, 100, 0)
	require.NoError(t, err)
	return list
}

func submit(warehouseID string, lines ...withdrawal.LineInput) withdrawal.SubmitInput {
	return withdrawal.SubmitInput{WarehouseID: warehouseID, Obra: "Casa A", UserID: "u1", Lines: lines}
}

func line(itemID string, qty int) withdrawal.LineInput {
	return withdrawal.LineInput{ItemID: itemID, Quantity: qty}
}

// ── Casos ────────────────────────────────────────────────────────────────────

func TestSubmit_RetiroSimpleDescuentaYRegistraHistorial(t *testing.T) {
	e := newEnv(t)

	w, err := e.uc.Submit(context.Background(), submit("w1", line("a", 5)))
	require.NoError(t, err)

	assert.Equal(t, 20, e.stock(t, "a"))
	require.Len(t, w.Lines, 1)
	assert.Equal(t, "Martillo", w.Lines[0].ItemName)
	assert.Equal(t, 5, w.Lines[0].Quantity)
	assert.Equal(t, "Casa A", w.Obra)
	assert.False(t, w.WithdrawalDate.IsZero())
	assert.Equal(t, time.UTC, w.WithdrawalDate.Location())

	hist := e.history(t, "w1")
	require.Len(t, hist, 1)
	assert.Equal(t, entity.ActionWithdrawal, hist[0].ActionType)
	assert.Equal(t, 5, hist[0].Quantity)
	assert.Equal(t, "Martillo", hist[0].ItemName)
	assert.Equal(t, "Casa A", hist[0].Obra)
	assert.Equal(t, "FAC-001", hist[0].NFactura)
	assert.Equal(t, "Bodega Principal", hist[0].WarehouseName)
	assert.Equal(t, "Juan Pérez", hist[0].UserName)
	assert.Equal(t, "Retiro para obra: Casa A", hist[0].Notes)
}

func TestSubmit_StockInsuficienteNoModificaNada(t *testing.T) {
	e := newEnv(t)
	_, err := e.uc.Submit(context.Background(), submit("w1", line("a", 5)))
	require.NoError(t, err)

	_, err = e.uc.Submit(context.Background(), submit("w1", line("a", 25)))
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	var insufficient *domain.InsufficientStockError
	require.True(t, errors.As(err, &insufficient))
	assert.Equal(t, "Martillo", insufficient.ItemName)
	assert.Equal(t, 20, insufficient.Available)
	assert.Equal(t, 25, insufficient.Requested)

	assert.Equal(t, 20, e.stock(t, "a"))
	assert.Len(t, e.history(t, "w1"), 1)
	assert.Len(t, e.withdrawals(t, "w1"), 1)
}

func TestSubmit_ItemDeOtraBodega(t *testing.T) {
	e := newEnv(t)

	_, err := e.uc.Submit(context.Background(), submit("w1", line("b", 1)))
	require.ErrorIs(t, err, domain.ErrItemWarehouseMismatch)

	var mismatch *domain.ItemWarehouseMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, "Taladro Eléctrico", mismatch.ItemName)
	assert.Equal(t, "Bodega Principal", mismatch.WarehouseName)

	assert.Equal(t, 8, e.stock(t, "b"))
	assert.Empty(t, e.history(t, "w1"))
	assert.Empty(t, e.history(t, "w2"))
}

func TestSubmit_SegundaLineaInvalidaRevierteLaPrimera(t *testing.T) {
	e := newEnv(t)

	_, err := e.uc.Submit(context.Background(), submit("w1", line("a", 3), line("b", 1)))
	require.ErrorIs(t, err, domain.ErrItemWarehouseMismatch)

	assert.Equal(t, 25, e.stock(t, "a"))
	assert.Empty(t, e.history(t, "w1"))
	assert.Empty(t, e.withdrawals(t, "w1"))
}

func TestSubmit_VariasLineasCreaUnHistorialPorLinea(t *testing.T) {
	e := newEnv(t)

	w, err := e.uc.Submit(context.Background(), withdrawal.SubmitInput{
		WarehouseID: "w1", Obra: "Casa B", Notes: "Entrega a cuadrilla 2", UserID: "u1",
		Lines: []withdrawal.LineInput{line("a", 2), line("c", 4)},
	})
	require.NoError(t, err)
	assert.Equal(t, 6, w.TotalUnits())
	assert.Equal(t, 23, e.stock(t, "a"))
	assert.Equal(t, 6, e.stock(t, "c"))

	hist := e.history(t, "w1")
	require.Len(t, hist, 2)
	for _, h := range hist {
		assert.Equal(t, "Entrega a cuadrilla 2", h.Notes)
		assert.Equal(t, "Casa B", h.Obra)
	}

	stored, err := e.uc.Get(context.Background(), w.ID)
	require.NoError(t, err)
	require.Len(t, stored.Lines, 2)
	assert.Equal(t, "Martillo", stored.Lines[0].ItemName)
	assert.Equal(t, "Cinta Métrica", stored.Lines[1].ItemName)
}

func TestSubmit_ItemRepetidoSeValidaContraSaldoAcumulado(t *testing.T) {
	e := newEnv(t)

	// 6 + 5 > 10: la segunda línea ve solo 4 disponibles.
	_, err := e.uc.Submit(context.Background(), submit("w1", line("c", 6), line("c", 5)))
	var insufficient *domain.InsufficientStockError
	require.True(t, errors.As(err, &insufficient))
	assert.Equal(t, 4, insufficient.Available)
	assert.Equal(t, 5, insufficient.Requested)
	assert.Equal(t, 10, e.stock(t, "c"))

	w, err := e.uc.Submit(context.Background(), submit("w1", line("c", 6), line("c", 4)))
	require.NoError(t, err)
	assert.Len(t, w.Lines, 2)
	assert.Equal(t, 0, e.stock(t, "c"))
	assert.Len(t, e.history(t, "w1"), 2)
}

func TestSubmit_OrdenDeValidacion(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	tests := []struct {
		name string
		in   withdrawal.SubmitInput
		want error
	}{
		{"bodega inexistente gana sobre líneas vacías", withdrawal.SubmitInput{WarehouseID: "nope", Obra: "X", UserID: "u1"}, domain.ErrWarehouseNotFound},
		{"sin líneas", withdrawal.SubmitInput{WarehouseID: "w1", Obra: "X", UserID: "u1"}, domain.ErrEmptyWithdrawal},
		{"obra vacía", withdrawal.SubmitInput{WarehouseID: "w1", Obra: "  ", UserID: "u1", Lines: []withdrawal.LineInput{line("a", 1)}}, domain.ErrInvalidInput},
		{"usuario inexistente", withdrawal.SubmitInput{WarehouseID: "w1", Obra: "X", UserID: "zz", Lines: []withdrawal.LineInput{line("a", 1)}}, domain.ErrUserNotFound},
		{"ítem inexistente", submit("w1", line("zz", 1)), domain.ErrItemNotFound},
		{"ítem inexistente antes que cantidad inválida de la línea siguiente", submit("w1", line("zz", 1), line("a", 0)), domain.ErrItemNotFound},
		{"pertenencia antes que cantidad", submit("w1", line("b", 100)), domain.ErrItemWarehouseMismatch},
		{"cantidad cero", submit("w1", line("a", 0)), domain.ErrInvalidQuantity},
		{"cantidad negativa", submit("w1", line("a", -2)), domain.ErrInvalidQuantity},
		{"primera línea insuficiente antes que segunda inexistente", submit("w1", line("a", 99), line("zz", 1)), domain.ErrInsufficientStock},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.uc.Submit(ctx, tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Equal(t, 25, e.stock(t, "a"))
	assert.Empty(t, e.history(t, "w1"))
}

func TestSubmit_NoEsIdempotente(t *testing.T) {
	e := newEnv(t)
	in := submit("w1", line("a", 5))

	first, err := e.uc.Submit(context.Background(), in)
	require.NoError(t, err)
	second, err := e.uc.Submit(context.Background(), in)
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, 15, e.stock(t, "a"))
	assert.Len(t, e.withdrawals(t, "w1"), 2)
}

// failingHistory simula una caída de almacenamiento al escribir el historial.
type failingHistory struct{ repository.HistoryRepository }

func (failingHistory) Append(context.Context, *entity.HistoryRecord) error {
	return errors.New("connection reset by peer")
}

// failOnHistory ejecuta sobre el store real pero con el historial roto.
type failOnHistory struct{ store *memory.Store }

func (f failOnHistory) Run(ctx context.Context, fn func(repository.TxRepos) error) error {
	return f.store.Run(ctx, func(repos repository.TxRepos) error {
		repos.History = failingHistory{repos.History}
		return fn(repos)
	})
}

func TestSubmit_FallaDeAlmacenamientoRevierteTodo(t *testing.T) {
	e := newEnv(t)
	uc := newUseCase(e.store, failOnHistory{store: e.store})

	_, err := uc.Submit(context.Background(), submit("w1", line("a", 5), line("c", 1)))
	require.ErrorIs(t, err, domain.ErrStorage)

	var storageErr *domain.StorageError
	require.True(t, errors.As(err, &storageErr))

	assert.Equal(t, 25, e.stock(t, "a"))
	assert.Equal(t, 10, e.stock(t, "c"))
	assert.Empty(t, e.withdrawals(t, "w1"))
	assert.Empty(t, e.history(t, "w1"))
}

type recordingInvalidator struct {
	mu       sync.Mutex
	barcodes []string
}

func (r *recordingInvalidator) Invalidate(_ context.Context, barcodes ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.barcodes = append(r.barcodes, barcodes...)
	return errors.New("redis caído")
}

func TestSubmit_InvalidaCacheSinAfectarElResultado(t *testing.T) {
	e := newEnv(t)
	inv := &recordingInvalidator{}
	e.uc.SetCache(inv)

	_, err := e.uc.Submit(context.Background(), submit("w1", line("a", 1), line("c", 1)))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"7501234567890", "7501234567896"}, inv.barcodes)

	_, err = e.uc.Submit(context.Background(), submit("w1", line("a", 100)))
	require.Error(t, err)
	assert.Len(t, inv.barcodes, 2)
}

func TestSubmit_ConcurrentesNuncaDejanStockNegativo(t *testing.T) {
	e := newEnv(t)

	var wg sync.WaitGroup
	var mu sync.Mutex
	ok := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.uc.Submit(context.Background(), submit("w1", line("a", 3)))
			if err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, domain.ErrInsufficientStock)
		}()
	}
	wg.Wait()

	assert.Equal(t, 8, ok)
	assert.Equal(t, 1, e.stock(t, "a"))
	assert.Len(t, e.history(t, "w1"), 8)
}

// lockRecorder registra el orden en que el motor bloquea filas de ítems.
type lockRecorder struct {
	store *memory.Store
	mu    sync.Mutex
	order []string
}

func (r *lockRecorder) Run(ctx context.Context, fn func(repos repository.TxRepos) error) error {
	return r.store.Run(ctx, func(repos repository.TxRepos) error {
		repos.Items = &recordingItems{ItemRepository: repos.Items, rec: r}
		return fn(repos)
	})
}

type recordingItems struct {
	repository.ItemRepository
	rec *lockRecorder
}

func (i *recordingItems) GetByIDForUpdate(ctx context.Context, id string) (*entity.Item, error) {
	i.rec.mu.Lock()
	i.rec.order = append(i.rec.order, id)
	i.rec.mu.Unlock()
	return i.ItemRepository.GetByIDForUpdate(ctx, id)
}

func TestSubmit_BloqueaItemsEnOrdenDeID(t *testing.T) {
	e := newEnv(t)
	rec := &lockRecorder{store: e.store}
	uc := newUseCase(e.store, rec)

	_, err := uc.Submit(context.Background(), submit("w1", line("c", 2), line("a", 1), line("c", 1)))
	require.NoError(t, err)

	// Cada ítem se bloquea una sola vez y siempre en el mismo orden, sin importar el de las líneas.
	assert.Equal(t, []string{"a", "c"}, rec.order)
	assert.Equal(t, 24, e.stock(t, "a"))
	assert.Equal(t, 7, e.stock(t, "c"))
}

func TestSubmit_OrdenDeBloqueoNoCambiaElPrimerError(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	// "zz" se ordena después de "a" pero su línea va primero: gana el ítem inexistente.
	_, err := e.uc.Submit(ctx, submit("w1", line("zz", 1), line("a", 99)))
	assert.ErrorIs(t, err, domain.ErrItemNotFound)

	// "b" (otra bodega) se ordena antes de "c" pero su línea va después: gana el stock insuficiente de "c".
	_, err = e.uc.Submit(ctx, submit("w1", line("c", 50), line("b", 1)))
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	assert.Equal(t, 25, e.stock(t, "a"))
	assert.Equal(t, 10, e.stock(t, "c"))
}

func TestGet_RetiroInexistente(t *testing.T) {
	e := newEnv(t)
	_, err := e.uc.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListByWarehouse_BodegaInexistente(t *testing.T) {
	e := newEnv(t)
	_, err := e.uc.ListByWarehouse(context.Background(), "nope", 10, 0)
	assert.ErrorIs(t, err, domain.ErrWarehouseNotFound)
}
