// Package memory implementa los puertos de persistencia en memoria, para desarrollo local y tests.
// Las transacciones se simulan tomando el lock global y restaurando un snapshot si fn falla.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/inventario-bodegas/internal/application/inventory"
	"github.com/jhoicas/inventario-bodegas/internal/application/withdrawal"
	"github.com/jhoicas/inventario-bodegas/internal/domain/entity"
	"github.com/jhoicas/inventario-bodegas/internal/domain/repository"
)

var (
	_ withdrawal.TxRunner = (*Store)(nil)
	_ inventory.TxRunner  = (*Store)(nil)
)

// Store guarda todo el estado en mapas protegidos por un único RWMutex.
type Store struct {
	mu sync.RWMutex
	state
}

type state struct {
	warehouses  map[string]entity.Warehouse
	items       map[string]entity.Item
	users       map[string]entity.User
	withdrawals map[string]entity.Withdrawal // sin líneas
	lines       []entity.WithdrawalLine      // orden de inserción
	history     []entity.HistoryRecord       // append-only
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{state: state{
		warehouses:  make(map[string]entity.Warehouse),
		items:       make(map[string]entity.Item),
		users:       make(map[string]entity.User),
		withdrawals: make(map[string]entity.Withdrawal),
	}}
}

// Repos devuelve los repositorios fuera de transacción (cada operación toma el lock).
func (s *Store) Repos() repository.TxRepos {
	return s.view(false)
}

// Run ejecuta fn con el lock exclusivo tomado: las transacciones quedan serializadas,
// lo que equivale a bloquear todas las filas que fn lea. Si fn falla se restaura el snapshot.
func (s *Store) Run(ctx context.Context, fn func(repos repository.TxRepos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot()
	if err := fn(s.view(true)); err != nil {
		s.state = snap
		return err
	}
	return nil
}

func (s *Store) view(inTx bool) repository.TxRepos {
	v := &view{s: s, inTx: inTx}
	return repository.TxRepos{
		Items:       &itemRepo{v},
		Warehouses:  &warehouseRepo{v},
		Withdrawals: &withdrawalRepo{v},
		History:     &historyRepo{v},
		Users:       &userRepo{v},
	}
}

func (s *Store) snapshot() state {
	cp := state{
		warehouses:  make(map[string]entity.Warehouse, len(s.warehouses)),
		items:       make(map[string]entity.Item, len(s.items)),
		users:       make(map[string]entity.User, len(s.users)),
		withdrawals: make(map[string]entity.Withdrawal, len(s.withdrawals)),
		lines:       append([]entity.WithdrawalLine(nil), s.lines...),
		history:     append([]entity.HistoryRecord(nil), s.history...),
	}
	for k, v := range s.warehouses {
		cp.warehouses[k] = v
	}
	for k, v := range s.items {
		cp.items[k] = v
	}
	for k, v := range s.users {
		cp.users[k] = v
	}
	for k, v := range s.withdrawals {
		cp.withdrawals[k] = v
	}
	return cp
}

// view comparte el estado del Store; dentro de Run el lock ya está tomado.
type view struct {
	s    *Store
	inTx bool
}

func (v *view) read() func() {
	if v.inTx {
		return func() {}
	}
	v.s.mu.RLock()
	return v.s.mu.RUnlock
}

func (v *view) write() func() {
	if v.inTx {
		return func() {}
	}
	v.s.mu.Lock()
	return v.s.mu.Unlock
}

// page recorta una lista ya ordenada a limit/offset.
func page[T any](list []T, limit, offset int) []T {
	if offset >= len(list) {
		return nil
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}
