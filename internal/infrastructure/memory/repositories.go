package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/jhoicas/inventario-bodegas/internal/domain"
	"github.com/jhoicas/inventario-bodegas/internal/domain/entity"
	"github.com/jhoicas/inventario-bodegas/internal/domain/repository"
	"golang.org/x/text/cases"
)

var (
	_ repository.WarehouseRepository  = (*warehouseRepo)(nil)
	_ repository.ItemRepository       = (*itemRepo)(nil)
	_ repository.WithdrawalRepository = (*withdrawalRepo)(nil)
	_ repository.HistoryRepository    = (*historyRepo)(nil)
	_ repository.UserRepository       = (*userRepo)(nil)
)

// ── Bodegas ──────────────────────────────────────────────────────────────────

type warehouseRepo struct{ v *view }

func (r *warehouseRepo) Create(_ context.Context, w *entity.Warehouse) error {
	defer r.v.write()()
	for _, existing := range r.v.s.warehouses {
		if existing.Code == w.Code {
			return domain.ErrDuplicate
		}
	}
	if _, ok := r.v.s.warehouses[w.ID]; ok {
		return domain.ErrDuplicate
	}
	r.v.s.warehouses[w.ID] = *w
	return nil
}

func (r *warehouseRepo) GetByID(_ context.Context, id string) (*entity.Warehouse, error) {
	defer r.v.read()()
	w, ok := r.v.s.warehouses[id]
	if !ok {
		return nil, nil
	}
	return &w, nil
}

func (r *warehouseRepo) GetByCode(_ context.Context, code string) (*entity.Warehouse, error) {
	defer r.v.read()()
	for _, w := range r.v.s.warehouses {
		if w.Code == code {
			return &w, nil
		}
	}
	return nil, nil
}

func (r *warehouseRepo) List(_ context.Context, activeOnly bool, limit, offset int) ([]*entity.Warehouse, error) {
	defer r.v.read()()
	var list []*entity.Warehouse
	for _, w := range r.v.s.warehouses {
		if activeOnly && !w.IsActive {
			continue
		}
		list = append(list, &w)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return page(list, limit, offset), nil
}

func (r *warehouseRepo) SetActive(_ context.Context, id string, active bool) error {
	defer r.v.write()()
	w, ok := r.v.s.warehouses[id]
	if !ok {
		return domain.WarehouseNotFound(id)
	}
	w.IsActive = active
	w.UpdatedAt = time.Now().UTC()
	r.v.s.warehouses[id] = w
	return nil
}

// ── Ítems ────────────────────────────────────────────────────────────────────

type itemRepo struct{ v *view }

func (r *itemRepo) Create(_ context.Context, it *entity.Item) error {
	defer r.v.write()()
	if _, ok := r.v.s.items[it.ID]; ok {
		return domain.ErrDuplicate
	}
	for _, existing := range r.v.s.items {
		if existing.Barcode == it.Barcode {
			return domain.ErrDuplicate
		}
	}
	if it.Stock < 0 {
		return domain.ErrInvalidQuantity
	}
	r.v.s.items[it.ID] = copyItem(*it)
	return nil
}

func (r *itemRepo) GetByID(_ context.Context, id string) (*entity.Item, error) {
	defer r.v.read()()
	return r.get(id), nil
}

// GetByIDForUpdate: dentro de Run el lock exclusivo ya protege la fila.
func (r *itemRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.Item, error) {
	return r.GetByID(ctx, id)
}

func (r *itemRepo) get(id string) *entity.Item {
	it, ok := r.v.s.items[id]
	if !ok {
		return nil
	}
	cp := copyItem(it)
	return &cp
}

func (r *itemRepo) GetByBarcode(_ context.Context, barcode string) (*entity.Item, error) {
	defer r.v.read()()
	for _, it := range r.v.s.items {
		if it.Barcode == barcode {
			cp := copyItem(it)
			return &cp, nil
		}
	}
	return nil, nil
}

// Search compara con case folding Unicode, equivalente a ILIKE '%q%'.
func (r *itemRepo) Search(_ context.Context, query, warehouseID string, limit, offset int) ([]*entity.Item, error) {
	defer r.v.read()()
	fold := cases.Fold()
	q := fold.String(query)
	return r.filter(func(it entity.Item) bool {
		if warehouseID != "" && it.WarehouseID != warehouseID {
			return false
		}
		return strings.Contains(fold.String(it.Name), q) ||
			strings.Contains(fold.String(it.NFactura), q) ||
			strings.Contains(fold.String(it.Barcode), q)
	}, limit, offset), nil
}

func (r *itemRepo) ListByWarehouse(_ context.Context, warehouseID string, limit, offset int) ([]*entity.Item, error) {
	defer r.v.read()()
	return r.filter(func(it entity.Item) bool { return it.WarehouseID == warehouseID }, limit, offset), nil
}

func (r *itemRepo) ListByObra(_ context.Context, obra, warehouseID string) ([]*entity.Item, error) {
	defer r.v.read()()
	return r.filter(func(it entity.Item) bool {
		return it.Obra == obra && it.WarehouseID == warehouseID
	}, 0, 0), nil
}

func (r *itemRepo) filter(keep func(entity.Item) bool, limit, offset int) []*entity.Item {
	var list []*entity.Item
	for _, it := range r.v.s.items {
		if keep(it) {
			cp := copyItem(it)
			list = append(list, &cp)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Name != list[j].Name {
			return list[i].Name < list[j].Name
		}
		return list[i].ID < list[j].ID
	})
	return page(list, limit, offset)
}

func (r *itemRepo) DecrementStock(_ context.Context, id string, amount int) (int, error) {
	defer r.v.write()()
	it, ok := r.v.s.items[id]
	if !ok {
		return 0, domain.ItemNotFound(id)
	}
	if it.Stock < amount {
		return 0, &domain.InsufficientStockError{ItemID: it.ID, ItemName: it.Name, Available: it.Stock, Requested: amount}
	}
	it.Stock -= amount
	it.UpdatedAt = time.Now().UTC()
	r.v.s.items[id] = it
	return it.Stock, nil
}

func (r *itemRepo) IncrementStock(_ context.Context, id string, amount int) (int, error) {
	defer r.v.write()()
	it, ok := r.v.s.items[id]
	if !ok {
		return 0, domain.ItemNotFound(id)
	}
	it.Stock += amount
	it.UpdatedAt = time.Now().UTC()
	r.v.s.items[id] = it
	return it.Stock, nil
}

func (r *itemRepo) SetStock(_ context.Context, id string, stock int) error {
	defer r.v.write()()
	it, ok := r.v.s.items[id]
	if !ok {
		return domain.ItemNotFound(id)
	}
	if stock < 0 {
		return domain.ErrInvalidQuantity
	}
	it.Stock = stock
	it.UpdatedAt = time.Now().UTC()
	r.v.s.items[id] = it
	return nil
}

// copyItem evita que el caller comparta el precio con el estado interno.
func copyItem(it entity.Item) entity.Item {
	if it.UnitPrice != nil {
		p := *it.UnitPrice
		it.UnitPrice = &p
	}
	return it
}

// ── Retiros ──────────────────────────────────────────────────────────────────

type withdrawalRepo struct{ v *view }

func (r *withdrawalRepo) Create(_ context.Context, w *entity.Withdrawal) error {
	defer r.v.write()()
	if _, ok := r.v.s.withdrawals[w.ID]; ok {
		return domain.ErrDuplicate
	}
	header := *w
	header.Lines = nil
	r.v.s.withdrawals[w.ID] = header
	return nil
}

func (r *withdrawalRepo) AddLine(_ context.Context, l *entity.WithdrawalLine) error {
	defer r.v.write()()
	if _, ok := r.v.s.withdrawals[l.WithdrawalID]; !ok {
		return &domain.NotFoundError{Kind: domain.ErrNotFound, ID: l.WithdrawalID}
	}
	if _, ok := r.v.s.items[l.ItemID]; !ok {
		return domain.ItemNotFound(l.ItemID)
	}
	line := *l
	line.ItemName, line.Barcode, line.NFactura = "", "", ""
	r.v.s.lines = append(r.v.s.lines, line)
	return nil
}

func (r *withdrawalRepo) GetByID(_ context.Context, id string) (*entity.Withdrawal, error) {
	defer r.v.read()()
	w, ok := r.v.s.withdrawals[id]
	if !ok {
		return nil, nil
	}
	r.attachLines(&w)
	return &w, nil
}

func (r *withdrawalRepo) ListByWarehouse(_ context.Context, warehouseID string, limit, offset int) ([]*entity.Withdrawal, error) {
	defer r.v.read()()
	var list []*entity.Withdrawal
	for _, w := range r.v.s.withdrawals {
		if w.WarehouseID != warehouseID {
			continue
		}
		r.attachLines(&w)
		list = append(list, &w)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].WithdrawalDate.After(list[j].WithdrawalDate) })
	return page(list, limit, offset), nil
}

// attachLines resuelve nombre, código y factura desde el ítem actual, como el JOIN en SQL.
func (r *withdrawalRepo) attachLines(w *entity.Withdrawal) {
	w.Lines = nil
	for _, l := range r.v.s.lines {
		if l.WithdrawalID != w.ID {
			continue
		}
		if it, ok := r.v.s.items[l.ItemID]; ok {
			l.ItemName, l.Barcode, l.NFactura = it.Name, it.Barcode, it.NFactura
		}
		w.Lines = append(w.Lines, l)
	}
}

// ── Historial ────────────────────────────────────────────────────────────────

type historyRepo struct{ v *view }

func (r *historyRepo) Append(_ context.Context, h *entity.HistoryRecord) error {
	defer r.v.write()()
	r.v.s.history = append(r.v.s.history, *h)
	return nil
}

func (r *historyRepo) ListByWarehouse(_ context.Context, warehouseID string, f repository.HistoryFilter) ([]*entity.HistoryRecord, error) {
	defer r.v.read()()
	var list []*entity.HistoryRecord
	// Recorrido inverso: más reciente primero, y a igual fecha el último insertado primero.
	for i := len(r.v.s.history) - 1; i >= 0; i-- {
		h := r.v.s.history[i]
		if h.WarehouseID != warehouseID {
			continue
		}
		if f.ActionType != "" && h.ActionType != f.ActionType {
			continue
		}
		if f.From != nil && h.ActionDate.Before(*f.From) {
			continue
		}
		if f.To != nil && h.ActionDate.After(*f.To) {
			continue
		}
		list = append(list, &h)
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].ActionDate.After(list[j].ActionDate) })
	return page(list, f.Limit, f.Offset), nil
}

// ── Usuarios ─────────────────────────────────────────────────────────────────

type userRepo struct{ v *view }

func (r *userRepo) Create(_ context.Context, u *entity.User) error {
	defer r.v.write()()
	for _, existing := range r.v.s.users {
		if existing.Username == u.Username {
			return domain.ErrDuplicate
		}
	}
	r.v.s.users[u.ID] = *u
	return nil
}

func (r *userRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	defer r.v.read()()
	u, ok := r.v.s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *userRepo) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	defer r.v.read()()
	for _, u := range r.v.s.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, nil
}
