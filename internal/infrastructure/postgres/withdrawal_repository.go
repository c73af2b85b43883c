package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/inventario-bodegas/internal/domain/entity"
	"github.com/jhoicas/inventario-bodegas/internal/domain/repository"
)

var _ repository.WithdrawalRepository = (*WithdrawalRepo)(nil)

// WithdrawalRepo persiste retiros y sus líneas (withdrawal_items).
type WithdrawalRepo struct {
	q Querier
}

// NewWithdrawalRepository construye el adaptador. Pasar pool o tx.
func NewWithdrawalRepository(q Querier) *WithdrawalRepo {
	return &WithdrawalRepo{q: q}
}

// Create inserta la cabecera del retiro.
func (r *WithdrawalRepo) Create(ctx context.Context, w *entity.Withdrawal) error {
	query := `
		INSERT INTO withdrawals (id, obra, notes, warehouse_id, user_id, withdrawal_date)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(ctx, query, w.ID, w.Obra, w.Notes, w.WarehouseID, w.UserID, w.WithdrawalDate)
	if err != nil {
		return wrapWrite("insert withdrawal", err)
	}
	return nil
}

// AddLine inserta una línea conservando el orden de llegada.
func (r *WithdrawalRepo) AddLine(ctx context.Context, l *entity.WithdrawalLine) error {
	query := `
		INSERT INTO withdrawal_items (id, withdrawal_id, item_id, quantity, position)
		VALUES ($1, $2, $3, $4,
			(SELECT COUNT(*) FROM withdrawal_items WHERE withdrawal_id = $2))`
	if _, err := r.q.Exec(ctx, query, l.ID, l.WithdrawalID, l.ItemID, l.Quantity); err != nil {
		return wrapWrite("insert withdrawal item", err)
	}
	return nil
}

// GetByID devuelve el retiro con sus líneas o (nil, nil).
func (r *WithdrawalRepo) GetByID(ctx context.Context, id string) (*entity.Withdrawal, error) {
	if !validUUID(id) {
		return nil, nil
	}
	var w entity.Withdrawal
	err := r.q.QueryRow(ctx, `
		SELECT id, obra, notes, warehouse_id, user_id, withdrawal_date
		FROM withdrawals WHERE id = $1`, id).Scan(
		&w.ID, &w.Obra, &w.Notes, &w.WarehouseID, &w.UserID, &w.WithdrawalDate,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get withdrawal: %w", err)
	}
	list := []*entity.Withdrawal{&w}
	if err := r.attachLines(ctx, list); err != nil {
		return nil, err
	}
	return &w, nil
}

// ListByWarehouse lista retiros de una bodega, más recientes primero, con sus líneas.
func (r *WithdrawalRepo) ListByWarehouse(ctx context.Context, warehouseID string, limit, offset int) ([]*entity.Withdrawal, error) {
	if !validUUID(warehouseID) {
		return nil, nil
	}
	rows, err := r.q.Query(ctx, `
		SELECT id, obra, notes, warehouse_id, user_id, withdrawal_date
		FROM withdrawals WHERE warehouse_id = $1
		ORDER BY withdrawal_date DESC
		LIMIT $2 OFFSET $3`, warehouseID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list withdrawals: %w", err)
	}
	var list []*entity.Withdrawal
	for rows.Next() {
		var w entity.Withdrawal
		if err := rows.Scan(&w.ID, &w.Obra, &w.Notes, &w.WarehouseID, &w.UserID, &w.WithdrawalDate); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan withdrawal: %w", err)
		}
		list = append(list, &w)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list withdrawals: %w", err)
	}
	if err := r.attachLines(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// attachLines carga en una sola consulta las líneas de todos los retiros dados.
func (r *WithdrawalRepo) attachLines(ctx context.Context, list []*entity.Withdrawal) error {
	if len(list) == 0 {
		return nil
	}
	byID := make(map[string]*entity.Withdrawal, len(list))
	ids := make([]string, 0, len(list))
	for _, w := range list {
		byID[w.ID] = w
		ids = append(ids, w.ID)
	}
	rows, err := r.q.Query(ctx, `
		SELECT wi.id, wi.withdrawal_id, wi.item_id, i.name, i.barcode, i.n_factura, wi.quantity
		FROM withdrawal_items wi
		JOIN items i ON i.id = wi.item_id
		WHERE wi.withdrawal_id::text = ANY($1)
		ORDER BY wi.withdrawal_id, wi.position`, ids)
	if err != nil {
		return fmt.Errorf("list withdrawal items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var l entity.WithdrawalLine
		if err := rows.Scan(&l.ID, &l.WithdrawalID, &l.ItemID, &l.ItemName, &l.Barcode, &l.NFactura, &l.Quantity); err != nil {
			return fmt.Errorf("scan withdrawal item: %w", err)
		}
		if w, ok := byID[l.WithdrawalID]; ok {
			w.Lines = append(w.Lines, l)
		}
	}
	return rows.Err()
}
