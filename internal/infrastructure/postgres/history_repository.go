package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/inventario-bodegas/internal/domain/entity"
	"github.com/jhoicas/inventario-bodegas/internal/domain/repository"
)

var _ repository.HistoryRepository = (*HistoryRepo)(nil)

// HistoryRepo es append-only sobre la tabla history.
type HistoryRepo struct {
	q Querier
}

// NewHistoryRepository construye el adaptador. Pasar pool o tx.
func NewHistoryRepository(q Querier) *HistoryRepo {
	return &HistoryRepo{q: q}
}

// Append inserta una entrada de auditoría.
func (r *HistoryRepo) Append(ctx context.Context, h *entity.HistoryRecord) error {
	query := `
		INSERT INTO history (id, action_type, item_name, quantity, obra, n_factura,
			warehouse_id, warehouse_name, user_name, notes, action_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		h.ID, h.ActionType, h.ItemName, h.Quantity, h.Obra, h.NFactura,
		h.WarehouseID, h.WarehouseName, h.UserName, h.Notes, h.ActionDate,
	)
	if err != nil {
		return fmt.Errorf("insert history: %w", err)
	}
	return nil
}

// ListByWarehouse lista el historial de una bodega, más reciente primero, con filtros opcionales.
func (r *HistoryRepo) ListByWarehouse(ctx context.Context, warehouseID string, f repository.HistoryFilter) ([]*entity.HistoryRecord, error) {
	if !validUUID(warehouseID) {
		return nil, nil
	}
	conds := []string{"warehouse_id = $1"}
	args := []any{warehouseID}
	if f.ActionType != "" {
		args = append(args, f.ActionType)
		conds = append(conds, fmt.Sprintf("action_type = $%d", len(args)))
	}
	if f.From != nil {
		args = append(args, *f.From)
		conds = append(conds, fmt.Sprintf("action_date >= $%d", len(args)))
	}
	if f.To != nil {
		args = append(args, *f.To)
		conds = append(conds, fmt.Sprintf("action_date <= $%d", len(args)))
	}
	args = append(args, f.Limit, f.Offset)
	query := fmt.Sprintf(`
		SELECT id, action_type, item_name, quantity, obra, n_factura,
			warehouse_id, warehouse_name, user_name, notes, action_date
		FROM history
		WHERE %s
		ORDER BY action_date DESC, id
		LIMIT $%d OFFSET $%d`, strings.Join(conds, " AND "), len(args)-1, len(args))

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()
	var list []*entity.HistoryRecord
	for rows.Next() {
		var h entity.HistoryRecord
		if err := rows.Scan(
			&h.ID, &h.ActionType, &h.ItemName, &h.Quantity, &h.Obra, &h.NFactura,
			&h.WarehouseID, &h.WarehouseName, &h.UserName, &h.Notes, &h.ActionDate,
		); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		list = append(list, &h)
	}
	return list, rows.Err()
}
