package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/inventario-bodegas/internal/domain"
	"github.com/jhoicas/inventario-bodegas/internal/domain/entity"
	"github.com/jhoicas/inventario-bodegas/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.ItemRepository = (*ItemRepo)(nil)

const itemColumns = `id, name, description, barcode, stock, unit_price, obra, n_factura, warehouse_id, created_at, updated_at`

// ItemRepo implementación de ItemRepository sobre PostgreSQL (usable con pool o tx).
type ItemRepo struct {
	q Querier
}

// NewItemRepository construye el adaptador de ítems. Pasar pool o tx (Querier).
func NewItemRepository(q Querier) *ItemRepo {
	return &ItemRepo{q: q}
}

// Create persiste un ítem. Código de barras repetido -> ErrDuplicate.
func (r *ItemRepo) Create(ctx context.Context, it *entity.Item) error {
	query := `
		INSERT INTO items (id, name, description, barcode, stock, unit_price, obra, n_factura, warehouse_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		it.ID, it.Name, it.Description, it.Barcode, it.Stock, nullDecimal(it.UnitPrice),
		it.Obra, it.NFactura, it.WarehouseID, it.CreatedAt, it.UpdatedAt,
	)
	if err != nil {
		return wrapWrite("insert item", err)
	}
	return nil
}

// GetByID obtiene un ítem por ID.
func (r *ItemRepo) GetByID(ctx context.Context, id string) (*entity.Item, error) {
	if !validUUID(id) {
		return nil, nil
	}
	return r.getOne(ctx, `SELECT `+itemColumns+` FROM items WHERE id = $1`, id)
}

// GetByIDForUpdate obtiene el ítem y bloquea la fila para update (SELECT FOR UPDATE).
// Solo tiene efecto dentro de una transacción.
func (r *ItemRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.Item, error) {
	if !validUUID(id) {
		return nil, nil
	}
	return r.getOne(ctx, `SELECT `+itemColumns+` FROM items WHERE id = $1 FOR UPDATE`, id)
}

// GetByBarcode obtiene un ítem por código de barras exacto.
func (r *ItemRepo) GetByBarcode(ctx context.Context, barcode string) (*entity.Item, error) {
	return r.getOne(ctx, `SELECT `+itemColumns+` FROM items WHERE barcode = $1`, barcode)
}

func (r *ItemRepo) getOne(ctx context.Context, query, arg string) (*entity.Item, error) {
	it, err := scanItem(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get item: %w", err)
	}
	return it, nil
}

// Search busca por subcadena sin distinguir mayúsculas (ILIKE) en nombre, factura y código de barras.
func (r *ItemRepo) Search(ctx context.Context, query, warehouseID string, limit, offset int) ([]*entity.Item, error) {
	if warehouseID != "" && !validUUID(warehouseID) {
		return nil, nil
	}
	pattern := "%" + escapeLike(query) + "%"
	sql := `
		SELECT ` + itemColumns + `
		FROM items
		WHERE (name ILIKE $1 OR n_factura ILIKE $1 OR barcode ILIKE $1)
		  AND ($2 = '' OR warehouse_id::text = $2)
		ORDER BY name ASC
		LIMIT $3 OFFSET $4`
	return r.list(ctx, sql, pattern, warehouseID, limit, offset)
}

// ListByWarehouse lista los ítems de una bodega ordenados por nombre.
func (r *ItemRepo) ListByWarehouse(ctx context.Context, warehouseID string, limit, offset int) ([]*entity.Item, error) {
	if !validUUID(warehouseID) {
		return nil, nil
	}
	sql := `
		SELECT ` + itemColumns + `
		FROM items WHERE warehouse_id = $1
		ORDER BY name ASC LIMIT $2 OFFSET $3`
	return r.list(ctx, sql, warehouseID, limit, offset)
}

// ListByObra lista los ítems de una obra dentro de una bodega.
func (r *ItemRepo) ListByObra(ctx context.Context, obra, warehouseID string) ([]*entity.Item, error) {
	if !validUUID(warehouseID) {
		return nil, nil
	}
	sql := `
		SELECT ` + itemColumns + `
		FROM items WHERE obra = $1 AND warehouse_id = $2
		ORDER BY name ASC`
	return r.list(ctx, sql, obra, warehouseID)
}

func (r *ItemRepo) list(ctx context.Context, sql string, args ...any) ([]*entity.Item, error) {
	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()
	var list []*entity.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		list = append(list, it)
	}
	return list, rows.Err()
}

// DecrementStock resta amount de forma condicional: nunca deja stock negativo
// aunque el caller no haya bloqueado la fila.
func (r *ItemRepo) DecrementStock(ctx context.Context, id string, amount int) (int, error) {
	var stock int
	err := r.q.QueryRow(ctx, `
		UPDATE items SET stock = stock - $2, updated_at = now()
		WHERE id = $1 AND stock >= $2
		RETURNING stock`, id, amount).Scan(&stock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, r.decrementFailure(ctx, id, amount)
		}
		if isCheckViolation(err) {
			return 0, fmt.Errorf("decrement stock: %w", domain.ErrInsufficientStock)
		}
		return 0, fmt.Errorf("decrement stock: %w", err)
	}
	return stock, nil
}

// decrementFailure distingue ítem inexistente de stock insuficiente tras un UPDATE sin filas.
func (r *ItemRepo) decrementFailure(ctx context.Context, id string, amount int) error {
	it, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if it == nil {
		return domain.ItemNotFound(id)
	}
	return &domain.InsufficientStockError{ItemID: it.ID, ItemName: it.Name, Available: it.Stock, Requested: amount}
}

// IncrementStock suma amount y devuelve el stock resultante.
func (r *ItemRepo) IncrementStock(ctx context.Context, id string, amount int) (int, error) {
	var stock int
	err := r.q.QueryRow(ctx, `
		UPDATE items SET stock = stock + $2, updated_at = now()
		WHERE id = $1
		RETURNING stock`, id, amount).Scan(&stock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ItemNotFound(id)
		}
		if isOutOfRange(err) {
			return 0, fmt.Errorf("increment stock: %w", domain.ErrInvalidQuantity)
		}
		return 0, fmt.Errorf("increment stock: %w", err)
	}
	return stock, nil
}

// SetStock fija el stock absoluto (ajuste de inventario).
func (r *ItemRepo) SetStock(ctx context.Context, id string, stock int) error {
	cmd, err := r.q.Exec(ctx, `UPDATE items SET stock = $2, updated_at = now() WHERE id = $1`, id, stock)
	if err != nil {
		if isCheckViolation(err) {
			return fmt.Errorf("set stock: %w", domain.ErrInvalidQuantity)
		}
		return fmt.Errorf("set stock: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ItemNotFound(id)
	}
	return nil
}

func scanItem(row pgx.Row) (*entity.Item, error) {
	var it entity.Item
	var price decimal.NullDecimal
	if err := row.Scan(
		&it.ID, &it.Name, &it.Description, &it.Barcode, &it.Stock, &price,
		&it.Obra, &it.NFactura, &it.WarehouseID, &it.CreatedAt, &it.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if price.Valid {
		p := price.Decimal
		it.UnitPrice = &p
	}
	return &it, nil
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike neutraliza comodines para que la búsqueda sea por subcadena literal.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
