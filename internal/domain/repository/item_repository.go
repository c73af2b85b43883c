package repository

import (
	"context"

	"github.com/jhoicas/inventario-bodegas/internal/domain/entity"
)

// ItemRepository define el puerto del libro de ítems (stock por bodega).
// Los métodos Get* devuelven (nil, nil) si el ítem no existe.
type ItemRepository interface {
	Create(ctx context.Context, item *entity.Item) error
	GetByID(ctx context.Context, id string) (*entity.Item, error)
	// GetByIDForUpdate bloquea la fila hasta el fin de la transacción (SELECT FOR UPDATE).
	GetByIDForUpdate(ctx context.Context, id string) (*entity.Item, error)
	GetByBarcode(ctx context.Context, barcode string) (*entity.Item, error)
	// Search busca sin distinguir mayúsculas en name, n_factura y barcode; warehouseID vacío = todas.
	Search(ctx context.Context, query, warehouseID string, limit, offset int) ([]*entity.Item, error)
	ListByWarehouse(ctx context.Context, warehouseID string, limit, offset int) ([]*entity.Item, error)
	ListByObra(ctx context.Context, obra, warehouseID string) ([]*entity.Item, error)
	// DecrementStock resta amount y devuelve el stock resultante.
	// Falla con ErrInsufficientStock si el resultado sería negativo.
	DecrementStock(ctx context.Context, id string, amount int) (int, error)
	IncrementStock(ctx context.Context, id string, amount int) (int, error)
	SetStock(ctx context.Context, id string, stock int) error
}
