package repository

import (
	"context"

	"github.com/jhoicas/inventario-bodegas/internal/domain/entity"
)

// WarehouseRepository define el puerto de persistencia para Warehouse (DIP).
// GetByID devuelve (nil, nil) si la bodega no existe.
type WarehouseRepository interface {
	Create(ctx context.Context, warehouse *entity.Warehouse) error
	GetByID(ctx context.Context, id string) (*entity.Warehouse, error)
	GetByCode(ctx context.Context, code string) (*entity.Warehouse, error)
	List(ctx context.Context, activeOnly bool, limit, offset int) ([]*entity.Warehouse, error)
	SetActive(ctx context.Context, id string, active bool) error
}
