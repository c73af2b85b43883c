package repository

import (
	"context"

	"github.com/jhoicas/inventario-bodegas/internal/domain/entity"
)

// WithdrawalRepository define el puerto de persistencia para retiros y sus líneas.
type WithdrawalRepository interface {
	Create(ctx context.Context, withdrawal *entity.Withdrawal) error
	AddLine(ctx context.Context, line *entity.WithdrawalLine) error
	// GetByID devuelve el retiro con sus líneas (nombre de ítem resuelto) o (nil, nil).
	GetByID(ctx context.Context, id string) (*entity.Withdrawal, error)
	ListByWarehouse(ctx context.Context, warehouseID string, limit, offset int) ([]*entity.Withdrawal, error)
}
