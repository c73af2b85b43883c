package repository

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-bodegas/internal/domain/entity"
)

// HistoryFilter filtros opcionales para consultar el historial.
type HistoryFilter struct {
	ActionType string
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
}

// HistoryRepository es append-only: no hay Update ni Delete.
type HistoryRepository interface {
	Append(ctx context.Context, record *entity.HistoryRecord) error
	ListByWarehouse(ctx context.Context, warehouseID string, filter HistoryFilter) ([]*entity.HistoryRecord, error)
}
