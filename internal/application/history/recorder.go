// Package history registra y consulta las entradas inmutables de auditoría
// generadas por cada acción que afecta el stock.
package history

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/inventario-bodegas/internal/domain"
	"github.com/jhoicas/inventario-bodegas/internal/domain/entity"
	"github.com/jhoicas/inventario-bodegas/internal/domain/repository"
)

// RecordInput datos de la acción a registrar. Item debe reflejar el estado posterior a la mutación.
type RecordInput struct {
	ActionType string
	Item       *entity.Item
	Quantity   int
	User       *entity.User
	Warehouse  *entity.Warehouse
	Notes      string
	Obra       string // vacío = obra del ítem
}

// Recorder escribe una HistoryRecord por acción. No guarda estado salvo el reloj.
type Recorder struct {
	now func() time.Time
}

// NewRecorder construye el registrador con reloj UTC.
func NewRecorder() *Recorder {
	return &Recorder{now: func() time.Time { return time.Now().UTC() }}
}

// WithClock reemplaza el reloj (tests).
func (r *Recorder) WithClock(now func() time.Time) *Recorder {
	return &Recorder{now: now}
}

// Record persiste la entrada usando repo, normalmente atado a la transacción del caller,
// de modo que la auditoría se confirma o se descarta junto con la mutación de stock.
func (r *Recorder) Record(ctx context.Context, repo repository.HistoryRepository, in RecordInput) (*entity.HistoryRecord, error) {
	if !entity.ValidActionType(in.ActionType) {
		return nil, fmt.Errorf("%w: action_type %q", domain.ErrInvalidInput, in.ActionType)
	}
	if in.Item == nil || in.User == nil || in.Warehouse == nil {
		return nil, fmt.Errorf("%w: historial requiere ítem, usuario y bodega", domain.ErrInvalidInput)
	}
	obra := in.Obra
	if obra == "" {
		obra = in.Item.Obra
	}
	rec := &entity.HistoryRecord{
		ID:            uuid.New().String(),
		ActionType:    in.ActionType,
		ItemName:      in.Item.Name,
		Quantity:      in.Quantity,
		Obra:          obra,
		NFactura:      in.Item.NFactura,
		WarehouseID:   in.Warehouse.ID,
		WarehouseName: in.Warehouse.Name,
		UserName:      in.User.DisplayName(),
		Notes:         in.Notes,
		ActionDate:    r.now(),
	}
	if err := repo.Append(ctx, rec); err != nil {
		return nil, domain.AsStorage("append history", err)
	}
	return rec, nil
}
