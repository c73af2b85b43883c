package history

import (
	"context"
	"fmt"

	"github.com/jhoicas/inventario-bodegas/internal/application/dto"
	"github.com/jhoicas/inventario-bodegas/internal/domain"
	"github.com/jhoicas/inventario-bodegas/internal/domain/entity"
	"github.com/jhoicas/inventario-bodegas/internal/domain/repository"
)

// QueryUseCase consultas de solo lectura sobre el historial.
type QueryUseCase struct {
	repo          repository.HistoryRepository
	warehouseRepo repository.WarehouseRepository
}

// NewQueryUseCase construye el caso de uso.
func NewQueryUseCase(repo repository.HistoryRepository, warehouseRepo repository.WarehouseRepository) *QueryUseCase {
	return &QueryUseCase{repo: repo, warehouseRepo: warehouseRepo}
}

// ListByWarehouse devuelve el historial de una bodega, más reciente primero.
func (uc *QueryUseCase) ListByWarehouse(ctx context.Context, warehouseID string, filter repository.HistoryFilter) ([]dto.HistoryResponse, error) {
	if filter.ActionType != "" && !entity.ValidActionType(filter.ActionType) {
		return nil, fmt.Errorf("%w: action_type %q", domain.ErrInvalidInput, filter.ActionType)
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return nil, fmt.Errorf("%w: rango de fechas invertido", domain.ErrInvalidInput)
	}
	page := dto.PageRequest{Limit: filter.Limit, Offset: filter.Offset}
	page.DefaultPage()
	filter.Limit, filter.Offset = page.Limit, page.Offset

	wh, err := uc.warehouseRepo.GetByID(ctx, warehouseID)
	if err != nil {
		return nil, err
	}
	if wh == nil {
		return nil, domain.WarehouseNotFound(warehouseID)
	}
	list, err := uc.repo.ListByWarehouse(ctx, warehouseID, filter)
	if err != nil {
		return nil, err
	}
	out := make([]dto.HistoryResponse, 0, len(list))
	for _, h := range list {
		out = append(out, ToHistoryResponse(h))
	}
	return out, nil
}

// ToHistoryResponse mapea la entidad a su DTO.
func ToHistoryResponse(h *entity.HistoryRecord) dto.HistoryResponse {
	return dto.HistoryResponse{
		ID:            h.ID,
		ActionType:    h.ActionType,
		ItemName:      h.ItemName,
		Quantity:      h.Quantity,
		Obra:          h.Obra,
		NFactura:      h.NFactura,
		WarehouseName: h.WarehouseName,
		UserName:      h.UserName,
		Notes:         h.Notes,
		ActionDate:    h.ActionDate,
	}
}
