package withdrawal

import (
	"context"
	"fmt"

	"github.com/jhoicas/inventario-bodegas/internal/application/dto"
	"github.com/jhoicas/inventario-bodegas/internal/domain"
	"github.com/jhoicas/inventario-bodegas/internal/domain/entity"
)

// Get devuelve un retiro con sus líneas resueltas.
func (uc *UseCase) Get(ctx context.Context, id string) (*entity.Withdrawal, error) {
	w, err := uc.withdrawalRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, &domain.NotFoundError{Kind: domain.ErrNotFound, ID: id}
	}
	return w, nil
}

// ListByWarehouse lista retiros de una bodega, más recientes primero.
func (uc *UseCase) ListByWarehouse(ctx context.Context, warehouseID string, limit, offset int) ([]dto.WithdrawalResponse, error) {
	wh, err := uc.warehouseRepo.GetByID(ctx, warehouseID)
	if err != nil {
		return nil, err
	}
	if wh == nil {
		return nil, domain.WarehouseNotFound(warehouseID)
	}
	page := dto.PageRequest{Limit: limit, Offset: offset}
	page.DefaultPage()
	list, err := uc.withdrawalRepo.ListByWarehouse(ctx, warehouseID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.WithdrawalResponse, 0, len(list))
	for _, w := range list {
		out = append(out, ToResponse(w))
	}
	return out, nil
}

// Receipt genera el comprobante PDF de un retiro y un nombre de archivo sugerido.
func (uc *UseCase) Receipt(ctx context.Context, id string) ([]byte, string, error) {
	if uc.receipts == nil {
		return nil, "", fmt.Errorf("comprobante: generador no configurado")
	}
	w, err := uc.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}
	wh, err := uc.warehouseRepo.GetByID(ctx, w.WarehouseID)
	if err != nil {
		return nil, "", fmt.Errorf("comprobante: obtener bodega: %w", err)
	}
	if wh == nil {
		return nil, "", domain.WarehouseNotFound(w.WarehouseID)
	}
	userName := w.UserID
	if u, err := uc.userRepo.GetByID(ctx, w.UserID); err == nil && u != nil {
		userName = u.DisplayName()
	}
	pdf, err := uc.receipts.GenerateWithdrawalPDF(ctx, w, wh, userName)
	if err != nil {
		return nil, "", err
	}
	filename := fmt.Sprintf("retiro_%s_%s.pdf", wh.Code, w.WithdrawalDate.Format("20060102_150405"))
	return pdf, filename, nil
}

// ToResponse mapea el retiro a su DTO.
func ToResponse(w *entity.Withdrawal) dto.WithdrawalResponse {
	lines := make([]dto.WithdrawalLineResponse, 0, len(w.Lines))
	for _, l := range w.Lines {
		lines = append(lines, dto.WithdrawalLineResponse{
			ID:       l.ID,
			ItemID:   l.ItemID,
			ItemName: l.ItemName,
			Quantity: l.Quantity,
		})
	}
	return dto.WithdrawalResponse{
		ID:             w.ID,
		Obra:           w.Obra,
		Notes:          w.Notes,
		WarehouseID:    w.WarehouseID,
		UserID:         w.UserID,
		WithdrawalDate: w.WithdrawalDate,
		Items:          lines,
	}
}
