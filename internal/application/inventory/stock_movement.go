package inventory

import (
	"context"
	"fmt"

	"github.com/jhoicas/inventario-bodegas/internal/application/dto"
	"github.com/jhoicas/inventario-bodegas/internal/application/history"
	"github.com/jhoicas/inventario-bodegas/internal/domain"
	"github.com/jhoicas/inventario-bodegas/internal/domain/entity"
	"github.com/jhoicas/inventario-bodegas/internal/domain/repository"
)

// AddStock registra una entrada de stock: bloquea la fila (SELECT FOR UPDATE), suma la cantidad
// y escribe la entrada de historial (addition) en la misma transacción.
func (uc *ItemUseCase) AddStock(ctx context.Context, userID, itemID string, quantity int, notes string) (*dto.ItemResponse, error) {
	if quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}
	if notes == "" {
		notes = "Entrada de stock"
	}
	return uc.mutateStock(ctx, userID, itemID, func(repos repository.TxRepos, item *entity.Item) (int, string, error) {
		if quantity > entity.MaxStock-item.Stock {
			return 0, "", fmt.Errorf("%w: el stock superaría %d", domain.ErrInvalidQuantity, entity.MaxStock)
		}
		newStock, err := repos.Items.IncrementStock(ctx, item.ID, quantity)
		if err != nil {
			return 0, "", err
		}
		item.Stock = newStock
		return quantity, entity.ActionAddition, nil
	}, notes)
}

// AdjustStock fija el stock a un conteo físico y registra el delta con signo (adjustment).
// Un delta cero no escribe nada.
func (uc *ItemUseCase) AdjustStock(ctx context.Context, userID, itemID string, newStock int, notes string) (*dto.ItemResponse, error) {
	if newStock < 0 || newStock > entity.MaxStock {
		return nil, fmt.Errorf("%w: stock fuera de rango", domain.ErrInvalidQuantity)
	}
	if notes == "" {
		notes = "Ajuste por conteo físico"
	}
	return uc.mutateStock(ctx, userID, itemID, func(repos repository.TxRepos, item *entity.Item) (int, string, error) {
		delta := newStock - item.Stock
		if delta == 0 {
			return 0, "", nil
		}
		if err := repos.Items.SetStock(ctx, item.ID, newStock); err != nil {
			return 0, "", err
		}
		item.Stock = newStock
		return delta, entity.ActionAdjustment, nil
	}, notes)
}

// mutateStock aplica fn sobre el ítem bloqueado; fn devuelve la cantidad y el tipo de acción
// a registrar (acción vacía = sin cambios).
func (uc *ItemUseCase) mutateStock(
	ctx context.Context,
	userID, itemID string,
	fn func(repos repository.TxRepos, item *entity.Item) (int, string, error),
	notes string,
) (*dto.ItemResponse, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.UserNotFound(userID)
	}

	var result *entity.Item
	var action string
	err = uc.txRunner.Run(ctx, func(repos repository.TxRepos) error {
		item, err := repos.Items.GetByIDForUpdate(ctx, itemID)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ItemNotFound(itemID)
		}
		wh, err := repos.Warehouses.GetByID(ctx, item.WarehouseID)
		if err != nil {
			return err
		}
		if wh == nil {
			return domain.WarehouseNotFound(item.WarehouseID)
		}
		qty, act, err := fn(repos, item)
		if err != nil {
			return err
		}
		result, action = item, act
		if act == "" {
			return nil
		}
		_, err = uc.recorder.Record(ctx, repos.History, history.RecordInput{
			ActionType: act,
			Item:       item,
			Quantity:   qty,
			User:       user,
			Warehouse:  wh,
			Notes:      notes,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	if action != "" && uc.cache != nil {
		if err := uc.cache.Invalidate(ctx, result.Barcode); err != nil {
			uc.log.Warn().Err(err).Str("barcode", result.Barcode).Msg("invalidar caché de códigos de barras")
		}
	}
	if action != "" {
		uc.log.Info().Str("item_id", result.ID).Str("action", action).Int("stock", result.Stock).Msg("stock actualizado")
	}
	return ToItemResponse(result), nil
}
