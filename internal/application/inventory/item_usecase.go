package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jhoicas/inventario-bodegas/internal/application/dto"
	"github.com/jhoicas/inventario-bodegas/internal/application/history"
	"github.com/jhoicas/inventario-bodegas/internal/domain"
	"github.com/jhoicas/inventario-bodegas/internal/domain/entity"
	"github.com/jhoicas/inventario-bodegas/internal/domain/repository"
	"github.com/jhoicas/inventario-bodegas/pkg/logger"
	"github.com/shopspring/decimal"
)

// ItemUseCase casos de uso del libro de ítems: alta, consultas y movimientos de entrada/ajuste.
type ItemUseCase struct {
	txRunner      TxRunner
	itemRepo      repository.ItemRepository
	warehouseRepo repository.WarehouseRepository
	userRepo      repository.UserRepository
	recorder      *history.Recorder
	cache         ItemCache
	log           *logger.Logger
}

// NewItemUseCase construye el caso de uso. cache puede ser nil.
func NewItemUseCase(
	txRunner TxRunner,
	itemRepo repository.ItemRepository,
	warehouseRepo repository.WarehouseRepository,
	userRepo repository.UserRepository,
	recorder *history.Recorder,
	cache ItemCache,
	log *logger.Logger,
) *ItemUseCase {
	return &ItemUseCase{
		txRunner:      txRunner,
		itemRepo:      itemRepo,
		warehouseRepo: warehouseRepo,
		userRepo:      userRepo,
		recorder:      recorder,
		cache:         cache,
		log:           log.Component("inventory"),
	}
}

// CreateItem da de alta un ítem en una bodega. Obra y NFactura vacíos toman nombre y código
// de la bodega. Si trae stock inicial se registra una entrada (addition) en la misma transacción.
func (uc *ItemUseCase) CreateItem(ctx context.Context, userID string, in dto.CreateItemRequest) (*dto.ItemResponse, error) {
	name := strings.TrimSpace(in.Name)
	barcode := strings.TrimSpace(in.Barcode)
	if name == "" || barcode == "" {
		return nil, fmt.Errorf("%w: name y barcode son requeridos", domain.ErrInvalidInput)
	}
	if tooLong(name, entity.ItemNameMaxLen) || tooLong(barcode, entity.ItemBarcodeMaxLen) ||
		tooLong(strings.TrimSpace(in.Obra), entity.ItemObraMaxLen) ||
		tooLong(strings.TrimSpace(in.NFactura), entity.ItemNFacturaMaxLen) {
		return nil, fmt.Errorf("%w: texto demasiado largo", domain.ErrInvalidInput)
	}
	if in.Stock < 0 || in.Stock > entity.MaxStock {
		return nil, fmt.Errorf("%w: stock fuera de rango", domain.ErrInvalidQuantity)
	}
	if in.UnitPrice != nil && (in.UnitPrice.IsNegative() || in.UnitPrice.GreaterThan(entity.MaxUnitPrice)) {
		return nil, fmt.Errorf("%w: unit_price fuera de rango", domain.ErrInvalidInput)
	}

	wh, err := uc.warehouseRepo.GetByID(ctx, in.WarehouseID)
	if err != nil {
		return nil, err
	}
	if wh == nil {
		return nil, domain.WarehouseNotFound(in.WarehouseID)
	}
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.UserNotFound(userID)
	}

	now := time.Now().UTC()
	item := &entity.Item{
		ID:          uuid.New().String(),
		Name:        name,
		Description: in.Description,
		Barcode:     barcode,
		Stock:       in.Stock,
		UnitPrice:   roundPrice(in.UnitPrice),
		Obra:        strings.TrimSpace(in.Obra),
		NFactura:    strings.TrimSpace(in.NFactura),
		WarehouseID: wh.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	item.ApplyWarehouseDefaults(wh)

	err = uc.txRunner.Run(ctx, func(repos repository.TxRepos) error {
		if err := repos.Items.Create(ctx, item); err != nil {
			return err
		}
		if item.Stock == 0 {
			return nil
		}
		_, err := uc.recorder.Record(ctx, repos.History, history.RecordInput{
			ActionType: entity.ActionAddition,
			Item:       item,
			Quantity:   item.Stock,
			User:       user,
			Warehouse:  wh,
			Notes:      "Stock inicial",
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("item_id", item.ID).Str("barcode", item.Barcode).Str("warehouse_id", wh.ID).Msg("ítem creado")
	return ToItemResponse(item), nil
}

// GetByID obtiene un ítem por ID.
func (uc *ItemUseCase) GetByID(ctx context.Context, id string) (*dto.ItemResponse, error) {
	item, err := uc.itemRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ItemNotFound(id)
	}
	return ToItemResponse(item), nil
}

// GetByBarcode obtiene un ítem por código de barras (cache-aside si hay caché).
func (uc *ItemUseCase) GetByBarcode(ctx context.Context, barcode string) (*dto.ItemResponse, error) {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return nil, fmt.Errorf("%w: barcode vacío", domain.ErrInvalidInput)
	}
	if uc.cache != nil {
		cached, ok, err := uc.cache.Get(ctx, barcode)
		if err != nil {
			uc.log.Warn().Err(err).Str("barcode", barcode).Msg("leer caché de códigos de barras")
		} else if ok {
			return ToItemResponse(cached), nil
		}
	}
	item, err := uc.itemRepo.GetByBarcode(ctx, barcode)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ItemNotFound(barcode)
	}
	if uc.cache != nil {
		if err := uc.cache.Set(ctx, item); err != nil {
			uc.log.Warn().Err(err).Str("barcode", barcode).Msg("escribir caché de códigos de barras")
		}
	}
	return ToItemResponse(item), nil
}

// Search busca por nombre, factura o código de barras; warehouseID vacío busca en todas las bodegas.
func (uc *ItemUseCase) Search(ctx context.Context, query, warehouseID string, limit, offset int) (*dto.ItemListResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: q es requerido", domain.ErrInvalidInput)
	}
	page := dto.PageRequest{Limit: limit, Offset: offset}
	page.DefaultPage()
	list, err := uc.itemRepo.Search(ctx, query, warehouseID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	return toItemList(list, page), nil
}

// ListByWarehouse lista los ítems de una bodega.
func (uc *ItemUseCase) ListByWarehouse(ctx context.Context, warehouseID string, limit, offset int) (*dto.ItemListResponse, error) {
	wh, err := uc.warehouseRepo.GetByID(ctx, warehouseID)
	if err != nil {
		return nil, err
	}
	if wh == nil {
		return nil, domain.WarehouseNotFound(warehouseID)
	}
	page := dto.PageRequest{Limit: limit, Offset: offset}
	page.DefaultPage()
	list, err := uc.itemRepo.ListByWarehouse(ctx, warehouseID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	return toItemList(list, page), nil
}

// ListByObra lista los ítems de una obra dentro de una bodega.
func (uc *ItemUseCase) ListByObra(ctx context.Context, obra, warehouseID string) ([]dto.ItemResponse, error) {
	list, err := uc.itemRepo.ListByObra(ctx, obra, warehouseID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ItemResponse, 0, len(list))
	for _, it := range list {
		out = append(out, *ToItemResponse(it))
	}
	return out, nil
}

func roundPrice(p *decimal.Decimal) *decimal.Decimal {
	if p == nil {
		return nil
	}
	r := p.Round(2)
	return &r
}

func toItemList(list []*entity.Item, page dto.PageRequest) *dto.ItemListResponse {
	items := make([]dto.ItemResponse, 0, len(list))
	for _, it := range list {
		items = append(items, *ToItemResponse(it))
	}
	return &dto.ItemListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: len(items)},
	}
}

// ToItemResponse mapea la entidad a su DTO.
func ToItemResponse(it *entity.Item) *dto.ItemResponse {
	if it == nil {
		return nil
	}
	return &dto.ItemResponse{
		ID:          it.ID,
		Name:        it.Name,
		Description: it.Description,
		Barcode:     it.Barcode,
		Stock:       it.Stock,
		UnitPrice:   it.UnitPrice,
		Obra:        it.Obra,
		NFactura:    it.NFactura,
		WarehouseID: it.WarehouseID,
		CreatedAt:   it.CreatedAt,
	}
}

func tooLong(s string, max int) bool { return utf8.RuneCountInString(s) > max }
