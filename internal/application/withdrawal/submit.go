package withdrawal

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/inventario-bodegas/internal/application/history"
	"github.com/jhoicas/inventario-bodegas/internal/domain"
	"github.com/jhoicas/inventario-bodegas/internal/domain/entity"
	"github.com/jhoicas/inventario-bodegas/internal/domain/repository"
	"github.com/jhoicas/inventario-bodegas/pkg/logger"
)

// UseCase es el motor transaccional de retiros: valida y aplica un retiro de varias líneas
// como una sola unidad atómica, con bloqueo de fila (SELECT FOR UPDATE) sobre cada ítem.
type UseCase struct {
	txRunner       TxRunner
	warehouseRepo  repository.WarehouseRepository
	userRepo       repository.UserRepository
	withdrawalRepo repository.WithdrawalRepository
	recorder       *history.Recorder
	cache          BarcodeInvalidator
	receipts       ReceiptGenerator
	log            *logger.Logger
	now            func() time.Time
}

// NewUseCase construye el motor. withdrawalRepo se usa solo para lecturas fuera de transacción.
func NewUseCase(
	txRunner TxRunner,
	warehouseRepo repository.WarehouseRepository,
	userRepo repository.UserRepository,
	withdrawalRepo repository.WithdrawalRepository,
	recorder *history.Recorder,
	log *logger.Logger,
) *UseCase {
	return &UseCase{
		txRunner:       txRunner,
		warehouseRepo:  warehouseRepo,
		userRepo:       userRepo,
		withdrawalRepo: withdrawalRepo,
		recorder:       recorder,
		log:            log.Component("withdrawal"),
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// SetCache conecta la caché de códigos de barras que se invalida después de cada commit.
func (uc *UseCase) SetCache(c BarcodeInvalidator) { uc.cache = c }

// SetReceiptGenerator conecta el generador de comprobantes PDF.
func (uc *UseCase) SetReceiptGenerator(g ReceiptGenerator) { uc.receipts = g }

// LineInput una línea solicitada: ítem y cantidad.
type LineInput struct {
	ItemID   string
	Quantity int
}

// SubmitInput entrada del retiro. UserID viene de la sesión autenticada.
type SubmitInput struct {
	WarehouseID string
	Obra        string
	Notes       string
	UserID      string
	Lines       []LineInput
}

// lockedItem ítem bloqueado dentro de la tx con su saldo restante para este retiro.
type lockedItem struct {
	item      *entity.Item
	remaining int
}

// Submit valida y aplica el retiro. Orden de validación (gana el primer error):
// bodega, líneas no vacías, obra, usuario y luego, por línea y en orden,
// existencia del ítem, pertenencia a la bodega y cantidad contra el stock vivo.
// Un mismo ítem repetido en varias líneas se descuenta de un único saldo acumulado.
// Ante cualquier error no se persiste nada. No es idempotente.
func (uc *UseCase) Submit(ctx context.Context, in SubmitInput) (*entity.Withdrawal, error) {
	wh, err := uc.warehouseRepo.GetByID(ctx, in.WarehouseID)
	if err != nil {
		return nil, domain.AsStorage("get warehouse", err)
	}
	if wh == nil {
		return nil, uc.reject(in, domain.WarehouseNotFound(in.WarehouseID))
	}
	if len(in.Lines) == 0 {
		return nil, uc.reject(in, domain.ErrEmptyWithdrawal)
	}
	obra := strings.TrimSpace(in.Obra)
	if obra == "" {
		return nil, uc.reject(in, fmt.Errorf("%w: obra es requerida", domain.ErrInvalidInput))
	}
	user, err := uc.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, domain.AsStorage("get user", err)
	}
	if user == nil {
		return nil, uc.reject(in, domain.UserNotFound(in.UserID))
	}

	historyNotes := strings.TrimSpace(in.Notes)
	if historyNotes == "" {
		historyNotes = "Retiro para obra: " + obra
	}

	var created *entity.Withdrawal
	err = uc.txRunner.Run(ctx, func(repos repository.TxRepos) error {
		locked, err := uc.lockAndValidate(ctx, repos.Items, wh, in.Lines)
		if err != nil {
			return err
		}

		w := &entity.Withdrawal{
			ID:             uuid.New().String(),
			Obra:           obra,
			Notes:          strings.TrimSpace(in.Notes),
			WarehouseID:    wh.ID,
			UserID:         user.ID,
			WithdrawalDate: uc.now(),
		}
		if err := repos.Withdrawals.Create(ctx, w); err != nil {
			return domain.AsStorage("create withdrawal", err)
		}

		for _, l := range in.Lines {
			li := locked[l.ItemID]
			newStock, err := repos.Items.DecrementStock(ctx, li.item.ID, l.Quantity)
			if err != nil {
				return domain.AsStorage("decrement stock", err)
			}
			li.item.Stock = newStock

			line := entity.WithdrawalLine{
				ID:           uuid.New().String(),
				WithdrawalID: w.ID,
				ItemID:       li.item.ID,
				ItemName:     li.item.Name,
				Barcode:      li.item.Barcode,
				NFactura:     li.item.NFactura,
				Quantity:     l.Quantity,
			}
			if err := repos.Withdrawals.AddLine(ctx, &line); err != nil {
				return domain.AsStorage("add withdrawal line", err)
			}
			w.Lines = append(w.Lines, line)

			snapshot := *li.item
			if _, err := uc.recorder.Record(ctx, repos.History, history.RecordInput{
				ActionType: entity.ActionWithdrawal,
				Item:       &snapshot,
				Quantity:   l.Quantity,
				User:       user,
				Warehouse:  wh,
				Notes:      historyNotes,
				Obra:       obra,
			}); err != nil {
				return err
			}
		}
		created = w
		return nil
	})
	if err != nil {
		return nil, uc.reject(in, domain.AsStorage("submit withdrawal", err))
	}

	uc.invalidate(ctx, created)
	uc.log.Info().
		Str("withdrawal_id", created.ID).
		Str("warehouse_id", wh.ID).
		Str("obra", obra).
		Str("user_id", user.ID).
		Int("lines", len(created.Lines)).
		Int("units", created.TotalUnits()).
		Msg("retiro confirmado")
	return created, nil
}

// lockAndValidate bloquea cada ítem (una vez) y valida todas las líneas antes de cualquier mutación.
// Los bloqueos siguen el orden de id; las validaciones, el orden de las líneas.
func (uc *UseCase) lockAndValidate(
	ctx context.Context,
	items repository.ItemRepository,
	wh *entity.Warehouse,
	lines []LineInput,
) (map[string]*lockedItem, error) {
	locked, err := lockInIDOrder(ctx, items, lines)
	if err != nil {
		return nil, err
	}
	for i, l := range lines {
		li, ok := locked[l.ItemID]
		if !ok {
			return nil, domain.ItemNotFound(l.ItemID)
		}
		if li.item.WarehouseID != wh.ID {
			return nil, &domain.ItemWarehouseMismatchError{
				ItemID:          li.item.ID,
				ItemName:        li.item.Name,
				ItemWarehouseID: li.item.WarehouseID,
				WarehouseName:   wh.Name,
			}
		}
		if l.Quantity <= 0 {
			return nil, fmt.Errorf("%w: línea %d (%s)", domain.ErrInvalidQuantity, i+1, li.item.Name)
		}
		if l.Quantity > li.remaining {
			return nil, &domain.InsufficientStockError{
				ItemID:    li.item.ID,
				ItemName:  li.item.Name,
				Available: li.remaining,
				Requested: l.Quantity,
			}
		}
		li.remaining -= l.Quantity
	}
	return locked, nil
}

// lockInIDOrder toma SELECT FOR UPDATE sobre los ids distintos ordenados.
// Los ítems inexistentes quedan fuera del mapa; el error lo decide la validación por línea.
func lockInIDOrder(ctx context.Context, items repository.ItemRepository, lines []LineInput) (map[string]*lockedItem, error) {
	ids := make([]string, 0, len(lines))
	seen := make(map[string]struct{}, len(lines))
	for _, l := range lines {
		if _, ok := seen[l.ItemID]; ok {
			continue
		}
		seen[l.ItemID] = struct{}{}
		ids = append(ids, l.ItemID)
	}
	slices.Sort(ids)

	locked := make(map[string]*lockedItem, len(ids))
	for _, id := range ids {
		item, err := items.GetByIDForUpdate(ctx, id)
		if err != nil {
			return nil, domain.AsStorage("lock item", err)
		}
		if item == nil {
			continue
		}
		locked[id] = &lockedItem{item: item, remaining: item.Stock}
	}
	return locked, nil
}

func (uc *UseCase) reject(in SubmitInput, err error) error {
	uc.log.Warn().Err(err).
		Str("warehouse_id", in.WarehouseID).
		Str("user_id", in.UserID).
		Int("lines", len(in.Lines)).
		Msg("retiro rechazado")
	return err
}

// invalidate es best-effort: un fallo de caché no deshace un retiro ya confirmado.
func (uc *UseCase) invalidate(ctx context.Context, w *entity.Withdrawal) {
	if uc.cache == nil {
		return
	}
	barcodes := make([]string, 0, len(w.Lines))
	for _, l := range w.Lines {
		barcodes = append(barcodes, l.Barcode)
	}
	if err := uc.cache.Invalidate(ctx, barcodes...); err != nil {
		uc.log.Warn().Err(err).Str("withdrawal_id", w.ID).Msg("invalidar caché de códigos de barras")
	}
}
