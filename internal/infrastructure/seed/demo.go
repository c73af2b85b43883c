// Package seed carga los datos de demostración: 3 bodegas, 4 usuarios y 10 herramientas.
// Es idempotente: lo que ya existe (por código, username o código de barras) se omite.
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/inventario-bodegas/internal/application/auth"
	"github.com/jhoicas/inventario-bodegas/internal/application/history"
	"github.com/jhoicas/inventario-bodegas/internal/domain/entity"
	"github.com/jhoicas/inventario-bodegas/internal/domain/repository"
	"github.com/jhoicas/inventario-bodegas/pkg/logger"
	"github.com/shopspring/decimal"
)

// TxRunner mismo contrato que los runners de postgres y memory.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos repository.TxRepos) error) error
}

type warehouseSeed struct {
	name, code, location string
}

type userSeed struct {
	username, password, fullName, role string
}

type itemSeed struct {
	name, description, barcode string
	stock                      int
	price                      string
	obra, nFactura             string
	warehouseCode              string
}

var warehouses = []warehouseSeed{
	{"Bodega Principal", "BP001", "Edificio A - Piso 1"},
	{"Bodega Secundaria", "BS002", "Edificio B - Piso 2"},
	{"Bodega Herramientas", "BH003", "Edificio A - Piso 2"},
}

var users = []userSeed{
	{"Admin_Santiago", "admin123", "Administrador Santiago", entity.RoleAdmin},
	{"Operador_Juan", "juan123", "Juan Pérez", entity.RoleOperador},
	{"Operador_Maria", "maria123", "María González", entity.RoleOperador},
	{"Supervisor_Carlos", "carlos123", "Carlos Rodríguez", entity.RoleOperador},
}

// Cada obra va a una bodega fija: Casa A -> BP001, Casa B -> BS002, Casa C -> BH003.
var items = []itemSeed{
	{"Martillo", "Martillo de acero 500g", "7501234567890", 25, "15.50", "Construcción Casa A", "FAC-001", "BP001"},
	{"Destornillador Phillips", "Destornillador Phillips #2", "7501234567891", 50, "8.75", "Construcción Casa A", "FAC-001", "BP001"},
	{"Taladro Eléctrico", "Taladro eléctrico 600W", "7501234567892", 8, "125.00", "Construcción Casa B", "FAC-002", "BS002"},
	{"Tornillos", "Tornillos autorroscantes 3x25mm (caja 100)", "7501234567893", 200, "12.30", "Construcción Casa A", "FAC-001", "BP001"},
	{"Sierra Manual", "Sierra manual para madera 20\"", "7501234567894", 15, "22.50", "Construcción Casa C", "FAC-003", "BH003"},
	{"Nivel de Burbuja", "Nivel de burbuja 60cm", "7501234567895", 12, "18.90", "Construcción Casa B", "FAC-002", "BS002"},
	{"Cinta Métrica", "Cinta métrica 5m", "7501234567896", 30, "9.25", "Construcción Casa A", "FAC-001", "BP001"},
	{"Alicate", "Alicate universal 8\"", "7501234567897", 20, "14.75", "Construcción Casa C", "FAC-003", "BH003"},
	{"Llave Inglesa", "Llave inglesa ajustable 10\"", "7501234567898", 18, "16.80", "Construcción Casa B", "FAC-002", "BS002"},
	{"Soldadora", "Soldadora eléctrica 200A", "7501234567899", 3, "450.00", "Construcción Casa C", "FAC-003", "BH003"},
}

// Result cuenta lo creado en esta ejecución.
type Result struct {
	Warehouses int
	Users      int
	Items      int
}

// Run inserta los datos faltantes en una sola transacción. El stock inicial de cada ítem
// queda en el historial como entrada del administrador.
func Run(ctx context.Context, runner TxRunner, log *logger.Logger) (Result, error) {
	recorder := history.NewRecorder()
	l := log.Component("seed")

	// Los contadores solo se publican si la transacción confirma.
	var created Result
	err := runner.Run(ctx, func(repos repository.TxRepos) error {
		created = Result{}
		now := time.Now().UTC()
		byCode := make(map[string]*entity.Warehouse, len(warehouses))
		for _, ws := range warehouses {
			w, err := repos.Warehouses.GetByCode(ctx, ws.code)
			if err != nil {
				return fmt.Errorf("seed bodega %s: %w", ws.code, err)
			}
			if w == nil {
				w = &entity.Warehouse{
					ID: uuid.New().String(), Name: ws.name, Code: ws.code, Location: ws.location,
					IsActive: true, CreatedAt: now, UpdatedAt: now,
				}
				if err := repos.Warehouses.Create(ctx, w); err != nil {
					return fmt.Errorf("seed bodega %s: %w", ws.code, err)
				}
				created.Warehouses++
				l.Info().Str("code", ws.code).Msg("bodega creada")
			}
			byCode[ws.code] = w
		}

		var admin *entity.User
		for _, us := range users {
			u, err := repos.Users.GetByUsername(ctx, us.username)
			if err != nil {
				return fmt.Errorf("seed usuario %s: %w", us.username, err)
			}
			if u == nil {
				hash, err := auth.HashPassword(us.password)
				if err != nil {
					return err
				}
				u = &entity.User{
					ID: uuid.New().String(), Username: us.username, PasswordHash: hash, FullName: us.fullName,
					Role: us.role, IsActive: true, CreatedAt: now, UpdatedAt: now,
				}
				if err := repos.Users.Create(ctx, u); err != nil {
					return fmt.Errorf("seed usuario %s: %w", us.username, err)
				}
				created.Users++
				l.Info().Str("username", us.username).Msg("usuario creado")
			}
			if u.Role == entity.RoleAdmin && admin == nil {
				admin = u
			}
		}

		for _, is := range items {
			existing, err := repos.Items.GetByBarcode(ctx, is.barcode)
			if err != nil {
				return fmt.Errorf("seed ítem %s: %w", is.barcode, err)
			}
			if existing != nil {
				continue
			}
			wh := byCode[is.warehouseCode]
			price := decimal.RequireFromString(is.price)
			it := &entity.Item{
				ID: uuid.New().String(), Name: is.name, Description: is.description, Barcode: is.barcode,
				Stock: is.stock, UnitPrice: &price, Obra: is.obra, NFactura: is.nFactura,
				WarehouseID: wh.ID, CreatedAt: now, UpdatedAt: now,
			}
			if err := repos.Items.Create(ctx, it); err != nil {
				return fmt.Errorf("seed ítem %s: %w", is.barcode, err)
			}
			if _, err := recorder.Record(ctx, repos.History, history.RecordInput{
				ActionType: entity.ActionAddition,
				Item:       it,
				Quantity:   it.Stock,
				User:       admin,
				Warehouse:  wh,
				Notes:      "Stock inicial",
			}); err != nil {
				return err
			}
			created.Items++
			l.Info().Str("barcode", is.barcode).Str("warehouse", wh.Code).Msg("ítem creado")
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	return created, nil
}
