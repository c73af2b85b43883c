package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas). Comparar siempre con errors.Is.
var (
	ErrNotFound              = errors.New("recurso no encontrado")
	ErrWarehouseNotFound     = errors.New("bodega no encontrada")
	ErrItemNotFound          = errors.New("ítem no encontrado")
	ErrUserNotFound          = errors.New("usuario no encontrado")
	ErrItemWarehouseMismatch = errors.New("el ítem no pertenece a la bodega")
	ErrInsufficientStock     = errors.New("stock insuficiente")
	ErrEmptyWithdrawal       = errors.New("el retiro no tiene ítems")
	ErrInvalidQuantity       = errors.New("la cantidad debe ser un entero positivo")
	ErrInvalidInput          = errors.New("entrada inválida")
	ErrDuplicate             = errors.New("recurso duplicado")
	ErrUnauthorized          = errors.New("no autorizado")
	ErrForbidden             = errors.New("acceso denegado")
	ErrStorage               = errors.New("falla de almacenamiento")
)

// InsufficientStockError indica que una línea pide más unidades de las disponibles.
type InsufficientStockError struct {
	ItemID    string
	ItemName  string
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para %q: disponible %d, solicitado %d", e.ItemName, e.Available, e.Requested)
}

func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }

// ItemWarehouseMismatchError indica que el ítem pertenece a otra bodega.
type ItemWarehouseMismatchError struct {
	ItemID          string
	ItemName        string
	ItemWarehouseID string
	WarehouseName   string
}

func (e *ItemWarehouseMismatchError) Error() string {
	return fmt.Sprintf("el ítem %q no pertenece a la bodega %q", e.ItemName, e.WarehouseName)
}

func (e *ItemWarehouseMismatchError) Is(target error) bool { return target == ErrItemWarehouseMismatch }

// NotFoundError envuelve un sentinel de "no encontrado" con el identificador buscado.
type NotFoundError struct {
	Kind error // ErrWarehouseNotFound, ErrItemNotFound, ErrUserNotFound...
	ID   string
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("%s: %s", e.Kind, e.ID) }

func (e *NotFoundError) Unwrap() error { return e.Kind }

// StorageError es una falla de persistencia (fatal, provoca rollback completo).
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return fmt.Sprintf("%s: %s: %v", ErrStorage, e.Op, e.Err) }

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool { return target == ErrStorage }

// WarehouseNotFound construye el error para una bodega inexistente.
func WarehouseNotFound(id string) error { return &NotFoundError{Kind: ErrWarehouseNotFound, ID: id} }

// ItemNotFound construye el error para un ítem inexistente (id o código de barras).
func ItemNotFound(ref string) error { return &NotFoundError{Kind: ErrItemNotFound, ID: ref} }

// UserNotFound construye el error para un usuario inexistente.
func UserNotFound(id string) error { return &NotFoundError{Kind: ErrUserNotFound, ID: id} }

// IsDomainError indica si err pertenece a la taxonomía de negocio (no es una falla de infraestructura).
func IsDomainError(err error) bool {
	for _, target := range []error{
		ErrNotFound, ErrWarehouseNotFound, ErrItemNotFound, ErrUserNotFound,
		ErrItemWarehouseMismatch, ErrInsufficientStock, ErrEmptyWithdrawal,
		ErrInvalidQuantity, ErrInvalidInput, ErrDuplicate, ErrUnauthorized,
		ErrForbidden, ErrStorage,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// AsStorage envuelve err como StorageError salvo que ya sea un error de dominio.
func AsStorage(op string, err error) error {
	if err == nil || IsDomainError(err) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}
