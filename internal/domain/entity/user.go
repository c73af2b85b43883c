package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin    = "admin"
	RoleOperador = "operador"
)

// User representa un operador de bodega. WarehouseID es la bodega física asignada
// (vacío = puede operar en cualquier bodega).
type User struct {
	ID           string
	Username     string
	PasswordHash string
	FullName     string
	Role         string
	WarehouseID  string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// DisplayName devuelve el nombre a mostrar en historial y comprobantes.
func (u *User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Username
}

// CanWithdrawFrom indica si el usuario puede retirar de la bodega indicada:
// solo desde su ubicación física, salvo administradores o usuarios sin bodega asignada.
func (u *User) CanWithdrawFrom(warehouseID string) bool {
	if u.Role == RoleAdmin || u.WarehouseID == "" {
		return true
	}
	return u.WarehouseID == warehouseID
}
