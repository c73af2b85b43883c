package entity

import "time"

// Tipos de acción registrados en el historial.
const (
	ActionWithdrawal = "withdrawal"
	ActionAddition   = "addition"
	ActionAdjustment = "adjustment"
)

// ValidActionType indica si s es un tipo de acción conocido.
func ValidActionType(s string) bool {
	switch s {
	case ActionWithdrawal, ActionAddition, ActionAdjustment:
		return true
	}
	return false
}

// HistoryRecord es una entrada inmutable de auditoría. Los nombres se copian al escribir,
// WarehouseID se conserva solo para filtrar.
type HistoryRecord struct {
	ID            string
	ActionType    string
	ItemName      string
	Quantity      int
	Obra          string
	NFactura      string
	WarehouseID   string
	WarehouseName string
	UserName      string
	Notes         string
	ActionDate    time.Time
}
