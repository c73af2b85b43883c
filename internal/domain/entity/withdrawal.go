package entity

import "time"

// Withdrawal es un retiro de stock de una bodega atribuido a una obra.
// Se crea de forma atómica junto con todas sus líneas.
type Withdrawal struct {
	ID             string
	Obra           string
	Notes          string
	WarehouseID    string
	UserID         string
	WithdrawalDate time.Time
	Lines          []WithdrawalLine
}

// WithdrawalLine es una línea de un retiro. ItemName se resuelve para presentación.
type WithdrawalLine struct {
	ID           string
	WithdrawalID string
	ItemID       string
	ItemName     string
	Barcode      string
	NFactura     string
	Quantity     int
}

// TotalUnits suma las cantidades de todas las líneas.
func (w *Withdrawal) TotalUnits() int {
	total := 0
	for _, l := range w.Lines {
		total += l.Quantity
	}
	return total
}
