package dto

import "time"

// WithdrawalLineRequest una línea del retiro: ítem y cantidad.
type WithdrawalLineRequest struct {
	ItemID   string `json:"item_id" validate:"required"`
	Quantity int    `json:"quantity"`
}

// CreateWithdrawalRequest body para POST /api/withdrawals. El usuario sale de la sesión.
// Las cantidades no se validan aquí: el motor las revisa en orden junto con el stock.
type CreateWithdrawalRequest struct {
	WarehouseID string                  `json:"warehouse_id" validate:"required"`
	Obra        string                  `json:"obra" validate:"max=100"`
	Notes       string                  `json:"notes" validate:"max=500"`
	Items       []WithdrawalLineRequest `json:"items" validate:"dive"`
}

// WithdrawalLineResponse línea resuelta con el nombre del ítem.
type WithdrawalLineResponse struct {
	ID       string `json:"id"`
	ItemID   string `json:"item_id"`
	ItemName string `json:"item_name"`
	Quantity int    `json:"quantity"`
}

// WithdrawalResponse salida de un retiro confirmado.
type WithdrawalResponse struct {
	ID             string                   `json:"id"`
	Obra           string                   `json:"obra"`
	Notes          string                   `json:"notes,omitempty"`
	WarehouseID    string                   `json:"warehouse_id"`
	UserID         string                   `json:"user_id"`
	WithdrawalDate time.Time                `json:"withdrawal_date"`
	Items          []WithdrawalLineResponse `json:"items"`
}
