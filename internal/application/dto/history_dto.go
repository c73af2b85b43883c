package dto

import "time"

// HistoryResponse entrada de auditoría tal como se guardó (nombres desnormalizados).
type HistoryResponse struct {
	ID            string    `json:"id"`
	ActionType    string    `json:"action_type"`
	ItemName      string    `json:"item_name"`
	Quantity      int       `json:"quantity"`
	Obra          string    `json:"obra"`
	NFactura      string    `json:"n_factura"`
	WarehouseName string    `json:"warehouse_name"`
	UserName      string    `json:"user_name"`
	Notes         string    `json:"notes,omitempty"`
	ActionDate    time.Time `json:"action_date"`
}
