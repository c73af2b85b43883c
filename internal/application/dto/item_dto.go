package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateItemRequest entrada para crear un ítem. Obra y NFactura vacíos toman
// el nombre y el código de la bodega.
type CreateItemRequest struct {
	Name        string           `json:"name" validate:"required,min=1,max=100"`
	Description string           `json:"description"`
	Barcode     string           `json:"barcode" validate:"required,min=1,max=50"`
	Stock       int              `json:"stock" validate:"min=0,max=2147483647"`
	UnitPrice   *decimal.Decimal `json:"unit_price,omitempty"`
	Obra        string           `json:"obra" validate:"max=100"`
	NFactura    string           `json:"n_factura" validate:"max=50"`
	WarehouseID string           `json:"warehouse_id" validate:"required"`
}

// AddStockRequest body para POST /api/items/:id/additions.
type AddStockRequest struct {
	Quantity int    `json:"quantity" validate:"required,gt=0,max=2147483647"`
	Notes    string `json:"notes" validate:"max=500"`
}

// AdjustStockRequest body para POST /api/items/:id/adjustments (conteo físico).
type AdjustStockRequest struct {
	NewStock *int   `json:"new_stock" validate:"required,min=0,max=2147483647"`
	Notes    string `json:"notes" validate:"max=500"`
}

// ItemResponse salida de un ítem.
type ItemResponse struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Barcode     string           `json:"barcode"`
	Stock       int              `json:"stock"`
	UnitPrice   *decimal.Decimal `json:"unit_price,omitempty"`
	Obra        string           `json:"obra"`
	NFactura    string           `json:"n_factura"`
	WarehouseID string           `json:"warehouse_id"`
	CreatedAt   time.Time        `json:"created_at"`
}

// ItemListResponse lista paginada de ítems.
type ItemListResponse struct {
	Items []ItemResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}
