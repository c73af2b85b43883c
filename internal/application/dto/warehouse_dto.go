package dto

import "time"

// CreateWarehouseRequest entrada para crear una bodega.
type CreateWarehouseRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=100"`
	Code     string `json:"code" validate:"required,min=1,max=20"`
	Location string `json:"location" validate:"max=200"`
	IsActive *bool  `json:"is_active"`
}

// ListWarehousesQuery query params de GET /api/warehouses.
type ListWarehousesQuery struct {
	Active bool `query:"active"`
	Limit  int  `query:"limit" validate:"min=0,max=200"`
	Offset int  `query:"offset" validate:"min=0"`
}

// SetWarehouseActiveRequest activa o desactiva una bodega.
type SetWarehouseActiveRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

// WarehouseResponse salida de una bodega.
type WarehouseResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	Location  string    `json:"location"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// WarehouseListResponse lista paginada de bodegas.
type WarehouseListResponse struct {
	Items []WarehouseResponse `json:"items"`
	Page  PageResponse        `json:"page"`
}
