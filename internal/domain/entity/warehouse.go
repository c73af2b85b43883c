package entity

import "time"

// Warehouse representa una bodega física. Code es único y corto (ej. BP001).
type Warehouse struct {
	ID        string
	Name      string
	Code      string
	Location  string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
