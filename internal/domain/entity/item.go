package entity

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// Límites de las columnas de items; la validación de entrada los replica.
const (
	ItemNameMaxLen     = 100
	ItemBarcodeMaxLen  = 50
	ItemObraMaxLen     = 100
	ItemNFacturaMaxLen = 50
	MaxStock           = math.MaxInt32
)

// MaxUnitPrice tope de NUMERIC(10,2).
var MaxUnitPrice = decimal.RequireFromString("99999999.99")

// Item representa un artículo del inventario con su stock en una única bodega.
// Stock nunca es negativo; Barcode es único entre todos los ítems.
type Item struct {
	ID          string
	Name        string
	Description string
	Barcode     string
	Stock       int
	UnitPrice   *decimal.Decimal // opcional, no negativo
	Obra        string           // proyecto al que se atribuye el lote
	NFactura    string           // factura/referencia del lote
	WarehouseID string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ApplyWarehouseDefaults completa obra y n_factura vacíos con nombre y código de la bodega.
func (i *Item) ApplyWarehouseDefaults(w *Warehouse) {
	if i.Obra == "" {
		i.Obra = w.Name
	}
	if i.NFactura == "" {
		i.NFactura = w.Code
	}
}
