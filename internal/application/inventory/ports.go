package inventory

import (
	"context"

	"github.com/jhoicas/inventario-bodegas/internal/domain/entity"
	"github.com/jhoicas/inventario-bodegas/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza atomicidad entre la mutación de stock y su registro en el historial.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos repository.TxRepos) error) error
}

// ItemCache caché de lecturas por código de barras (lectura frecuente desde el escáner).
// ok=false significa que no había entrada.
type ItemCache interface {
	Get(ctx context.Context, barcode string) (item *entity.Item, ok bool, err error)
	Set(ctx context.Context, item *entity.Item) error
	Invalidate(ctx context.Context, barcodes ...string) error
}
