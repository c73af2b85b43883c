package withdrawal

import (
	"context"

	"github.com/jhoicas/inventario-bodegas/internal/domain/entity"
	"github.com/jhoicas/inventario-bodegas/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn devuelve error se hace Rollback de todo lo escrito; si no, Commit.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos repository.TxRepos) error) error
}

// BarcodeInvalidator descarta lecturas cacheadas de ítems cuyo stock cambió.
type BarcodeInvalidator interface {
	Invalidate(ctx context.Context, barcodes ...string) error
}

// ReceiptGenerator genera el comprobante PDF de un retiro confirmado.
type ReceiptGenerator interface {
	GenerateWithdrawalPDF(ctx context.Context, w *entity.Withdrawal, warehouse *entity.Warehouse, userName string) ([]byte, error)
}
