package inventory

import (
	"context"

	"github.com/jhoicas/presupuestos-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios
// atados a esa tx. Garantiza que chequeo de idempotencia, ajuste de stock y append al
// libro de movimientos se confirmen o descarten como una sola unidad.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		movRepo repository.InventoryMovementRepository,
		stockRepo repository.StockRepository,
	) error) error
}

// LowStockAlert payload de la alerta de stock bajo. Se entrega tal cual al
// colaborador externo; el motor no interpreta su contenido.
type LowStockAlert struct {
	ProductID       string
	TenantID        string
	CurrentQuantity int64
	MinQuantity     int64
}

// LowStockNotifier recibe alertas de stock bajo después del commit. Es best-effort:
// un fallo se registra en el log y nunca revierte la operación de inventario.
type LowStockNotifier interface {
	NotifyLowStock(ctx context.Context, alert LowStockAlert) error
}
