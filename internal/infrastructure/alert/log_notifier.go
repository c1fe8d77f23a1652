// Package alert contiene los notificadores de stock bajo. La implementación
// actual escribe al log estructurado; un canal real (email, webhook) entra como
// otra implementación del mismo puerto.
package alert

import (
	"context"

	"github.com/jhoicas/presupuestos-api/internal/application/inventory"
	"github.com/jhoicas/presupuestos-api/pkg/logger"
)

var _ inventory.LowStockNotifier = (*LogNotifier)(nil)

// LogNotifier notificador de stock bajo que registra la alerta en el log.
type LogNotifier struct {
	log *logger.Logger
}

// NewLogNotifier construye el notificador.
func NewLogNotifier(log *logger.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

// NotifyLowStock registra la alerta. Nunca falla.
func (n *LogNotifier) NotifyLowStock(ctx context.Context, alert inventory.LowStockAlert) error {
	n.log.Warn().
		Str("product_id", alert.ProductID).
		Str("tenant_id", alert.TenantID).
		Int64("quantity", alert.CurrentQuantity).
		Int64("min_quantity", alert.MinQuantity).
		Msg("producto bajo stock mínimo")
	return nil
}
