package repository

import "github.com/jhoicas/presupuestos-api/internal/domain/entity"

// StockRepository define el puerto para consultar/actualizar stock por producto+tenant.
// Las escrituras solo ocurren dentro de transacciones del motor de inventario.
type StockRepository interface {
	// Get devuelve el stock actual. domain.ErrNotFound si el producto no está registrado.
	Get(productID, tenantID string) (*entity.Stock, error)
	// GetForUpdate bloquea la fila para update (SELECT FOR UPDATE).
	// domain.ErrBusy si el bloqueo no se obtiene dentro del lock_timeout.
	GetForUpdate(productID, tenantID string) (*entity.Stock, error)
	// Create registra un producto por primera vez. domain.ErrDuplicate si ya existe.
	Create(stock *entity.Stock) error
	Upsert(stock *entity.Stock) error
	UpdateMinQuantity(productID, tenantID string, minQuantity int64) error
	// ListLowStock devuelve los productos del tenant con cantidad en o bajo el
	// mínimo, ordenados por déficit descendente (mayor quiebre primero).
	ListLowStock(tenantID string, limit int) ([]*entity.Stock, error)
}
