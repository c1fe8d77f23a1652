package repository

import (
	"time"

	"github.com/jhoicas/presupuestos-api/internal/domain/entity"
)

// InventoryMovementRepository define el puerto de persistencia del libro de movimientos.
// El libro es append-only: no hay Update ni Delete.
type InventoryMovementRepository interface {
	// Create inserta un movimiento. domain.ErrDuplicateMovement si la tupla de
	// referencia ya tiene un movimiento del mismo tipo (constraint único en DB).
	Create(movement *entity.InventoryMovement) error
	// Exists verifica si ya se aplicó un movimiento para la tupla exacta.
	Exists(productID, tenantID, referenceType, referenceID, movementType string) (bool, error)
	// GetByReference devuelve el movimiento de la tupla, o nil si no existe.
	GetByReference(productID, tenantID, referenceType, referenceID, movementType string) (*entity.InventoryMovement, error)
	// SumByProduct devuelve el total con signo (return suma, exit resta).
	SumByProduct(productID, tenantID string) (int64, error)
	ListByProduct(productID, tenantID string, from, to *time.Time, limit, offset int) ([]*entity.InventoryMovement, error)
}
