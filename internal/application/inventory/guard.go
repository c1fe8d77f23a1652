package inventory

import "github.com/jhoicas/presupuestos-api/internal/domain/repository"

// Guard decide si un ajuste ya fue aplicado para una tupla de referencia.
// Es una función de decisión pura sobre el libro de movimientos; se consulta
// dentro de la misma transacción que el append posterior. El constraint único
// de la tabla es la garantía de fondo por si dos transacciones pasan el chequeo
// a la vez.
type Guard struct{}

// ShouldApply devuelve false si ya existe un movimiento para la tupla exacta.
func (Guard) ShouldApply(
	movRepo repository.InventoryMovementRepository,
	productID, tenantID, referenceType, referenceID, movementType string,
) (bool, error) {
	exists, err := movRepo.Exists(productID, tenantID, referenceType, referenceID, movementType)
	if err != nil {
		return false, err
	}
	return !exists, nil
}
