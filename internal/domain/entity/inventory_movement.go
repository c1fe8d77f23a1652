package entity

import "time"

// Tipos de movimiento de inventario.
const (
	MovementTypeExit   = "exit"   // salida: descuenta stock
	MovementTypeReturn = "return" // devolución: repone stock
)

// Tipos de referencia: qué documento causó el movimiento.
const (
	ReferenceTypeBudget      = "budget"
	ReferenceTypeService     = "service"
	ReferenceTypeBudgetItem  = "budget_item"
	ReferenceTypeServiceItem = "service_item"
)

// InventoryMovement representa un ajuste de stock ya aplicado. El libro de
// movimientos es append-only: las filas no se actualizan ni se borran.
// La tupla (producto, tenant, tipo de referencia, id de referencia, tipo)
// es única; esa unicidad es la que evita aplicar dos veces el mismo evento.
type InventoryMovement struct {
	ID            string
	ProductID     string
	TenantID      string
	ReferenceType string
	ReferenceID   string
	Type          string // exit o return
	Quantity      int64  // magnitud, siempre positiva
	Reason        string // texto libre, se guarda tal cual llega
	CreatedAt     time.Time
}

// Signed devuelve la cantidad con signo: positiva para return, negativa para exit.
func (m *InventoryMovement) Signed() int64 {
	if m.Type == MovementTypeReturn {
		return m.Quantity
	}
	return -m.Quantity
}
