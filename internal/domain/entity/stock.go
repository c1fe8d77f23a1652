package entity

import "time"

// Stock representa el stock actual de un producto para un tenant.
// La cantidad solo la modifica el motor de inventario; nunca queda negativa.
type Stock struct {
	ProductID   string
	TenantID    string
	Quantity    int64
	MinQuantity int64
	UpdatedAt   time.Time
}

// BelowMinimum indica si la cantidad actual cayó bajo el umbral mínimo.
func (s *Stock) BelowMinimum() bool {
	return s.Quantity < s.MinQuantity
}
