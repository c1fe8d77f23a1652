package dto

import (
	"time"

	"github.com/jhoicas/presupuestos-api/internal/domain/entity"
)

// TrackProductRequest body para POST /api/v1/stock.
// El tenant siempre sale del token, nunca del body.
type TrackProductRequest struct {
	ProductID   string `json:"product_id"`
	Quantity    int64  `json:"quantity"`
	MinQuantity int64  `json:"min_quantity"`
}

// MinQuantityRequest body para PUT /api/v1/stock/:product_id/min-quantity.
type MinQuantityRequest struct {
	MinQuantity int64 `json:"min_quantity"`
}

// MovementRequest body para consumir o devolver stock de forma directa
// (POST /api/v1/inventory/consume y /api/v1/inventory/return).
type MovementRequest struct {
	ProductID     string `json:"product_id"`
	Quantity      int64  `json:"quantity"`
	Reason        string `json:"reason"`
	ReferenceType string `json:"reference_type"`
	ReferenceID   string `json:"reference_id"`
}

// MovementResponse representación de un movimiento en respuestas.
type MovementResponse struct {
	ID            string    `json:"id"`
	ProductID     string    `json:"product_id"`
	ReferenceType string    `json:"reference_type"`
	ReferenceID   string    `json:"reference_id"`
	Type          string    `json:"type"`
	Quantity      int64     `json:"quantity"`
	Reason        string    `json:"reason,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewMovementResponse convierte la entidad al DTO (sin exponer tenant_id).
func NewMovementResponse(m *entity.InventoryMovement) MovementResponse {
	return MovementResponse{
		ID:            m.ID,
		ProductID:     m.ProductID,
		ReferenceType: m.ReferenceType,
		ReferenceID:   m.ReferenceID,
		Type:          m.Type,
		Quantity:      m.Quantity,
		Reason:        m.Reason,
		CreatedAt:     m.CreatedAt,
	}
}

// StockResponse representación del stock de un producto.
type StockResponse struct {
	ProductID   string    `json:"product_id"`
	Quantity    int64     `json:"quantity"`
	MinQuantity int64     `json:"min_quantity"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewStockResponse convierte la entidad al DTO.
func NewStockResponse(s *entity.Stock) StockResponse {
	return StockResponse{
		ProductID:   s.ProductID,
		Quantity:    s.Quantity,
		MinQuantity: s.MinQuantity,
		UpdatedAt:   s.UpdatedAt,
	}
}

// BalanceResponse balance con signo del libro de movimientos de un producto.
type BalanceResponse struct {
	ProductID string `json:"product_id"`
	Balance   int64  `json:"balance"`
}
