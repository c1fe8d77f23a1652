package dto

import "github.com/jhoicas/presupuestos-api/internal/application/lifecycle"

// LineItemDTO ítem de línea de un presupuesto o servicio.
type LineItemDTO struct {
	ItemID    string `json:"item_id"`
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
}

// StatusChangedRequest body para POST /api/v1/lifecycle/status-changed.
// Lo emite el módulo de presupuestos/servicios cuando cambia el estado de un documento.
type StatusChangedRequest struct {
	Kind       string        `json:"kind"` // budget | service
	DocumentID string        `json:"document_id"`
	OldStatus  string        `json:"old_status"`
	NewStatus  string        `json:"new_status"`
	Items      []LineItemDTO `json:"items"`
}

// ToEvent arma el evento de dominio con el tenant del token.
func (r StatusChangedRequest) ToEvent(tenantID string) lifecycle.StatusChanged {
	items := make([]lifecycle.LineItem, 0, len(r.Items))
	for _, it := range r.Items {
		items = append(items, lifecycle.LineItem{
			ItemID:    it.ItemID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
		})
	}
	return lifecycle.StatusChanged{
		Kind:       r.Kind,
		DocumentID: r.DocumentID,
		TenantID:   tenantID,
		OldStatus:  r.OldStatus,
		NewStatus:  r.NewStatus,
		Items:      items,
	}
}

// ItemDeletedRequest body para POST /api/v1/lifecycle/item-deleted.
type ItemDeletedRequest struct {
	Kind         string `json:"kind"` // budget_item | service_item
	ItemID       string `json:"item_id"`
	ParentID     string `json:"parent_id"`
	ParentStatus string `json:"parent_status"`
	ProductID    string `json:"product_id"`
	Quantity     int64  `json:"quantity"`
}

// ToEvent arma el evento de dominio con el tenant del token.
func (r ItemDeletedRequest) ToEvent(tenantID string) lifecycle.ItemDeleted {
	return lifecycle.ItemDeleted{
		Kind:         r.Kind,
		ItemID:       r.ItemID,
		ParentID:     r.ParentID,
		ParentStatus: r.ParentStatus,
		TenantID:     tenantID,
		ProductID:    r.ProductID,
		Quantity:     r.Quantity,
	}
}
