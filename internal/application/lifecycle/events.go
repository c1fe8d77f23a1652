package lifecycle

// LineItem línea de producto de un presupuesto o servicio.
// Items sin producto asociado (mano de obra, etc.) llegan con ProductID vacío
// y el dispatcher los ignora.
type LineItem struct {
	ItemID    string
	ProductID string
	Quantity  int64
}

// StatusChanged evento emitido por la capa de documentos cuando un presupuesto o
// servicio cambia de status. Old y New llegan ya resueltos; el motor no consulta
// documentos.
type StatusChanged struct {
	Kind       string // budget o service
	DocumentID string
	TenantID   string
	OldStatus  string
	NewStatus  string
	Items      []LineItem
}

// ItemDeleted evento emitido cuando se elimina una línea de un documento.
// ParentStatus es el status del documento padre al momento del borrado; decide
// si la eliminación implica devolver stock.
type ItemDeleted struct {
	Kind         string // budget_item o service_item
	ItemID       string
	ParentID     string
	ParentStatus string
	TenantID     string
	ProductID    string
	Quantity     int64
}
