package entity

// Tipos de documento observados por el motor. Los documentos en sí viven en la
// aplicación que nos rodea; aquí solo importan su tipo y sus transiciones.
const (
	DocumentKindBudget      = "budget"
	DocumentKindService     = "service"
	DocumentKindBudgetItem  = "budget_item"
	DocumentKindServiceItem = "service_item"
)

// Status de presupuesto relevantes para el motor.
const (
	BudgetStatusDraft     = "DRAFT"
	BudgetStatusPending   = "PENDING"
	BudgetStatusApproved  = "APPROVED"
	BudgetStatusCancelled = "CANCELLED"
)

// Status de servicio relevantes para el motor.
const (
	ServiceStatusPending   = "PENDING"
	ServiceStatusCompleted = "COMPLETED"
	ServiceStatusCancelled = "CANCELLED"
)
