package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrInsufficientStock = errors.New("stock insuficiente")
	// ErrDuplicateMovement indica que ya existe un movimiento para la misma
	// referencia (producto, tenant, tipo de referencia, id de referencia, tipo).
	// Para el caller no es un fallo: la operación ya fue aplicada antes.
	ErrDuplicateMovement = errors.New("movimiento duplicado para la referencia")
	// ErrBusy indica que no se pudo tomar el bloqueo de fila dentro del tiempo
	// configurado. Transitorio: el caller puede reintentar.
	ErrBusy = errors.New("recurso ocupado, reintentar")
)
