package lifecycle

import (
	"context"

	"github.com/jhoicas/presupuestos-api/internal/application/inventory"
	"github.com/jhoicas/presupuestos-api/internal/domain/entity"
	"github.com/jhoicas/presupuestos-api/pkg/logger"
)

// InventoryEngine puerto hacia el motor de inventario. Lo implementa
// inventory.UseCase; el dispatcher no conoce transacciones ni repositorios.
type InventoryEngine interface {
	ConsumeProduct(ctx context.Context, in inventory.MovementInput) (*entity.InventoryMovement, error)
	ReturnProduct(ctx context.Context, in inventory.MovementInput) (*entity.InventoryMovement, error)
}

// Dispatcher traduce eventos de ciclo de vida de documentos en llamadas al motor
// de inventario. Es stateless: toda decisión sale del propio evento, así que es
// seguro invocarlo concurrentemente desde varias fuentes.
//
// Tabla de transiciones:
//
//	budget  * -> APPROVED             consume por item (ref budget, id del presupuesto)
//	budget  APPROVED -> CANCELLED     devuelve por item
//	service * -> COMPLETED            consume por item (ref service, id del servicio)
//	service COMPLETED -> CANCELLED    devuelve por item
//	budget_item  borrado con padre APPROVED    devuelve (ref budget_item, id del item)
//	service_item borrado con padre COMPLETED   devuelve (ref service_item, id del item)
//
// Solo dispara cuando el status realmente cambió; transiciones desconocidas se
// ignoran sin error. Reentregar el mismo evento es seguro: el motor aplica cada
// referencia una sola vez.
type Dispatcher struct {
	inv InventoryEngine
	log *logger.Logger
}

// NewDispatcher construye el dispatcher.
func NewDispatcher(inv InventoryEngine, log *logger.Logger) *Dispatcher {
	return &Dispatcher{inv: inv, log: log}
}

// OnStatusChanged procesa un cambio de status de presupuesto o servicio.
// Un fallo en un item no detiene los demás; se devuelve el primer error para que
// la fuente del evento pueda reintentar la entrega completa (el replay es inocuo).
func (d *Dispatcher) OnStatusChanged(ctx context.Context, ev StatusChanged) error {
	if ev.OldStatus == ev.NewStatus {
		return nil
	}

	d.log.Info().
		Str("kind", ev.Kind).
		Str("document_id", ev.DocumentID).
		Str("tenant_id", ev.TenantID).
		Str("old_status", ev.OldStatus).
		Str("new_status", ev.NewStatus).
		Msg("cambio de status de documento")

	switch ev.Kind {
	case entity.DocumentKindBudget:
		if ev.NewStatus == entity.BudgetStatusApproved {
			return d.applyToItems(ctx, ev, entity.ReferenceTypeBudget, d.inv.ConsumeProduct,
				"Aprobación de presupuesto - "+ev.DocumentID)
		}
		if ev.OldStatus == entity.BudgetStatusApproved && ev.NewStatus == entity.BudgetStatusCancelled {
			return d.applyToItems(ctx, ev, entity.ReferenceTypeBudget, d.inv.ReturnProduct,
				"Cancelación de presupuesto - "+ev.DocumentID)
		}
	case entity.DocumentKindService:
		if ev.NewStatus == entity.ServiceStatusCompleted {
			return d.applyToItems(ctx, ev, entity.ReferenceTypeService, d.inv.ConsumeProduct,
				"Finalización de servicio - "+ev.DocumentID)
		}
		if ev.OldStatus == entity.ServiceStatusCompleted && ev.NewStatus == entity.ServiceStatusCancelled {
			return d.applyToItems(ctx, ev, entity.ReferenceTypeService, d.inv.ReturnProduct,
				"Cancelación de servicio - "+ev.DocumentID)
		}
	default:
		d.log.Debug().Str("kind", ev.Kind).Msg("tipo de documento no observado")
	}
	return nil
}

// OnItemDeleted procesa la eliminación de una línea. Solo devuelve stock si el
// documento padre ya había consumido (presupuesto aprobado, servicio completado).
func (d *Dispatcher) OnItemDeleted(ctx context.Context, ev ItemDeleted) error {
	if ev.ProductID == "" {
		return nil
	}

	var referenceType, reason string
	switch {
	case ev.Kind == entity.DocumentKindBudgetItem && ev.ParentStatus == entity.BudgetStatusApproved:
		referenceType = entity.ReferenceTypeBudgetItem
		reason = "Devolución por eliminación de item - Presupuesto: " + ev.ParentID
	case ev.Kind == entity.DocumentKindServiceItem && ev.ParentStatus == entity.ServiceStatusCompleted:
		referenceType = entity.ReferenceTypeServiceItem
		reason = "Devolución por eliminación de item - Servicio: " + ev.ParentID
	default:
		return nil
	}

	_, err := d.inv.ReturnProduct(ctx, inventory.MovementInput{
		ProductID:     ev.ProductID,
		TenantID:      ev.TenantID,
		Quantity:      ev.Quantity,
		Reason:        reason,
		ReferenceType: referenceType,
		ReferenceID:   ev.ItemID,
	})
	if err != nil {
		d.log.Error().
			Err(err).
			Str("item_id", ev.ItemID).
			Str("product_id", ev.ProductID).
			Str("tenant_id", ev.TenantID).
			Msg("fallo al devolver stock por item eliminado")
		return err
	}
	return nil
}

type movementFn func(ctx context.Context, in inventory.MovementInput) (*entity.InventoryMovement, error)

// applyToItems recorre los items del documento aplicando fn a cada producto.
// Continúa ante fallos individuales y reporta el primero al final.
func (d *Dispatcher) applyToItems(ctx context.Context, ev StatusChanged, referenceType string, fn movementFn, reason string) error {
	var firstErr error
	for _, item := range ev.Items {
		if item.ProductID == "" {
			continue
		}
		_, err := fn(ctx, inventory.MovementInput{
			ProductID:     item.ProductID,
			TenantID:      ev.TenantID,
			Quantity:      item.Quantity,
			Reason:        reason,
			ReferenceType: referenceType,
			ReferenceID:   ev.DocumentID,
		})
		if err != nil {
			d.log.Error().
				Err(err).
				Str("document_id", ev.DocumentID).
				Str("product_id", item.ProductID).
				Str("tenant_id", ev.TenantID).
				Msg("fallo al ajustar stock por transición de documento")
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
