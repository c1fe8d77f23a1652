package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/presupuestos-api/internal/application/dto"
	"github.com/jhoicas/presupuestos-api/internal/application/lifecycle"
)

// LifecycleHandler recibe los eventos del ciclo de vida de presupuestos y
// servicios y los entrega al dispatcher (protegido).
type LifecycleHandler struct {
	dispatcher *lifecycle.Dispatcher
}

// NewLifecycleHandler construye el handler.
func NewLifecycleHandler(dispatcher *lifecycle.Dispatcher) *LifecycleHandler {
	return &LifecycleHandler{dispatcher: dispatcher}
}

// StatusChanged godoc
// @Summary      Notificar cambio de estado de un documento
// @Description  Aprueba = consumir stock de los ítems; cancelar tras aprobar =
//
//	devolverlo. Transiciones sin efecto de inventario responden 202 igual.
//
// @Tags         lifecycle
// @Security     Bearer
// @Accept       json
// @Param        body  body  dto.StatusChangedRequest  true  "kind, document_id, old_status, new_status, items"
// @Success      202
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/v1/lifecycle/status-changed [post]
func (h *LifecycleHandler) StatusChanged(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	var in dto.StatusChangedRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := h.dispatcher.OnStatusChanged(c.Context(), in.ToEvent(tenantID)); err != nil {
		return mapError(c, err)
	}
	return c.SendStatus(fiber.StatusAccepted)
}

// ItemDeleted godoc
// @Summary      Notificar borrado de un ítem de documento
// @Description  Si el documento padre ya había consumido stock, la devolución
//
//	del ítem se aplica aquí.
//
// @Tags         lifecycle
// @Security     Bearer
// @Accept       json
// @Param        body  body  dto.ItemDeletedRequest  true  "kind, item_id, parent_id, parent_status, product_id, quantity"
// @Success      202
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/v1/lifecycle/item-deleted [post]
func (h *LifecycleHandler) ItemDeleted(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	var in dto.ItemDeletedRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := h.dispatcher.OnItemDeleted(c.Context(), in.ToEvent(tenantID)); err != nil {
		return mapError(c, err)
	}
	return c.SendStatus(fiber.StatusAccepted)
}
