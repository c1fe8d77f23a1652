package http

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/presupuestos-api/internal/application/dto"
	"github.com/jhoicas/presupuestos-api/internal/application/inventory"
	"github.com/jhoicas/presupuestos-api/internal/domain"
	"github.com/jhoicas/presupuestos-api/internal/domain/entity"
)

// InventoryHandler maneja las peticiones HTTP de stock y movimientos (protegido).
type InventoryHandler struct {
	uc *inventory.UseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *inventory.UseCase) *InventoryHandler {
	return &InventoryHandler{uc: uc}
}

// mapError traduce errores de dominio a respuestas HTTP.
func mapError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "producto sin stock registrado"})
	case errors.Is(err, domain.ErrDuplicate):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: "el producto ya está registrado en stock"})
	case errors.Is(err, domain.ErrInsufficientStock):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: "stock insuficiente"})
	case errors.Is(err, domain.ErrBusy):
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "BUSY", Message: "recurso ocupado, reintentar"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}

// TrackProduct godoc
// @Summary      Registrar un producto en stock
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.TrackProductRequest  true  "product_id, quantity inicial, min_quantity"
// @Success      201   {object}  dto.StockResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/v1/stock [post]
func (h *InventoryHandler) TrackProduct(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	var in dto.TrackProductRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	stock, err := h.uc.TrackProduct(c.Context(), in.ProductID, tenantID, in.Quantity, in.MinQuantity)
	if err != nil {
		return mapError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewStockResponse(stock))
}

// GetStock godoc
// @Summary      Stock actual de un producto
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        product_id  path  string  true  "ID del producto"
// @Success      200  {object}  dto.StockResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/v1/stock/{product_id} [get]
func (h *InventoryHandler) GetStock(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	stock, err := h.uc.GetStock(c.Context(), c.Params("product_id"), tenantID)
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(dto.NewStockResponse(stock))
}

// SetMinQuantity godoc
// @Summary      Actualizar el umbral mínimo de un producto
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Param        product_id  path  string  true  "ID del producto"
// @Param        body  body  dto.MinQuantityRequest  true  "min_quantity"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/v1/stock/{product_id}/min-quantity [put]
func (h *InventoryHandler) SetMinQuantity(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	var in dto.MinQuantityRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := h.uc.SetMinQuantity(c.Context(), c.Params("product_id"), tenantID, in.MinQuantity); err != nil {
		return mapError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListLowStock godoc
// @Summary      Productos en o bajo su stock mínimo
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        limit  query  int  false  "Máximo de filas (default 10)"
// @Success      200  {array}  dto.StockResponse
// @Router       /api/v1/stock/low [get]
func (h *InventoryHandler) ListLowStock(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	list, err := h.uc.ListLowStock(c.Context(), tenantID, c.QueryInt("limit"))
	if err != nil {
		return mapError(c, err)
	}
	out := make([]dto.StockResponse, 0, len(list))
	for _, s := range list {
		out = append(out, dto.NewStockResponse(s))
	}
	return c.JSON(fiber.Map{"total": len(out), "stocks": out})
}

// Consume godoc
// @Summary      Consumir stock por una referencia de documento
// @Description  Idempotente: repetir la misma referencia devuelve el movimiento
//
//	original sin volver a descontar.
//
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.MovementRequest  true  "product_id, quantity, reference_type, reference_id"
// @Success      201  {object}  dto.MovementResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/v1/inventory/consume [post]
func (h *InventoryHandler) Consume(c *fiber.Ctx) error {
	return h.applyMovement(c, h.uc.ConsumeProduct)
}

// Return godoc
// @Summary      Devolver stock por una referencia de documento
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.MovementRequest  true  "product_id, quantity, reference_type, reference_id"
// @Success      201  {object}  dto.MovementResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/v1/inventory/return [post]
func (h *InventoryHandler) Return(c *fiber.Ctx) error {
	return h.applyMovement(c, h.uc.ReturnProduct)
}

func (h *InventoryHandler) applyMovement(c *fiber.Ctx, apply func(ctx context.Context, in inventory.MovementInput) (*entity.InventoryMovement, error)) error {
	tenantID := GetTenantID(c)
	var in dto.MovementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	mov, err := apply(c.Context(), inventory.MovementInput{
		ProductID:     in.ProductID,
		TenantID:      tenantID,
		Quantity:      in.Quantity,
		Reason:        in.Reason,
		ReferenceType: in.ReferenceType,
		ReferenceID:   in.ReferenceID,
	})
	if err != nil {
		return mapError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewMovementResponse(mov))
}

// ListMovements godoc
// @Summary      Libro de movimientos de un producto
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        product_id  path   string  true   "ID del producto"
// @Param        from        query  string  false  "Fecha mínima (RFC3339)"
// @Param        to          query  string  false  "Fecha máxima (RFC3339)"
// @Success      200  {array}  dto.MovementResponse
// @Router       /api/v1/inventory/{product_id}/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()

	var from, to *time.Time
	if raw := c.Query("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from inválido (RFC3339)"})
		}
		from = &t
	}
	if raw := c.Query("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "to inválido (RFC3339)"})
		}
		to = &t
	}

	list, err := h.uc.ListMovements(c.Context(), c.Params("product_id"), tenantID, from, to, page.Limit, page.Offset)
	if err != nil {
		return mapError(c, err)
	}
	out := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, dto.NewMovementResponse(m))
	}
	return c.JSON(fiber.Map{"total": len(out), "movements": out})
}

// GetBalance godoc
// @Summary      Balance con signo del libro de un producto
// @Description  Suma de devoluciones menos salidas. Sirve para conciliar contra
//
//	el stock actual: cantidad == cantidad inicial + balance.
//
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        product_id  path  string  true  "ID del producto"
// @Success      200  {object}  dto.BalanceResponse
// @Router       /api/v1/inventory/{product_id}/balance [get]
func (h *InventoryHandler) GetBalance(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	productID := c.Params("product_id")
	balance, err := h.uc.LedgerBalance(c.Context(), productID, tenantID)
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(dto.BalanceResponse{ProductID: productID, Balance: balance})
}
