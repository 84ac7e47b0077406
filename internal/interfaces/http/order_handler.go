package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/pedidos-api/internal/application/dto"
	"github.com/jhoicas/pedidos-api/internal/application/orders"
	"github.com/rs/zerolog"
)

// OrderHandler maneja pedidos de clientes y proveedores.
// Los fallos de creación/edición devuelven 422 con la entrada original en "input".
type OrderHandler struct {
	uc      *orders.UseCase
	printUC *orders.PrintUseCase
	log     zerolog.Logger
}

// NewOrderHandler construye el handler.
func NewOrderHandler(uc *orders.UseCase, printUC *orders.PrintUseCase, log zerolog.Logger) *OrderHandler {
	return &OrderHandler{uc: uc, printUC: printUC, log: log}
}

// Create godoc
// @Summary      Crear pedido
// @Description  Exactamente uno de client_id o supplier_id. Ajusta el stock de cada producto en la misma transacción.
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateOrderRequest  true  "Pedido"
// @Success      201   {object}  dto.OrderResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/orders [post]
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Create(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return writeError(c, h.log, err, in)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener pedido con sus líneas
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del pedido"
// @Success      200  {object}  dto.OrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id} [get]
func (h *OrderHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), GetUserID(c), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err, nil)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar pedidos
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        type            query  string  false  "client o supplier"
// @Param        start_date      query  string  false  "YYYY-MM-DD"
// @Param        end_date        query  string  false  "YYYY-MM-DD"
// @Param        search          query  string  false  "Número de pedido o contraparte"
// @Param        sort_by         query  string  false  "created_at, total_amount, item_count"
// @Param        sort_direction  query  string  false  "asc o desc"
// @Param        page            query  int     false  "Página"
// @Param        per_page        query  int     false  "Por página"
// @Success      200  {object}  dto.OrderListResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/orders [get]
func (h *OrderHandler) List(c *fiber.Ctx) error {
	var in dto.OrderListRequest
	if err := c.QueryParser(&in.ListRequest); err != nil {
		return badQuery(c)
	}
	in.Type = c.Query("type")
	in.StartDate = c.Query("start_date")
	in.EndDate = c.Query("end_date")
	out, err := h.uc.List(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return writeError(c, h.log, err, nil)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Reemplazar líneas del pedido
// @Description  Las líneas enviadas reemplazan a las anteriores; el stock se ajusta por la diferencia neta.
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del pedido"
// @Param        body  body  dto.UpdateOrderRequest  true  "Líneas y datos de contacto"
// @Success      200   {object}  dto.OrderResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/orders/{id} [put]
func (h *OrderHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Update(c.UserContext(), GetUserID(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, h.log, err, in)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar pedido
// @Description  Revierte el efecto del pedido sobre el stock.
// @Tags         orders
// @Security     Bearer
// @Param        id   path  string  true  "ID del pedido"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/orders/{id} [delete]
func (h *OrderHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), GetUserID(c), c.Params("id")); err != nil {
		return writeError(c, h.log, err, nil)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Print godoc
// @Summary      Imprimir pedido (PDF)
// @Tags         orders
// @Security     Bearer
// @Produce      application/pdf
// @Param        id      path   string  true   "ID del pedido"
// @Param        format  query  string  false  "a4 o receipt"  default(a4)
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/print [get]
func (h *OrderHandler) Print(c *fiber.Ctx) error {
	id := c.Params("id")
	pdf, err := h.printUC.Print(c.UserContext(), GetUserID(c), id, c.Query("format"))
	if err != nil {
		return writeError(c, h.log, err, nil)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`inline; filename="pedido-%s.pdf"`, id))
	return c.Send(pdf)
}
