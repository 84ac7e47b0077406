package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/pedidos-api/internal/application/dto"
	"github.com/jhoicas/pedidos-api/internal/application/usecase"
	"github.com/rs/zerolog"
)

// CounterpartyHandler CRUD de clientes o proveedores; el tipo lo fija el caso de uso.
type CounterpartyHandler struct {
	uc  *usecase.CounterpartyUseCase
	log zerolog.Logger
}

// NewCounterpartyHandler construye el handler.
func NewCounterpartyHandler(uc *usecase.CounterpartyUseCase, log zerolog.Logger) *CounterpartyHandler {
	return &CounterpartyHandler{uc: uc, log: log}
}

// Create godoc
// @Summary      Crear cliente o proveedor
// @Tags         counterparties
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateCounterpartyRequest  true  "Datos"
// @Success      201   {object}  dto.CounterpartyResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/clients [post]
// @Router       /api/suppliers [post]
func (h *CounterpartyHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateCounterpartyRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Create(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return writeError(c, h.log, err, nil)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener cliente o proveedor
// @Tags         counterparties
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID"
// @Success      200  {object}  dto.CounterpartyResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/clients/{id} [get]
// @Router       /api/suppliers/{id} [get]
func (h *CounterpartyHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), GetUserID(c), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err, nil)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar clientes o proveedores
// @Tags         counterparties
// @Security     Bearer
// @Produce      json
// @Param        search          query  string  false  "Nombre o email"
// @Param        sort_by         query  string  false  "name, contact_email, created_at"
// @Param        sort_direction  query  string  false  "asc o desc"
// @Param        page            query  int     false  "Página"
// @Param        per_page        query  int     false  "Por página"
// @Success      200  {object}  dto.CounterpartyListResponse
// @Router       /api/clients [get]
// @Router       /api/suppliers [get]
func (h *CounterpartyHandler) List(c *fiber.Ctx) error {
	var in dto.ListRequest
	if err := c.QueryParser(&in); err != nil {
		return badQuery(c)
	}
	out, err := h.uc.List(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return writeError(c, h.log, err, nil)
	}
	return c.JSON(out)
}

// Search godoc
// @Summary      Buscar clientes o proveedores (selector de pedidos)
// @Tags         counterparties
// @Security     Bearer
// @Produce      json
// @Param        term  query  string  true  "Nombre, email o teléfono"
// @Success      200   {array}   dto.CounterpartyResponse
// @Router       /api/clients/search [get]
// @Router       /api/suppliers/search [get]
func (h *CounterpartyHandler) Search(c *fiber.Ctx) error {
	out, err := h.uc.Search(c.UserContext(), GetUserID(c), dto.SearchRequest{Term: c.Query("term")})
	if err != nil {
		return writeError(c, h.log, err, nil)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar cliente o proveedor
// @Tags         counterparties
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID"
// @Param        body  body  dto.UpdateCounterpartyRequest  true  "Datos a actualizar"
// @Success      200   {object}  dto.CounterpartyResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/clients/{id} [put]
// @Router       /api/suppliers/{id} [put]
func (h *CounterpartyHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateCounterpartyRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Update(c.UserContext(), GetUserID(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, h.log, err, nil)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar cliente o proveedor
// @Tags         counterparties
// @Security     Bearer
// @Param        id   path  string  true  "ID"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/clients/{id} [delete]
// @Router       /api/suppliers/{id} [delete]
func (h *CounterpartyHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), GetUserID(c), c.Params("id")); err != nil {
		return writeError(c, h.log, err, nil)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
