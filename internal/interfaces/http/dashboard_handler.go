package http

import (
	"github.com/gofiber/fiber/v2"
	appanalytics "github.com/jhoicas/pedidos-api/internal/application/analytics"
	"github.com/rs/zerolog"
)

// DashboardHandler maneja los endpoints del Dashboard.
type DashboardHandler struct {
	uc  *appanalytics.DashboardUseCase
	log zerolog.Logger
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(uc *appanalytics.DashboardUseCase, log zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{uc: uc, log: log}
}

// GetSummary godoc
// @Summary      Resumen del dashboard
// @Description  Ingresos (pedidos de clientes), gastos (pedidos a proveedores), ganancia, conteos,
// @Description  pedidos recientes y la serie de los últimos 6 meses.
// @Tags         dashboard
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.DashboardDTO
// @Router       /api/dashboard [get]
func (h *DashboardHandler) GetSummary(c *fiber.Ctx) error {
	summary, err := h.uc.GetSummary(c.UserContext(), GetUserID(c))
	if err != nil {
		return writeError(c, h.log, err, nil)
	}
	return c.JSON(summary)
}
