package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/pedidos-api/internal/application/dto"
	"github.com/jhoicas/pedidos-api/internal/application/transfer"
	"github.com/rs/zerolog"
)

// TransferHandler importación CSV y exportación CSV/XML de productos, clientes y proveedores.
type TransferHandler struct {
	uc  *transfer.UseCase
	log zerolog.Logger
}

// NewTransferHandler construye el handler.
func NewTransferHandler(uc *transfer.UseCase, log zerolog.Logger) *TransferHandler {
	return &TransferHandler{uc: uc, log: log}
}

// Import godoc
// @Summary      Importar CSV
// @Tags         transfer
// @Security     Bearer
// @Accept       multipart/form-data
// @Produce      json
// @Param        resource  path      string  true  "products, clients o suppliers"
// @Param        file      formData  file    true  "Archivo CSV (máx. 10 MB)"
// @Success      200  {object}  dto.ImportResult
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/transfer/import/{resource} [post]
func (h *TransferHandler) Import(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_FILE", Message: "el campo file es requerido"})
	}
	f, err := fh.Open()
	if err != nil {
		return writeError(c, h.log, fmt.Errorf("abrir archivo subido: %w", err), nil)
	}
	defer f.Close()

	out, err := h.uc.Import(c.UserContext(), GetUserID(c), c.Params("resource"), f)
	if err != nil {
		return writeError(c, h.log, err, nil)
	}
	return c.JSON(out)
}

// Export godoc
// @Summary      Exportar CSV o XML
// @Tags         transfer
// @Security     Bearer
// @Produce      text/csv
// @Produce      application/xml
// @Param        resource         path   string  true   "products, clients o suppliers"
// @Param        format           query  string  false  "csv o xml"  default(csv)
// @Param        include_headers  query  bool    false  "Fila de cabecera (solo CSV)"  default(true)
// @Success      200  {file}    binary
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/transfer/export/{resource} [get]
func (h *TransferHandler) Export(c *fiber.Ctx) error {
	file, err := h.uc.Export(c.UserContext(), GetUserID(c), c.Params("resource"), c.Query("format"), c.QueryBool("include_headers", true))
	if err != nil {
		return writeError(c, h.log, err, nil)
	}
	// Attachment fija el Content-Type por extensión; se sobrescribe con el del archivo.
	c.Attachment(file.Filename)
	c.Set(fiber.HeaderContentType, file.ContentType)
	return c.Send(file.Content)
}

// Stats godoc
// @Summary      Registros exportables por recurso
// @Tags         transfer
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ExportStats
// @Router       /api/transfer/stats [get]
func (h *TransferHandler) Stats(c *fiber.Ctx) error {
	out, err := h.uc.Stats(c.UserContext(), GetUserID(c))
	if err != nil {
		return writeError(c, h.log, err, nil)
	}
	return c.JSON(out)
}
