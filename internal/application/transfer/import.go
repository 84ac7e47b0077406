package transfer

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jhoicas/pedidos-api/internal/application/dto"
	"github.com/jhoicas/pedidos-api/internal/domain"
	"github.com/jhoicas/pedidos-api/internal/domain/entity"
	"github.com/jhoicas/pedidos-api/internal/domain/repository"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
)

const (
	// MaxImportSize tamaño máximo del archivo CSV (10 MiB).
	MaxImportSize = 10 << 20
	// maxRowErrors al llegar a este número de filas fallidas se aborta toda la importación.
	maxRowErrors = 10
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// row celdas de una fila indexadas por encabezado; celda vacía = nil.
type row map[string]*string

func (r row) str(key string) string {
	if v := r[key]; v != nil {
		return *v
	}
	return ""
}

// Import lee el CSV y crea los registros de resource en una sola transacción.
// Las filas inválidas se cuentan y se informan como "Fila N: ..."; al llegar a 10 se revierte todo.
func (uc *UseCase) Import(ctx context.Context, ownerID, resource string, r io.Reader) (*dto.ImportResult, error) {
	if err := validateResource(resource); err != nil {
		return nil, err
	}
	header, rows, err := readCSV(r)
	if err != nil {
		return nil, err
	}

	result := &dto.ImportResult{Resource: resource, Errors: []string{}}
	err = uc.txRunner.Run(ctx, func(
		_ repository.OrderRepository,
		productRepo repository.ProductRepository,
		counterpartyRepo repository.CounterpartyRepository,
	) error {
		for i, cells := range rows {
			data := combine(header, cells)
			var rowErr error
			switch resource {
			case ResourceProducts:
				rowErr = uc.importProduct(ctx, productRepo, ownerID, data)
			default:
				rowErr = uc.importCounterparty(ctx, counterpartyRepo, kindOf(resource), ownerID, data)
			}
			if rowErr == nil {
				result.Imported++
				continue
			}
			var invalid *rowError
			if !errors.As(rowErr, &invalid) {
				return rowErr
			}
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("Fila %d: %s", i+2, invalid.msg))
			if result.Failed >= maxRowErrors {
				return fmt.Errorf("demasiados errores, importación detenida. Primeros %d errores: %s",
					maxRowErrors, strings.Join(result.Errors[:maxRowErrors], " | "))
			}
		}
		return nil
	})
	if err != nil {
		uc.log.Warn().Err(err).Str("owner_id", ownerID).Str("resource", resource).Msg("importación fallida")
		return nil, &domain.OperationError{Op: "importar " + resource, Err: err}
	}

	result.Message = fmt.Sprintf("Se importaron %d %s.", result.Imported, resource)
	if result.Failed > 0 {
		result.Message += fmt.Sprintf(" %d filas fallaron.", result.Failed)
	}
	uc.log.Info().
		Str("owner_id", ownerID).
		Str("resource", resource).
		Int("imported", result.Imported).
		Int("failed", result.Failed).
		Msg("importación completada")
	return result, nil
}

// rowError fila rechazada por validación; no aborta la importación.
type rowError struct{ msg string }

func (e *rowError) Error() string { return e.msg }

func invalidRow(format string, args ...any) error {
	return &rowError{msg: fmt.Sprintf(format, args...)}
}

// readCSV decodifica (UTF-8 o Windows-1252), descarta filas en blanco y separa el encabezado.
func readCSV(r io.Reader) ([]string, [][]string, error) {
	raw, err := io.ReadAll(io.LimitReader(r, MaxImportSize+1))
	if err != nil {
		return nil, nil, fmt.Errorf("leer archivo: %w", err)
	}
	if len(raw) > MaxImportSize {
		return nil, nil, domain.NewFieldError("file", "el archivo supera 10 MiB")
	}
	raw = bytes.TrimPrefix(raw, utf8BOM)
	if !utf8.Valid(raw) {
		if raw, err = charmap.Windows1252.NewDecoder().Bytes(raw); err != nil {
			return nil, nil, domain.NewFieldError("file", "codificación no soportada")
		}
	}
	raw = bytes.ReplaceAll(raw, []byte("\r\n"), []byte("\n"))
	raw = bytes.ReplaceAll(raw, []byte("\r"), []byte("\n"))

	reader := csv.NewReader(bytes.NewReader(raw))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, domain.NewFieldError("file", "CSV inválido: "+err.Error())
	}

	nonBlank := records[:0]
	for _, rec := range records {
		for _, cell := range rec {
			if strings.TrimSpace(cell) != "" {
				nonBlank = append(nonBlank, rec)
				break
			}
		}
	}
	if len(nonBlank) == 0 {
		return nil, nil, domain.NewFieldError("file", "el archivo CSV está vacío")
	}
	header := make([]string, len(nonBlank[0]))
	for i, h := range nonBlank[0] {
		header[i] = strings.ToLower(strings.TrimSpace(h))
	}
	return header, nonBlank[1:], nil
}

// combine ajusta la fila al largo del encabezado (rellena o trunca) y la indexa por columna.
func combine(header, cells []string) row {
	out := make(row, len(header))
	for i, h := range header {
		if i >= len(cells) {
			out[h] = nil
			continue
		}
		v := strings.TrimSpace(cells[i])
		if v == "" {
			out[h] = nil
			continue
		}
		out[h] = &v
	}
	return out
}

func (uc *UseCase) importProduct(ctx context.Context, repo repository.ProductRepository, ownerID string, data row) error {
	var problems []string
	name, sku := data.str("name"), data.str("sku")
	if name == "" {
		problems = append(problems, "name es obligatorio")
	} else if utf8.RuneCountInString(name) > 255 {
		problems = append(problems, "name no puede superar 255 caracteres")
	}
	if sku == "" {
		problems = append(problems, "sku es obligatorio")
	} else if utf8.RuneCountInString(sku) > 255 {
		problems = append(problems, "sku no puede superar 255 caracteres")
	}
	price, err := decimal.NewFromString(data.str("price"))
	switch {
	case data["price"] == nil:
		problems = append(problems, "price es obligatorio")
	case err != nil:
		problems = append(problems, "price debe ser numérico")
	case price.IsNegative():
		problems = append(problems, "price debe ser al menos 0")
	}
	var stock int64
	if data["stock"] != nil {
		stock, err = strconv.ParseInt(data.str("stock"), 10, 64)
		if err != nil {
			problems = append(problems, "stock debe ser entero")
		} else if stock < 0 {
			problems = append(problems, "stock debe ser al menos 0")
		}
	}
	if len(problems) > 0 {
		return invalidRow("validación fallida: %s", strings.Join(problems, ", "))
	}

	if existing, err := repo.GetByOwnerAndName(ctx, ownerID, name); err != nil {
		return err
	} else if existing != nil {
		return invalidRow("ya existe un producto con el nombre %q", name)
	}
	if existing, err := repo.GetByOwnerAndSKU(ctx, ownerID, sku); err != nil {
		return err
	} else if existing != nil {
		return invalidRow("ya existe un producto con el SKU %q", sku)
	}

	now := uc.now()
	return repo.Create(ctx, &entity.Product{
		ID:        uuid.New().String(),
		OwnerID:   ownerID,
		Name:      name,
		SKU:       sku,
		Price:     price,
		Stock:     stock,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (uc *UseCase) importCounterparty(ctx context.Context, repo repository.CounterpartyRepository, kind, ownerID string, data row) error {
	var problems []string
	name := data.str("name")
	if name == "" {
		problems = append(problems, "name es obligatorio")
	}
	for _, field := range []string{"name", "contact_email", "contact_phone"} {
		if utf8.RuneCountInString(data.str(field)) > 255 {
			problems = append(problems, field+" no puede superar 255 caracteres")
		}
	}
	if len(problems) > 0 {
		return invalidRow("validación fallida: %s", strings.Join(problems, ", "))
	}
	if existing, err := repo.GetByOwnerAndName(ctx, kind, ownerID, name); err != nil {
		return err
	} else if existing != nil {
		return invalidRow("ya existe un registro con el nombre %q", name)
	}

	now := uc.now()
	return repo.Create(ctx, &entity.Counterparty{
		ID:           uuid.New().String(),
		OwnerID:      ownerID,
		Kind:         kind,
		Name:         name,
		Description:  data.str("description"),
		ContactEmail: data.str("contact_email"),
		ContactPhone: data.str("contact_phone"),
		Address:      data.str("address"),
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}
