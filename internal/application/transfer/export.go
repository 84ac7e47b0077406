package transfer

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/beevik/etree"
	"github.com/jhoicas/pedidos-api/internal/application/dto"
	"github.com/jhoicas/pedidos-api/internal/domain"
	"github.com/jhoicas/pedidos-api/internal/domain/repository"
)

const timestampLayout = "2006-01-02 15:04:05"

var (
	productColumns      = []string{"id", "name", "sku", "price", "stock", "created_at", "updated_at"}
	counterpartyColumns = []string{"id", "name", "description", "contact_email", "contact_phone", "address", "created_at", "updated_at"}
)

// table registros de un recurso listos para serializar.
type table struct {
	resource string
	element  string // nombre del elemento XML de cada registro
	columns  []string
	rows     [][]string
}

// Export serializa todos los registros de resource del owner, más recientes primero.
func (uc *UseCase) Export(ctx context.Context, ownerID, resource, format string, includeHeaders bool) (*dto.ExportFile, error) {
	if err := validateResource(resource); err != nil {
		return nil, err
	}
	if format == "" {
		format = FormatCSV
	}
	if format != FormatCSV && format != FormatXML {
		return nil, domain.NewFieldError("format", "debe ser csv o xml")
	}

	t, err := uc.load(ctx, ownerID, resource)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	out := &dto.ExportFile{
		Filename: fmt.Sprintf("%s_export_%s.%s", resource, now.Format("2006-01-02_150405"), format),
	}
	switch format {
	case FormatXML:
		out.ContentType = "application/xml"
		out.Content, err = t.xml(now)
	default:
		out.ContentType = "text/csv; charset=utf-8"
		out.Content, err = t.csv(includeHeaders)
	}
	if err != nil {
		return nil, fmt.Errorf("exportar %s: %w", resource, err)
	}
	uc.log.Info().Str("owner_id", ownerID).Str("resource", resource).Str("format", format).Int("rows", len(t.rows)).Msg("exportación generada")
	return out, nil
}

func (uc *UseCase) load(ctx context.Context, ownerID, resource string) (*table, error) {
	filter := repository.ListFilter{SortBy: "created_at", SortDirection: repository.SortDesc}
	if resource == ResourceProducts {
		products, _, err := uc.productRepo.List(ctx, ownerID, filter)
		if err != nil {
			return nil, err
		}
		t := &table{resource: resource, element: "product", columns: productColumns}
		for _, p := range products {
			t.rows = append(t.rows, []string{
				p.ID, p.Name, p.SKU, p.Price.StringFixed(2), strconv.FormatInt(p.Stock, 10),
				p.CreatedAt.Format(timestampLayout), p.UpdatedAt.Format(timestampLayout),
			})
		}
		return t, nil
	}

	kind := kindOf(resource)
	items, _, err := uc.counterpartyRepo.List(ctx, kind, ownerID, filter)
	if err != nil {
		return nil, err
	}
	t := &table{resource: resource, element: kind, columns: counterpartyColumns}
	for _, c := range items {
		t.rows = append(t.rows, []string{
			c.ID, c.Name, c.Description, c.ContactEmail, c.ContactPhone, c.Address,
			c.CreatedAt.Format(timestampLayout), c.UpdatedAt.Format(timestampLayout),
		})
	}
	return t, nil
}

func (t *table) csv(includeHeaders bool) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if includeHeaders {
		if err := w.Write(t.columns); err != nil {
			return nil, err
		}
	}
	if err := w.WriteAll(t.rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (t *table) xml(exportedAt time.Time) ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	root := doc.CreateElement(t.resource)
	root.CreateAttr("exported_at", exportedAt.Format(timestampLayout))
	root.CreateAttr("count", strconv.Itoa(len(t.rows)))
	for _, r := range t.rows {
		el := root.CreateElement(t.element)
		for i, col := range t.columns {
			el.CreateElement(col).SetText(r[i])
		}
	}
	doc.Indent(2)
	return doc.WriteToBytes()
}
