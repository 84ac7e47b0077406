package orders

import (
	"context"
	"fmt"

	"github.com/jhoicas/pedidos-api/internal/application/ports"
	"github.com/jhoicas/pedidos-api/internal/domain"
	"github.com/jhoicas/pedidos-api/internal/domain/entity"
	"github.com/jhoicas/pedidos-api/pkg/money"
)

// PrintUseCase genera la versión imprimible (PDF) de un pedido.
type PrintUseCase struct {
	orders    *UseCase
	generator ports.OrderPDFGenerator
	money     *money.Formatter
	appName   string
}

// NewPrintUseCase construye el caso de uso de impresión.
func NewPrintUseCase(orders *UseCase, generator ports.OrderPDFGenerator, formatter *money.Formatter, appName string) *PrintUseCase {
	return &PrintUseCase{orders: orders, generator: generator, money: formatter, appName: appName}
}

// Print devuelve el PDF del pedido en formato a4 (por defecto) o receipt.
func (uc *PrintUseCase) Print(ctx context.Context, ownerID, id, format string) ([]byte, error) {
	switch format {
	case "":
		format = ports.PrintFormatA4
	case ports.PrintFormatA4, ports.PrintFormatReceipt:
	default:
		return nil, domain.NewFieldError("format", "debe ser a4 o receipt")
	}
	order, err := uc.orders.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	doc := &ports.OrderDocument{
		AppName:           uc.appName,
		OrderNumber:       order.OrderNumber,
		Date:              order.CreatedAt,
		CounterpartyLabel: "Proveedor",
		ItemCount:         order.ItemCount,
		Total:             uc.money.Format(order.Cost),
	}
	if order.Type == entity.KindClient {
		doc.CounterpartyLabel = "Cliente"
	}
	if order.Counterparty != nil {
		doc.CounterpartyName = order.Counterparty.Name
		doc.CounterpartyPhone = order.Counterparty.ContactPhone
		doc.CounterpartyAddress = order.Counterparty.Address
	}
	for _, l := range order.Lines {
		doc.Lines = append(doc.Lines, ports.OrderDocumentLine{
			ProductName: l.ProductName,
			ProductSKU:  l.ProductSKU,
			Quantity:    l.Quantity,
			UnitPrice:   uc.money.Format(l.UnitPrice),
			Subtotal:    uc.money.Format(l.Subtotal),
		})
	}

	pdf, err := uc.generator.GenerateOrderPDF(doc, format)
	if err != nil {
		return nil, fmt.Errorf("generar PDF: %w", err)
	}
	return pdf, nil
}
