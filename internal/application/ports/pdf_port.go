package ports

import "time"

// Formatos de impresión de pedidos.
const (
	PrintFormatA4      = "a4"
	PrintFormatReceipt = "receipt" // ticket térmico de 80 mm
)

// OrderDocument datos ya formateados para imprimir un pedido.
type OrderDocument struct {
	AppName             string
	OrderNumber         string
	Date                time.Time
	CounterpartyLabel   string // Cliente | Proveedor
	CounterpartyName    string
	CounterpartyPhone   string
	CounterpartyAddress string
	Lines               []OrderDocumentLine
	ItemCount           int64
	Total               string
}

// OrderDocumentLine línea impresa: "cantidad x precio = subtotal".
type OrderDocumentLine struct {
	ProductName string
	ProductSKU  string
	Quantity    int64
	UnitPrice   string
	Subtotal    string
}

// OrderPDFGenerator genera el PDF de un pedido en el formato pedido.
type OrderPDFGenerator interface {
	GenerateOrderPDF(doc *OrderDocument, format string) ([]byte, error)
}
