package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order cabecera de un pedido. Exactamente uno de ClientID o SupplierID está definido.
// OrderNumber se genera al crear y no cambia.
type Order struct {
	ID          string
	OwnerID     string
	OrderNumber string
	ClientID    *string
	SupplierID  *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Kind devuelve client o supplier según la contraparte asignada.
func (o *Order) Kind() string {
	if o.ClientID != nil {
		return KindClient
	}
	return KindSupplier
}

// CounterpartyID devuelve el ID de la contraparte (cliente o proveedor).
func (o *Order) CounterpartyID() string {
	if o.ClientID != nil {
		return *o.ClientID
	}
	if o.SupplierID != nil {
		return *o.SupplierID
	}
	return ""
}

// OrderLine línea de pedido (tabla order_products).
// UnitPrice es una foto del precio al momento del pedido, independiente de Product.Price.
type OrderLine struct {
	ID        string
	OrderID   string
	ProductID string
	Quantity  int64
	UnitPrice decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}
