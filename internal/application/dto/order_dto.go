package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderLineRequest línea de pedido. UnitPrice nil toma el precio actual del producto.
type OrderLineRequest struct {
	ProductID string           `json:"product_id" validate:"required"`
	Quantity  int64            `json:"quantity" validate:"required,min=1"`
	UnitPrice *decimal.Decimal `json:"unit_price"`
}

// ContactInfoRequest actualización opcional de los datos de contacto de la contraparte.
type ContactInfoRequest struct {
	Name         *string `json:"name" validate:"omitempty,max=255"`
	ContactEmail *string `json:"contact_email" validate:"omitempty,email,max=50"`
	ContactPhone *string `json:"contact_phone" validate:"omitempty,max=20"`
	Address      *string `json:"address" validate:"omitempty,max=255"`
}

// CreateOrderRequest body para POST /api/orders. Exactamente uno de ClientID o SupplierID.
type CreateOrderRequest struct {
	ClientID    *string             `json:"client_id"`
	SupplierID  *string             `json:"supplier_id"`
	Lines       []OrderLineRequest  `json:"lines" validate:"required,min=1,dive"`
	ContactInfo *ContactInfoRequest `json:"contact_info"`
}

// UpdateOrderRequest body para PUT /api/orders/:id. Reemplaza todas las líneas;
// la contraparte no se puede cambiar.
type UpdateOrderRequest struct {
	Lines       []OrderLineRequest  `json:"lines" validate:"required,min=1,dive"`
	ContactInfo *ContactInfoRequest `json:"contact_info"`
}

// OrderListRequest filtros de GET /api/orders.
type OrderListRequest struct {
	ListRequest
	Type      string `query:"type" validate:"omitempty,oneof=client supplier"`
	StartDate string `query:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate   string `query:"end_date" validate:"omitempty,datetime=2006-01-02"`
}

// CounterpartyRef contraparte embebida en la respuesta del pedido.
type CounterpartyRef struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	ContactEmail string `json:"contact_email,omitempty"`
	ContactPhone string `json:"contact_phone,omitempty"`
	Address      string `json:"address,omitempty"`
}

// OrderLineResponse línea de pedido en la respuesta.
type OrderLineResponse struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name,omitempty"`
	ProductSKU  string          `json:"product_sku,omitempty"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// OrderResponse pedido con líneas, contraparte y agregados.
type OrderResponse struct {
	ID           string              `json:"id"`
	OrderNumber  string              `json:"order_number"`
	Type         string              `json:"type"`
	ClientID     *string             `json:"client_id"`
	SupplierID   *string             `json:"supplier_id"`
	Counterparty *CounterpartyRef    `json:"counterparty,omitempty"`
	Cost         decimal.Decimal     `json:"cost"`
	ItemCount    int64               `json:"item_count"`
	Lines        []OrderLineResponse `json:"lines"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// OrderListItem fila del listado de pedidos.
type OrderListItem struct {
	ID               string          `json:"id"`
	OrderNumber      string          `json:"order_number"`
	Type             string          `json:"type"`
	CounterpartyID   string          `json:"counterparty_id"`
	CounterpartyName string          `json:"counterparty_name"`
	Cost             decimal.Decimal `json:"cost"`
	ItemCount        int64           `json:"item_count"`
	CreatedAt        time.Time       `json:"created_at"`
}

// OrderListResponse lista paginada de pedidos de un tipo.
type OrderListResponse struct {
	Items      []OrderListItem    `json:"items"`
	Pagination PaginationResponse `json:"pagination"`
	Type       string             `json:"type"`
}
