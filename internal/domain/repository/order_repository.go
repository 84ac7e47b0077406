package repository

import (
	"context"

	"github.com/jhoicas/pedidos-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Columnas ordenables del listado de pedidos. total_amount e item_count son agregados.
var OrderSortColumns = []string{"created_at", "order_number", "total_amount", "item_count"}

// OrderSummary fila del listado de pedidos con sus agregados calculados en la consulta.
type OrderSummary struct {
	Order            entity.Order
	CounterpartyName string
	Cost             decimal.Decimal
	ItemCount        int64
}

// OrderLineDetail línea enriquecida con los datos del producto referenciado.
type OrderLineDetail struct {
	Line        entity.OrderLine
	ProductName string
	ProductSKU  string
}

// OrderRepository define el puerto de persistencia para pedidos y sus líneas.
type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) error
	GetByID(ctx context.Context, ownerID, id string) (*entity.Order, error)
	// Touch persiste los campos propios editables del pedido (hoy solo updated_at).
	Touch(ctx context.Context, order *entity.Order) error
	Delete(ctx context.Context, ownerID, id string) error

	CreateLine(ctx context.Context, line *entity.OrderLine) error
	GetLines(ctx context.Context, orderID string) ([]*entity.OrderLine, error)
	GetLineDetails(ctx context.Context, orderID string) ([]OrderLineDetail, error)
	DeleteLines(ctx context.Context, orderID string) error

	List(ctx context.Context, ownerID string, filter OrderFilter) ([]OrderSummary, int, error)
}
