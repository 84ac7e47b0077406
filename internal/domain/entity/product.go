package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del catálogo de un usuario (owner).
// Stock solo lo modifican los pedidos (rutina de stock) o una edición administrativa.
type Product struct {
	ID        string
	OwnerID   string
	Name      string
	SKU       string          // único por owner
	Price     decimal.Decimal // precio de referencia (>= 0)
	Stock     int64
	CreatedAt time.Time
	UpdatedAt time.Time
}
