package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto. SKU vacío se genera automáticamente.
type CreateProductRequest struct {
	Name  string          `json:"name" validate:"required,min=1,max=255"`
	SKU   string          `json:"sku" validate:"omitempty,max=12"`
	Price decimal.Decimal `json:"price"`
	Stock int64           `json:"stock" validate:"min=0"`
}

// UpdateProductRequest entrada para actualizar un producto (edición administrativa, incluye stock).
type UpdateProductRequest struct {
	Name  *string          `json:"name" validate:"omitempty,min=1,max=255"`
	Price *decimal.Decimal `json:"price"`
	Stock *int64           `json:"stock" validate:"omitempty,min=0"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	SKU       string          `json:"sku"`
	Price     decimal.Decimal `json:"price"`
	Stock     int64           `json:"stock"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items      []ProductResponse  `json:"items"`
	Pagination PaginationResponse `json:"pagination"`
}

// SearchRequest término de búsqueda para selectores (productos, clientes, proveedores).
type SearchRequest struct {
	Term string `query:"term" json:"term" validate:"omitempty,max=255,searchterm"`
}
