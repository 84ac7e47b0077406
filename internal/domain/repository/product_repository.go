package repository

import (
	"context"

	"github.com/jhoicas/pedidos-api/internal/domain/entity"
)

// Columnas ordenables del listado de productos.
var ProductSortColumns = []string{"name", "sku", "price", "stock", "created_at"}

// ProductRepository define el puerto de persistencia para Product (DIP).
// Todas las consultas se limitan al ownerID recibido.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, ownerID, id string) (*entity.Product, error)
	GetByOwnerAndSKU(ctx context.Context, ownerID, sku string) (*entity.Product, error)
	GetByOwnerAndName(ctx context.Context, ownerID, name string) (*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	// AdjustStock suma delta (puede ser negativo) al stock y devuelve el valor resultante.
	// Devuelve domain.ErrNotFound si el producto no existe para el owner.
	AdjustStock(ctx context.Context, ownerID, productID string, delta int64) (int64, error)
	List(ctx context.Context, ownerID string, filter ListFilter) ([]*entity.Product, int, error)
	// Search busca por nombre o SKU (contiene); term vacío devuelve todos ordenados por nombre.
	Search(ctx context.Context, ownerID, term string) ([]*entity.Product, error)
	Count(ctx context.Context, ownerID string) (int, error)
	Delete(ctx context.Context, ownerID, id string) error
}
