package repository

import (
	"context"

	"github.com/jhoicas/pedidos-api/internal/domain/entity"
)

// Columnas ordenables del listado de clientes/proveedores.
var CounterpartySortColumns = []string{"name", "contact_email", "created_at"}

// CounterpartyRepository puerto de persistencia para clientes y proveedores.
// kind selecciona la tabla (entity.KindClient | entity.KindSupplier).
type CounterpartyRepository interface {
	Create(ctx context.Context, c *entity.Counterparty) error
	GetByID(ctx context.Context, kind, ownerID, id string) (*entity.Counterparty, error)
	GetByOwnerAndName(ctx context.Context, kind, ownerID, name string) (*entity.Counterparty, error)
	Update(ctx context.Context, c *entity.Counterparty) error
	List(ctx context.Context, kind, ownerID string, filter ListFilter) ([]*entity.Counterparty, int, error)
	// Search busca por nombre, email o teléfono (contiene); term vacío devuelve todos ordenados por nombre.
	Search(ctx context.Context, kind, ownerID, term string) ([]*entity.Counterparty, error)
	Count(ctx context.Context, kind, ownerID string) (int, error)
	Delete(ctx context.Context, kind, ownerID, id string) error
}
