package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/pedidos-api/internal/domain"
	"github.com/jhoicas/pedidos-api/internal/domain/entity"
	"github.com/jhoicas/pedidos-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = `id, owner_id, name, sku, price, stock, created_at, updated_at`

var productSort = map[string]string{
	"name":       "lower(name)",
	"sku":        "sku",
	"price":      "price",
	"stock":      "stock",
	"created_at": "created_at",
}

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(&p.ID, &p.OwnerID, &p.Name, &p.SKU, &p.Price, &p.Stock, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create persiste un nuevo producto.
func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO products (`+productColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		p.ID, p.OwnerID, p.Name, p.SKU, p.Price, p.Stock, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return mapWriteError("insert product", err)
	}
	return nil
}

func (r *ProductRepo) getOne(ctx context.Context, op, where string, args ...any) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE `+where, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// GetByID obtiene un producto del owner por ID.
func (r *ProductRepo) GetByID(ctx context.Context, ownerID, id string) (*entity.Product, error) {
	if !validID(id) {
		return nil, nil
	}
	return r.getOne(ctx, "get product", `owner_id = $1 AND id = $2`, ownerID, id)
}

// GetByOwnerAndSKU obtiene un producto por owner y SKU.
func (r *ProductRepo) GetByOwnerAndSKU(ctx context.Context, ownerID, sku string) (*entity.Product, error) {
	return r.getOne(ctx, "get product by sku", `owner_id = $1 AND sku = $2`, ownerID, sku)
}

// GetByOwnerAndName obtiene un producto por owner y nombre (sin distinguir mayúsculas).
func (r *ProductRepo) GetByOwnerAndName(ctx context.Context, ownerID, name string) (*entity.Product, error) {
	return r.getOne(ctx, "get product by name", `owner_id = $1 AND lower(name) = lower($2)`, ownerID, name)
}

// Update actualiza nombre, SKU, precio y stock (edición administrativa).
func (r *ProductRepo) Update(ctx context.Context, p *entity.Product) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE products SET name = $3, sku = $4, price = $5, stock = $6, updated_at = $7
		WHERE owner_id = $1 AND id = $2`,
		p.OwnerID, p.ID, p.Name, p.SKU, p.Price, p.Stock, p.UpdatedAt,
	)
	if err != nil {
		return mapWriteError("update product", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// AdjustStock suma delta al stock con un único UPDATE; la fila queda bloqueada hasta el fin de la tx.
func (r *ProductRepo) AdjustStock(ctx context.Context, ownerID, productID string, delta int64) (int64, error) {
	if !validID(productID) {
		return 0, domain.ErrNotFound
	}
	var stock int64
	err := r.q.QueryRow(ctx, `
		UPDATE products SET stock = stock + $3, updated_at = now()
		WHERE owner_id = $1 AND id = $2
		RETURNING stock`,
		ownerID, productID, delta,
	).Scan(&stock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrNotFound
		}
		return 0, fmt.Errorf("adjust stock: %w", err)
	}
	return stock, nil
}

// List lista productos del owner con búsqueda por nombre/SKU, orden y paginación.
func (r *ProductRepo) List(ctx context.Context, ownerID string, f repository.ListFilter) ([]*entity.Product, int, error) {
	where := ` WHERE owner_id = $1`
	args := []any{ownerID}
	if f.Search != "" {
		args = append(args, likePattern(f.Search))
		where += fmt.Sprintf(` AND (name ILIKE $%[1]d OR sku ILIKE $%[1]d)`, len(args))
	}

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM products`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	query := `SELECT ` + productColumns + ` FROM products` + where +
		orderClause(f.SortBy, f.SortDirection, "created_at", productSort) + `, id`
	limit, args := limitClause(f, args)
	rows, err := r.q.Query(ctx, query+limit, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	list := make([]*entity.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	return list, total, rows.Err()
}

// Search devuelve los productos cuyo nombre o SKU contienen term, ordenados por nombre.
func (r *ProductRepo) Search(ctx context.Context, ownerID, term string) ([]*entity.Product, error) {
	list, _, err := r.List(ctx, ownerID, repository.ListFilter{Search: term, SortBy: "name", SortDirection: repository.SortAsc})
	return list, err
}

// Count cuenta los productos del owner.
func (r *ProductRepo) Count(ctx context.Context, ownerID string) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM products WHERE owner_id = $1`, ownerID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return n, nil
}

// Delete elimina un producto. Si está referenciado por líneas de pedido devuelve ErrConflict.
func (r *ProductRepo) Delete(ctx context.Context, ownerID, id string) error {
	if !validID(id) {
		return domain.ErrNotFound
	}
	cmd, err := r.q.Exec(ctx, `DELETE FROM products WHERE owner_id = $1 AND id = $2`, ownerID, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("delete product: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
