package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/pedidos-api/internal/domain"
	"github.com/jhoicas/pedidos-api/internal/domain/entity"
	"github.com/jhoicas/pedidos-api/internal/domain/inventory"
	"github.com/jhoicas/pedidos-api/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

const orderColumns = `o.id, o.owner_id, o.order_number, o.client_id, o.supplier_id, o.created_at, o.updated_at`

var orderSort = map[string]string{
	"created_at":   "o.created_at",
	"order_number": "o.order_number",
	"total_amount": "total_amount",
	"item_count":   "item_count",
}

// OrderRepo pedidos (orders) y sus líneas (order_products) sobre PostgreSQL.
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

// Create inserta la cabecera. La contraparte se valida antes de tocar la base.
func (r *OrderRepo) Create(ctx context.Context, o *entity.Order) error {
	if err := inventory.ValidateCounterparty(o.ClientID, o.SupplierID); err != nil {
		return err
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO orders (id, owner_id, order_number, client_id, supplier_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		o.ID, o.OwnerID, o.OrderNumber, o.ClientID, o.SupplierID, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("insert order: %w", domain.ErrNotFound)
		}
		return mapWriteError("insert order", err)
	}
	return nil
}

// GetByID obtiene la cabecera del pedido del owner.
func (r *OrderRepo) GetByID(ctx context.Context, ownerID, id string) (*entity.Order, error) {
	if !validID(id) {
		return nil, nil
	}
	var o entity.Order
	err := r.q.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders o WHERE o.owner_id = $1 AND o.id = $2`, ownerID, id).
		Scan(&o.ID, &o.OwnerID, &o.OrderNumber, &o.ClientID, &o.SupplierID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return &o, nil
}

// Touch persiste updated_at.
func (r *OrderRepo) Touch(ctx context.Context, o *entity.Order) error {
	cmd, err := r.q.Exec(ctx, `UPDATE orders SET updated_at = $3 WHERE owner_id = $1 AND id = $2`, o.OwnerID, o.ID, o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("touch order: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina el pedido; sus líneas caen por ON DELETE CASCADE.
func (r *OrderRepo) Delete(ctx context.Context, ownerID, id string) error {
	if !validID(id) {
		return domain.ErrNotFound
	}
	cmd, err := r.q.Exec(ctx, `DELETE FROM orders WHERE owner_id = $1 AND id = $2`, ownerID, id)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// CreateLine inserta una línea. Un producto u orden inexistente devuelve ErrNotFound.
func (r *OrderRepo) CreateLine(ctx context.Context, l *entity.OrderLine) error {
	if !validID(l.ProductID) {
		return fmt.Errorf("insert order line: %w", domain.ErrNotFound)
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO order_products (id, order_id, product_id, quantity, unit_price, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		l.ID, l.OrderID, l.ProductID, l.Quantity, l.UnitPrice, l.CreatedAt, l.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("insert order line: %w", domain.ErrNotFound)
		}
		return mapWriteError("insert order line", err)
	}
	return nil
}

// GetLines devuelve las líneas en orden de inserción.
func (r *OrderRepo) GetLines(ctx context.Context, orderID string) ([]*entity.OrderLine, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, order_id, product_id, quantity, unit_price, created_at, updated_at
		FROM order_products WHERE order_id = $1 ORDER BY seq`, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order lines: %w", err)
	}
	defer rows.Close()

	var lines []*entity.OrderLine
	for rows.Next() {
		var l entity.OrderLine
		if err := rows.Scan(&l.ID, &l.OrderID, &l.ProductID, &l.Quantity, &l.UnitPrice, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan order line: %w", err)
		}
		lines = append(lines, &l)
	}
	return lines, rows.Err()
}

// GetLineDetails devuelve las líneas con nombre y SKU del producto.
func (r *OrderRepo) GetLineDetails(ctx context.Context, orderID string) ([]repository.OrderLineDetail, error) {
	rows, err := r.q.Query(ctx, `
		SELECT op.id, op.order_id, op.product_id, op.quantity, op.unit_price, op.created_at, op.updated_at,
		       p.name, p.sku
		FROM order_products op
		JOIN products p ON p.id = op.product_id
		WHERE op.order_id = $1
		ORDER BY op.seq`, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order line details: %w", err)
	}
	defer rows.Close()

	var out []repository.OrderLineDetail
	for rows.Next() {
		var d repository.OrderLineDetail
		l := &d.Line
		if err := rows.Scan(&l.ID, &l.OrderID, &l.ProductID, &l.Quantity, &l.UnitPrice, &l.CreatedAt, &l.UpdatedAt,
			&d.ProductName, &d.ProductSKU); err != nil {
			return nil, fmt.Errorf("scan order line detail: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// DeleteLines elimina todas las líneas del pedido.
func (r *OrderRepo) DeleteLines(ctx context.Context, orderID string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM order_products WHERE order_id = $1`, orderID); err != nil {
		return fmt.Errorf("delete order lines: %w", err)
	}
	return nil
}

// List lista pedidos con el nombre de la contraparte, costo y cantidad de artículos agregados en la consulta.
func (r *OrderRepo) List(ctx context.Context, ownerID string, f repository.OrderFilter) ([]repository.OrderSummary, int, error) {
	where := ` WHERE o.owner_id = $1`
	args := []any{ownerID}
	switch f.Kind {
	case entity.KindClient:
		where += ` AND o.client_id IS NOT NULL`
	case entity.KindSupplier:
		where += ` AND o.supplier_id IS NOT NULL`
	}
	if f.StartDate != nil {
		args = append(args, *f.StartDate)
		where += fmt.Sprintf(` AND o.created_at >= $%d`, len(args))
	}
	if f.EndDate != nil {
		args = append(args, *f.EndDate)
		where += fmt.Sprintf(` AND o.created_at <= $%d`, len(args))
	}
	if f.Search != "" {
		args = append(args, likePattern(f.Search))
		where += fmt.Sprintf(` AND (o.order_number::text ILIKE $%[1]d OR COALESCE(c.name, s.name) ILIKE $%[1]d)`, len(args))
	}
	const from = `
		FROM orders o
		LEFT JOIN clients c   ON c.id = o.client_id
		LEFT JOIN suppliers s ON s.id = o.supplier_id`

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*)`+from+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	sql := `
		SELECT ` + orderColumns + `,
		       COALESCE(c.name, s.name, '')                        AS counterparty_name,
		       COALESCE(SUM(op.quantity * op.unit_price), 0)::NUMERIC AS total_amount,
		       COALESCE(SUM(op.quantity), 0)::BIGINT               AS item_count` + from + `
		LEFT JOIN order_products op ON op.order_id = o.id` + where + `
		GROUP BY o.id, c.name, s.name` +
		orderClause(f.SortBy, f.SortDirection, "created_at", orderSort) + `, o.id`
	limit, args := limitClause(f.ListFilter, args)
	rows, err := r.q.Query(ctx, sql+limit, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	out := make([]repository.OrderSummary, 0)
	for rows.Next() {
		var s repository.OrderSummary
		o := &s.Order
		if err := rows.Scan(&o.ID, &o.OwnerID, &o.OrderNumber, &o.ClientID, &o.SupplierID, &o.CreatedAt, &o.UpdatedAt,
			&s.CounterpartyName, &s.Cost, &s.ItemCount); err != nil {
			return nil, 0, fmt.Errorf("scan order: %w", err)
		}
		out = append(out, s)
	}
	return out, total, rows.Err()
}
