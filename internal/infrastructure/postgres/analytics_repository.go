package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/pedidos-api/internal/domain/entity"
	"github.com/jhoicas/pedidos-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.AnalyticsRepository = (*AnalyticsRepo)(nil)

// AnalyticsRepo consultas de solo lectura para el dashboard.
type AnalyticsRepo struct {
	q Querier
}

// NewAnalyticsRepository construye el adaptador de analítica.
func NewAnalyticsRepository(q Querier) *AnalyticsRepo {
	return &AnalyticsRepo{q: q}
}

func kindCondition(kind string) (string, error) {
	switch kind {
	case entity.KindClient:
		return `o.client_id IS NOT NULL`, nil
	case entity.KindSupplier:
		return `o.supplier_id IS NOT NULL`, nil
	}
	return "", fmt.Errorf("tipo de pedido desconocido %q", kind)
}

// GetOrderTotals suma Σ(cantidad × precio) y cuenta los pedidos de un tipo.
func (r *AnalyticsRepo) GetOrderTotals(ctx context.Context, ownerID, kind string) (decimal.Decimal, int, error) {
	cond, err := kindCondition(kind)
	if err != nil {
		return decimal.Zero, 0, err
	}
	query := `
	SELECT
	    COALESCE(SUM(op.quantity * op.unit_price), 0)::NUMERIC AS total,
	    COUNT(DISTINCT o.id)                                   AS orders
	FROM orders o
	LEFT JOIN order_products op ON op.order_id = o.id
	WHERE o.owner_id = $1 AND ` + cond

	var total decimal.Decimal
	var count int
	if err := r.q.QueryRow(ctx, query, ownerID).Scan(&total, &count); err != nil {
		return decimal.Zero, 0, fmt.Errorf("analytics.GetOrderTotals: %w", err)
	}
	return total, count, nil
}

// GetMonthlyTotals agrupa por mes (YYYY-MM) los pedidos de un tipo creados desde since.
func (r *AnalyticsRepo) GetMonthlyTotals(ctx context.Context, ownerID, kind string, since time.Time) ([]repository.MonthlyOrderTotals, error) {
	cond, err := kindCondition(kind)
	if err != nil {
		return nil, err
	}
	query := `
	SELECT
	    to_char(date_trunc('month', o.created_at), 'YYYY-MM')   AS month,
	    COALESCE(SUM(op.quantity * op.unit_price), 0)::NUMERIC AS total,
	    COUNT(DISTINCT o.id)                                   AS orders
	FROM orders o
	LEFT JOIN order_products op ON op.order_id = o.id
	WHERE o.owner_id = $1 AND o.created_at >= $2 AND ` + cond + `
	GROUP BY 1
	ORDER BY 1`

	rows, err := r.q.Query(ctx, query, ownerID, since)
	if err != nil {
		return nil, fmt.Errorf("analytics.GetMonthlyTotals: %w", err)
	}
	defer rows.Close()

	var out []repository.MonthlyOrderTotals
	for rows.Next() {
		var m repository.MonthlyOrderTotals
		if err := rows.Scan(&m.Month, &m.Total, &m.Count); err != nil {
			return nil, fmt.Errorf("analytics.GetMonthlyTotals scan: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
