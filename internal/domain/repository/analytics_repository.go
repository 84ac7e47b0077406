package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// MonthlyOrderTotals agregado mensual de pedidos de un tipo.
type MonthlyOrderTotals struct {
	Month string // "2006-01"
	Total decimal.Decimal
	Count int
}

// AnalyticsRepository consultas de lectura para el dashboard.
// Las implementaciones son read-only (no modifican datos).
type AnalyticsRepository interface {
	// GetOrderTotals suma el costo (Σ cantidad × precio) y cuenta los pedidos de un tipo.
	GetOrderTotals(ctx context.Context, ownerID, kind string) (total decimal.Decimal, count int, err error)

	// GetMonthlyTotals agrupa por mes los pedidos de un tipo creados desde since.
	// Los meses sin pedidos no aparecen; el use case completa los huecos.
	GetMonthlyTotals(ctx context.Context, ownerID, kind string, since time.Time) ([]MonthlyOrderTotals, error)
}
