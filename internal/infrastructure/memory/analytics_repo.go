package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/pedidos-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.AnalyticsRepository = (*AnalyticsRepo)(nil)

// AnalyticsRepo agregados del dashboard calculados sobre el estado en memoria.
type AnalyticsRepo struct {
	c *conn
}

func (r *AnalyticsRepo) GetOrderTotals(_ context.Context, ownerID, kind string) (decimal.Decimal, int, error) {
	total := decimal.Zero
	var count int
	err := r.c.with(func(s *state) error {
		for _, o := range s.orders {
			if o.OwnerID != ownerID || o.Kind() != kind {
				continue
			}
			total = total.Add(summarize(s, o).Cost)
			count++
		}
		return nil
	})
	return total, count, err
}

func (r *AnalyticsRepo) GetMonthlyTotals(_ context.Context, ownerID, kind string, since time.Time) ([]repository.MonthlyOrderTotals, error) {
	byMonth := map[string]*repository.MonthlyOrderTotals{}
	err := r.c.with(func(s *state) error {
		for _, o := range s.orders {
			if o.OwnerID != ownerID || o.Kind() != kind || o.CreatedAt.Before(since) {
				continue
			}
			key := o.CreatedAt.Format("2006-01")
			m, ok := byMonth[key]
			if !ok {
				m = &repository.MonthlyOrderTotals{Month: key, Total: decimal.Zero}
				byMonth[key] = m
			}
			m.Total = m.Total.Add(summarize(s, o).Cost)
			m.Count++
		}
		return nil
	})
	out := make([]repository.MonthlyOrderTotals, 0, len(byMonth))
	for _, m := range byMonth {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out, err
}
