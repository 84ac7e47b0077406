// Package analytics contiene el caso de uso del Dashboard: ingresos, gastos, ganancia,
// conteos, pedidos recientes y la serie de los últimos meses.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/pedidos-api/internal/application/dto"
	"github.com/jhoicas/pedidos-api/internal/domain/entity"
	"github.com/jhoicas/pedidos-api/internal/domain/repository"
	"github.com/jhoicas/pedidos-api/pkg/money"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const (
	recentOrders = 5 // pedidos recientes por tipo
	seriesMonths = 6 // meses en la serie mensual (incluye el actual)
)

var hundred = decimal.NewFromInt(100)

// RecentOrders pedidos más recientes de un tipo (lo implementa orders.UseCase).
type RecentOrders interface {
	Recent(ctx context.Context, ownerID, kind string, n int) ([]dto.OrderListItem, error)
}

// DashboardUseCase genera el resumen del dashboard del owner.
//
// Fuente de datos: AnalyticsRepository (consultas read-only) más los conteos de cada repositorio.
type DashboardUseCase struct {
	analyticsRepo    repository.AnalyticsRepository
	productRepo      repository.ProductRepository
	counterpartyRepo repository.CounterpartyRepository
	orders           RecentOrders
	money            *money.Formatter
	now              func() time.Time
}

// NewDashboardUseCase construye el caso de uso.
func NewDashboardUseCase(
	analyticsRepo repository.AnalyticsRepository,
	productRepo repository.ProductRepository,
	counterpartyRepo repository.CounterpartyRepository,
	orders RecentOrders,
	formatter *money.Formatter,
) *DashboardUseCase {
	return &DashboardUseCase{
		analyticsRepo:    analyticsRepo,
		productRepo:      productRepo,
		counterpartyRepo: counterpartyRepo,
		orders:           orders,
		money:            formatter,
		now:              time.Now,
	}
}

// GetSummary construye el DashboardDTO. Las consultas son independientes y corren en paralelo;
// la primera que falla cancela el resto.
func (uc *DashboardUseCase) GetSummary(ctx context.Context, ownerID string) (*dto.DashboardDTO, error) {
	now := uc.now()
	// Primer día del mes más antiguo de la serie.
	since := time.Date(now.Year(), now.Month()-(seriesMonths-1), 1, 0, 0, 0, 0, now.Location())

	var (
		revenue, expenses           decimal.Decimal
		revenueCount, expensesCount int
		entities                    dto.EntityCountsDTO
		recentClient, recentSupp    []dto.OrderListItem
		monthlyRev, monthlyExp      []repository.MonthlyOrderTotals
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		revenue, revenueCount, err = uc.analyticsRepo.GetOrderTotals(ctx, ownerID, entity.KindClient)
		return wrap("ingresos", err)
	})
	g.Go(func() (err error) {
		expenses, expensesCount, err = uc.analyticsRepo.GetOrderTotals(ctx, ownerID, entity.KindSupplier)
		return wrap("gastos", err)
	})
	g.Go(func() (err error) {
		entities.Clients, err = uc.counterpartyRepo.Count(ctx, entity.KindClient, ownerID)
		return wrap("conteo de clientes", err)
	})
	g.Go(func() (err error) {
		entities.Suppliers, err = uc.counterpartyRepo.Count(ctx, entity.KindSupplier, ownerID)
		return wrap("conteo de proveedores", err)
	})
	g.Go(func() (err error) {
		entities.Products, err = uc.productRepo.Count(ctx, ownerID)
		return wrap("conteo de productos", err)
	})
	g.Go(func() (err error) {
		recentClient, err = uc.orders.Recent(ctx, ownerID, entity.KindClient, recentOrders)
		return wrap("pedidos recientes de clientes", err)
	})
	g.Go(func() (err error) {
		recentSupp, err = uc.orders.Recent(ctx, ownerID, entity.KindSupplier, recentOrders)
		return wrap("pedidos recientes de proveedores", err)
	})
	g.Go(func() (err error) {
		monthlyRev, err = uc.analyticsRepo.GetMonthlyTotals(ctx, ownerID, entity.KindClient, since)
		return wrap("ingresos mensuales", err)
	})
	g.Go(func() (err error) {
		monthlyExp, err = uc.analyticsRepo.GetMonthlyTotals(ctx, ownerID, entity.KindSupplier, since)
		return wrap("gastos mensuales", err)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	profit := revenue.Sub(expenses)
	margin := decimal.Zero
	if revenue.IsPositive() {
		margin = profit.Div(revenue).Mul(hundred).Round(2)
	}

	return &dto.DashboardDTO{
		Currency:             uc.money.Code(),
		Revenue:              dto.AmountDTO{Total: revenue, TotalFormatted: uc.money.Format(revenue), Count: revenueCount},
		Expenses:             dto.AmountDTO{Total: expenses, TotalFormatted: uc.money.Format(expenses), Count: expensesCount},
		Profit:               dto.ProfitDTO{Total: profit, TotalFormatted: uc.money.Format(profit), Margin: margin},
		Entities:             entities,
		RecentClientOrders:   recentClient,
		RecentSupplierOrders: recentSupp,
		Monthly:              uc.monthlySeries(since, monthlyRev, monthlyExp),
	}, nil
}

// monthlySeries completa los meses sin pedidos con ceros, del más antiguo al actual.
func (uc *DashboardUseCase) monthlySeries(since time.Time, rev, exp []repository.MonthlyOrderTotals) []dto.MonthlyDTO {
	revByMonth := make(map[string]repository.MonthlyOrderTotals, len(rev))
	for _, m := range rev {
		revByMonth[m.Month] = m
	}
	expByMonth := make(map[string]repository.MonthlyOrderTotals, len(exp))
	for _, m := range exp {
		expByMonth[m.Month] = m
	}

	out := make([]dto.MonthlyDTO, 0, seriesMonths)
	for i := 0; i < seriesMonths; i++ {
		month := since.AddDate(0, i, 0)
		key := month.Format("2006-01")
		r, e := revByMonth[key], expByMonth[key]
		out = append(out, dto.MonthlyDTO{
			Month:             month.Format("Jan 2006"),
			Revenue:           r.Total,
			RevenueFormatted:  uc.money.Format(r.Total),
			Expenses:          e.Total,
			ExpensesFormatted: uc.money.Format(e.Total),
			ClientOrders:      r.Count,
			SupplierOrders:    e.Count,
		})
	}
	return out
}

func wrap(what string, err error) error {
	if err != nil {
		return fmt.Errorf("dashboard: %s: %w", what, err)
	}
	return nil
}
