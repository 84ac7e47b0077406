package memory

import (
	"cmp"
	"context"
	"strings"

	"github.com/jhoicas/pedidos-api/internal/domain"
	"github.com/jhoicas/pedidos-api/internal/domain/entity"
	"github.com/jhoicas/pedidos-api/internal/domain/inventory"
	"github.com/jhoicas/pedidos-api/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

// OrderRepo pedidos y líneas en memoria.
type OrderRepo struct {
	c *conn
}

func (r *OrderRepo) Create(_ context.Context, o *entity.Order) error {
	return r.c.with(func(s *state) error {
		if err := inventory.ValidateCounterparty(o.ClientID, o.SupplierID); err != nil {
			return err
		}
		for _, cur := range s.orders {
			if cur.ID == o.ID || cur.OrderNumber == o.OrderNumber {
				return domain.ErrDuplicate
			}
		}
		s.orders[o.ID] = *o
		s.track(o.ID)
		return nil
	})
}

func (r *OrderRepo) GetByID(_ context.Context, ownerID, id string) (*entity.Order, error) {
	var out *entity.Order
	err := r.c.with(func(s *state) error {
		if o, ok := s.orders[id]; ok && o.OwnerID == ownerID {
			out = &o
		}
		return nil
	})
	return out, err
}

func (r *OrderRepo) Touch(_ context.Context, o *entity.Order) error {
	return r.c.with(func(s *state) error {
		cur, ok := s.orders[o.ID]
		if !ok || cur.OwnerID != o.OwnerID {
			return domain.ErrNotFound
		}
		cur.UpdatedAt = o.UpdatedAt
		s.orders[o.ID] = cur
		return nil
	})
}

func (r *OrderRepo) Delete(_ context.Context, ownerID, id string) error {
	return r.c.with(func(s *state) error {
		o, ok := s.orders[id]
		if !ok || o.OwnerID != ownerID {
			return domain.ErrNotFound
		}
		delete(s.orders, id)
		for lid, l := range s.lines {
			if l.OrderID == id {
				delete(s.lines, lid)
			}
		}
		return nil
	})
}

func (r *OrderRepo) CreateLine(_ context.Context, l *entity.OrderLine) error {
	return r.c.with(func(s *state) error {
		if _, ok := s.orders[l.OrderID]; !ok {
			return domain.ErrNotFound
		}
		if _, ok := s.products[l.ProductID]; !ok {
			return domain.ErrNotFound
		}
		s.lines[l.ID] = *l
		s.track(l.ID)
		return nil
	})
}

func orderLines(s *state, orderID string) []entity.OrderLine {
	out := make([]entity.OrderLine, 0)
	for _, l := range s.lines {
		if l.OrderID == orderID {
			out = append(out, l)
		}
	}
	sortItems(out, false, func(a, b entity.OrderLine) int { return 0 }, func(l entity.OrderLine) int64 { return s.rank[l.ID] })
	return out
}

func (r *OrderRepo) GetLines(_ context.Context, orderID string) ([]*entity.OrderLine, error) {
	var out []*entity.OrderLine
	err := r.c.with(func(s *state) error {
		for _, l := range orderLines(s, orderID) {
			out = append(out, &l)
		}
		return nil
	})
	return out, err
}

func (r *OrderRepo) GetLineDetails(_ context.Context, orderID string) ([]repository.OrderLineDetail, error) {
	var out []repository.OrderLineDetail
	err := r.c.with(func(s *state) error {
		for _, l := range orderLines(s, orderID) {
			p := s.products[l.ProductID]
			out = append(out, repository.OrderLineDetail{Line: l, ProductName: p.Name, ProductSKU: p.SKU})
		}
		return nil
	})
	return out, err
}

func (r *OrderRepo) DeleteLines(_ context.Context, orderID string) error {
	return r.c.with(func(s *state) error {
		for id, l := range s.lines {
			if l.OrderID == orderID {
				delete(s.lines, id)
			}
		}
		return nil
	})
}

func (r *OrderRepo) List(_ context.Context, ownerID string, f repository.OrderFilter) ([]repository.OrderSummary, int, error) {
	var out []repository.OrderSummary
	var total int
	err := r.c.with(func(s *state) error {
		items := make([]repository.OrderSummary, 0)
		for _, o := range s.orders {
			if o.OwnerID != ownerID || (f.Kind != "" && o.Kind() != f.Kind) {
				continue
			}
			if f.StartDate != nil && o.CreatedAt.Before(*f.StartDate) {
				continue
			}
			if f.EndDate != nil && o.CreatedAt.After(*f.EndDate) {
				continue
			}
			sum := summarize(s, o)
			if f.Search != "" && !contains(o.OrderNumber, f.Search) && !contains(sum.CounterpartyName, f.Search) {
				continue
			}
			items = append(items, sum)
		}
		desc := f.SortDirection != repository.SortAsc
		sortItems(items, desc, func(a, b repository.OrderSummary) int {
			switch f.SortBy {
			case "order_number":
				return strings.Compare(a.Order.OrderNumber, b.Order.OrderNumber)
			case "total_amount":
				return a.Cost.Cmp(b.Cost)
			case "item_count":
				return cmp.Compare(a.ItemCount, b.ItemCount)
			}
			return compareTime(a.Order.CreatedAt, b.Order.CreatedAt)
		}, func(o repository.OrderSummary) int64 { return s.rank[o.Order.ID] })
		total = len(items)
		out = paginate(items, f.Limit, f.Offset)
		return nil
	})
	return out, total, err
}

func summarize(s *state, o entity.Order) repository.OrderSummary {
	lines := orderLines(s, o.ID)
	ptrs := make([]*entity.OrderLine, 0, len(lines))
	for i := range lines {
		ptrs = append(ptrs, &lines[i])
	}
	return repository.OrderSummary{
		Order:            o,
		CounterpartyName: s.counterparties[o.CounterpartyID()].Name,
		Cost:             inventory.ComputeCost(ptrs),
		ItemCount:        inventory.ComputeItemCount(ptrs),
	}
}
