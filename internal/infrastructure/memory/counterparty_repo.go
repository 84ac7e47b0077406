package memory

import (
	"context"
	"strings"

	"github.com/jhoicas/pedidos-api/internal/domain"
	"github.com/jhoicas/pedidos-api/internal/domain/entity"
	"github.com/jhoicas/pedidos-api/internal/domain/repository"
)

var _ repository.CounterpartyRepository = (*CounterpartyRepo)(nil)

// CounterpartyRepo clientes y proveedores en memoria.
type CounterpartyRepo struct {
	c *conn
}

func (r *CounterpartyRepo) Create(_ context.Context, cp *entity.Counterparty) error {
	return r.c.with(func(s *state) error {
		if _, ok := s.counterparties[cp.ID]; ok {
			return domain.ErrDuplicate
		}
		if err := counterpartyUnique(s, cp); err != nil {
			return err
		}
		s.counterparties[cp.ID] = *cp
		s.track(cp.ID)
		return nil
	})
}

func counterpartyUnique(s *state, cp *entity.Counterparty) error {
	for _, o := range s.counterparties {
		if o.ID != cp.ID && o.Kind == cp.Kind && o.OwnerID == cp.OwnerID && strings.EqualFold(o.Name, cp.Name) {
			return domain.ErrDuplicate
		}
	}
	return nil
}

func (r *CounterpartyRepo) get(kind, ownerID string, match func(entity.Counterparty) bool) (*entity.Counterparty, error) {
	var out *entity.Counterparty
	err := r.c.with(func(s *state) error {
		for _, cp := range s.counterparties {
			if cp.Kind == kind && cp.OwnerID == ownerID && match(cp) {
				c := cp
				out = &c
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *CounterpartyRepo) GetByID(_ context.Context, kind, ownerID, id string) (*entity.Counterparty, error) {
	return r.get(kind, ownerID, func(cp entity.Counterparty) bool { return cp.ID == id })
}

func (r *CounterpartyRepo) GetByOwnerAndName(_ context.Context, kind, ownerID, name string) (*entity.Counterparty, error) {
	return r.get(kind, ownerID, func(cp entity.Counterparty) bool { return strings.EqualFold(cp.Name, name) })
}

func (r *CounterpartyRepo) Update(_ context.Context, cp *entity.Counterparty) error {
	return r.c.with(func(s *state) error {
		cur, ok := s.counterparties[cp.ID]
		if !ok || cur.Kind != cp.Kind || cur.OwnerID != cp.OwnerID {
			return domain.ErrNotFound
		}
		if err := counterpartyUnique(s, cp); err != nil {
			return err
		}
		s.counterparties[cp.ID] = *cp
		return nil
	})
}

func (r *CounterpartyRepo) filter(kind, ownerID, term string, byContact bool, f repository.ListFilter) ([]*entity.Counterparty, int, error) {
	var out []*entity.Counterparty
	var total int
	err := r.c.with(func(s *state) error {
		items := make([]entity.Counterparty, 0)
		for _, cp := range s.counterparties {
			if cp.Kind != kind || cp.OwnerID != ownerID {
				continue
			}
			if term != "" {
				match := contains(cp.Name, term) || contains(cp.ContactEmail, term)
				if byContact {
					match = match || contains(cp.ContactPhone, term)
				}
				if !match {
					continue
				}
			}
			items = append(items, cp)
		}
		desc := f.SortDirection != repository.SortAsc
		sortItems(items, desc, func(a, b entity.Counterparty) int {
			switch f.SortBy {
			case "name":
				return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
			case "contact_email":
				return strings.Compare(a.ContactEmail, b.ContactEmail)
			}
			return compareTime(a.CreatedAt, b.CreatedAt)
		}, func(cp entity.Counterparty) int64 { return s.rank[cp.ID] })
		total = len(items)
		for _, cp := range paginate(items, f.Limit, f.Offset) {
			c := cp
			out = append(out, &c)
		}
		return nil
	})
	return out, total, err
}

func (r *CounterpartyRepo) List(_ context.Context, kind, ownerID string, f repository.ListFilter) ([]*entity.Counterparty, int, error) {
	return r.filter(kind, ownerID, f.Search, false, f)
}

func (r *CounterpartyRepo) Search(_ context.Context, kind, ownerID, term string) ([]*entity.Counterparty, error) {
	list, _, err := r.filter(kind, ownerID, term, true, repository.ListFilter{SortBy: "name", SortDirection: repository.SortAsc})
	return list, err
}

func (r *CounterpartyRepo) Count(_ context.Context, kind, ownerID string) (int, error) {
	var n int
	err := r.c.with(func(s *state) error {
		for _, cp := range s.counterparties {
			if cp.Kind == kind && cp.OwnerID == ownerID {
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r *CounterpartyRepo) Delete(_ context.Context, kind, ownerID, id string) error {
	return r.c.with(func(s *state) error {
		cp, ok := s.counterparties[id]
		if !ok || cp.Kind != kind || cp.OwnerID != ownerID {
			return domain.ErrNotFound
		}
		for _, o := range s.orders {
			if o.CounterpartyID() == id {
				return domain.ErrConflict
			}
		}
		delete(s.counterparties, id)
		return nil
	})
}
