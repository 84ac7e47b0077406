package memory

import (
	"cmp"
	"context"
	"strings"

	"github.com/jhoicas/pedidos-api/internal/domain"
	"github.com/jhoicas/pedidos-api/internal/domain/entity"
	"github.com/jhoicas/pedidos-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo productos en memoria.
type ProductRepo struct {
	c *conn
}

func productUnique(s *state, p *entity.Product) error {
	for _, o := range s.products {
		if o.ID == p.ID || o.OwnerID != p.OwnerID {
			continue
		}
		if o.SKU == p.SKU || strings.EqualFold(o.Name, p.Name) {
			return domain.ErrDuplicate
		}
	}
	return nil
}

func (r *ProductRepo) Create(_ context.Context, p *entity.Product) error {
	return r.c.with(func(s *state) error {
		if _, ok := s.products[p.ID]; ok {
			return domain.ErrDuplicate
		}
		if err := productUnique(s, p); err != nil {
			return err
		}
		s.products[p.ID] = *p
		s.track(p.ID)
		return nil
	})
}

func (r *ProductRepo) get(ownerID string, match func(entity.Product) bool) (*entity.Product, error) {
	var out *entity.Product
	err := r.c.with(func(s *state) error {
		for _, p := range s.products {
			if p.OwnerID == ownerID && match(p) {
				cp := p
				out = &cp
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *ProductRepo) GetByID(_ context.Context, ownerID, id string) (*entity.Product, error) {
	return r.get(ownerID, func(p entity.Product) bool { return p.ID == id })
}

func (r *ProductRepo) GetByOwnerAndSKU(_ context.Context, ownerID, sku string) (*entity.Product, error) {
	return r.get(ownerID, func(p entity.Product) bool { return p.SKU == sku })
}

func (r *ProductRepo) GetByOwnerAndName(_ context.Context, ownerID, name string) (*entity.Product, error) {
	return r.get(ownerID, func(p entity.Product) bool { return strings.EqualFold(p.Name, name) })
}

func (r *ProductRepo) Update(_ context.Context, p *entity.Product) error {
	return r.c.with(func(s *state) error {
		cur, ok := s.products[p.ID]
		if !ok || cur.OwnerID != p.OwnerID {
			return domain.ErrNotFound
		}
		if err := productUnique(s, p); err != nil {
			return err
		}
		s.products[p.ID] = *p
		return nil
	})
}

func (r *ProductRepo) AdjustStock(_ context.Context, ownerID, productID string, delta int64) (int64, error) {
	var stock int64
	err := r.c.with(func(s *state) error {
		p, ok := s.products[productID]
		if !ok || p.OwnerID != ownerID {
			return domain.ErrNotFound
		}
		p.Stock += delta
		s.products[productID] = p
		stock = p.Stock
		return nil
	})
	return stock, err
}

func (r *ProductRepo) List(_ context.Context, ownerID string, f repository.ListFilter) ([]*entity.Product, int, error) {
	var out []*entity.Product
	var total int
	err := r.c.with(func(s *state) error {
		items := make([]entity.Product, 0)
		for _, p := range s.products {
			if p.OwnerID != ownerID {
				continue
			}
			if f.Search != "" && !contains(p.Name, f.Search) && !contains(p.SKU, f.Search) {
				continue
			}
			items = append(items, p)
		}
		sortProducts(s, items, f.SortBy, f.SortDirection)
		total = len(items)
		for _, p := range paginate(items, f.Limit, f.Offset) {
			cp := p
			out = append(out, &cp)
		}
		return nil
	})
	return out, total, err
}

func sortProducts(s *state, items []entity.Product, sortBy, dir string) {
	desc := dir != repository.SortAsc
	less := func(a, b entity.Product) int {
		switch sortBy {
		case "name":
			return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		case "sku":
			return strings.Compare(a.SKU, b.SKU)
		case "price":
			return a.Price.Cmp(b.Price)
		case "stock":
			return cmp.Compare(a.Stock, b.Stock)
		}
		return compareTime(a.CreatedAt, b.CreatedAt)
	}
	sortItems(items, desc, less, func(p entity.Product) int64 { return s.rank[p.ID] })
}

func (r *ProductRepo) Search(ctx context.Context, ownerID, term string) ([]*entity.Product, error) {
	list, _, err := r.List(ctx, ownerID, repository.ListFilter{Search: term, SortBy: "name", SortDirection: repository.SortAsc})
	return list, err
}

func (r *ProductRepo) Count(_ context.Context, ownerID string) (int, error) {
	var n int
	err := r.c.with(func(s *state) error {
		for _, p := range s.products {
			if p.OwnerID == ownerID {
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r *ProductRepo) Delete(_ context.Context, ownerID, id string) error {
	return r.c.with(func(s *state) error {
		p, ok := s.products[id]
		if !ok || p.OwnerID != ownerID {
			return domain.ErrNotFound
		}
		for _, l := range s.lines {
			if l.ProductID == id {
				return domain.ErrConflict
			}
		}
		delete(s.products, id)
		return nil
	})
}
