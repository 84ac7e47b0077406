// Package memory implementa los puertos de persistencia en memoria, con transacciones por
// snapshot: si la función de la transacción falla se restaura el estado previo.
// Se usa en tests de casos de uso y con DATABASE_URL=memory.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jhoicas/pedidos-api/internal/application/ports"
	"github.com/jhoicas/pedidos-api/internal/domain/entity"
	"github.com/jhoicas/pedidos-api/internal/domain/repository"
)

var _ ports.TxRunner = (*Store)(nil)

type state struct {
	seq            int64
	rank           map[string]int64 // orden de inserción por ID (desempate estable)
	users          map[string]entity.User
	products       map[string]entity.Product
	counterparties map[string]entity.Counterparty
	orders         map[string]entity.Order
	lines          map[string]entity.OrderLine
}

func newState() *state {
	return &state{
		rank:           map[string]int64{},
		users:          map[string]entity.User{},
		products:       map[string]entity.Product{},
		counterparties: map[string]entity.Counterparty{},
		orders:         map[string]entity.Order{},
		lines:          map[string]entity.OrderLine{},
	}
}

func (s *state) clone() *state {
	c := &state{
		seq:            s.seq,
		rank:           make(map[string]int64, len(s.rank)),
		users:          make(map[string]entity.User, len(s.users)),
		products:       make(map[string]entity.Product, len(s.products)),
		counterparties: make(map[string]entity.Counterparty, len(s.counterparties)),
		orders:         make(map[string]entity.Order, len(s.orders)),
		lines:          make(map[string]entity.OrderLine, len(s.lines)),
	}
	for k, v := range s.rank {
		c.rank[k] = v
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.counterparties {
		c.counterparties[k] = v
	}
	for k, v := range s.orders {
		c.orders[k] = v
	}
	for k, v := range s.lines {
		c.lines[k] = v
	}
	return c
}

func (s *state) track(id string) {
	s.seq++
	s.rank[id] = s.seq
}

// Store base de datos en memoria. Las transacciones se serializan con un mutex.
type Store struct {
	mu   sync.Mutex
	data *state
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{data: newState()}
}

// Run ejecuta fn con repositorios atados a una transacción; si fn falla se restaura el snapshot.
func (s *Store) Run(ctx context.Context, fn func(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	counterpartyRepo repository.CounterpartyRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	defer func() {
		if r := recover(); r != nil {
			s.data = snapshot
			panic(r)
		}
	}()
	tx := &conn{store: s, inTx: true}
	if err := fn(&OrderRepo{c: tx}, &ProductRepo{c: tx}, &CounterpartyRepo{c: tx}); err != nil {
		s.data = snapshot
		return err
	}
	return nil
}

// Products repositorio de productos fuera de transacción.
func (s *Store) Products() *ProductRepo { return &ProductRepo{c: &conn{store: s}} }

// Counterparties repositorio de clientes y proveedores fuera de transacción.
func (s *Store) Counterparties() *CounterpartyRepo { return &CounterpartyRepo{c: &conn{store: s}} }

// Orders repositorio de pedidos fuera de transacción.
func (s *Store) Orders() *OrderRepo { return &OrderRepo{c: &conn{store: s}} }

// Users repositorio de usuarios.
func (s *Store) Users() *UserRepo { return &UserRepo{c: &conn{store: s}} }

// Analytics repositorio de lectura para el dashboard.
func (s *Store) Analytics() *AnalyticsRepo { return &AnalyticsRepo{c: &conn{store: s}} }

// conn da acceso al estado: fuera de tx toma el mutex en cada llamada; dentro de tx ya lo tiene.
type conn struct {
	store *Store
	inTx  bool
}

func (c *conn) with(fn func(s *state) error) error {
	if !c.inTx {
		c.store.mu.Lock()
		defer c.store.mu.Unlock()
	}
	return fn(c.store.data)
}

func contains(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// paginate aplica Limit/Offset (Limit 0 = sin límite).
func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

// sortItems ordena con less y desempata por orden de inserción.
func sortItems[T any](items []T, desc bool, less func(a, b T) int, rank func(T) int64) {
	sort.SliceStable(items, func(i, j int) bool {
		c := less(items[i], items[j])
		if c == 0 {
			ri, rj := rank(items[i]), rank(items[j])
			if desc {
				return ri > rj
			}
			return ri < rj
		}
		if desc {
			return c > 0
		}
		return c < 0
	})
}

func compareTime(a, b time.Time) int { return a.Compare(b) }
