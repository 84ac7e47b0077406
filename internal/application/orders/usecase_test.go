package orders

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jhoicas/pedidos-api/internal/application/dto"
	"github.com/jhoicas/pedidos-api/internal/domain"
	"github.com/jhoicas/pedidos-api/internal/domain/entity"
	"github.com/jhoicas/pedidos-api/internal/domain/repository"
	"github.com/jhoicas/pedidos-api/internal/infrastructure/contact"
	"github.com/jhoicas/pedidos-api/internal/infrastructure/memory"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const owner = "owner-1"

type fixture struct {
	uc       *UseCase
	store    *memory.Store
	metrics  *Metrics
	client   *entity.Counterparty
	supplier *entity.Counterparty
	productA *entity.Product // stock 50, precio 10
	productB *entity.Product // stock 20, precio 2
}

func newFixture(t *testing.T, cfg Config) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	now := time.Now()

	f := &fixture{
		store:    store,
		metrics:  NewMetrics(prometheus.NewRegistry()),
		client:   &entity.Counterparty{ID: "c-1", OwnerID: owner, Kind: entity.KindClient, Name: "Ana Cliente", CreatedAt: now, UpdatedAt: now},
		supplier: &entity.Counterparty{ID: "s-1", OwnerID: owner, Kind: entity.KindSupplier, Name: "Proveedor SA", CreatedAt: now, UpdatedAt: now},
		productA: &entity.Product{ID: "p-a", OwnerID: owner, Name: "Producto A", SKU: "AAA-00000001", Price: decimal.NewFromInt(10), Stock: 50, CreatedAt: now, UpdatedAt: now},
		productB: &entity.Product{ID: "p-b", OwnerID: owner, Name: "Producto B", SKU: "BBB-00000002", Price: decimal.NewFromInt(2), Stock: 20, CreatedAt: now, UpdatedAt: now},
	}
	require.NoError(t, store.Counterparties().Create(ctx, f.client))
	require.NoError(t, store.Counterparties().Create(ctx, f.supplier))
	require.NoError(t, store.Products().Create(ctx, f.productA))
	require.NoError(t, store.Products().Create(ctx, f.productB))

	verifier := contact.NewVerifier(contact.Config{DefaultRegion: "US"}, nil, zerolog.Nop())
	f.uc = NewUseCase(store, store.Orders(), store.Products(), store.Counterparties(), verifier, f.metrics, zerolog.Nop(), cfg)
	return f
}

func (f *fixture) stock(t *testing.T, productID string) int64 {
	t.Helper()
	p, err := f.store.Products().GetByID(context.Background(), owner, productID)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p.Stock
}

func (f *fixture) orderCount(t *testing.T) int {
	t.Helper()
	var total int
	for _, kind := range []string{entity.KindClient, entity.KindSupplier} {
		res, err := f.uc.List(context.Background(), owner, dto.OrderListRequest{Type: kind})
		require.NoError(t, err)
		total += res.Pagination.Total
	}
	return total
}

func ptr[T any](v T) *T { return &v }

func line(productID string, qty int64, price *decimal.Decimal) dto.OrderLineRequest {
	return dto.OrderLineRequest{ProductID: productID, Quantity: qty, UnitPrice: price}
}

// ──────────────────────────────────────────────────────────────────────────────
// Create / Delete
// ──────────────────────────────────────────────────────────────────────────────

func TestCreate_PedidoDeClienteDescuentaStock(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()

	res, err := f.uc.Create(ctx, owner, dto.CreateOrderRequest{
		ClientID: ptr(f.client.ID),
		Lines:    []dto.OrderLineRequest{line(f.productA.ID, 5, ptr(decimal.NewFromInt(10)))},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(45), f.stock(t, f.productA.ID))
	assert.True(t, res.Cost.Equal(decimal.NewFromInt(50)), "cost = %s", res.Cost)
	assert.Equal(t, int64(5), res.ItemCount)
	assert.Equal(t, entity.KindClient, res.Type)
	assert.NotEmpty(t, res.OrderNumber)
	require.NotNil(t, res.Counterparty)
	assert.Equal(t, "Ana Cliente", res.Counterparty.Name)
	require.Len(t, res.Lines, 1)
	assert.Equal(t, "Producto A", res.Lines[0].ProductName)
	assert.True(t, res.Lines[0].Subtotal.Equal(decimal.NewFromInt(50)))

	require.NoError(t, f.uc.Delete(ctx, owner, res.ID))
	assert.Equal(t, int64(50), f.stock(t, f.productA.ID))
	_, err = f.uc.Get(ctx, owner, res.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreate_PedidoDeProveedorSumaStock(t *testing.T) {
	f := newFixture(t, Config{})
	res, err := f.uc.Create(context.Background(), owner, dto.CreateOrderRequest{
		SupplierID: ptr(f.supplier.ID),
		Lines:      []dto.OrderLineRequest{line(f.productB.ID, 30, ptr(decimal.NewFromInt(2)))},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(50), f.stock(t, f.productB.ID))
	assert.Equal(t, entity.KindSupplier, res.Type)
	assert.True(t, res.Cost.Equal(decimal.NewFromInt(60)))
}

func TestCreate_LineasDuplicadasSeSuman(t *testing.T) {
	f := newFixture(t, Config{})
	res, err := f.uc.Create(context.Background(), owner, dto.CreateOrderRequest{
		ClientID: ptr(f.client.ID),
		Lines: []dto.OrderLineRequest{
			line(f.productA.ID, 2, nil),
			line(f.productA.ID, 3, nil),
		},
	})
	require.NoError(t, err)
	assert.Len(t, res.Lines, 2)
	assert.Equal(t, int64(45), f.stock(t, f.productA.ID))
	assert.Equal(t, int64(5), res.ItemCount)
}

func TestCreate_PrecioVacioTomaPrecioActualYQuedaFijo(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()
	res, err := f.uc.Create(ctx, owner, dto.CreateOrderRequest{
		ClientID: ptr(f.client.ID),
		Lines:    []dto.OrderLineRequest{line(f.productA.ID, 1, nil)},
	})
	require.NoError(t, err)
	assert.True(t, res.Lines[0].UnitPrice.Equal(decimal.NewFromInt(10)))

	p, err := f.store.Products().GetByID(ctx, owner, f.productA.ID)
	require.NoError(t, err)
	p.Price = decimal.NewFromInt(99)
	require.NoError(t, f.store.Products().Update(ctx, p))

	got, err := f.uc.Get(ctx, owner, res.ID)
	require.NoError(t, err)
	assert.True(t, got.Lines[0].UnitPrice.Equal(decimal.NewFromInt(10)))
}

func TestCreate_ContraparteInvalida(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()
	lines := []dto.OrderLineRequest{line(f.productA.ID, 1, nil)}

	cases := []struct {
		name string
		in   dto.CreateOrderRequest
		want error
	}{
		{"ninguna", dto.CreateOrderRequest{Lines: lines}, domain.ErrOrderCounterpartyRequired},
		{"ambas", dto.CreateOrderRequest{ClientID: ptr(f.client.ID), SupplierID: ptr(f.supplier.ID), Lines: lines}, domain.ErrOrderCounterpartyExclusive},
		{"vacías", dto.CreateOrderRequest{ClientID: ptr(""), SupplierID: ptr(""), Lines: lines}, domain.ErrOrderCounterpartyRequired},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.uc.Create(ctx, owner, tc.in)
			require.Error(t, err)
			var fe *domain.FieldError
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, "order_type", fe.Field)
			assert.ErrorIs(t, err, tc.want)
		})
	}
	assert.Equal(t, 0, f.orderCount(t))
	assert.Equal(t, int64(50), f.stock(t, f.productA.ID))
}

func TestCreate_ContraparteInexistenteEsNotFound(t *testing.T) {
	f := newFixture(t, Config{})
	_, err := f.uc.Create(context.Background(), owner, dto.CreateOrderRequest{
		ClientID: ptr(f.supplier.ID), // existe, pero como proveedor
		Lines:    []dto.OrderLineRequest{line(f.productA.ID, 1, nil)},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	var opErr *domain.OperationError
	assert.False(t, errors.As(err, &opErr))
}

func TestCreate_ProductoInexistenteRevierteTodo(t *testing.T) {
	f := newFixture(t, Config{})
	_, err := f.uc.Create(context.Background(), owner, dto.CreateOrderRequest{
		ClientID: ptr(f.client.ID),
		Lines: []dto.OrderLineRequest{
			line(f.productA.ID, 5, nil),
			line("no-existe", 1, nil),
		},
	})
	var opErr *domain.OperationError
	require.True(t, errors.As(err, &opErr))
	assert.Equal(t, opCreate, opErr.Op)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Contains(t, err.Error(), "no se pudo crear el pedido")

	assert.Equal(t, int64(50), f.stock(t, f.productA.ID))
	assert.Equal(t, 0, f.orderCount(t))
}

func TestCreate_ValidacionDeLineas(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()

	_, err := f.uc.Create(ctx, owner, dto.CreateOrderRequest{ClientID: ptr(f.client.ID)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.uc.Create(ctx, owner, dto.CreateOrderRequest{
		ClientID: ptr(f.client.ID),
		Lines:    []dto.OrderLineRequest{line(f.productA.ID, 1, ptr(decimal.NewFromInt(-1)))},
	})
	var verrs domain.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, "lines[0].unit_price", verrs[0].Field)
}

func TestCreate_StockInsuficiente(t *testing.T) {
	f := newFixture(t, Config{})
	_, err := f.uc.Create(context.Background(), owner, dto.CreateOrderRequest{
		ClientID: ptr(f.client.ID),
		Lines:    []dto.OrderLineRequest{line(f.productA.ID, 60, nil)},
	})
	var opErr *domain.OperationError
	require.True(t, errors.As(err, &opErr))
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, int64(50), f.stock(t, f.productA.ID))
	assert.Equal(t, 0, f.orderCount(t))
}

func TestCreate_StockNegativoPermitidoPorConfig(t *testing.T) {
	f := newFixture(t, Config{AllowNegativeStock: true})
	_, err := f.uc.Create(context.Background(), owner, dto.CreateOrderRequest{
		ClientID: ptr(f.client.ID),
		Lines:    []dto.OrderLineRequest{line(f.productA.ID, 60, nil)},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(-10), f.stock(t, f.productA.ID))
}

func TestCreate_ActualizaContactoDeLaContraparte(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()
	res, err := f.uc.Create(ctx, owner, dto.CreateOrderRequest{
		ClientID: ptr(f.client.ID),
		Lines:    []dto.OrderLineRequest{line(f.productA.ID, 1, nil)},
		ContactInfo: &dto.ContactInfoRequest{
			ContactEmail: ptr("Ana+Compras@Mail.com"),
			ContactPhone: ptr("+1 650-253-0000"),
			Address:      ptr("Calle 1 # 2-3"),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Ana@mail.com", res.Counterparty.ContactEmail)
	assert.Equal(t, "+16502530000", res.Counterparty.ContactPhone, "el teléfono se guarda en E.164")
	assert.Equal(t, "Calle 1 # 2-3", res.Counterparty.Address)
	assert.Equal(t, "Ana Cliente", res.Counterparty.Name)
}

func TestCreate_ContactoInvalidoNoEscribeNada(t *testing.T) {
	f := newFixture(t, Config{})
	_, err := f.uc.Create(context.Background(), owner, dto.CreateOrderRequest{
		ClientID:    ptr(f.client.ID),
		Lines:       []dto.OrderLineRequest{line(f.productA.ID, 1, nil)},
		ContactInfo: &dto.ContactInfoRequest{ContactPhone: ptr("123")},
	})
	var verrs domain.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, "contact_info.contact_phone", verrs[0].Field)
	assert.Equal(t, int64(50), f.stock(t, f.productA.ID))
	assert.Equal(t, 0, f.orderCount(t))
}

// ──────────────────────────────────────────────────────────────────────────────
// Update
// ──────────────────────────────────────────────────────────────────────────────

func TestUpdate_AumentarCantidadDescuentaLaDiferencia(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()
	res, err := f.uc.Create(ctx, owner, dto.CreateOrderRequest{
		ClientID: ptr(f.client.ID),
		Lines:    []dto.OrderLineRequest{line(f.productA.ID, 5, nil)},
	})
	require.NoError(t, err)
	require.Equal(t, int64(45), f.stock(t, f.productA.ID))

	upd, err := f.uc.Update(ctx, owner, res.ID, dto.UpdateOrderRequest{
		Lines: []dto.OrderLineRequest{line(f.productA.ID, 8, nil)},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(42), f.stock(t, f.productA.ID))
	assert.Equal(t, res.OrderNumber, upd.OrderNumber)
	assert.Equal(t, int64(8), upd.ItemCount)
	assert.Len(t, upd.Lines, 1)
	assert.False(t, upd.UpdatedAt.Before(res.UpdatedAt))
}

func TestUpdate_CambiarProductoDevuelveElAnterior(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()
	res, err := f.uc.Create(ctx, owner, dto.CreateOrderRequest{
		ClientID: ptr(f.client.ID),
		Lines:    []dto.OrderLineRequest{line(f.productA.ID, 5, nil)},
	})
	require.NoError(t, err)

	_, err = f.uc.Update(ctx, owner, res.ID, dto.UpdateOrderRequest{
		Lines: []dto.OrderLineRequest{line(f.productB.ID, 3, nil)},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(50), f.stock(t, f.productA.ID))
	assert.Equal(t, int64(17), f.stock(t, f.productB.ID))
}

func TestUpdate_ReducirStockExactoNoFallaPorValorIntermedio(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()
	res, err := f.uc.Create(ctx, owner, dto.CreateOrderRequest{
		ClientID: ptr(f.client.ID),
		Lines:    []dto.OrderLineRequest{line(f.productA.ID, 50, nil)},
	})
	require.NoError(t, err)
	require.Equal(t, int64(0), f.stock(t, f.productA.ID))

	_, err = f.uc.Update(ctx, owner, res.ID, dto.UpdateOrderRequest{
		Lines: []dto.OrderLineRequest{line(f.productA.ID, 50, nil)},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), f.stock(t, f.productA.ID))
}

func TestUpdate_FalloRestauraLineasYStock(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()
	res, err := f.uc.Create(ctx, owner, dto.CreateOrderRequest{
		ClientID: ptr(f.client.ID),
		Lines:    []dto.OrderLineRequest{line(f.productA.ID, 5, nil)},
	})
	require.NoError(t, err)

	_, err = f.uc.Update(ctx, owner, res.ID, dto.UpdateOrderRequest{
		Lines: []dto.OrderLineRequest{line(f.productB.ID, 1, nil), line("no-existe", 1, nil)},
	})
	var opErr *domain.OperationError
	require.True(t, errors.As(err, &opErr))
	assert.Equal(t, opUpdate, opErr.Op)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.Equal(t, int64(45), f.stock(t, f.productA.ID))
	assert.Equal(t, int64(20), f.stock(t, f.productB.ID))
	got, err := f.uc.Get(ctx, owner, res.ID)
	require.NoError(t, err)
	require.Len(t, got.Lines, 1)
	assert.Equal(t, f.productA.ID, got.Lines[0].ProductID)
	assert.Equal(t, int64(5), got.Lines[0].Quantity)
}

// lecturaCaida falla las lecturas fuera de transacción que arman la respuesta.
type lecturaCaida struct {
	repository.OrderRepository
}

func (lecturaCaida) GetLineDetails(context.Context, string) ([]repository.OrderLineDetail, error) {
	return nil, errors.New("réplica caída")
}

func TestCreateYUpdate_RespuestaSeArmaDentroDeLaTransaccion(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()
	f.uc.orderRepo = lecturaCaida{OrderRepository: f.store.Orders()}

	res, err := f.uc.Create(ctx, owner, dto.CreateOrderRequest{
		ClientID: ptr(f.client.ID),
		Lines:    []dto.OrderLineRequest{line(f.productA.ID, 2, nil)},
	})
	require.NoError(t, err, "un pedido confirmado no debe reportarse como fallido")
	require.Len(t, res.Lines, 1)
	assert.Equal(t, int64(2), res.ItemCount)
	assert.Equal(t, int64(48), f.stock(t, f.productA.ID))

	upd, err := f.uc.Update(ctx, owner, res.ID, dto.UpdateOrderRequest{
		Lines: []dto.OrderLineRequest{line(f.productA.ID, 3, nil), line(f.productB.ID, 1, nil)},
	})
	require.NoError(t, err)
	require.Len(t, upd.Lines, 2)
	assert.Equal(t, int64(4), upd.ItemCount)
	assert.Equal(t, int64(47), f.stock(t, f.productA.ID))

	_, err = f.uc.Get(ctx, owner, res.ID)
	assert.Error(t, err, "Get sí usa el repositorio fuera de transacción")
}

func TestUpdate_PedidoInexistente(t *testing.T) {
	f := newFixture(t, Config{})
	_, err := f.uc.Update(context.Background(), owner, "no-existe", dto.UpdateOrderRequest{
		Lines: []dto.OrderLineRequest{line(f.productA.ID, 1, nil)},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdate_OtroOwnerNoVeElPedido(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()
	res, err := f.uc.Create(ctx, owner, dto.CreateOrderRequest{
		ClientID: ptr(f.client.ID),
		Lines:    []dto.OrderLineRequest{line(f.productA.ID, 1, nil)},
	})
	require.NoError(t, err)

	_, err = f.uc.Get(ctx, "otro-owner", res.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, f.uc.Delete(ctx, "otro-owner", res.ID), domain.ErrNotFound)
	assert.Equal(t, int64(49), f.stock(t, f.productA.ID))
}

// ──────────────────────────────────────────────────────────────────────────────
// Delete
// ──────────────────────────────────────────────────────────────────────────────

func TestDelete_CompraYaVendidaNoDejaStockNegativo(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()
	purchase, err := f.uc.Create(ctx, owner, dto.CreateOrderRequest{
		SupplierID: ptr(f.supplier.ID),
		Lines:      []dto.OrderLineRequest{line(f.productB.ID, 30, nil)},
	})
	require.NoError(t, err)
	_, err = f.uc.Create(ctx, owner, dto.CreateOrderRequest{
		ClientID: ptr(f.client.ID),
		Lines:    []dto.OrderLineRequest{line(f.productB.ID, 40, nil)},
	})
	require.NoError(t, err)
	require.Equal(t, int64(10), f.stock(t, f.productB.ID))

	err = f.uc.Delete(ctx, owner, purchase.ID)
	var opErr *domain.OperationError
	require.True(t, errors.As(err, &opErr))
	assert.Equal(t, opDelete, opErr.Op)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, int64(10), f.stock(t, f.productB.ID))
	assert.Equal(t, 2, f.orderCount(t))
}

func TestDelete_PedidoInexistente(t *testing.T) {
	f := newFixture(t, Config{})
	assert.ErrorIs(t, f.uc.Delete(context.Background(), owner, "no-existe"), domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Concurrencia y métricas
// ──────────────────────────────────────────────────────────────────────────────

func TestCreate_ConcurrenteNoPierdeAjustes(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.uc.Create(ctx, owner, dto.CreateOrderRequest{
				ClientID: ptr(f.client.ID),
				Lines: []dto.OrderLineRequest{
					line(f.productB.ID, 1, nil),
					line(f.productA.ID, 2, nil),
				},
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, int64(30), f.stock(t, f.productA.ID))
	assert.Equal(t, int64(10), f.stock(t, f.productB.ID))
}

func TestMetrics_CuentaAjustesYOperaciones(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()
	_, err := f.uc.Create(ctx, owner, dto.CreateOrderRequest{
		SupplierID: ptr(f.supplier.ID),
		Lines:      []dto.OrderLineRequest{line(f.productA.ID, 1, nil), line(f.productB.ID, 1, nil)},
	})
	require.NoError(t, err)
	_, err = f.uc.Create(ctx, owner, dto.CreateOrderRequest{
		ClientID: ptr(f.client.ID),
		Lines:    []dto.OrderLineRequest{line(f.productA.ID, 500, nil)},
	})
	require.Error(t, err)

	assert.Equal(t, 2.0, testutil.ToFloat64(f.metrics.stockAdjustments.WithLabelValues("in")))
	assert.Equal(t, 0.0, testutil.ToFloat64(f.metrics.stockAdjustments.WithLabelValues("out")))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.operations.WithLabelValues("create", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.operations.WithLabelValues("create", "error")))
}
