package orders

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jhoicas/pedidos-api/internal/application/dto"
	"github.com/jhoicas/pedidos-api/internal/domain"
	"github.com/jhoicas/pedidos-api/internal/domain/entity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedOrders(t *testing.T, f *fixture) {
	t.Helper()
	ctx := context.Background()
	for _, qty := range []int64{1, 3, 2} {
		_, err := f.uc.Create(ctx, owner, dto.CreateOrderRequest{
			ClientID: ptr(f.client.ID),
			Lines:    []dto.OrderLineRequest{line(f.productA.ID, qty, ptr(decimal.NewFromInt(10)))},
		})
		require.NoError(t, err)
	}
	_, err := f.uc.Create(ctx, owner, dto.CreateOrderRequest{
		SupplierID: ptr(f.supplier.ID),
		Lines:      []dto.OrderLineRequest{line(f.productB.ID, 4, nil)},
	})
	require.NoError(t, err)
}

func TestList_PorDefectoPedidosDeClienteRecientesPrimero(t *testing.T) {
	f := newFixture(t, Config{})
	seedOrders(t, f)

	res, err := f.uc.List(context.Background(), owner, dto.OrderListRequest{})
	require.NoError(t, err)
	assert.Equal(t, entity.KindClient, res.Type)
	require.Len(t, res.Items, 3)
	assert.Equal(t, int64(2), res.Items[0].ItemCount, "el último creado va primero")
	assert.Equal(t, "Ana Cliente", res.Items[0].CounterpartyName)
	assert.Equal(t, dto.PaginationResponse{CurrentPage: 1, LastPage: 1, PerPage: 50, Total: 3}, res.Pagination)
}

func TestList_OrdenPorTotalYPaginacion(t *testing.T) {
	f := newFixture(t, Config{})
	seedOrders(t, f)

	req := dto.OrderListRequest{ListRequest: dto.ListRequest{SortBy: "total_amount", SortDirection: "asc", Page: 1, PerPage: 2}}
	res, err := f.uc.List(context.Background(), owner, req)
	require.NoError(t, err)
	require.Len(t, res.Items, 2)
	assert.True(t, res.Items[0].Cost.Equal(decimal.NewFromInt(10)))
	assert.True(t, res.Items[1].Cost.Equal(decimal.NewFromInt(20)))
	assert.True(t, res.Pagination.HasMorePages)
	assert.Equal(t, 2, res.Pagination.LastPage)

	req.Page = 2
	res, err = f.uc.List(context.Background(), owner, req)
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, int64(3), res.Items[0].ItemCount)
	assert.False(t, res.Pagination.HasMorePages)
}

func TestList_BusquedaPorNumeroOContraparte(t *testing.T) {
	f := newFixture(t, Config{})
	seedOrders(t, f)
	ctx := context.Background()

	res, err := f.uc.List(ctx, owner, dto.OrderListRequest{Type: entity.KindSupplier, ListRequest: dto.ListRequest{Search: "proveedor"}})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	number := res.Items[0].OrderNumber

	res, err = f.uc.List(ctx, owner, dto.OrderListRequest{Type: entity.KindSupplier, ListRequest: dto.ListRequest{Search: number[:8]}})
	require.NoError(t, err)
	assert.Len(t, res.Items, 1)

	res, err = f.uc.List(ctx, owner, dto.OrderListRequest{Type: entity.KindSupplier, ListRequest: dto.ListRequest{Search: "nadie"}})
	require.NoError(t, err)
	assert.Empty(t, res.Items)
}

func TestList_RangoDeFechas(t *testing.T) {
	f := newFixture(t, Config{})
	seedOrders(t, f)
	ctx := context.Background()
	today := time.Now().Format(dateLayout)
	tomorrow := time.Now().AddDate(0, 0, 1).Format(dateLayout)
	yesterday := time.Now().AddDate(0, 0, -1).Format(dateLayout)

	res, err := f.uc.List(ctx, owner, dto.OrderListRequest{StartDate: today, EndDate: today})
	require.NoError(t, err)
	assert.Len(t, res.Items, 3)

	res, err = f.uc.List(ctx, owner, dto.OrderListRequest{EndDate: yesterday})
	require.NoError(t, err)
	assert.Empty(t, res.Items)

	_, err = f.uc.List(ctx, owner, dto.OrderListRequest{EndDate: tomorrow})
	var verrs domain.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, "end_date", verrs[0].Field)

	_, err = f.uc.List(ctx, owner, dto.OrderListRequest{StartDate: today, EndDate: yesterday})
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, "start_date", verrs[0].Field)
}

func TestList_ColumnaDeOrdenNoPermitida(t *testing.T) {
	f := newFixture(t, Config{})
	_, err := f.uc.List(context.Background(), owner, dto.OrderListRequest{ListRequest: dto.ListRequest{SortBy: "owner_id"}})
	var fe *domain.FieldError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "sort_by", fe.Field)
}

func TestRecent_DevuelveLosUltimosN(t *testing.T) {
	f := newFixture(t, Config{})
	seedOrders(t, f)
	items, err := f.uc.Recent(context.Background(), owner, entity.KindClient, 2)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, int64(2), items[0].ItemCount)
	assert.Equal(t, int64(3), items[1].ItemCount)
}
