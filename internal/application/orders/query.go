package orders

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/jhoicas/pedidos-api/internal/application/dto"
	"github.com/jhoicas/pedidos-api/internal/application/validation"
	"github.com/jhoicas/pedidos-api/internal/domain"
	"github.com/jhoicas/pedidos-api/internal/domain/entity"
	"github.com/jhoicas/pedidos-api/internal/domain/inventory"
	"github.com/jhoicas/pedidos-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// Get devuelve el pedido con sus líneas, la contraparte y los agregados (costo, unidades).
func (uc *UseCase) Get(ctx context.Context, ownerID, id string) (*dto.OrderResponse, error) {
	order, err := uc.orderRepo.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, fmt.Errorf("obtener pedido: %w", err)
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	return loadResponse(ctx, uc.orderRepo, uc.counterpartyRepo, order)
}

// loadResponse arma la respuesta con los repositorios recibidos; dentro de una transacción
// lee el mismo estado que acaba de escribir.
func loadResponse(
	ctx context.Context,
	orderRepo repository.OrderRepository,
	counterpartyRepo repository.CounterpartyRepository,
	order *entity.Order,
) (*dto.OrderResponse, error) {
	details, err := orderRepo.GetLineDetails(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("obtener líneas: %w", err)
	}
	cp, err := counterpartyRepo.GetByID(ctx, order.Kind(), order.OwnerID, order.CounterpartyID())
	if err != nil {
		return nil, fmt.Errorf("obtener contraparte: %w", err)
	}
	return toOrderResponse(order, details, cp), nil
}

// List lista los pedidos de un tipo con búsqueda, orden, rango de fechas y paginación.
func (uc *UseCase) List(ctx context.Context, ownerID string, in dto.OrderListRequest) (*dto.OrderListResponse, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	in.DefaultPage()
	if in.Type == "" {
		in.Type = entity.KindClient
	}
	if in.SortBy == "" {
		in.SortBy = "created_at"
	}
	if in.SortDirection == "" {
		in.SortDirection = repository.SortDesc
	}
	if !slices.Contains(repository.OrderSortColumns, in.SortBy) {
		return nil, domain.NewFieldError("sort_by", "columna de orden no permitida")
	}

	filter := repository.OrderFilter{
		ListFilter: repository.ListFilter{
			Search:        in.Search,
			SortBy:        in.SortBy,
			SortDirection: in.SortDirection,
			Limit:         in.PerPage,
			Offset:        in.Offset(),
		},
		Kind: in.Type,
	}
	start, end, err := uc.dateRange(in.StartDate, in.EndDate)
	if err != nil {
		return nil, err
	}
	filter.StartDate, filter.EndDate = start, end

	rows, total, err := uc.orderRepo.List(ctx, ownerID, filter)
	if err != nil {
		return nil, fmt.Errorf("listar pedidos: %w", err)
	}
	items := make([]dto.OrderListItem, 0, len(rows))
	for _, r := range rows {
		items = append(items, ToOrderListItem(r))
	}
	return &dto.OrderListResponse{
		Items:      items,
		Pagination: dto.NewPagination(in.Page, in.PerPage, total),
		Type:       in.Type,
	}, nil
}

// Recent devuelve los n pedidos más recientes de un tipo.
func (uc *UseCase) Recent(ctx context.Context, ownerID, kind string, n int) ([]dto.OrderListItem, error) {
	rows, _, err := uc.orderRepo.List(ctx, ownerID, repository.OrderFilter{
		ListFilter: repository.ListFilter{SortBy: "created_at", SortDirection: repository.SortDesc, Limit: n},
		Kind:       kind,
	})
	if err != nil {
		return nil, fmt.Errorf("pedidos recientes: %w", err)
	}
	items := make([]dto.OrderListItem, 0, len(rows))
	for _, r := range rows {
		items = append(items, ToOrderListItem(r))
	}
	return items, nil
}

// dateRange convierte start/end (YYYY-MM-DD) en inicio y fin de día. end no puede ser futuro
// y start no puede ser posterior a end.
func (uc *UseCase) dateRange(startRaw, endRaw string) (*time.Time, *time.Time, error) {
	now := uc.now()
	loc := now.Location()
	var verrs domain.ValidationErrors
	var start, end *time.Time

	if startRaw != "" {
		d, err := time.ParseInLocation(dateLayout, startRaw, loc)
		if err != nil {
			verrs = append(verrs, domain.NewFieldError("start_date", "debe tener el formato "+dateLayout))
		} else {
			start = &d
		}
	}
	if endRaw != "" {
		d, err := time.ParseInLocation(dateLayout, endRaw, loc)
		if err != nil {
			verrs = append(verrs, domain.NewFieldError("end_date", "debe tener el formato "+dateLayout))
		} else {
			today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
			if d.After(today) {
				verrs = append(verrs, domain.NewFieldError("end_date", "no puede ser una fecha futura"))
			}
			e := d.Add(24*time.Hour - time.Nanosecond)
			end = &e
		}
	}
	if start != nil && end != nil && start.After(*end) {
		verrs = append(verrs, domain.NewFieldError("start_date", "debe ser anterior o igual a end_date"))
	}
	if err := verrs.OrErr(); err != nil {
		return nil, nil, err
	}
	return start, end, nil
}

// ToOrderListItem convierte una fila del listado en su DTO.
func ToOrderListItem(s repository.OrderSummary) dto.OrderListItem {
	return dto.OrderListItem{
		ID:               s.Order.ID,
		OrderNumber:      s.Order.OrderNumber,
		Type:             s.Order.Kind(),
		CounterpartyID:   s.Order.CounterpartyID(),
		CounterpartyName: s.CounterpartyName,
		Cost:             s.Cost,
		ItemCount:        s.ItemCount,
		CreatedAt:        s.Order.CreatedAt,
	}
}

func toOrderResponse(order *entity.Order, details []repository.OrderLineDetail, cp *entity.Counterparty) *dto.OrderResponse {
	lines := make([]*entity.OrderLine, 0, len(details))
	out := &dto.OrderResponse{
		ID:          order.ID,
		OrderNumber: order.OrderNumber,
		Type:        order.Kind(),
		ClientID:    order.ClientID,
		SupplierID:  order.SupplierID,
		Lines:       make([]dto.OrderLineResponse, 0, len(details)),
		CreatedAt:   order.CreatedAt,
		UpdatedAt:   order.UpdatedAt,
	}
	for i := range details {
		d := &details[i]
		lines = append(lines, &d.Line)
		out.Lines = append(out.Lines, dto.OrderLineResponse{
			ID:          d.Line.ID,
			ProductID:   d.Line.ProductID,
			ProductName: d.ProductName,
			ProductSKU:  d.ProductSKU,
			Quantity:    d.Line.Quantity,
			UnitPrice:   d.Line.UnitPrice,
			Subtotal:    d.Line.UnitPrice.Mul(decimal.NewFromInt(d.Line.Quantity)),
		})
	}
	out.Cost = inventory.ComputeCost(lines)
	out.ItemCount = inventory.ComputeItemCount(lines)
	if cp != nil {
		out.Counterparty = &dto.CounterpartyRef{
			ID:           cp.ID,
			Name:         cp.Name,
			ContactEmail: cp.ContactEmail,
			ContactPhone: cp.ContactPhone,
			Address:      cp.Address,
		}
	}
	return out
}
