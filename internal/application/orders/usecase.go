// Package orders implementa la rutina de consistencia pedido/stock: crear, reemplazar líneas y
// eliminar pedidos ajustando el stock de los productos en una única transacción.
package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/pedidos-api/internal/application/dto"
	"github.com/jhoicas/pedidos-api/internal/application/ports"
	"github.com/jhoicas/pedidos-api/internal/application/validation"
	"github.com/jhoicas/pedidos-api/internal/domain"
	"github.com/jhoicas/pedidos-api/internal/domain/entity"
	"github.com/jhoicas/pedidos-api/internal/domain/inventory"
	"github.com/jhoicas/pedidos-api/internal/domain/repository"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Nombres de operación usados en OperationError.
const (
	opCreate = "crear el pedido"
	opUpdate = "actualizar el pedido"
	opDelete = "eliminar el pedido"
)

// Config opciones del motor de stock.
type Config struct {
	// AllowNegativeStock desactiva el rechazo de operaciones que dejan stock < 0.
	AllowNegativeStock bool
}

// UseCase casos de uso de pedidos. Todas las operaciones reciben el ownerID explícito.
type UseCase struct {
	txRunner         ports.TxRunner
	orderRepo        repository.OrderRepository
	productRepo      repository.ProductRepository
	counterpartyRepo repository.CounterpartyRepository
	contacts         ports.ContactVerifier
	metrics          *Metrics
	log              zerolog.Logger
	cfg              Config
	now              func() time.Time
}

// NewUseCase construye el caso de uso. contacts y metrics pueden ser nil.
func NewUseCase(
	txRunner ports.TxRunner,
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	counterpartyRepo repository.CounterpartyRepository,
	contacts ports.ContactVerifier,
	metrics *Metrics,
	log zerolog.Logger,
	cfg Config,
) *UseCase {
	return &UseCase{
		txRunner:         txRunner,
		orderRepo:        orderRepo,
		productRepo:      productRepo,
		counterpartyRepo: counterpartyRepo,
		contacts:         contacts,
		metrics:          metrics,
		log:              log.With().Str("component", "orders").Logger(),
		cfg:              cfg,
		now:              time.Now,
	}
}

// Create valida la contraparte, inserta el pedido con sus líneas y aplica el delta de stock.
func (uc *UseCase) Create(ctx context.Context, ownerID string, in dto.CreateOrderRequest) (*dto.OrderResponse, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if err := inventory.ValidateCounterparty(in.ClientID, in.SupplierID); err != nil {
		return nil, err
	}
	if err := validateLinePrices(in.Lines); err != nil {
		return nil, err
	}
	contact, err := uc.prepareContact(ctx, in.ContactInfo)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	order := &entity.Order{
		ID:          uuid.New().String(),
		OwnerID:     ownerID,
		OrderNumber: uuid.New().String(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if in.ClientID != nil && *in.ClientID != "" {
		order.ClientID = in.ClientID
	} else {
		order.SupplierID = in.SupplierID
	}

	// La contraparte debe existir para el owner (404, no fallo de operación).
	cp, err := uc.counterpartyRepo.GetByID(ctx, order.Kind(), ownerID, order.CounterpartyID())
	if err != nil {
		return nil, fmt.Errorf("obtener contraparte: %w", err)
	}
	if cp == nil {
		return nil, fmt.Errorf("%s %s: %w", order.Kind(), order.CounterpartyID(), domain.ErrNotFound)
	}

	var (
		applied map[string]int64
		resp    *dto.OrderResponse
	)
	err = uc.txRunner.Run(ctx, func(
		orderRepo repository.OrderRepository,
		productRepo repository.ProductRepository,
		counterpartyRepo repository.CounterpartyRepository,
	) error {
		if err := orderRepo.Create(ctx, order); err != nil {
			return err
		}
		lines, err := insertLines(ctx, orderRepo, productRepo, order, in.Lines, now)
		if err != nil {
			return err
		}
		delta := inventory.StockDelta(lines, inventory.Multiplier(order))
		final := make(map[string]int64, len(delta))
		if err := applyDelta(ctx, productRepo, ownerID, delta, final); err != nil {
			return err
		}
		if err := uc.checkStock(delta, final); err != nil {
			return err
		}
		if err := updateContact(ctx, counterpartyRepo, order, contact, now); err != nil {
			return err
		}
		applied = delta
		resp, err = loadResponse(ctx, orderRepo, counterpartyRepo, order)
		return err
	})
	uc.metrics.observeOperation("create", err)
	if err != nil {
		uc.log.Warn().Err(err).Str("owner_id", ownerID).Str("kind", order.Kind()).Msg("crear pedido falló")
		return nil, &domain.OperationError{Op: opCreate, Err: err}
	}
	uc.metrics.observeAdjustments(applied)
	uc.log.Info().
		Str("owner_id", ownerID).
		Str("order_number", order.OrderNumber).
		Str("kind", order.Kind()).
		Int("lines", len(in.Lines)).
		Msg("pedido creado")
	return resp, nil
}

// Update reemplaza todas las líneas del pedido: revierte el delta actual, borra las líneas,
// inserta las nuevas y aplica su delta. La contraparte no cambia.
func (uc *UseCase) Update(ctx context.Context, ownerID, id string, in dto.UpdateOrderRequest) (*dto.OrderResponse, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if err := validateLinePrices(in.Lines); err != nil {
		return nil, err
	}
	contact, err := uc.prepareContact(ctx, in.ContactInfo)
	if err != nil {
		return nil, err
	}
	order, err := uc.orderRepo.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, fmt.Errorf("obtener pedido: %w", err)
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}

	now := uc.now()
	var (
		applied map[string]int64
		resp    *dto.OrderResponse
	)
	err = uc.txRunner.Run(ctx, func(
		orderRepo repository.OrderRepository,
		productRepo repository.ProductRepository,
		counterpartyRepo repository.CounterpartyRepository,
	) error {
		current, err := orderRepo.GetLines(ctx, order.ID)
		if err != nil {
			return err
		}
		multiplier := inventory.Multiplier(order)
		reverse := inventory.StockDelta(current, -multiplier)
		final := make(map[string]int64)
		if err := applyDelta(ctx, productRepo, ownerID, reverse, final); err != nil {
			return err
		}
		if err := orderRepo.DeleteLines(ctx, order.ID); err != nil {
			return err
		}
		order.UpdatedAt = now
		if err := orderRepo.Touch(ctx, order); err != nil {
			return err
		}
		lines, err := insertLines(ctx, orderRepo, productRepo, order, in.Lines, now)
		if err != nil {
			return err
		}
		forward := inventory.StockDelta(lines, multiplier)
		if err := applyDelta(ctx, productRepo, ownerID, forward, final); err != nil {
			return err
		}
		net := mergeDelta(reverse, forward)
		if err := uc.checkStock(net, final); err != nil {
			return err
		}
		if err := updateContact(ctx, counterpartyRepo, order, contact, now); err != nil {
			return err
		}
		applied = net
		resp, err = loadResponse(ctx, orderRepo, counterpartyRepo, order)
		return err
	})
	uc.metrics.observeOperation("update", err)
	if err != nil {
		uc.log.Warn().Err(err).Str("owner_id", ownerID).Str("order_number", order.OrderNumber).Msg("actualizar pedido falló")
		return nil, &domain.OperationError{Op: opUpdate, Err: err}
	}
	uc.metrics.observeAdjustments(applied)
	uc.log.Info().
		Str("owner_id", ownerID).
		Str("order_number", order.OrderNumber).
		Int("lines", len(in.Lines)).
		Msg("pedido actualizado")
	return resp, nil
}

// Delete revierte el efecto del pedido en el stock y lo elimina junto con sus líneas.
func (uc *UseCase) Delete(ctx context.Context, ownerID, id string) error {
	order, err := uc.orderRepo.GetByID(ctx, ownerID, id)
	if err != nil {
		return fmt.Errorf("obtener pedido: %w", err)
	}
	if order == nil {
		return domain.ErrNotFound
	}

	var applied map[string]int64
	err = uc.txRunner.Run(ctx, func(
		orderRepo repository.OrderRepository,
		productRepo repository.ProductRepository,
		_ repository.CounterpartyRepository,
	) error {
		lines, err := orderRepo.GetLines(ctx, order.ID)
		if err != nil {
			return err
		}
		reverse := inventory.StockDelta(lines, -inventory.Multiplier(order))
		final := make(map[string]int64, len(reverse))
		if err := applyDelta(ctx, productRepo, ownerID, reverse, final); err != nil {
			return err
		}
		if err := uc.checkStock(reverse, final); err != nil {
			return err
		}
		if err := orderRepo.DeleteLines(ctx, order.ID); err != nil {
			return err
		}
		if err := orderRepo.Delete(ctx, ownerID, order.ID); err != nil {
			return err
		}
		applied = reverse
		return nil
	})
	uc.metrics.observeOperation("delete", err)
	if err != nil {
		uc.log.Warn().Err(err).Str("owner_id", ownerID).Str("order_number", order.OrderNumber).Msg("eliminar pedido falló")
		return &domain.OperationError{Op: opDelete, Err: err}
	}
	uc.metrics.observeAdjustments(applied)
	uc.log.Info().Str("owner_id", ownerID).Str("order_number", order.OrderNumber).Msg("pedido eliminado")
	return nil
}

// insertLines crea las líneas del pedido. Un precio unitario vacío toma el precio actual del producto.
func insertLines(
	ctx context.Context,
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	order *entity.Order,
	in []dto.OrderLineRequest,
	now time.Time,
) ([]*entity.OrderLine, error) {
	lines := make([]*entity.OrderLine, 0, len(in))
	for _, l := range in {
		product, err := productRepo.GetByID(ctx, order.OwnerID, l.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, fmt.Errorf("producto %s: %w", l.ProductID, domain.ErrNotFound)
		}
		price := product.Price
		if l.UnitPrice != nil {
			price = *l.UnitPrice
		}
		line := &entity.OrderLine{
			ID:        uuid.New().String(),
			OrderID:   order.ID,
			ProductID: product.ID,
			Quantity:  l.Quantity,
			UnitPrice: price,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := orderRepo.CreateLine(ctx, line); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// applyDelta ajusta el stock en orden ascendente de ID y anota el stock resultante en final.
func applyDelta(ctx context.Context, productRepo repository.ProductRepository, ownerID string, delta, final map[string]int64) error {
	for _, id := range inventory.SortedProductIDs(delta) {
		stock, err := productRepo.AdjustStock(ctx, ownerID, id, delta[id])
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("producto %s: %w", id, err)
			}
			return err
		}
		final[id] = stock
	}
	return nil
}

// checkStock rechaza la operación si un producto con delta neto negativo termina con stock < 0.
func (uc *UseCase) checkStock(net, final map[string]int64) error {
	if uc.cfg.AllowNegativeStock {
		return nil
	}
	for _, id := range inventory.SortedProductIDs(net) {
		if net[id] < 0 && final[id] < 0 {
			return fmt.Errorf("producto %s quedaría con %d unidades: %w", id, final[id], domain.ErrInsufficientStock)
		}
	}
	return nil
}

func mergeDelta(a, b map[string]int64) map[string]int64 {
	out := make(map[string]int64, len(a)+len(b))
	for id, d := range a {
		out[id] += d
	}
	for id, d := range b {
		out[id] += d
	}
	for id, d := range out {
		if d == 0 {
			delete(out, id)
		}
	}
	return out
}

func validateLinePrices(lines []dto.OrderLineRequest) error {
	var verrs domain.ValidationErrors
	for i, l := range lines {
		if l.UnitPrice != nil && l.UnitPrice.LessThan(decimal.Zero) {
			verrs = append(verrs, domain.NewFieldError(fmt.Sprintf("lines[%d].unit_price", i), "no puede ser negativo"))
		}
	}
	return verrs.OrErr()
}

// prepareContact limpia y verifica los datos de contacto opcionales antes de abrir la transacción.
func (uc *UseCase) prepareContact(ctx context.Context, in *dto.ContactInfoRequest) (*dto.ContactInfoRequest, error) {
	if in == nil {
		return nil, nil
	}
	out := *in
	var verrs domain.ValidationErrors
	if out.Name != nil {
		name := strings.TrimSpace(*out.Name)
		if name == "" {
			verrs = append(verrs, domain.NewFieldError("contact_info.name", "es obligatorio"))
		}
		out.Name = &name
	}
	if out.ContactEmail != nil && *out.ContactEmail != "" && uc.contacts != nil {
		email := uc.contacts.CleanEmail(*out.ContactEmail)
		if err := uc.contacts.VerifyEmail(ctx, email); err != nil {
			verrs = append(verrs, domain.NewFieldError("contact_info.contact_email", err.Error()))
		}
		out.ContactEmail = &email
	}
	if out.ContactPhone != nil && *out.ContactPhone != "" && uc.contacts != nil {
		if err := uc.contacts.VerifyPhone(*out.ContactPhone); err != nil {
			verrs = append(verrs, domain.NewFieldError("contact_info.contact_phone", err.Error()))
		} else {
			phone := uc.contacts.FormatPhone(*out.ContactPhone)
			out.ContactPhone = &phone
		}
	}
	if err := verrs.OrErr(); err != nil {
		return nil, err
	}
	return &out, nil
}

// updateContact aplica los datos de contacto a la contraparte del pedido dentro de la transacción.
func updateContact(ctx context.Context, repo repository.CounterpartyRepository, order *entity.Order, in *dto.ContactInfoRequest, now time.Time) error {
	if in == nil {
		return nil
	}
	cp, err := repo.GetByID(ctx, order.Kind(), order.OwnerID, order.CounterpartyID())
	if err != nil {
		return err
	}
	if cp == nil {
		return fmt.Errorf("%s %s: %w", order.Kind(), order.CounterpartyID(), domain.ErrNotFound)
	}
	if in.Name != nil {
		cp.Name = *in.Name
	}
	if in.ContactEmail != nil {
		cp.ContactEmail = *in.ContactEmail
	}
	if in.ContactPhone != nil {
		cp.ContactPhone = *in.ContactPhone
	}
	if in.Address != nil {
		cp.Address = *in.Address
	}
	cp.UpdatedAt = now
	return repo.Update(ctx, cp)
}
