// Package transfer importa productos, clientes y proveedores desde CSV y los exporta a CSV o XML.
package transfer

import (
	"context"
	"time"

	"github.com/jhoicas/pedidos-api/internal/application/dto"
	"github.com/jhoicas/pedidos-api/internal/application/ports"
	"github.com/jhoicas/pedidos-api/internal/domain"
	"github.com/jhoicas/pedidos-api/internal/domain/entity"
	"github.com/jhoicas/pedidos-api/internal/domain/repository"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Recursos importables/exportables.
const (
	ResourceProducts  = "products"
	ResourceClients   = "clients"
	ResourceSuppliers = "suppliers"
)

// Formatos de exportación.
const (
	FormatCSV = "csv"
	FormatXML = "xml"
)

// UseCase casos de uso de importación y exportación.
type UseCase struct {
	txRunner         ports.TxRunner
	productRepo      repository.ProductRepository
	counterpartyRepo repository.CounterpartyRepository
	log              zerolog.Logger
	now              func() time.Time
}

// NewUseCase construye el caso de uso.
func NewUseCase(
	txRunner ports.TxRunner,
	productRepo repository.ProductRepository,
	counterpartyRepo repository.CounterpartyRepository,
	log zerolog.Logger,
) *UseCase {
	return &UseCase{
		txRunner:         txRunner,
		productRepo:      productRepo,
		counterpartyRepo: counterpartyRepo,
		log:              log.With().Str("component", "transfer").Logger(),
		now:              time.Now,
	}
}

// Stats devuelve la cantidad de registros exportables por recurso.
func (uc *UseCase) Stats(ctx context.Context, ownerID string) (*dto.ExportStats, error) {
	var out dto.ExportStats
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		out.Products, err = uc.productRepo.Count(ctx, ownerID)
		return err
	})
	g.Go(func() (err error) {
		out.Clients, err = uc.counterpartyRepo.Count(ctx, entity.KindClient, ownerID)
		return err
	})
	g.Go(func() (err error) {
		out.Suppliers, err = uc.counterpartyRepo.Count(ctx, entity.KindSupplier, ownerID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &out, nil
}

func validateResource(resource string) error {
	switch resource {
	case ResourceProducts, ResourceClients, ResourceSuppliers:
		return nil
	}
	return domain.NewFieldError("resource", "debe ser products, clients o suppliers")
}

// kindOf traduce clients/suppliers al tipo de contraparte.
func kindOf(resource string) string {
	if resource == ResourceClients {
		return entity.KindClient
	}
	return entity.KindSupplier
}
