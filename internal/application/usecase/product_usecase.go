package usecase

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/pedidos-api/internal/application/dto"
	"github.com/jhoicas/pedidos-api/internal/application/validation"
	"github.com/jhoicas/pedidos-api/internal/domain"
	"github.com/jhoicas/pedidos-api/internal/domain/entity"
	"github.com/jhoicas/pedidos-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

const (
	skuUpper    = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	skuAlnum    = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	skuAttempts = 5
)

// ProductUseCase casos de uso CRUD para productos del owner.
// Stock se edita aquí solo como ajuste administrativo; los pedidos lo mueven vía la rutina de stock.
type ProductUseCase struct {
	repo repository.ProductRepository
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository) *ProductUseCase {
	return &ProductUseCase{repo: repo}
}

// Create crea un nuevo producto. Nombre y SKU son únicos por owner; SKU vacío se genera.
func (uc *ProductUseCase) Create(ctx context.Context, ownerID string, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.SKU = strings.TrimSpace(in.SKU)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if in.Price.LessThan(decimal.Zero) {
		return nil, domain.NewFieldError("price", "no puede ser negativo")
	}
	if err := uc.ensureUniqueName(ctx, ownerID, "", in.Name); err != nil {
		return nil, err
	}

	sku := in.SKU
	if sku == "" {
		generated, err := uc.generateSKU(ctx, ownerID)
		if err != nil {
			return nil, err
		}
		sku = generated
	} else {
		existing, err := uc.repo.GetByOwnerAndSKU(ctx, ownerID, sku)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, &domain.FieldError{Field: "sku", Err: domain.ErrDuplicate}
		}
	}

	now := time.Now()
	product := &entity.Product{
		ID:        uuid.New().String(),
		OwnerID:   ownerID,
		Name:      in.Name,
		SKU:       sku,
		Price:     in.Price,
		Stock:     in.Stock,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// GetByID obtiene un producto del owner.
func (uc *ProductUseCase) GetByID(ctx context.Context, ownerID, id string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return toProductResponse(product), nil
}

// Update actualiza nombre, precio y stock (ajuste administrativo).
func (uc *ProductUseCase) Update(ctx context.Context, ownerID, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	product, err := uc.repo.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if err := uc.ensureUniqueName(ctx, ownerID, product.ID, name); err != nil {
			return nil, err
		}
		product.Name = name
	}
	if in.Price != nil {
		if in.Price.LessThan(decimal.Zero) {
			return nil, domain.NewFieldError("price", "no puede ser negativo")
		}
		product.Price = *in.Price
	}
	if in.Stock != nil {
		product.Stock = *in.Stock
	}
	product.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// List lista productos con búsqueda (nombre/SKU), orden y paginación.
func (uc *ProductUseCase) List(ctx context.Context, ownerID string, in dto.ListRequest) (*dto.ProductListResponse, error) {
	filter, err := listFilter(in, repository.ProductSortColumns, "name", repository.SortAsc)
	if err != nil {
		return nil, err
	}
	list, total, err := uc.repo.List(ctx, ownerID, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items:      items,
		Pagination: dto.NewPagination(filter.Offset/filter.Limit+1, filter.Limit, total),
	}, nil
}

// Search busca productos por nombre o SKU para selectores de pedidos.
func (uc *ProductUseCase) Search(ctx context.Context, ownerID string, in dto.SearchRequest) ([]dto.ProductResponse, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	list, err := uc.repo.Search(ctx, ownerID, strings.TrimSpace(in.Term))
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProductResponse(p))
	}
	return items, nil
}

// Delete elimina un producto. Falla con ErrConflict si tiene líneas de pedido.
func (uc *ProductUseCase) Delete(ctx context.Context, ownerID, id string) error {
	return uc.repo.Delete(ctx, ownerID, id)
}

func (uc *ProductUseCase) ensureUniqueName(ctx context.Context, ownerID, selfID, name string) error {
	existing, err := uc.repo.GetByOwnerAndName(ctx, ownerID, name)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != selfID {
		return &domain.FieldError{Field: "name", Err: domain.ErrDuplicate}
	}
	return nil
}

// generateSKU genera "XXX-xxxxxxxx" (3 mayúsculas/dígitos, guion, 8 alfanuméricos) sin colisión.
func (uc *ProductUseCase) generateSKU(ctx context.Context, ownerID string) (string, error) {
	for range skuAttempts {
		sku := GenerateSKU()
		existing, err := uc.repo.GetByOwnerAndSKU(ctx, ownerID, sku)
		if err != nil {
			return "", err
		}
		if existing == nil {
			return sku, nil
		}
	}
	return "", fmt.Errorf("generar sku: %w", domain.ErrConflict)
}

// GenerateSKU devuelve un SKU aleatorio con formato "XXX-xxxxxxxx".
func GenerateSKU() string {
	var b strings.Builder
	b.Grow(12)
	for range 3 {
		b.WriteByte(skuUpper[rand.IntN(len(skuUpper))])
	}
	b.WriteByte('-')
	for range 8 {
		b.WriteByte(skuAlnum[rand.IntN(len(skuAlnum))])
	}
	return b.String()
}

// listFilter valida orden y paginación y construye el filtro del repositorio.
func listFilter(in dto.ListRequest, columns []string, defaultSort, defaultDir string) (repository.ListFilter, error) {
	if err := validation.Struct(in); err != nil {
		return repository.ListFilter{}, err
	}
	in.DefaultPage()
	if in.SortBy == "" {
		in.SortBy = defaultSort
	}
	if in.SortDirection == "" {
		in.SortDirection = defaultDir
	}
	if !slices.Contains(columns, in.SortBy) {
		return repository.ListFilter{}, domain.NewFieldError("sort_by", "columna de orden no permitida")
	}
	return repository.ListFilter{
		Search:        strings.TrimSpace(in.Search),
		SortBy:        in.SortBy,
		SortDirection: in.SortDirection,
		Limit:         in.PerPage,
		Offset:        in.Offset(),
	}, nil
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	return &dto.ProductResponse{
		ID:        p.ID,
		Name:      p.Name,
		SKU:       p.SKU,
		Price:     p.Price,
		Stock:     p.Stock,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}
