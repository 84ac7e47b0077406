package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/pedidos-api/internal/application/dto"
	"github.com/jhoicas/pedidos-api/internal/application/ports"
	"github.com/jhoicas/pedidos-api/internal/application/validation"
	"github.com/jhoicas/pedidos-api/internal/domain"
	"github.com/jhoicas/pedidos-api/internal/domain/entity"
	"github.com/jhoicas/pedidos-api/internal/domain/repository"
)

// CounterpartyUseCase CRUD de clientes o proveedores; kind fija cuál de los dos.
type CounterpartyUseCase struct {
	kind     string
	repo     repository.CounterpartyRepository
	contacts ports.ContactVerifier
}

// NewCounterpartyUseCase construye el caso de uso para kind (entity.KindClient | entity.KindSupplier).
func NewCounterpartyUseCase(kind string, repo repository.CounterpartyRepository, contacts ports.ContactVerifier) *CounterpartyUseCase {
	if !entity.IsValidKind(kind) {
		panic("usecase: tipo de contraparte inválido: " + kind)
	}
	return &CounterpartyUseCase{kind: kind, repo: repo, contacts: contacts}
}

// Kind devuelve client o supplier.
func (uc *CounterpartyUseCase) Kind() string { return uc.kind }

// Create crea el cliente/proveedor. El nombre es único por owner.
func (uc *CounterpartyUseCase) Create(ctx context.Context, ownerID string, in dto.CreateCounterpartyRequest) (*dto.CounterpartyResponse, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.ContactEmail = uc.cleanEmail(in.ContactEmail)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if err := uc.verifyContact(ctx, in.ContactEmail, in.ContactPhone); err != nil {
		return nil, err
	}
	if err := uc.ensureUniqueName(ctx, ownerID, "", in.Name); err != nil {
		return nil, err
	}
	now := time.Now()
	cp := &entity.Counterparty{
		ID:           uuid.New().String(),
		OwnerID:      ownerID,
		Kind:         uc.kind,
		Name:         in.Name,
		Description:  in.Description,
		ContactEmail: in.ContactEmail,
		ContactPhone: uc.formatPhone(in.ContactPhone),
		Address:      in.Address,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.repo.Create(ctx, cp); err != nil {
		return nil, err
	}
	return toCounterpartyResponse(cp), nil
}

// GetByID obtiene un cliente/proveedor del owner.
func (uc *CounterpartyUseCase) GetByID(ctx context.Context, ownerID, id string) (*dto.CounterpartyResponse, error) {
	cp, err := uc.repo.GetByID(ctx, uc.kind, ownerID, id)
	if err != nil {
		return nil, err
	}
	if cp == nil {
		return nil, domain.ErrNotFound
	}
	return toCounterpartyResponse(cp), nil
}

// Update actualiza los campos presentes en la entrada.
func (uc *CounterpartyUseCase) Update(ctx context.Context, ownerID, id string, in dto.UpdateCounterpartyRequest) (*dto.CounterpartyResponse, error) {
	if in.ContactEmail != nil {
		email := uc.cleanEmail(*in.ContactEmail)
		in.ContactEmail = &email
	}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	cp, err := uc.repo.GetByID(ctx, uc.kind, ownerID, id)
	if err != nil {
		return nil, err
	}
	if cp == nil {
		return nil, domain.ErrNotFound
	}

	var email, phone string
	if in.ContactEmail != nil {
		email = *in.ContactEmail
	}
	if in.ContactPhone != nil {
		phone = *in.ContactPhone
	}
	if err := uc.verifyContact(ctx, email, phone); err != nil {
		return nil, err
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.NewFieldError("name", "es obligatorio")
		}
		if err := uc.ensureUniqueName(ctx, ownerID, cp.ID, name); err != nil {
			return nil, err
		}
		cp.Name = name
	}
	if in.Description != nil {
		cp.Description = *in.Description
	}
	if in.ContactEmail != nil {
		cp.ContactEmail = *in.ContactEmail
	}
	if in.ContactPhone != nil {
		cp.ContactPhone = uc.formatPhone(*in.ContactPhone)
	}
	if in.Address != nil {
		cp.Address = *in.Address
	}
	cp.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, cp); err != nil {
		return nil, err
	}
	return toCounterpartyResponse(cp), nil
}

// List lista con búsqueda (nombre/email), orden y paginación.
func (uc *CounterpartyUseCase) List(ctx context.Context, ownerID string, in dto.ListRequest) (*dto.CounterpartyListResponse, error) {
	filter, err := listFilter(in, repository.CounterpartySortColumns, "name", repository.SortAsc)
	if err != nil {
		return nil, err
	}
	list, total, err := uc.repo.List(ctx, uc.kind, ownerID, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.CounterpartyResponse, 0, len(list))
	for _, cp := range list {
		items = append(items, *toCounterpartyResponse(cp))
	}
	return &dto.CounterpartyListResponse{
		Items:      items,
		Pagination: dto.NewPagination(filter.Offset/filter.Limit+1, filter.Limit, total),
	}, nil
}

// Search busca por nombre, email o teléfono; término vacío devuelve todos ordenados por nombre.
func (uc *CounterpartyUseCase) Search(ctx context.Context, ownerID string, in dto.SearchRequest) ([]dto.CounterpartyResponse, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	list, err := uc.repo.Search(ctx, uc.kind, ownerID, strings.TrimSpace(in.Term))
	if err != nil {
		return nil, err
	}
	items := make([]dto.CounterpartyResponse, 0, len(list))
	for _, cp := range list {
		items = append(items, *toCounterpartyResponse(cp))
	}
	return items, nil
}

// Delete elimina el cliente/proveedor. Falla con ErrConflict si tiene pedidos.
func (uc *CounterpartyUseCase) Delete(ctx context.Context, ownerID, id string) error {
	return uc.repo.Delete(ctx, uc.kind, ownerID, id)
}

func (uc *CounterpartyUseCase) cleanEmail(email string) string {
	email = strings.TrimSpace(email)
	if email == "" || uc.contacts == nil {
		return email
	}
	return uc.contacts.CleanEmail(email)
}

// formatPhone se aplica después de verifyContact.
func (uc *CounterpartyUseCase) formatPhone(phone string) string {
	phone = strings.TrimSpace(phone)
	if phone == "" || uc.contacts == nil {
		return phone
	}
	return uc.contacts.FormatPhone(phone)
}

func (uc *CounterpartyUseCase) verifyContact(ctx context.Context, email, phone string) error {
	if uc.contacts == nil {
		return nil
	}
	var verrs domain.ValidationErrors
	if email != "" {
		if err := uc.contacts.VerifyEmail(ctx, email); err != nil {
			verrs = append(verrs, domain.NewFieldError("contact_email", err.Error()))
		}
	}
	if phone = strings.TrimSpace(phone); phone != "" {
		if err := uc.contacts.VerifyPhone(phone); err != nil {
			verrs = append(verrs, domain.NewFieldError("contact_phone", err.Error()))
		}
	}
	return verrs.OrErr()
}

func (uc *CounterpartyUseCase) ensureUniqueName(ctx context.Context, ownerID, selfID, name string) error {
	existing, err := uc.repo.GetByOwnerAndName(ctx, uc.kind, ownerID, name)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != selfID {
		return &domain.FieldError{Field: "name", Err: domain.ErrDuplicate}
	}
	return nil
}

func toCounterpartyResponse(cp *entity.Counterparty) *dto.CounterpartyResponse {
	return &dto.CounterpartyResponse{
		ID:           cp.ID,
		Kind:         cp.Kind,
		Name:         cp.Name,
		Description:  cp.Description,
		ContactEmail: cp.ContactEmail,
		ContactPhone: cp.ContactPhone,
		Address:      cp.Address,
		CreatedAt:    cp.CreatedAt,
		UpdatedAt:    cp.UpdatedAt,
	}
}
