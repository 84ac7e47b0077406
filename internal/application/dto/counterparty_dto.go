package dto

import "time"

// CreateCounterpartyRequest entrada para crear un cliente o proveedor.
type CreateCounterpartyRequest struct {
	Name         string `json:"name" validate:"required,min=1,max=255"`
	Description  string `json:"description" validate:"omitempty,max=1000"`
	ContactEmail string `json:"contact_email" validate:"omitempty,email,max=50"`
	ContactPhone string `json:"contact_phone" validate:"omitempty,max=20"`
	Address      string `json:"address" validate:"omitempty,max=255"`
}

// UpdateCounterpartyRequest entrada para actualizar un cliente o proveedor.
type UpdateCounterpartyRequest struct {
	Name         *string `json:"name" validate:"omitempty,min=1,max=255"`
	Description  *string `json:"description" validate:"omitempty,max=1000"`
	ContactEmail *string `json:"contact_email" validate:"omitempty,email,max=50"`
	ContactPhone *string `json:"contact_phone" validate:"omitempty,max=20"`
	Address      *string `json:"address" validate:"omitempty,max=255"`
}

// CounterpartyResponse salida de un cliente o proveedor.
type CounterpartyResponse struct {
	ID           string    `json:"id"`
	Kind         string    `json:"kind"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	ContactEmail string    `json:"contact_email,omitempty"`
	ContactPhone string    `json:"contact_phone,omitempty"`
	Address      string    `json:"address,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CounterpartyListResponse lista paginada de clientes o proveedores.
type CounterpartyListResponse struct {
	Items      []CounterpartyResponse `json:"items"`
	Pagination PaginationResponse     `json:"pagination"`
}
