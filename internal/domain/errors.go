package domain

import (
	"errors"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrInsufficientStock  = errors.New("stock insuficiente")

	// Contraparte del pedido: exactamente uno de cliente o proveedor.
	ErrOrderCounterpartyRequired  = errors.New("el pedido debe tener un cliente o un proveedor")
	ErrOrderCounterpartyExclusive = errors.New("el pedido no puede tener a la vez un cliente y un proveedor")
)

// FieldError error de validación asociado a un campo de la entrada.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string { return e.Field + ": " + e.Err.Error() }

func (e *FieldError) Unwrap() error { return e.Err }

// NewFieldError construye un FieldError con un mensaje libre (envuelve ErrInvalidInput).
func NewFieldError(field, message string) *FieldError {
	return &FieldError{Field: field, Err: &messageError{msg: message}}
}

type messageError struct{ msg string }

func (e *messageError) Error() string { return e.msg }

func (e *messageError) Unwrap() error { return ErrInvalidInput }

// ValidationErrors agrupa varios errores de campo detectados antes de persistir.
type ValidationErrors []*FieldError

func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for _, fe := range v {
		parts = append(parts, fe.Error())
	}
	return strings.Join(parts, "; ")
}

// Unwrap permite errors.Is(err, ErrInvalidInput) sobre el conjunto.
func (v ValidationErrors) Unwrap() []error {
	errs := make([]error, 0, len(v)+1)
	errs = append(errs, ErrInvalidInput)
	for _, fe := range v {
		errs = append(errs, fe)
	}
	return errs
}

// OrErr devuelve nil si no hay errores acumulados.
func (v ValidationErrors) OrErr() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

// OperationError falla de una operación transaccional completa (create/update/delete).
// Nada de la operación quedó confirmado; Err conserva la causa original.
type OperationError struct {
	Op  string
	Err error
}

func (e *OperationError) Error() string {
	return "no se pudo " + e.Op + ": " + e.Err.Error()
}

func (e *OperationError) Unwrap() error { return e.Err }
