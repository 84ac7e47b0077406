package ports

import "context"

// ContactVerifier valida los datos de contacto de clientes y proveedores.
// El contexto debe llevar timeout: VerifyEmail puede consultar DNS.
type ContactVerifier interface {
	// CleanEmail normaliza el email (sin etiqueta +tag en la parte local, dominio en minúsculas).
	CleanEmail(email string) string
	// VerifyEmail comprueba sintaxis y, si está habilitado, que el dominio resuelva.
	VerifyEmail(ctx context.Context, email string) error
	// VerifyPhone comprueba que el teléfono sea un número válido para la región por defecto.
	VerifyPhone(phone string) error
	// FormatPhone devuelve el teléfono en E.164; si no se puede parsear lo devuelve tal cual.
	FormatPhone(phone string) string
}
