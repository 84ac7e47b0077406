package entity

import "time"

// Tipos de contraparte de un pedido.
const (
	KindClient   = "client"   // venta: descuenta stock
	KindSupplier = "supplier" // compra: suma stock
)

// Counterparty datos comunes a clientes y proveedores.
// Kind distingue la tabla (clients | suppliers); el resto de campos es idéntico.
type Counterparty struct {
	ID           string
	OwnerID      string
	Kind         string
	Name         string
	Description  string
	ContactEmail string
	ContactPhone string
	Address      string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsValidKind indica si kind es client o supplier.
func IsValidKind(kind string) bool {
	return kind == KindClient || kind == KindSupplier
}
