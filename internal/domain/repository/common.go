package repository

import "time"

// Direcciones de ordenamiento aceptadas por los listados.
const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// ListFilter parámetros comunes de búsqueda, orden y paginación para listados.
// SortBy debe venir ya validado contra la lista blanca de cada repositorio. Limit 0 = sin límite.
type ListFilter struct {
	Search        string
	SortBy        string
	SortDirection string
	Limit         int
	Offset        int
}

// OrderFilter filtros del listado de pedidos.
type OrderFilter struct {
	ListFilter
	Kind      string // client | supplier
	StartDate *time.Time
	EndDate   *time.Time
}
