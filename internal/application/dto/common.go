package dto

// ListRequest búsqueda, orden y paginación para listados (query string).
type ListRequest struct {
	Search        string `query:"search" validate:"omitempty,max=255,searchterm"`
	SortBy        string `query:"sort_by" validate:"omitempty,max=50"`
	SortDirection string `query:"sort_direction" validate:"omitempty,oneof=asc desc"`
	Page          int    `query:"page" validate:"omitempty,min=1"`
	PerPage       int    `query:"per_page" validate:"omitempty,min=1,max=100"`
}

// Valores por defecto de paginación.
const (
	DefaultPerPage = 50
	MaxPerPage     = 100
)

// DefaultPage aplica valores por defecto si Page/PerPage vienen vacíos o fuera de rango.
func (p *ListRequest) DefaultPage() {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.PerPage <= 0 {
		p.PerPage = DefaultPerPage
	}
	if p.PerPage > MaxPerPage {
		p.PerPage = MaxPerPage
	}
}

// Offset devuelve el desplazamiento correspondiente a Page/PerPage.
func (p ListRequest) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// PaginationResponse metadatos de página en respuestas.
type PaginationResponse struct {
	CurrentPage  int  `json:"current_page"`
	LastPage     int  `json:"last_page"`
	PerPage      int  `json:"per_page"`
	Total        int  `json:"total"`
	HasMorePages bool `json:"has_more_pages"`
}

// NewPagination calcula los metadatos de página a partir del total de filas.
func NewPagination(page, perPage, total int) PaginationResponse {
	last := 1
	if perPage > 0 && total > 0 {
		last = (total + perPage - 1) / perPage
	}
	return PaginationResponse{
		CurrentPage:  page,
		LastPage:     last,
		PerPage:      perPage,
		Total:        total,
		HasMorePages: page < last,
	}
}

// ErrorResponse cuerpo de error HTTP.
// Fields detalla errores por campo; Input devuelve la entrada recibida para re-mostrarla.
type ErrorResponse struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
	Input   any               `json:"input,omitempty"`
}
