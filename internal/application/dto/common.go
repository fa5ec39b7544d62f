package dto

// PageMeta metadatos de paginación 1-based en respuestas de listado.
type PageMeta struct {
	TotalItems  int  `json:"totalItems"`
	TotalPages  int  `json:"totalPages"`
	CurrentPage int  `json:"currentPage"`
	HasNext     bool `json:"hasNext"`
	HasPrev     bool `json:"hasPrev"`
}

// NewPageMeta deriva los metadatos a partir de página actual, tamaño fijo y
// total de filas que casan con el filtro.
func NewPageMeta(page, pageSize, totalItems int) PageMeta {
	totalPages := 0
	if totalItems > 0 {
		totalPages = (totalItems + pageSize - 1) / pageSize
	}
	return PageMeta{
		TotalItems:  totalItems,
		TotalPages:  totalPages,
		CurrentPage: page,
		HasNext:     page < totalPages,
		HasPrev:     page > 1 && totalItems > 0,
	}
}

// ListQuery parámetros comunes de listado. Page es 1-based; Status y Search
// son opcionales (cadena vacía = sin filtro).
type ListQuery struct {
	Page   int    `query:"page"`
	Status string `query:"status"`
	Search string `query:"search"`
}

// Normalize aplica el valor por defecto de página.
func (q *ListQuery) Normalize() {
	if q.Page < 1 {
		q.Page = 1
	}
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
