package dto

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// PageRequest paginación de GET /api/inventory. Un limit fuera de [1, MaxPageLimit]
// se rechaza con 400 después de aplicar los valores por defecto.
type PageRequest struct {
	Limit  int `query:"limit" validate:"min=1,max=100"`
	Offset int `query:"offset" validate:"min=0"`
}

// DefaultPage completa limit omitido (0) con DefaultPageLimit.
func (p *PageRequest) DefaultPage() {
	if p.Limit == 0 {
		p.Limit = DefaultPageLimit
	}
}

// PageResponse metadatos de página. Total cuenta todos los registros del filtro, no solo la página.
type PageResponse struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total"`
}

// ErrorResponse cuerpo de error HTTP: Code estable para clientes, Message legible.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
