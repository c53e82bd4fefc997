package dto

// DefaultMovementLimit tamaño de página del historial de movimientos cuando no se indica.
const DefaultMovementLimit = 20

// PageRequest ventana del historial, ordenado del movimiento más reciente al más antiguo.
type PageRequest struct {
	Limit  int `query:"limit" validate:"min=1,max=100"`
	Offset int `query:"offset" validate:"min=0"`
}

// DefaultPage completa Limit cuando viene vacío y normaliza un Offset negativo.
func (p *PageRequest) DefaultPage() {
	if p.Limit <= 0 {
		p.Limit = DefaultMovementLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// Response describe la página devuelta. HasMore se infiere de una página llena, sin contar el total.
func (p PageRequest) Response(returned int) PageResponse {
	return PageResponse{Limit: p.Limit, Offset: p.Offset, Returned: returned, HasMore: returned >= p.Limit}
}

// PageResponse metadatos de la página de movimientos.
type PageResponse struct {
	Limit    int  `json:"limit"`
	Offset   int  `json:"offset"`
	Returned int  `json:"returned"`
	HasMore  bool `json:"has_more"`
}

// ErrorResponse cuerpo de error HTTP; Code es el código estable del error de dominio.
type ErrorResponse struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}
