package store

// PaginationParams contains offset pagination request parameters.
type PaginationParams struct {
	Limit  int // Items per page (defaults to 50 with a maximum of 200)
	Offset int // Items to skip
}

// DefaultPaginationParams returns sensible defaults.
func DefaultPaginationParams() PaginationParams {
	return PaginationParams{Limit: 50}
}

// Validate clamps the parameters into range.
func (p *PaginationParams) Validate() {
	if p.Limit <= 0 {
		p.Limit = 50
	}
	if p.Limit > 200 {
		p.Limit = 200
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// PaginatedResult contains one page of items and the total match count.
type PaginatedResult[T any] struct {
	Items   []T  `json:"items"`
	Total   int  `json:"total"`
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
}

// NewPaginatedResult builds a result and derives HasMore.
func NewPaginatedResult[T any](items []T, total int, params PaginationParams) *PaginatedResult[T] {
	if items == nil {
		items = []T{}
	}
	return &PaginatedResult[T]{
		Items:   items,
		Total:   total,
		Limit:   params.Limit,
		Offset:  params.Offset,
		HasMore: params.Offset+len(items) < total,
	}
}
