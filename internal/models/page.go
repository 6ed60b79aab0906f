package models

// Page параметры постраничной выборки, нумерация с 1.
type Page struct {
	Number int
	Size   int
}

// Limit размер страницы для SQL.
func (p Page) Limit() int {
	if p.Size <= 0 {
		return 10
	}
	return p.Size
}

// Offset смещение для SQL.
func (p Page) Offset() int {
	if p.Number <= 1 {
		return 0
	}
	return (p.Number - 1) * p.Limit()
}

// Paginated ответ списочного запроса.
type Paginated[T any] struct {
	Count    int `json:"count"`
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
	Results  []T `json:"results"`
}

// NewPaginated собирает страницу результатов.
func NewPaginated[T any](items []T, total int, p Page) Paginated[T] {
	if items == nil {
		items = []T{}
	}
	number := p.Number
	if number < 1 {
		number = 1
	}
	return Paginated[T]{
		Count:    total,
		Page:     number,
		PageSize: p.Limit(),
		Results:  items,
	}
}
