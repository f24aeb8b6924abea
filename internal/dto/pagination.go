package dto

// Meta mirrors the paginated envelope the admin console consumes.
type Meta struct {
	CurrentPage int   `json:"current_page" example:"1"`
	LastPage    int   `json:"last_page" example:"4"`
	PerPage     int   `json:"per_page" example:"15"`
	Total       int64 `json:"total" example:"52"`
}

type Paginated[T any] struct {
	Data []T  `json:"data"`
	Meta Meta `json:"meta"`
}

const DefaultPerPage = 15

// NewMeta derives last_page from the total row count.
func NewMeta(page, perPage int, total int64) Meta {
	lastPage := int(total) / perPage
	if int(total)%perPage != 0 || lastPage == 0 {
		lastPage++
	}
	return Meta{
		CurrentPage: page,
		LastPage:    lastPage,
		PerPage:     perPage,
		Total:       total,
	}
}
