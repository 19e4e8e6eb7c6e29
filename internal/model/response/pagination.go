package response

const (
	DefaultPerPage = 50
	MaxPerPage     = 500
)

type PaginationMeta struct {
	CurrentPage int `json:"current_page"`
	PerPage     int `json:"per_page"`
	TotalItems  int `json:"total_items"`
	TotalPages  int `json:"total_pages"`
}

// NewPaginationMeta normalizes page and perPage and returns the meta block
// together with the [from, to) slice bounds for total items.
func NewPaginationMeta(page, perPage, total int) (PaginationMeta, int, int) {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	perPage = min(perPage, MaxPerPage)
	if page <= 0 {
		page = 1
	}

	pages := (total + perPage - 1) / perPage
	from := min((page-1)*perPage, total)
	to := min(from+perPage, total)

	return PaginationMeta{
		CurrentPage: page,
		PerPage:     perPage,
		TotalItems:  total,
		TotalPages:  pages,
	}, from, to
}
