package service

const maxPageLimit = 100

// Page is one window of a listing.
type Page[T any] struct {
	Items []T
	Total int
	Page  int
	Limit int
}

// Pages returns the number of pages needed for Total.
func (p Page[T]) Pages() int {
	if p.Limit <= 0 {
		return 0
	}
	return (p.Total + p.Limit - 1) / p.Limit
}

// window turns a 1-based page and limit into limit and offset, applying
// defaultLimit and capping at maxPageLimit.
func window(page, limit, defaultLimit int) (int, int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return page, limit, (page - 1) * limit
}
