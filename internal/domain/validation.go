package domain

// Pagination bounds
const (
	MaxPageSize     = 500
	DefaultPageSize = 50
)

// NormalizePagination clamps pagination parameters to sane bounds.
func NormalizePagination(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
