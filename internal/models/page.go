package models

// ListParams selects one page of a listing
type ListParams struct {
	Page  int
	Limit int
	// IncludeDrafts lists unpublished records too (staff only)
	IncludeDrafts bool
	// Upcoming restricts events to those not yet finished
	Upcoming bool
}

// Offset returns the row offset of the page
func (p ListParams) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// Page is one page of a listing
type Page[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}
