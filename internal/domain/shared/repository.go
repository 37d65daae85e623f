package shared

// PageRequest holds pagination parameters sent to the remote API
type PageRequest struct {
	Page  int
	Limit int
}

// DefaultPageRequest returns the first page with the console's default size
func DefaultPageRequest() PageRequest {
	return PageRequest{Page: 1, Limit: 10}
}

// Normalize fills in defaults for zero or negative values
func (p PageRequest) Normalize() PageRequest {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.Limit <= 0 {
		p.Limit = 10
	}
	return p
}
