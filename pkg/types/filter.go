package types

// Filter represents query parameters for filtering and pagination.
//
//	/api/assignments?search=lab&sort[assigned_date]=desc&filter[status]=1,2&page=2&limit=10
type Filter struct {
	Search         string                 `json:"search,omitempty"`
	Sort           map[string]string      `json:"sort,omitempty"`
	Filter         map[string]interface{} `json:"filter,omitempty"`
	Limit          int                    `json:"limit"`
	Offset         int                    `json:"offset"`
	Page           int                    `json:"page"`
	WithPagination bool                   `json:"with_pagination"`
}

// Value returns the raw filter value as a string, "" when absent.
func (f Filter) Value(key string) string {
	if f.Filter == nil {
		return ""
	}
	v, ok := f.Filter[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// Pagination represents pagination metadata.
type Pagination struct {
	TotalCount uint64 `json:"total_count"`
	Page       int    `json:"page"`
	Limit      int    `json:"limit"`
	TotalPages int    `json:"total_pages"`
}

func NewPagination(total uint64, page, limit int) Pagination {
	totalPages := 0
	if limit > 0 {
		totalPages = int((total + uint64(limit) - 1) / uint64(limit))
	}
	return Pagination{TotalCount: total, Page: page, Limit: limit, TotalPages: totalPages}
}
