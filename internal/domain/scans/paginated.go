package scans

// PaginatedResult represents a paginated response with data and metadata
type PaginatedResult struct {
	Results     []*ScanResult `json:"results"`
	CurrentPage int           `json:"currentPage"`
	PageSize    int           `json:"pageSize"`
	Total       int64         `json:"total"`
	TotalPages  int           `json:"totalPages"`
}
