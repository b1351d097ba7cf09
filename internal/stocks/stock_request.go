package stocks

// CreateStockRequest is the manual producer path payload.
type CreateStockRequest struct {
	Title     string            `json:"title" binding:"required"`
	Category  string            `json:"category" binding:"required"`
	Quantity  int               `json:"quantity"`
	Reference string            `json:"reference"`
	Metadata  map[string]string `json:"metadata"`
}

// ActionRequest carries the optional note and the metadata overlay for pool
// transitions; assignment validates the merged map strictly.
type ActionRequest struct {
	Note     string            `json:"note"`
	Metadata map[string]string `json:"metadata"`
}

// StockFilters narrows pool listings; zero values mean "no filter".
type StockFilters struct {
	Status     string
	Category   string
	SourceType string
}
