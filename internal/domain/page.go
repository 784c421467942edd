package domain

type CatalogPage struct {
	Items      []CatalogItem `json:"items"`      // In the order the collaborator returned them
	TotalCount int           `json:"totalCount"` // Matching items across all pages
	TotalPages int           `json:"totalPages"` // Always >= 1
	Page       int           `json:"page"`       // Page that was requested
	PageSize   int           `json:"pageSize"`   // Page size actually used for the request
	Degraded   bool          `json:"degraded"`   // Served by the reduced-size retry
}

// IDs returns the item identifiers in page order.
func (p *CatalogPage) IDs() []string {
	ids := make([]string, 0, len(p.Items))
	for _, item := range p.Items {
		ids = append(ids, item.ID)
	}
	return ids
}

// TotalPagesFor computes the page count for total items split into pages of
// pageSize, never returning less than one.
func TotalPagesFor(total, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 1
	}
	return (total + pageSize - 1) / pageSize
}
