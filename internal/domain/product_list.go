package domain

// ProductList is the remote catalog's answer to a product listing request.
type ProductList struct {
	Data  []CatalogItem `json:"data"`
	Total int           `json:"total"` // Matching items across all pages
	Pages int           `json:"pages"` // Page count as computed by the remote store
}

// FavoriteStatus is the remote answer to a favorite check or toggle.
type FavoriteStatus struct {
	IsFavorite bool `json:"isFavorite"`
}
