package entity

// Product is a read-only catalog entry. The engine consumes the catalog only
// for cart-total recomputation and the cart projection join.
type Product struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	ImageURL    string  `json:"image_url,omitempty"`
	Category    string  `json:"category,omitempty"`
	InStock     bool    `json:"in_stock"`
}

// CartLine is a denormalized cart projection row: catalog fields joined with
// the quantity held in the authoritative cart.
type CartLine struct {
	Product
	Quantity  int     `json:"quantity"`
	LineTotal float64 `json:"line_total"`
}
