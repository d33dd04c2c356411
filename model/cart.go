package models

// CartLine is a user's pending quantity of one product. Quantity is always > 0.
type CartLine struct {
	UserID    string `json:"user_id"`
	ProductID int64  `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// CartItem is a cart line joined with the product it references.
// Product is nil when the product no longer exists.
type CartItem struct {
	CartLine
	Product *Product `json:"product,omitempty"`
}
