package entity

import (
	"math"
	"time"
)

// Shopping groups the commerce-facing state of a profile.
type Shopping struct {
	Cart            Cart            `json:"cart" firestore:"cart"`
	Wishlist        []WishlistEntry `json:"wishlist" firestore:"wishlist"`
	PurchaseHistory []Order         `json:"purchase_history" firestore:"purchase_history"` // Append-only list of completed orders.
	AbandonedCarts  []AbandonedCart `json:"abandoned_carts" firestore:"abandoned_carts"`   // Bounded ring buffer of carts replaced by a clear.
}

// Cart is the active shopping cart. Items are unique by product id;
// repeated adds aggregate quantity instead of duplicating lines.
type Cart struct {
	Items     []CartItem `json:"items" firestore:"items"`
	Total     float64    `json:"total" firestore:"total"` // Recomputed from catalog prices after every mutation, never trusted stale.
	UpdatedAt time.Time  `json:"updated_at" firestore:"updated_at"`
}

// CartItem is a single cart line.
type CartItem struct {
	ProductID string    `json:"product_id" firestore:"product_id"`
	Quantity  int       `json:"quantity" firestore:"quantity"`
	AddedAt   time.Time `json:"added_at" firestore:"added_at"`
	UpdatedAt time.Time `json:"updated_at" firestore:"updated_at"`
}

// WishlistEntry is a saved product with a snapshot of its catalog data at
// the time it was added. Entries are unique by product id.
type WishlistEntry struct {
	ProductID   string         `json:"product_id" firestore:"product_id"`
	ProductData map[string]any `json:"product_data,omitempty" firestore:"product_data,omitempty"`
	AddedAt     time.Time      `json:"added_at" firestore:"added_at"`
}

// Order is a completed purchase appended to the purchase history.
type Order struct {
	OrderID     string     `json:"order_id" firestore:"order_id"`
	Items       []CartItem `json:"items" firestore:"items"`
	Total       float64    `json:"total" firestore:"total"`
	PaymentRef  string     `json:"payment_ref,omitempty" firestore:"payment_ref,omitempty"`
	PurchasedAt time.Time  `json:"purchased_at" firestore:"purchased_at"`
}

// AbandonedCart is a snapshot of a non-empty cart taken at the moment it was
// cleared.
type AbandonedCart struct {
	Items       []CartItem `json:"items" firestore:"items"`
	Total       float64    `json:"total" firestore:"total"`
	AbandonedAt time.Time  `json:"abandoned_at" firestore:"abandoned_at"`
}

// Upsert adds quantity for a product: an existing line gets its quantity
// incremented and updated_at bumped, otherwise a new line is appended.
func (c *Cart) Upsert(productID string, quantity int, now time.Time) {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items[i].Quantity += quantity
			c.Items[i].UpdatedAt = now
			c.UpdatedAt = now

			return
		}
	}

	c.Items = append(c.Items, CartItem{
		ProductID: productID,
		Quantity:  quantity,
		AddedAt:   now,
		UpdatedAt: now,
	})
	c.UpdatedAt = now
}

// Remove filters the line with the given product id out of the cart.
func (c *Cart) Remove(productID string, now time.Time) {
	items := c.Items[:0]
	for _, item := range c.Items {
		if item.ProductID != productID {
			items = append(items, item)
		}
	}
	c.Items = items
	c.UpdatedAt = now
}

// SetQuantity sets the quantity of an existing line. Lines for unknown
// products are left untouched.
func (c *Cart) SetQuantity(productID string, quantity int, now time.Time) {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items[i].Quantity = quantity
			c.Items[i].UpdatedAt = now
			c.UpdatedAt = now

			return
		}
	}
}

// Recompute recalculates the cart total from catalog prices. Lines whose
// product no longer resolves in the catalog contribute nothing.
func (c *Cart) Recompute(priceOf func(productID string) (float64, bool)) {
	var total float64
	for _, item := range c.Items {
		if price, ok := priceOf(item.ProductID); ok {
			total += price * float64(item.Quantity)
		}
	}
	c.Total = roundCents(total)
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Snapshot returns a deep copy of the cart's lines.
func (c *Cart) Snapshot() []CartItem {
	return append([]CartItem(nil), c.Items...)
}

// HasWishlisted reports whether the wishlist already contains the product.
func (s *Shopping) HasWishlisted(productID string) bool {
	for _, entry := range s.Wishlist {
		if entry.ProductID == productID {
			return true
		}
	}

	return false
}

// PushAbandoned records a cart snapshot on the abandoned ring buffer,
// truncating to the most recent MaxAbandonedCarts entries.
func (s *Shopping) PushAbandoned(cart Cart, now time.Time) {
	s.AbandonedCarts = append(s.AbandonedCarts, AbandonedCart{
		Items:       cart.Snapshot(),
		Total:       cart.Total,
		AbandonedAt: now,
	})
	s.AbandonedCarts = truncateOldest(s.AbandonedCarts, MaxAbandonedCarts)
}

func (s *Shopping) clone() Shopping {
	clone := *s
	clone.Cart.Items = s.Cart.Snapshot()
	clone.Wishlist = append([]WishlistEntry(nil), s.Wishlist...)
	clone.PurchaseHistory = append([]Order(nil), s.PurchaseHistory...)
	clone.AbandonedCarts = append([]AbandonedCart(nil), s.AbandonedCarts...)

	return clone
}

func roundCents(amount float64) float64 {
	return math.Round(amount*100) / 100
}
