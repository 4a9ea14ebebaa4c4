package domain

import (
	"time"

	"github.com/google/uuid"
)

// CartItem is one line in a cart: a product reference and its quantity.
// ID is assigned by the store on first persistence; zero means unsaved.
// Amount is at least 1 while the line exists, a line decremented to zero
// is removed from the cart instead of being persisted.
type CartItem struct {
	ID        int64
	ProductID uuid.UUID
	Amount    int32

	CreatedAt time.Time
}

// Cart is the per-owner aggregate of line items. Items is ordered by line ID
// and owned exclusively by the cart. At most one cart exists per owner and at
// most one line per product, both backed by unique constraints in the store.
type Cart struct {
	ID      int64
	OwnerID string
	Items   []CartItem

	CreatedAt time.Time
	UpdatedAt time.Time
}

// AddLine appends a new line for productID with an amount of one. It does not
// deduplicate; callers merge into an existing line via FindLine first.
func (c *Cart) AddLine(productID uuid.UUID) {
	c.Items = append(c.Items, CartItem{ProductID: productID, Amount: 1})
}

// RemoveLine deletes the line whose ID equals lineID. Removing an unknown
// line is a no-op.
func (c *Cart) RemoveLine(lineID int64) {
	for i := range c.Items {
		if c.Items[i].ID == lineID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return
		}
	}
}

// FindLine returns a pointer to the line holding productID, or nil when the
// product is not in the cart. The pointer aliases Items and stays valid until
// the next mutation.
func (c *Cart) FindLine(productID uuid.UUID) *CartItem {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return &c.Items[i]
		}
	}
	return nil
}
