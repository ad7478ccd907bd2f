package domain

import (
	"time"

	"github.com/seu-repo/pdv-varejo/pkg/money"
)

// CartLine is one product entry in an operator cart. Lines are unique by
// ProductID; adding the same product twice is rejected rather than merged.
type CartLine struct {
	ProductID    int64       `json:"product_id"`
	Name         string      `json:"name"`
	UnitPrice    money.Cents `json:"unit_price_cents"`
	Quantity     int         `json:"quantity"`
	LineDiscount money.Cents `json:"line_discount_cents"`
}

// Total is the line amount net of its own discount.
func (l CartLine) Total() money.Cents {
	return l.UnitPrice.Mul(l.Quantity) - l.LineDiscount
}

// Cart holds the pending line items for one checkout session. It is
// single-writer: all mutation goes through the session manager, which
// serializes access. The cart itself never touches the network.
type Cart struct {
	SessionID string     `json:"session_id"`
	Lines     []CartLine `json:"lines"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Add appends a line, failing on a duplicate product.
func (c *Cart) Add(line CartLine) error {
	if line.Quantity < 1 {
		return ValidationError("quantity must be at least 1")
	}
	if line.LineDiscount < 0 {
		return ValidationError("line discount cannot be negative")
	}
	for _, l := range c.Lines {
		if l.ProductID == line.ProductID {
			return ErrDuplicateLine
		}
	}
	c.Lines = append(c.Lines, line)
	return nil
}

// UpdateQuantity sets a line quantity, clamping values below 1 up to 1.
func (c *Cart) UpdateQuantity(productID int64, qty int) error {
	if qty < 1 {
		qty = 1
	}
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			c.Lines[i].Quantity = qty
			return nil
		}
	}
	return ErrLineNotFound
}

// SetDiscount sets a line discount.
func (c *Cart) SetDiscount(productID int64, discount money.Cents) error {
	if discount < 0 {
		return ValidationError("line discount cannot be negative")
	}
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			c.Lines[i].LineDiscount = discount
			return nil
		}
	}
	return ErrLineNotFound
}

// Remove deletes a line by product.
func (c *Cart) Remove(productID int64) error {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			return nil
		}
	}
	return ErrLineNotFound
}

// Clear drops all lines.
func (c *Cart) Clear() {
	c.Lines = nil
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// Snapshot returns a copy of the lines for immutable embedding in a
// transaction record.
func (c *Cart) Snapshot() []CartLine {
	out := make([]CartLine, len(c.Lines))
	copy(out, c.Lines)
	return out
}
