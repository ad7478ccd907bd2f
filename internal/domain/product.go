package domain

import (
	"time"

	"github.com/seu-repo/pdv-varejo/pkg/money"
)

// Product is a catalog item. StockQty is mutated only inside a committed
// sale transaction or by an explicit stock adjustment (purchase-in).
type Product struct {
	ID        int64       `json:"id" gorm:"primaryKey;autoIncrement"`
	Name      string      `json:"name" gorm:"index"`
	UnitPrice money.Cents `json:"unit_price_cents" gorm:"column:unit_price_cents"`
	StockQty  int         `json:"stock_qty"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// HasStock reports whether qty units can be sold.
func (p *Product) HasStock(qty int) bool {
	return p.StockQty >= qty
}
