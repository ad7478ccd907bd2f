package pricing

import (
	"github.com/seu-repo/pdv-varejo/internal/domain"
	"github.com/seu-repo/pdv-varejo/pkg/money"
)

// Totals is the monetary breakdown of a cart.
type Totals struct {
	Subtotal money.Cents `json:"subtotal_cents"`
	Discount money.Cents `json:"discount_cents"`
	Net      money.Cents `json:"net_cents"`
}

// ComputeTotals derives subtotal, voucher discount and net total from the
// cart lines. The voucher, when present, must already have been validated;
// its full face value is applied and the net is floored at zero, so a voucher
// worth more than the subtotal forfeits the excess rather than producing a
// negative balance or change.
func ComputeTotals(lines []domain.CartLine, voucher *domain.Voucher) Totals {
	var subtotal money.Cents
	for _, l := range lines {
		subtotal += l.Total()
	}

	var discount money.Cents
	if voucher != nil {
		discount = voucher.FaceValue
	}

	net := subtotal - discount
	if net < 0 {
		net = 0
	}

	return Totals{Subtotal: subtotal, Discount: discount, Net: net}
}
