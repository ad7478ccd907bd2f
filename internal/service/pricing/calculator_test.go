package pricing

import (
	"testing"
	"time"

	"github.com/seu-repo/pdv-varejo/internal/domain"
	"github.com/seu-repo/pdv-varejo/pkg/money"
)

func TestComputeTotals_VoucherApplied(t *testing.T) {
	// Arrange: cart of 2 x 500.00 with a 100.00 voucher issued today
	lines := []domain.CartLine{
		{ProductID: 7, Name: "Ração Premium", UnitPrice: money.Cents(50000), Quantity: 2},
	}
	voucher := &domain.Voucher{
		Code:      "SAVE100",
		FaceValue: money.Cents(10000),
		ValidDays: 30,
		IssuedAt:  time.Now(),
		Status:    domain.VoucherStatusIssued,
	}

	// Act
	totals := ComputeTotals(lines, voucher)

	// Assert
	if totals.Subtotal != 100000 {
		t.Errorf("expected subtotal 1000.00, got %s", totals.Subtotal)
	}
	if totals.Discount != 10000 {
		t.Errorf("expected discount 100.00, got %s", totals.Discount)
	}
	if totals.Net != 90000 {
		t.Errorf("expected net 900.00, got %s", totals.Net)
	}
}

func TestComputeTotals_NetFlooredAtZero(t *testing.T) {
	// Voucher face value above subtotal must floor the net at zero,
	// never carry a negative balance into change due.
	lines := []domain.CartLine{
		{ProductID: 7, UnitPrice: money.Cents(50000), Quantity: 2},
	}
	voucher := &domain.Voucher{Code: "BIG", FaceValue: money.Cents(120000), Status: domain.VoucherStatusIssued}

	totals := ComputeTotals(lines, voucher)

	if totals.Net != 0 {
		t.Errorf("expected net 0.00, got %s", totals.Net)
	}
	if totals.Discount != 120000 {
		t.Errorf("expected discount 1200.00, got %s", totals.Discount)
	}
}

func TestComputeTotals_LineDiscounts(t *testing.T) {
	lines := []domain.CartLine{
		{ProductID: 1, UnitPrice: money.Cents(1050), Quantity: 3, LineDiscount: money.Cents(150)},
		{ProductID: 2, UnitPrice: money.Cents(299), Quantity: 1},
	}

	totals := ComputeTotals(lines, nil)

	// 3*10.50 - 1.50 + 2.99 = 32.99
	if totals.Subtotal != 3299 {
		t.Errorf("expected subtotal 32.99, got %s", totals.Subtotal)
	}
	if totals.Discount != 0 {
		t.Errorf("expected no voucher discount, got %s", totals.Discount)
	}
	if totals.Net != 3299 {
		t.Errorf("expected net 32.99, got %s", totals.Net)
	}
}

func TestComputeTotals_NetNeverNegative(t *testing.T) {
	// Floor-at-zero property over a spread of voucher values.
	lines := []domain.CartLine{
		{ProductID: 1, UnitPrice: money.Cents(100), Quantity: 1},
	}
	for face := money.Cents(0); face <= 500; face += 50 {
		v := &domain.Voucher{Code: "X", FaceValue: face}
		if got := ComputeTotals(lines, v).Net; got < 0 {
			t.Fatalf("net went negative (%s) for face value %s", got, face)
		}
	}
}

func TestComputeTotals_EmptyCart(t *testing.T) {
	totals := ComputeTotals(nil, nil)
	if totals.Subtotal != 0 || totals.Net != 0 {
		t.Errorf("expected zero totals, got %+v", totals)
	}
}
