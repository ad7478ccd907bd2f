package domain

import (
	"time"

	"github.com/seu-repo/pdv-varejo/pkg/money"
)

type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "Pending"
	TransactionStatusCompleted TransactionStatus = "Completed"
	TransactionStatusFailed    TransactionStatus = "Failed"
)

// CheckoutState tracks the coordinator's progress through a single checkout.
// Only Completed transactions are ever persisted; Rejected and RolledBack
// leave no trace in the store.
type CheckoutState string

const (
	CheckoutStateDraft      CheckoutState = "Draft"
	CheckoutStateValidating CheckoutState = "Validating"
	CheckoutStateCommitting CheckoutState = "Committing"
	CheckoutStateCompleted  CheckoutState = "Completed"
	CheckoutStateRejected   CheckoutState = "Rejected"
	CheckoutStateRolledBack CheckoutState = "RolledBack"
)

// IsTerminal reports whether the checkout can make no further progress.
func (s CheckoutState) IsTerminal() bool {
	return s == CheckoutStateCompleted || s == CheckoutStateRejected || s == CheckoutStateRolledBack
}

func (s CheckoutState) String() string {
	return string(s)
}

// CanTransitionTo enforces the legal state machine edges.
func (s CheckoutState) CanTransitionTo(next CheckoutState) bool {
	switch s {
	case CheckoutStateDraft:
		return next == CheckoutStateValidating
	case CheckoutStateValidating:
		return next == CheckoutStateCommitting || next == CheckoutStateRejected
	case CheckoutStateCommitting:
		return next == CheckoutStateCompleted || next == CheckoutStateRolledBack
	default:
		return false
	}
}

// TransactionLine is the immutable snapshot of a cart line at commit time.
type TransactionLine struct {
	ID            int64       `json:"-" gorm:"primaryKey;autoIncrement"`
	TransactionID string      `json:"-" gorm:"index"`
	ProductID     int64       `json:"product_id"`
	Name          string      `json:"name"`
	UnitPrice     money.Cents `json:"unit_price_cents" gorm:"column:unit_price_cents"`
	Quantity      int         `json:"quantity"`
	LineDiscount  money.Cents `json:"line_discount_cents" gorm:"column:line_discount_cents"`
}

// Transaction is the durable sale record. Immutable once Completed.
type Transaction struct {
	ID            string            `json:"id" gorm:"primaryKey"`
	Timestamp     time.Time         `json:"timestamp"`
	CustomerRef   string            `json:"customer_ref,omitempty"`
	Lines         []TransactionLine `json:"lines" gorm:"foreignKey:TransactionID"`
	Cash          money.Cents       `json:"cash_cents" gorm:"column:cash_cents"`
	Card          money.Cents       `json:"card_cents" gorm:"column:card_cents"`
	CardAuthID    string            `json:"card_auth_id,omitempty"`
	VoucherCode   string            `json:"voucher_code,omitempty" gorm:"index"`
	VoucherAmount money.Cents       `json:"voucher_amount_cents" gorm:"column:voucher_amount_cents"`
	Subtotal      money.Cents       `json:"subtotal_cents" gorm:"column:subtotal_cents"`
	Discount      money.Cents       `json:"discount_cents" gorm:"column:discount_cents"`
	NetTotal      money.Cents       `json:"net_total_cents" gorm:"column:net_total_cents"`
	ChangeDue     money.Cents       `json:"change_due_cents" gorm:"column:change_due_cents"`
	Status        TransactionStatus `json:"status" gorm:"index"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// TotalQuantity is the number of units sold, used for exact stock accounting.
func (t *Transaction) TotalQuantity() int {
	n := 0
	for _, l := range t.Lines {
		n += l.Quantity
	}
	return n
}

// Tendered is the total payment presented.
func (t *Transaction) Tendered() money.Cents {
	return t.Cash + t.Card
}
