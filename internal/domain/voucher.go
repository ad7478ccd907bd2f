package domain

import (
	"time"

	"github.com/seu-repo/pdv-varejo/pkg/money"
)

type VoucherStatus string

const (
	VoucherStatusIssued    VoucherStatus = "Issued"
	VoucherStatusRedeemed  VoucherStatus = "Redeemed"
	VoucherStatusCancelled VoucherStatus = "Cancelled"
)

// Voucher is a prepaid discount credential redeemable exactly once.
// Status transitions are monotonic: Issued -> Redeemed or Issued ->
// Cancelled; nothing transitions out of Redeemed or Cancelled.
type Voucher struct {
	Code                 string        `json:"code" gorm:"primaryKey"`
	FaceValue            money.Cents   `json:"face_value_cents" gorm:"column:face_value_cents"`
	ValidDays            int           `json:"valid_days"`
	IssuedAt             time.Time     `json:"issued_at"`
	RedeemedAt           *time.Time    `json:"redeemed_at,omitempty"`
	RedeemedTransaction  string        `json:"redeemed_transaction,omitempty"`
	Status               VoucherStatus `json:"status" gorm:"index"`
	CreatedAt            time.Time     `json:"created_at"`
	UpdatedAt            time.Time     `json:"updated_at"`
}

// ExpiresAt is the first instant the voucher is no longer valid.
func (v *Voucher) ExpiresAt() time.Time {
	return v.IssuedAt.AddDate(0, 0, v.ValidDays)
}

// Expired evaluates expiry against the given instant. The engine checks
// expiry at validation time; a voucher validated before midnight and
// redeemed after midnight honors the validation-time result.
func (v *Voucher) Expired(at time.Time) bool {
	return !at.Before(v.ExpiresAt())
}
