package postgres

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/seu-repo/pdv-varejo/internal/domain"
	"github.com/seu-repo/pdv-varejo/internal/ports"
)

type VoucherRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewVoucherRepository(db *gorm.DB, log *zap.Logger) ports.VoucherRepository {
	return &VoucherRepository{
		db:  db,
		log: log,
	}
}

func (r *VoucherRepository) Save(ctx context.Context, v *domain.Voucher) error {
	return r.db.WithContext(ctx).Save(v).Error
}

func (r *VoucherRepository) FindByCode(ctx context.Context, code string) (*domain.Voucher, error) {
	var v domain.Voucher
	err := r.db.WithContext(ctx).First(&v, "code = ?", code).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &v, nil
}

// FindByCodeForUpdate locks the voucher row for the current transaction.
func (r *VoucherRepository) FindByCodeForUpdate(ctx context.Context, code string) (*domain.Voucher, error) {
	var v domain.Voucher
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&v, "code = ?", code).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &v, nil
}

// Redeem flips an Issued voucher to Redeemed. The status guard in the WHERE
// clause makes redemption monotonic even without the row lock.
func (r *VoucherRepository) Redeem(ctx context.Context, code, transactionID string, at time.Time) error {
	result := r.db.WithContext(ctx).Model(&domain.Voucher{}).
		Where("code = ? AND status = ?", code, domain.VoucherStatusIssued).
		Updates(map[string]interface{}{
			"status":               domain.VoucherStatusRedeemed,
			"redeemed_at":          at,
			"redeemed_transaction": transactionID,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return r.statusFailure(ctx, code)
	}
	return nil
}

// statusFailure distinguishes why a guarded status update matched no row.
func (r *VoucherRepository) statusFailure(ctx context.Context, code string) error {
	v, err := r.FindByCode(ctx, code)
	if err != nil {
		return err
	}
	if v == nil {
		return domain.ErrVoucherNotFound
	}
	switch v.Status {
	case domain.VoucherStatusRedeemed:
		return domain.ErrVoucherAlreadyRedeemed
	case domain.VoucherStatusCancelled:
		return domain.ErrVoucherCancelled
	}
	return domain.ErrVoucherNotFound
}

// Cancel voids an Issued voucher. The same status guard as Redeem keeps the
// transition monotonic when a checkout redeems the code concurrently.
func (r *VoucherRepository) Cancel(ctx context.Context, code string) error {
	result := r.db.WithContext(ctx).Model(&domain.Voucher{}).
		Where("code = ? AND status = ?", code, domain.VoucherStatusIssued).
		Update("status", domain.VoucherStatusCancelled)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return r.statusFailure(ctx, code)
	}
	return nil
}
