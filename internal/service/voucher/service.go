package voucher

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/seu-repo/pdv-varejo/internal/domain"
	"github.com/seu-repo/pdv-varejo/internal/ports"
	"github.com/seu-repo/pdv-varejo/pkg/money"
)

type Service struct {
	repo ports.VoucherRepository
	log  *zap.Logger
}

func NewService(repo ports.VoucherRepository, log *zap.Logger) ports.VoucherService {
	return &Service{repo: repo, log: log}
}

// Validate checks a voucher code against issuance, redemption and expiry
// state. Expiry is evaluated at the supplied instant: the caller decides
// whether that is "now" (counter lookup) or the checkout's validation
// timestamp, so a voucher validated just before midnight still honors the
// validation-time check when redeemed after it.
func (s *Service) Validate(ctx context.Context, code string, at time.Time) (*domain.Voucher, error) {
	v, err := s.repo.FindByCode(ctx, strings.TrimSpace(code))
	if err != nil {
		return nil, fmt.Errorf("voucher lookup: %w", err)
	}
	if v == nil {
		return nil, domain.ErrVoucherNotFound
	}

	switch v.Status {
	case domain.VoucherStatusRedeemed:
		return nil, domain.ErrVoucherAlreadyRedeemed
	case domain.VoucherStatusCancelled:
		return nil, domain.ErrVoucherCancelled
	}

	if v.Expired(at) {
		return nil, domain.ErrVoucherExpired
	}

	return v, nil
}

func (s *Service) Issue(ctx context.Context, faceValue money.Cents, validDays int) (*domain.Voucher, error) {
	if faceValue <= 0 {
		return nil, domain.ValidationError("face value must be positive")
	}
	if validDays <= 0 {
		return nil, domain.ValidationError("valid days must be positive")
	}

	now := time.Now()
	v := &domain.Voucher{
		Code:      newCode(),
		FaceValue: faceValue,
		ValidDays: validDays,
		IssuedAt:  now,
		Status:    domain.VoucherStatusIssued,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Save(ctx, v); err != nil {
		return nil, fmt.Errorf("save voucher: %w", err)
	}

	s.log.Info("Voucher issued",
		zap.String("code", v.Code),
		zap.String("face_value", v.FaceValue.String()),
		zap.Int("valid_days", v.ValidDays),
	)

	return v, nil
}

func (s *Service) Cancel(ctx context.Context, code string) error {
	v, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		return fmt.Errorf("voucher lookup: %w", err)
	}
	if v == nil {
		return domain.ErrVoucherNotFound
	}
	if v.Status != domain.VoucherStatusIssued {
		return domain.ConflictError("voucher %s is %s, only Issued vouchers can be cancelled", code, v.Status)
	}

	if err := s.repo.Cancel(ctx, code); err != nil {
		return fmt.Errorf("cancel voucher: %w", err)
	}

	s.log.Info("Voucher cancelled", zap.String("code", code))
	return nil
}

// newCode derives a short printable code from a UUID, e.g. "V-9F2C41D8".
func newCode() string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))
	return "V-" + raw[:8]
}
