package payment

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"github.com/stripe/stripe-go/v76/refund"

	"github.com/seu-repo/pdv-varejo/internal/ports"
	"github.com/seu-repo/pdv-varejo/pkg/money"
)

type StripeService struct {
	apiKey string
	log    *zap.Logger
}

func NewStripeService(apiKey string, log *zap.Logger) ports.PaymentGateway {
	stripe.Key = apiKey
	return &StripeService{
		apiKey: apiKey,
		log:    log,
	}
}

// Charge captures the card amount for one sale. Amounts are already in
// cents, which is exactly what the Stripe API expects.
func (s *StripeService) Charge(ctx context.Context, amount money.Cents, currency, reference string) (string, error) {
	if amount <= 0 {
		return "", errors.New("invalid amount")
	}

	s.log.Info("Creating payment intent",
		zap.String("amount", amount.String()),
		zap.String("currency", currency),
		zap.String("reference", reference),
	)

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(int64(amount)),
		Currency: stripe.String(currency),
		Confirm:  stripe.Bool(true),
	}
	if reference != "" {
		params.Metadata = map[string]string{"sale_transaction_id": reference}
	}
	params.Context = ctx

	pi, err := paymentintent.New(params)
	if err != nil {
		s.log.Error("Failed to create payment intent", zap.Error(err))
		return "", fmt.Errorf("stripe: create payment intent: %w", err)
	}

	s.log.Info("Payment intent created",
		zap.String("payment_intent_id", pi.ID),
		zap.String("status", string(pi.Status)),
	)

	return pi.ID, nil
}

// Refund reverses a charge, used when a later commit step fails.
func (s *StripeService) Refund(ctx context.Context, providerID string) error {
	if providerID == "" {
		return errors.New("payment ID is required")
	}

	s.log.Info("Refunding payment", zap.String("payment_id", providerID))

	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(providerID),
	}
	params.Context = ctx

	r, err := refund.New(params)
	if err != nil {
		s.log.Error("Failed to refund payment", zap.String("payment_id", providerID), zap.Error(err))
		return fmt.Errorf("stripe: refund payment: %w", err)
	}

	s.log.Info("Payment refunded",
		zap.String("refund_id", r.ID),
		zap.String("status", string(r.Status)),
	)

	return nil
}
