package ports

import (
	"context"
	"time"

	"github.com/seu-repo/pdv-varejo/internal/domain"
	"github.com/seu-repo/pdv-varejo/pkg/money"
)

type CatalogService interface {
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	ListProducts(ctx context.Context) ([]domain.Product, error)
	CreateProduct(ctx context.Context, name string, unitPrice money.Cents, stockQty int) (*domain.Product, error)
	// AdjustStock applies a purchase-in delta outside of sale commits.
	AdjustStock(ctx context.Context, id int64, delta int) (*domain.Product, error)
}

type VoucherService interface {
	// Validate checks issuance, redemption state and expiry at the given
	// instant, returning a typed domain error on failure.
	Validate(ctx context.Context, code string, at time.Time) (*domain.Voucher, error)
	Issue(ctx context.Context, faceValue money.Cents, validDays int) (*domain.Voucher, error)
	Cancel(ctx context.Context, code string) error
}

type CustomerService interface {
	FindByPhone(ctx context.Context, phone string) (*domain.Customer, error)
	// Register creates a loyalty customer. Email is optional and only used
	// for receipt delivery.
	Register(ctx context.Context, name, phone, email string) (*domain.Customer, error)
}

// CheckoutRequest is the payment submission for one sale.
type CheckoutRequest struct {
	SessionID   string
	Lines       []domain.CartLine // used when SessionID is empty
	CustomerRef string
	VoucherCode string
	Cash        money.Cents
	Card        money.Cents
}

// CheckoutService coordinates the atomic sale commit.
type CheckoutService interface {
	Submit(ctx context.Context, req CheckoutRequest) (*domain.Transaction, error)
	GetTransaction(ctx context.Context, id string) (*domain.Transaction, error)
	ListTransactions(ctx context.Context, date *time.Time, limit int) ([]domain.Transaction, error)
}

// ReceiptService turns a completed transaction into printable output.
type ReceiptService interface {
	Format(tx *domain.Transaction) *domain.Receipt
	Render(r *domain.Receipt) string
}

// PaymentGateway captures the card portion of a payment split.
type PaymentGateway interface {
	Charge(ctx context.Context, amount money.Cents, currency, reference string) (providerID string, err error)
	Refund(ctx context.Context, providerID string) error
}

// EmailSender delivers a rendered receipt, post-commit and best-effort.
type EmailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}
