package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/seu-repo/pdv-varejo/internal/domain"
	"github.com/seu-repo/pdv-varejo/pkg/money"
)

// MockCatalogService is a mock implementation of CatalogService
type MockCatalogService struct {
	GetProductFunc    func(ctx context.Context, id int64) (*domain.Product, error)
	ListProductsFunc  func(ctx context.Context) ([]domain.Product, error)
	CreateProductFunc func(ctx context.Context, name string, unitPrice money.Cents, stockQty int) (*domain.Product, error)
	AdjustStockFunc   func(ctx context.Context, id int64, delta int) (*domain.Product, error)
}

func (m *MockCatalogService) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	if m.GetProductFunc != nil {
		return m.GetProductFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockCatalogService) ListProducts(ctx context.Context) ([]domain.Product, error) {
	if m.ListProductsFunc != nil {
		return m.ListProductsFunc(ctx)
	}
	return []domain.Product{}, nil
}

func (m *MockCatalogService) CreateProduct(ctx context.Context, name string, unitPrice money.Cents, stockQty int) (*domain.Product, error) {
	if m.CreateProductFunc != nil {
		return m.CreateProductFunc(ctx, name, unitPrice, stockQty)
	}
	return nil, nil
}

func (m *MockCatalogService) AdjustStock(ctx context.Context, id int64, delta int) (*domain.Product, error) {
	if m.AdjustStockFunc != nil {
		return m.AdjustStockFunc(ctx, id, delta)
	}
	return nil, nil
}

// MockVoucherService is a mock implementation of VoucherService
type MockVoucherService struct {
	ValidateFunc func(ctx context.Context, code string, at time.Time) (*domain.Voucher, error)
	IssueFunc    func(ctx context.Context, faceValue money.Cents, validDays int) (*domain.Voucher, error)
	CancelFunc   func(ctx context.Context, code string) error
}

func (m *MockVoucherService) Validate(ctx context.Context, code string, at time.Time) (*domain.Voucher, error) {
	if m.ValidateFunc != nil {
		return m.ValidateFunc(ctx, code, at)
	}
	return nil, nil
}

func (m *MockVoucherService) Issue(ctx context.Context, faceValue money.Cents, validDays int) (*domain.Voucher, error) {
	if m.IssueFunc != nil {
		return m.IssueFunc(ctx, faceValue, validDays)
	}
	return nil, nil
}

func (m *MockVoucherService) Cancel(ctx context.Context, code string) error {
	if m.CancelFunc != nil {
		return m.CancelFunc(ctx, code)
	}
	return nil
}

// MockPaymentGateway records charges and refunds for assertions.
type MockPaymentGateway struct {
	mu         sync.Mutex
	ChargeFunc func(ctx context.Context, amount money.Cents, currency, reference string) (string, error)
	RefundFunc func(ctx context.Context, providerID string) error
	Charges    []money.Cents
	Refunds    []string
}

func (m *MockPaymentGateway) Charge(ctx context.Context, amount money.Cents, currency, reference string) (string, error) {
	m.mu.Lock()
	m.Charges = append(m.Charges, amount)
	m.mu.Unlock()
	if m.ChargeFunc != nil {
		return m.ChargeFunc(ctx, amount, currency, reference)
	}
	return "ch_mock", nil
}

func (m *MockPaymentGateway) Refund(ctx context.Context, providerID string) error {
	m.mu.Lock()
	m.Refunds = append(m.Refunds, providerID)
	m.mu.Unlock()
	if m.RefundFunc != nil {
		return m.RefundFunc(ctx, providerID)
	}
	return nil
}

// MockEmailSender records sent mail.
type MockEmailSender struct {
	mu   sync.Mutex
	Sent []string
	Err  error
}

func (m *MockEmailSender) Send(ctx context.Context, to, subject, body string) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	m.Sent = append(m.Sent, to)
	m.mu.Unlock()
	return nil
}
