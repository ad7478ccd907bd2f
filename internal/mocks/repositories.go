package mocks

import (
	"context"
	"time"

	"github.com/seu-repo/pdv-varejo/internal/domain"
)

// MockProductRepository is a mock implementation of ProductRepository
type MockProductRepository struct {
	SaveFunc              func(ctx context.Context, p *domain.Product) error
	FindByIDFunc          func(ctx context.Context, id int64) (*domain.Product, error)
	FindByIDForUpdateFunc func(ctx context.Context, id int64) (*domain.Product, error)
	FindAllFunc           func(ctx context.Context) ([]domain.Product, error)
	UpdateStockFunc       func(ctx context.Context, id int64, stockQty int) error
}

func (m *MockProductRepository) Save(ctx context.Context, p *domain.Product) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, p)
	}
	return nil
}

func (m *MockProductRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockProductRepository) FindByIDForUpdate(ctx context.Context, id int64) (*domain.Product, error) {
	if m.FindByIDForUpdateFunc != nil {
		return m.FindByIDForUpdateFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockProductRepository) FindAll(ctx context.Context) ([]domain.Product, error) {
	if m.FindAllFunc != nil {
		return m.FindAllFunc(ctx)
	}
	return []domain.Product{}, nil
}

func (m *MockProductRepository) UpdateStock(ctx context.Context, id int64, stockQty int) error {
	if m.UpdateStockFunc != nil {
		return m.UpdateStockFunc(ctx, id, stockQty)
	}
	return nil
}

// MockVoucherRepository is a mock implementation of VoucherRepository
type MockVoucherRepository struct {
	SaveFunc                func(ctx context.Context, v *domain.Voucher) error
	FindByCodeFunc          func(ctx context.Context, code string) (*domain.Voucher, error)
	FindByCodeForUpdateFunc func(ctx context.Context, code string) (*domain.Voucher, error)
	RedeemFunc              func(ctx context.Context, code, transactionID string, at time.Time) error
	CancelFunc              func(ctx context.Context, code string) error
}

func (m *MockVoucherRepository) Save(ctx context.Context, v *domain.Voucher) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, v)
	}
	return nil
}

func (m *MockVoucherRepository) FindByCode(ctx context.Context, code string) (*domain.Voucher, error) {
	if m.FindByCodeFunc != nil {
		return m.FindByCodeFunc(ctx, code)
	}
	return nil, nil
}

func (m *MockVoucherRepository) FindByCodeForUpdate(ctx context.Context, code string) (*domain.Voucher, error) {
	if m.FindByCodeForUpdateFunc != nil {
		return m.FindByCodeForUpdateFunc(ctx, code)
	}
	return nil, nil
}

func (m *MockVoucherRepository) Redeem(ctx context.Context, code, transactionID string, at time.Time) error {
	if m.RedeemFunc != nil {
		return m.RedeemFunc(ctx, code, transactionID, at)
	}
	return nil
}

func (m *MockVoucherRepository) Cancel(ctx context.Context, code string) error {
	if m.CancelFunc != nil {
		return m.CancelFunc(ctx, code)
	}
	return nil
}

// MockTransactionRepository is a mock implementation of TransactionRepository
type MockTransactionRepository struct {
	SaveFunc       func(ctx context.Context, tx *domain.Transaction) error
	FindByIDFunc   func(ctx context.Context, id string) (*domain.Transaction, error)
	FindByDateFunc func(ctx context.Context, date time.Time) ([]domain.Transaction, error)
	FindRecentFunc func(ctx context.Context, limit int) ([]domain.Transaction, error)
}

func (m *MockTransactionRepository) Save(ctx context.Context, tx *domain.Transaction) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, tx)
	}
	return nil
}

func (m *MockTransactionRepository) FindByID(ctx context.Context, id string) (*domain.Transaction, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockTransactionRepository) FindByDate(ctx context.Context, date time.Time) ([]domain.Transaction, error) {
	if m.FindByDateFunc != nil {
		return m.FindByDateFunc(ctx, date)
	}
	return []domain.Transaction{}, nil
}

func (m *MockTransactionRepository) FindRecent(ctx context.Context, limit int) ([]domain.Transaction, error) {
	if m.FindRecentFunc != nil {
		return m.FindRecentFunc(ctx, limit)
	}
	return []domain.Transaction{}, nil
}

// MockCustomerRepository is a mock implementation of CustomerRepository
type MockCustomerRepository struct {
	SaveFunc        func(ctx context.Context, c *domain.Customer) error
	FindByIDFunc    func(ctx context.Context, id string) (*domain.Customer, error)
	FindByPhoneFunc func(ctx context.Context, phone string) (*domain.Customer, error)
}

func (m *MockCustomerRepository) Save(ctx context.Context, c *domain.Customer) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, c)
	}
	return nil
}

func (m *MockCustomerRepository) FindByID(ctx context.Context, id string) (*domain.Customer, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockCustomerRepository) FindByPhone(ctx context.Context, phone string) (*domain.Customer, error) {
	if m.FindByPhoneFunc != nil {
		return m.FindByPhoneFunc(ctx, phone)
	}
	return nil, nil
}
