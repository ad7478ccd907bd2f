package ports

import (
	"context"
	"time"

	"github.com/seu-repo/pdv-varejo/internal/domain"
)

type ProductRepository interface {
	Save(ctx context.Context, p *domain.Product) error
	FindByID(ctx context.Context, id int64) (*domain.Product, error)
	// FindByIDForUpdate reads the product under a row-level exclusive lock.
	// Only meaningful inside a Store transaction.
	FindByIDForUpdate(ctx context.Context, id int64) (*domain.Product, error)
	FindAll(ctx context.Context) ([]domain.Product, error)
	UpdateStock(ctx context.Context, id int64, stockQty int) error
}

type VoucherRepository interface {
	Save(ctx context.Context, v *domain.Voucher) error
	FindByCode(ctx context.Context, code string) (*domain.Voucher, error)
	FindByCodeForUpdate(ctx context.Context, code string) (*domain.Voucher, error)
	// Redeem transitions Issued -> Redeemed, recording the winning
	// transaction. Returns domain.ErrVoucherAlreadyRedeemed (or Cancelled)
	// when the voucher is no longer Issued.
	Redeem(ctx context.Context, code, transactionID string, at time.Time) error
	// Cancel transitions Issued -> Cancelled under the same guard, so a
	// voucher that was redeemed in the meantime stays Redeemed.
	Cancel(ctx context.Context, code string) error
}

type TransactionRepository interface {
	Save(ctx context.Context, tx *domain.Transaction) error
	FindByID(ctx context.Context, id string) (*domain.Transaction, error)
	FindByDate(ctx context.Context, date time.Time) ([]domain.Transaction, error)
	FindRecent(ctx context.Context, limit int) ([]domain.Transaction, error)
}

type CustomerRepository interface {
	Save(ctx context.Context, c *domain.Customer) error
	FindByID(ctx context.Context, id string) (*domain.Customer, error)
	FindByPhone(ctx context.Context, phone string) (*domain.Customer, error)
}

// Store bundles the repositories that participate in a single database
// transaction. Repositories obtained from a transactional Store see
// uncommitted writes and hold their row locks until the transaction ends.
type Store interface {
	Products() ProductRepository
	Vouchers() VoucherRepository
	Transactions() TransactionRepository
}

// TxManager runs fn inside one database transaction. If fn returns an
// error every write made through the Store is rolled back.
type TxManager interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context, s Store) error) error
}
