package postgres

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/seu-repo/pdv-varejo/internal/ports"
)

// Store bundles the repositories over one gorm handle, which may be the
// shared pool or a single transaction.
type Store struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewStore(db *gorm.DB, log *zap.Logger) *Store {
	return &Store{db: db, log: log}
}

func (s *Store) Products() ports.ProductRepository {
	return NewProductRepository(s.db, s.log)
}

func (s *Store) Vouchers() ports.VoucherRepository {
	return NewVoucherRepository(s.db, s.log)
}

func (s *Store) Transactions() ports.TransactionRepository {
	return NewTransactionRepository(s.db, s.log)
}

// TxManager runs a function inside one database transaction. The row locks
// taken by ForUpdate reads hold until commit or rollback, which is what
// serializes concurrent checkouts over shared stock.
type TxManager struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewTxManager(db *gorm.DB, log *zap.Logger) ports.TxManager {
	return &TxManager{db: db, log: log}
}

func (m *TxManager) WithinTransaction(ctx context.Context, fn func(ctx context.Context, s ports.Store) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, NewStore(tx, m.log))
	})
}
