package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/seu-repo/pdv-varejo/internal/domain"
	"github.com/seu-repo/pdv-varejo/internal/ports"
)

// MemStore is an in-memory ports.Store used by service-level tests. All
// access is guarded by one mutex; commits go through MemTxManager, which
// serializes whole transactions the way row locks do in PostgreSQL and
// restores a snapshot on error, so rollback semantics can be asserted
// without a database.
type MemStore struct {
	mu           sync.Mutex
	products     map[int64]*domain.Product
	vouchers     map[string]*domain.Voucher
	transactions map[string]*domain.Transaction

	// SaveTransactionErr, when set, makes transaction saves fail. Lets
	// tests drive the late-commit failure path.
	SaveTransactionErr error
}

func NewMemStore() *MemStore {
	return &MemStore{
		products:     make(map[int64]*domain.Product),
		vouchers:     make(map[string]*domain.Voucher),
		transactions: make(map[string]*domain.Transaction),
	}
}

func (s *MemStore) Products() ports.ProductRepository         { return &memProductRepo{s} }
func (s *MemStore) Vouchers() ports.VoucherRepository         { return &memVoucherRepo{s} }
func (s *MemStore) Transactions() ports.TransactionRepository { return &memTransactionRepo{s} }

// SeedProduct inserts or replaces a product.
func (s *MemStore) SeedProduct(p domain.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := p
	s.products[p.ID] = &cp
}

// SeedVoucher inserts or replaces a voucher.
func (s *MemStore) SeedVoucher(v domain.Voucher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := v
	s.vouchers[v.Code] = &cp
}

// ProductStock reads current stock, for assertions.
func (s *MemStore) ProductStock(id int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.products[id]; ok {
		return p.StockQty
	}
	return -1
}

// VoucherStatus reads current voucher status, for assertions.
func (s *MemStore) VoucherStatus(code string) domain.VoucherStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.vouchers[code]; ok {
		return v.Status
	}
	return ""
}

// TransactionCount reports how many sale records were persisted.
func (s *MemStore) TransactionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.transactions)
}

type snapshot struct {
	products     map[int64]*domain.Product
	vouchers     map[string]*domain.Voucher
	transactions map[string]*domain.Transaction
}

func (s *MemStore) snapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := snapshot{
		products:     make(map[int64]*domain.Product, len(s.products)),
		vouchers:     make(map[string]*domain.Voucher, len(s.vouchers)),
		transactions: make(map[string]*domain.Transaction, len(s.transactions)),
	}
	for k, v := range s.products {
		cp := *v
		snap.products[k] = &cp
	}
	for k, v := range s.vouchers {
		cp := *v
		snap.vouchers[k] = &cp
	}
	for k, v := range s.transactions {
		cp := *v
		snap.transactions[k] = &cp
	}
	return snap
}

func (s *MemStore) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = snap.products
	s.vouchers = snap.vouchers
	s.transactions = snap.transactions
}

type memProductRepo struct{ s *MemStore }

func (r *memProductRepo) Save(ctx context.Context, p *domain.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *p
	r.s.products[p.ID] = &cp
	return nil
}

func (r *memProductRepo) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p, ok := r.s.products[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (r *memProductRepo) FindByIDForUpdate(ctx context.Context, id int64) (*domain.Product, error) {
	// The MemTxManager serializes whole transactions, so a plain read is
	// equivalent to a locked read here.
	return r.FindByID(ctx, id)
}

func (r *memProductRepo) FindAll(ctx context.Context) ([]domain.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]domain.Product, 0, len(r.s.products))
	for _, p := range r.s.products {
		out = append(out, *p)
	}
	return out, nil
}

func (r *memProductRepo) UpdateStock(ctx context.Context, id int64, stockQty int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return domain.ErrProductNotFound
	}
	p.StockQty = stockQty
	return nil
}

type memVoucherRepo struct{ s *MemStore }

func (r *memVoucherRepo) Save(ctx context.Context, v *domain.Voucher) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *v
	r.s.vouchers[v.Code] = &cp
	return nil
}

func (r *memVoucherRepo) FindByCode(ctx context.Context, code string) (*domain.Voucher, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if v, ok := r.s.vouchers[code]; ok {
		cp := *v
		return &cp, nil
	}
	return nil, nil
}

func (r *memVoucherRepo) FindByCodeForUpdate(ctx context.Context, code string) (*domain.Voucher, error) {
	return r.FindByCode(ctx, code)
}

func (r *memVoucherRepo) Redeem(ctx context.Context, code, transactionID string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v, ok := r.s.vouchers[code]
	if !ok {
		return domain.ErrVoucherNotFound
	}
	switch v.Status {
	case domain.VoucherStatusRedeemed:
		return domain.ErrVoucherAlreadyRedeemed
	case domain.VoucherStatusCancelled:
		return domain.ErrVoucherCancelled
	}
	v.Status = domain.VoucherStatusRedeemed
	v.RedeemedAt = &at
	v.RedeemedTransaction = transactionID
	return nil
}

func (r *memVoucherRepo) Cancel(ctx context.Context, code string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v, ok := r.s.vouchers[code]
	if !ok {
		return domain.ErrVoucherNotFound
	}
	// Only Issued vouchers can be voided, mirroring the guarded UPDATE.
	switch v.Status {
	case domain.VoucherStatusRedeemed:
		return domain.ErrVoucherAlreadyRedeemed
	case domain.VoucherStatusCancelled:
		return domain.ErrVoucherCancelled
	}
	v.Status = domain.VoucherStatusCancelled
	return nil
}

type memTransactionRepo struct{ s *MemStore }

func (r *memTransactionRepo) Save(ctx context.Context, tx *domain.Transaction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.SaveTransactionErr != nil {
		return r.s.SaveTransactionErr
	}
	cp := *tx
	r.s.transactions[tx.ID] = &cp
	return nil
}

func (r *memTransactionRepo) FindByID(ctx context.Context, id string) (*domain.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if tx, ok := r.s.transactions[id]; ok {
		cp := *tx
		return &cp, nil
	}
	return nil, nil
}

func (r *memTransactionRepo) FindByDate(ctx context.Context, date time.Time) ([]domain.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Transaction
	for _, tx := range r.s.transactions {
		if tx.Timestamp.Year() == date.Year() && tx.Timestamp.YearDay() == date.YearDay() {
			out = append(out, *tx)
		}
	}
	return out, nil
}

func (r *memTransactionRepo) FindRecent(ctx context.Context, limit int) ([]domain.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]domain.Transaction, 0, len(r.s.transactions))
	for _, tx := range r.s.transactions {
		out = append(out, *tx)
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// MemTxManager is the in-memory ports.TxManager. One commit at a time, with a
// full snapshot restore on error, matching the behavioral contract of a
// database transaction with row-level locks.
type MemTxManager struct {
	store    *MemStore
	commitMu sync.Mutex

	// BeginErr, when set, makes every transaction fail before fn runs,
	// simulating an unavailable backing store.
	BeginErr error
}

func NewMemTxManager(store *MemStore) *MemTxManager {
	return &MemTxManager{store: store}
}

func (m *MemTxManager) WithinTransaction(ctx context.Context, fn func(ctx context.Context, s ports.Store) error) error {
	if m.BeginErr != nil {
		return m.BeginErr
	}
	m.commitMu.Lock()
	defer m.commitMu.Unlock()

	snap := m.store.snapshot()
	if err := fn(ctx, m.store); err != nil {
		m.store.restore(snap)
		return err
	}
	return nil
}
