package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/seu-repo/pdv-varejo/internal/adapter/queue"
	"github.com/seu-repo/pdv-varejo/internal/domain"
	"github.com/seu-repo/pdv-varejo/internal/observability/telemetry"
	"github.com/seu-repo/pdv-varejo/internal/ports"
	"github.com/seu-repo/pdv-varejo/internal/service/pricing"
)

// SubjectSaleCompleted is published after every successful commit.
const SubjectSaleCompleted = "sale.completed"

// CartSource is the slice of the session manager the coordinator needs:
// reading the lines at submit time and clearing them after a commit.
type CartSource interface {
	Snapshot(sessionID string) ([]domain.CartLine, error)
	Clear(sessionID string) error
}

// SaleCompletedEvent is the wire payload for SubjectSaleCompleted.
type SaleCompletedEvent struct {
	TransactionID string `json:"transaction_id"`
	CustomerRef   string `json:"customer_ref,omitempty"`
	NetTotal      int64  `json:"net_total_cents"`
	VoucherCode   string `json:"voucher_code,omitempty"`
	Timestamp     string `json:"timestamp"`
}

// Service is the transaction coordinator. It drives one checkout through
// Draft, Validating and Committing, and guarantees that stock decrements,
// voucher redemption, the card charge and the sale record land together or
// not at all. All durable writes happen inside a single store transaction;
// the card charge is the one external step and is compensated with a refund
// when a later step fails.
type Service struct {
	carts    CartSource
	txm      ports.TxManager
	gateway  ports.PaymentGateway
	mq       queue.MessageQueue
	currency string
	log      *zap.Logger
}

func NewService(carts CartSource, txm ports.TxManager, gateway ports.PaymentGateway, mq queue.MessageQueue, currency string, log *zap.Logger) ports.CheckoutService {
	if currency == "" {
		currency = "brl"
	}
	return &Service{
		carts:    carts,
		txm:      txm,
		gateway:  gateway,
		mq:       mq,
		currency: currency,
		log:      log,
	}
}

// Submit commits one sale. On any failure the store is untouched: rejected
// and rolled-back checkouts leave no transaction record, no stock change and
// no redeemed voucher.
func (s *Service) Submit(ctx context.Context, req ports.CheckoutRequest) (*domain.Transaction, error) {
	start := time.Now()
	state := domain.CheckoutStateDraft

	lines, err := s.resolveLines(req)
	if err != nil {
		telemetry.SalesRejectedTotal.WithLabelValues(string(domain.KindOf(err))).Inc()
		return nil, err
	}
	if req.Cash < 0 || req.Card < 0 {
		telemetry.SalesRejectedTotal.WithLabelValues(string(domain.KindValidation)).Inc()
		return nil, domain.ValidationError("payment amounts cannot be negative")
	}

	if err := s.advance(&state, domain.CheckoutStateValidating, req.SessionID); err != nil {
		return nil, err
	}

	now := time.Now()
	tx := &domain.Transaction{
		ID:          uuid.New().String(),
		Timestamp:   now,
		CustomerRef: req.CustomerRef,
		Cash:        req.Cash,
		Card:        req.Card,
		VoucherCode: req.VoucherCode,
		Status:      domain.TransactionStatusCompleted,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for _, l := range lines {
		tx.Lines = append(tx.Lines, domain.TransactionLine{
			TransactionID: tx.ID,
			ProductID:     l.ProductID,
			Name:          l.Name,
			UnitPrice:     l.UnitPrice,
			Quantity:      l.Quantity,
			LineDiscount:  l.LineDiscount,
		})
	}

	err = s.txm.WithinTransaction(ctx, func(ctx context.Context, store ports.Store) error {
		// Validation phase: locked reads only, no writes. A failure here
		// rejects the checkout with the store untouched.
		voucher, err := s.validate(ctx, store, lines, req, now)
		if err != nil {
			return err
		}

		totals := pricing.ComputeTotals(lines, voucher)
		tx.Subtotal = totals.Subtotal
		tx.Discount = totals.Discount
		tx.NetTotal = totals.Net
		if voucher != nil {
			tx.VoucherAmount = voucher.FaceValue
		}

		tendered := tx.Tendered()
		if tendered < totals.Net {
			return domain.ValidationError("insufficient payment: tendered %s, due %s",
				tendered.String(), totals.Net.String())
		}
		tx.ChangeDue = tendered - totals.Net

		if err := s.advance(&state, domain.CheckoutStateCommitting, req.SessionID); err != nil {
			return err
		}

		// Commit phase: every write below must land together. The row
		// locks taken by the validation reads hold until the transaction
		// ends, so the validated state cannot shift underneath us.
		return s.commit(ctx, store, tx, voucher, now)
	})
	if err != nil {
		s.fail(&state, req.SessionID, err)
		return nil, classify(err)
	}

	if err := s.advance(&state, domain.CheckoutStateCompleted, req.SessionID); err != nil {
		return nil, err
	}

	if req.SessionID != "" {
		if err := s.carts.Clear(req.SessionID); err != nil {
			s.log.Warn("Could not clear cart after commit",
				zap.String("session_id", req.SessionID), zap.Error(err))
		}
	}

	s.publishCompleted(tx)

	telemetry.SalesCompletedTotal.Inc()
	telemetry.SalesAmountTotal.Add(float64(tx.NetTotal))
	if tx.VoucherCode != "" {
		telemetry.VouchersRedeemedTotal.Inc()
	}
	telemetry.CheckoutLatency.Observe(time.Since(start).Seconds())

	s.log.Info("Sale completed",
		zap.String("transaction_id", tx.ID),
		zap.String("net_total", tx.NetTotal.String()),
		zap.String("change_due", tx.ChangeDue.String()),
		zap.Int("line_count", len(tx.Lines)),
	)

	return tx, nil
}

// resolveLines picks the cart snapshot or the inline lines from the request.
func (s *Service) resolveLines(req ports.CheckoutRequest) ([]domain.CartLine, error) {
	lines := req.Lines
	if req.SessionID != "" {
		snap, err := s.carts.Snapshot(req.SessionID)
		if err != nil {
			if errors.Is(err, domain.ErrSessionNotFound) {
				return nil, domain.ValidationError("unknown cart session %s", req.SessionID)
			}
			return nil, err
		}
		lines = snap
	}
	if len(lines) == 0 {
		return nil, domain.ValidationError("%s", domain.ErrEmptyCart.Error())
	}
	return lines, nil
}

// validate performs the locked reads. Nothing is written; every failure maps
// to a rejection.
func (s *Service) validate(ctx context.Context, store ports.Store, lines []domain.CartLine, req ports.CheckoutRequest, now time.Time) (*domain.Voucher, error) {
	for _, l := range lines {
		p, err := store.Products().FindByIDForUpdate(ctx, l.ProductID)
		if err != nil {
			return nil, fmt.Errorf("lock product %d: %w", l.ProductID, err)
		}
		if p == nil {
			return nil, domain.ValidationError("product %d not found", l.ProductID)
		}
		if !p.HasStock(l.Quantity) {
			return nil, domain.ConflictError("insufficient stock for %s: have %d, need %d",
				p.Name, p.StockQty, l.Quantity)
		}
	}

	if req.VoucherCode == "" {
		return nil, nil
	}

	v, err := store.Vouchers().FindByCodeForUpdate(ctx, req.VoucherCode)
	if err != nil {
		return nil, fmt.Errorf("lock voucher %s: %w", req.VoucherCode, err)
	}
	if v == nil {
		return nil, domain.ValidationError("voucher %s not found", req.VoucherCode)
	}
	switch v.Status {
	case domain.VoucherStatusRedeemed:
		return nil, domain.ConflictError("voucher %s already redeemed", v.Code)
	case domain.VoucherStatusCancelled:
		return nil, domain.ConflictError("voucher %s was cancelled", v.Code)
	}
	// Expiry is judged at validation time. A voucher that crosses its
	// expiry instant between here and the commit still goes through.
	if v.Expired(now) {
		return nil, domain.ValidationError("voucher %s expired on %s",
			v.Code, v.ExpiresAt().Format("2006-01-02"))
	}
	return v, nil
}

// commit applies the writes. The card charge sits between the store writes
// and the final save; if anything after the charge fails, the charge is
// refunded before the store transaction rolls back.
func (s *Service) commit(ctx context.Context, store ports.Store, tx *domain.Transaction, voucher *domain.Voucher, now time.Time) error {
	for _, l := range tx.Lines {
		p, err := store.Products().FindByIDForUpdate(ctx, l.ProductID)
		if err != nil {
			return fmt.Errorf("reload product %d: %w", l.ProductID, err)
		}
		if err := store.Products().UpdateStock(ctx, l.ProductID, p.StockQty-l.Quantity); err != nil {
			return fmt.Errorf("decrement stock for product %d: %w", l.ProductID, err)
		}
	}

	if voucher != nil {
		if err := store.Vouchers().Redeem(ctx, voucher.Code, tx.ID, now); err != nil {
			return fmt.Errorf("redeem voucher %s: %w", voucher.Code, err)
		}
	}

	if tx.Card > 0 {
		authID, err := s.gateway.Charge(ctx, tx.Card, s.currency, tx.ID)
		if err != nil {
			return fmt.Errorf("card charge: %w", err)
		}
		tx.CardAuthID = authID
	}

	if err := store.Transactions().Save(ctx, tx); err != nil {
		if tx.CardAuthID != "" {
			if rerr := s.gateway.Refund(ctx, tx.CardAuthID); rerr != nil {
				s.log.Error("Compensating refund failed, manual intervention required",
					zap.String("transaction_id", tx.ID),
					zap.String("card_auth_id", tx.CardAuthID),
					zap.Error(rerr))
			}
		}
		return fmt.Errorf("save transaction: %w", err)
	}

	return nil
}

// advance moves the checkout state machine, guarding illegal edges.
func (s *Service) advance(state *domain.CheckoutState, next domain.CheckoutState, sessionID string) error {
	if !state.CanTransitionTo(next) {
		s.log.Error("Illegal checkout state transition",
			zap.String("from", state.String()),
			zap.String("to", next.String()),
			zap.String("session_id", sessionID))
		return domain.PersistenceError(fmt.Errorf("illegal checkout transition %s -> %s", state, next))
	}
	s.log.Debug("Checkout state transition",
		zap.String("from", state.String()),
		zap.String("to", next.String()),
		zap.String("session_id", sessionID))
	*state = next
	return nil
}

// fail records the terminal failure state: Rejected when validation never
// finished, RolledBack when the commit phase had started.
func (s *Service) fail(state *domain.CheckoutState, sessionID string, err error) {
	terminal := domain.CheckoutStateRejected
	if *state == domain.CheckoutStateCommitting {
		terminal = domain.CheckoutStateRolledBack
	}
	if state.CanTransitionTo(terminal) {
		*state = terminal
	}
	telemetry.SalesRejectedTotal.WithLabelValues(string(domain.KindOf(err))).Inc()
	s.log.Warn("Checkout failed",
		zap.String("terminal_state", state.String()),
		zap.String("session_id", sessionID),
		zap.Error(err))
}

func (s *Service) publishCompleted(tx *domain.Transaction) {
	if s.mq == nil {
		return
	}
	evt := SaleCompletedEvent{
		TransactionID: tx.ID,
		CustomerRef:   tx.CustomerRef,
		NetTotal:      int64(tx.NetTotal),
		VoucherCode:   tx.VoucherCode,
		Timestamp:     tx.Timestamp.Format(time.RFC3339),
	}
	data, err := json.Marshal(evt)
	if err != nil {
		s.log.Error("Could not encode sale event", zap.Error(err))
		return
	}
	if err := s.mq.Publish(SubjectSaleCompleted, data); err != nil {
		s.log.Warn("Could not publish sale event",
			zap.String("transaction_id", tx.ID), zap.Error(err))
	}
}

// classify wraps raw errors so unclassified failures surface as persistence
// errors with the generic nothing-was-charged detail.
func classify(err error) error {
	var de *domain.Error
	if errors.As(err, &de) {
		return de
	}
	return domain.PersistenceError(err)
}

func (s *Service) GetTransaction(ctx context.Context, id string) (*domain.Transaction, error) {
	var tx *domain.Transaction
	err := s.txm.WithinTransaction(ctx, func(ctx context.Context, store ports.Store) error {
		var err error
		tx, err = store.Transactions().FindByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, domain.PersistenceError(err)
	}
	return tx, nil
}

func (s *Service) ListTransactions(ctx context.Context, date *time.Time, limit int) ([]domain.Transaction, error) {
	var out []domain.Transaction
	err := s.txm.WithinTransaction(ctx, func(ctx context.Context, store ports.Store) error {
		var err error
		if date != nil {
			out, err = store.Transactions().FindByDate(ctx, *date)
		} else {
			out, err = store.Transactions().FindRecent(ctx, limit)
		}
		return err
	})
	if err != nil {
		return nil, domain.PersistenceError(err)
	}
	return out, nil
}
