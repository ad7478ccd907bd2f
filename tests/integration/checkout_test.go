package integration

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/seu-repo/pdv-varejo/internal/adapter/storage/postgres"
	"github.com/seu-repo/pdv-varejo/internal/domain"
	"github.com/seu-repo/pdv-varejo/internal/mocks"
	"github.com/seu-repo/pdv-varejo/internal/ports"
	"github.com/seu-repo/pdv-varejo/internal/service/cart"
	"github.com/seu-repo/pdv-varejo/internal/service/checkout"
	"github.com/seu-repo/pdv-varejo/pkg/money"
)

// checkoutEnv wires the real coordinator against the containerized database,
// with the card gateway and broker mocked out.
type checkoutEnv struct {
	carts   *cart.Manager
	gateway *mocks.MockPaymentGateway
	mq      *mocks.MockMessageQueue
	svc     ports.CheckoutService

	products ports.ProductRepository
	vouchers ports.VoucherRepository
}

func newCheckoutEnv(t *testing.T, env *TestEnv) *checkoutEnv {
	t.Helper()

	carts := cart.NewManager(cart.DefaultSessionTTL, cart.DefaultCleanupInterval, env.Logger)
	t.Cleanup(func() { carts.Close() })

	gateway := &mocks.MockPaymentGateway{}
	mq := mocks.NewMockMessageQueue()
	txm := postgres.NewTxManager(env.Gorm, env.Logger)

	return &checkoutEnv{
		carts:    carts,
		gateway:  gateway,
		mq:       mq,
		svc:      checkout.NewService(carts, txm, gateway, mq, "brl", env.Logger),
		products: postgres.NewProductRepository(env.Gorm, env.Logger),
		vouchers: postgres.NewVoucherRepository(env.Gorm, env.Logger),
	}
}

func seedProduct(t *testing.T, repo ports.ProductRepository, name string, price money.Cents, stock int) *domain.Product {
	t.Helper()
	p := &domain.Product{Name: name, UnitPrice: price, StockQty: stock}
	if err := repo.Save(context.Background(), p); err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return p
}

func seedVoucher(t *testing.T, repo ports.VoucherRepository, code string, value money.Cents) *domain.Voucher {
	t.Helper()
	v := &domain.Voucher{
		Code:      code,
		FaceValue: value,
		ValidDays: 30,
		IssuedAt:  time.Now().UTC().AddDate(0, 0, -1),
		Status:    domain.VoucherStatusIssued,
	}
	if err := repo.Save(context.Background(), v); err != nil {
		t.Fatalf("seed voucher: %v", err)
	}
	return v
}

func TestCheckout_CommitsAtomically(t *testing.T) {
	env := SetupTestEnvironment(t)
	CleanDatabase(t, env.DB)
	ctx := context.Background()

	ce := newCheckoutEnv(t, env)
	p := seedProduct(t, ce.products, "Café Premium 500g", 3490, 10)
	seedVoucher(t, ce.vouchers, "V-AAAA1111", 1000)

	crt := ce.carts.Create()
	if err := ce.carts.AddLine(crt.SessionID, domain.CartLine{
		ProductID: p.ID, Name: p.Name, UnitPrice: p.UnitPrice, Quantity: 2,
	}); err != nil {
		t.Fatalf("AddLine: %v", err)
	}

	tx, err := ce.svc.Submit(ctx, ports.CheckoutRequest{
		SessionID:   crt.SessionID,
		VoucherCode: "V-AAAA1111",
		Cash:        1000,
		Card:        4980,
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	// Subtotal 6980, voucher 1000, net 5980, tendered 5980.
	if tx.NetTotal != 5980 || tx.ChangeDue != 0 {
		t.Fatalf("totals = %d/%d, want 5980/0", tx.NetTotal, tx.ChangeDue)
	}

	// Every leg of the commit must be visible after Submit returns.
	got, _ := ce.products.FindByID(ctx, p.ID)
	if got.StockQty != 8 {
		t.Fatalf("stock = %d, want 8", got.StockQty)
	}
	v, _ := ce.vouchers.FindByCode(ctx, "V-AAAA1111")
	if v.Status != domain.VoucherStatusRedeemed || v.RedeemedTransaction != tx.ID {
		t.Fatalf("voucher = %s/%s, want Redeemed by %s", v.Status, v.RedeemedTransaction, tx.ID)
	}
	stored, err := ce.svc.GetTransaction(ctx, tx.ID)
	if err != nil || stored == nil {
		t.Fatalf("GetTransaction = %v, %v", stored, err)
	}
	if len(ce.gateway.Charges) != 1 || ce.gateway.Charges[0] != 4980 {
		t.Fatalf("charges = %v, want one of 4980", ce.gateway.Charges)
	}
	if len(ce.mq.GetPublishedMessages(checkout.SubjectSaleCompleted)) != 1 {
		t.Fatal("expected one sale.completed event")
	}

	// The session cart is emptied by a successful sale.
	lines, err := ce.carts.Snapshot(crt.SessionID)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if len(lines) != 0 {
		t.Fatalf("cart lines after commit = %d, want 0", len(lines))
	}
}

func TestCheckout_RollsBackWhenCardChargeFails(t *testing.T) {
	env := SetupTestEnvironment(t)
	CleanDatabase(t, env.DB)
	ctx := context.Background()

	ce := newCheckoutEnv(t, env)
	p := seedProduct(t, ce.products, "Leite Integral 1L", 649, 20)
	seedVoucher(t, ce.vouchers, "V-BBBB2222", 500)

	ce.gateway.ChargeFunc = func(ctx context.Context, amount money.Cents, currency, reference string) (string, error) {
		return "", fmt.Errorf("card declined")
	}

	_, err := ce.svc.Submit(ctx, ports.CheckoutRequest{
		Lines: []domain.CartLine{
			{ProductID: p.ID, Name: p.Name, UnitPrice: p.UnitPrice, Quantity: 3},
		},
		VoucherCode: "V-BBBB2222",
		Card:        1447,
	})
	if err == nil {
		t.Fatal("expected Submit to fail")
	}

	// Nothing from the failed sale may remain committed.
	got, _ := ce.products.FindByID(ctx, p.ID)
	if got.StockQty != 20 {
		t.Fatalf("stock = %d, want 20 after rollback", got.StockQty)
	}
	v, _ := ce.vouchers.FindByCode(ctx, "V-BBBB2222")
	if v.Status != domain.VoucherStatusIssued {
		t.Fatalf("voucher = %s, want Issued after rollback", v.Status)
	}
	var count int
	if err := env.DB.QueryRow("SELECT COUNT(*) FROM transactions").Scan(&count); err != nil {
		t.Fatalf("count transactions: %v", err)
	}
	if count != 0 {
		t.Fatalf("transactions = %d, want 0", count)
	}
	if len(ce.mq.GetPublishedMessages(checkout.SubjectSaleCompleted)) != 0 {
		t.Fatal("no event may be published for a rolled back sale")
	}
}

func TestCheckout_RejectsInsufficientStockWithoutSideEffects(t *testing.T) {
	env := SetupTestEnvironment(t)
	CleanDatabase(t, env.DB)
	ctx := context.Background()

	ce := newCheckoutEnv(t, env)
	p := seedProduct(t, ce.products, "Pão Francês kg", 1590, 2)

	_, err := ce.svc.Submit(ctx, ports.CheckoutRequest{
		Lines: []domain.CartLine{
			{ProductID: p.ID, Name: p.Name, UnitPrice: p.UnitPrice, Quantity: 3},
		},
		Cash: 10000,
	})
	var derr *domain.Error
	if !errors.As(err, &derr) || derr.Kind != domain.KindConflict {
		t.Fatalf("Submit = %v, want conflict error", err)
	}

	got, _ := ce.products.FindByID(ctx, p.ID)
	if got.StockQty != 2 {
		t.Fatalf("stock = %d, want 2", got.StockQty)
	}
	if len(ce.gateway.Charges) != 0 {
		t.Fatalf("charges = %v, want none", ce.gateway.Charges)
	}
}

// Two checkouts race over 3 units of stock wanting 2 each. The row lock
// serializes them so exactly one commits and the loser is rejected before
// any of its writes land.
func TestCheckout_ConcurrentSalesNeverOversell(t *testing.T) {
	env := SetupTestEnvironment(t)
	CleanDatabase(t, env.DB)
	ctx := context.Background()

	ce := newCheckoutEnv(t, env)
	p := seedProduct(t, ce.products, "Óleo de Soja 900ml", 789, 3)

	submit := func() error {
		_, err := ce.svc.Submit(ctx, ports.CheckoutRequest{
			Lines: []domain.CartLine{
				{ProductID: p.ID, Name: p.Name, UnitPrice: p.UnitPrice, Quantity: 2},
			},
			Cash: 2000,
		})
		return err
	}

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = submit()
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		var derr *domain.Error
		if !errors.As(err, &derr) || derr.Kind != domain.KindConflict {
			t.Fatalf("loser error = %v, want conflict", err)
		}
	}
	if succeeded != 1 {
		t.Fatalf("succeeded = %d, want exactly 1", succeeded)
	}

	got, _ := ce.products.FindByID(ctx, p.ID)
	if got.StockQty != 1 {
		t.Fatalf("final stock = %d, want 1", got.StockQty)
	}
}

// Two sales racing over the same voucher: one redeems it, the other must be
// rejected as already redeemed and leave its stock untouched.
func TestCheckout_ConcurrentVoucherRedemptionHasOneWinner(t *testing.T) {
	env := SetupTestEnvironment(t)
	CleanDatabase(t, env.DB)
	ctx := context.Background()

	ce := newCheckoutEnv(t, env)
	p := seedProduct(t, ce.products, "Feijão Carioca 1kg", 899, 50)
	seedVoucher(t, ce.vouchers, "V-CCCC3333", 500)

	submit := func() error {
		_, err := ce.svc.Submit(ctx, ports.CheckoutRequest{
			Lines: []domain.CartLine{
				{ProductID: p.ID, Name: p.Name, UnitPrice: p.UnitPrice, Quantity: 1},
			},
			VoucherCode: "V-CCCC3333",
			Cash:        899,
		})
		return err
	}

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = submit()
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		}
	}
	if succeeded != 1 {
		t.Fatalf("succeeded = %d, want exactly 1", succeeded)
	}

	// Only the winner's unit left the shelf.
	got, _ := ce.products.FindByID(ctx, p.ID)
	if got.StockQty != 49 {
		t.Fatalf("final stock = %d, want 49", got.StockQty)
	}
}
