package cart

import (
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/pdv-varejo/internal/domain"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m := NewManager(DefaultSessionTTL, DefaultCleanupInterval, zap.NewNop())
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func TestCreateAndGet(t *testing.T) {
	m := newTestManager(t)

	c := m.Create()
	if c.SessionID == "" {
		t.Fatal("expected a session id")
	}

	got, err := m.Get(c.SessionID)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !got.IsEmpty() {
		t.Errorf("expected empty cart, got %d lines", len(got.Lines))
	}
}

func TestGet_UnknownSession(t *testing.T) {
	m := newTestManager(t)

	_, err := m.Get("nope")

	if !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestAddLine_DuplicateProductRejected(t *testing.T) {
	m := newTestManager(t)
	c := m.Create()
	line := domain.CartLine{ProductID: 7, Name: "Café 500g", UnitPrice: 2490, Quantity: 1}

	if err := m.AddLine(c.SessionID, line); err != nil {
		t.Fatalf("expected first add to succeed, got %v", err)
	}
	err := m.AddLine(c.SessionID, line)

	if !errors.Is(err, domain.ErrDuplicateLine) {
		t.Fatalf("expected ErrDuplicateLine, got %v", err)
	}
	got, _ := m.Get(c.SessionID)
	if len(got.Lines) != 1 {
		t.Errorf("expected 1 line after rejected duplicate, got %d", len(got.Lines))
	}
}

func TestUpdateQuantity_ClampsBelowOne(t *testing.T) {
	m := newTestManager(t)
	c := m.Create()
	_ = m.AddLine(c.SessionID, domain.CartLine{ProductID: 7, Name: "Café 500g", UnitPrice: 2490, Quantity: 3})

	if err := m.UpdateQuantity(c.SessionID, 7, 0); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	got, _ := m.Get(c.SessionID)
	if got.Lines[0].Quantity != 1 {
		t.Errorf("expected quantity clamped to 1, got %d", got.Lines[0].Quantity)
	}
}

func TestUpdateQuantity_UnknownLine(t *testing.T) {
	m := newTestManager(t)
	c := m.Create()

	err := m.UpdateQuantity(c.SessionID, 99, 2)

	if !errors.Is(err, domain.ErrLineNotFound) {
		t.Fatalf("expected ErrLineNotFound, got %v", err)
	}
}

func TestSetDiscountRemoveAndClear(t *testing.T) {
	m := newTestManager(t)
	c := m.Create()
	_ = m.AddLine(c.SessionID, domain.CartLine{ProductID: 1, Name: "Arroz 5kg", UnitPrice: 3200, Quantity: 2})
	_ = m.AddLine(c.SessionID, domain.CartLine{ProductID: 2, Name: "Feijão 1kg", UnitPrice: 890, Quantity: 1})

	if err := m.SetDiscount(c.SessionID, 1, 500); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	got, _ := m.Get(c.SessionID)
	if got.Lines[0].LineDiscount != 500 {
		t.Errorf("expected discount 500, got %d", got.Lines[0].LineDiscount)
	}

	if err := m.RemoveLine(c.SessionID, 2); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	got, _ = m.Get(c.SessionID)
	if len(got.Lines) != 1 {
		t.Fatalf("expected 1 line after remove, got %d", len(got.Lines))
	}

	if err := m.Clear(c.SessionID); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	got, _ = m.Get(c.SessionID)
	if !got.IsEmpty() {
		t.Errorf("expected empty cart after clear, got %d lines", len(got.Lines))
	}
	if _, err := m.Get(c.SessionID); err != nil {
		t.Errorf("expected session to survive clear, got %v", err)
	}
}

func TestDestroy(t *testing.T) {
	m := newTestManager(t)
	c := m.Create()

	m.Destroy(c.SessionID)

	if _, err := m.Get(c.SessionID); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound after destroy, got %v", err)
	}
}

func TestGetReturnsCopy(t *testing.T) {
	// Mutating the returned cart must not leak into the session.
	m := newTestManager(t)
	c := m.Create()
	_ = m.AddLine(c.SessionID, domain.CartLine{ProductID: 1, Name: "Arroz 5kg", UnitPrice: 3200, Quantity: 2})

	got, _ := m.Get(c.SessionID)
	got.Lines[0].Quantity = 99

	fresh, _ := m.Get(c.SessionID)
	if fresh.Lines[0].Quantity != 2 {
		t.Errorf("expected stored quantity 2, got %d", fresh.Lines[0].Quantity)
	}
}

func TestJanitorExpiresIdleSessions(t *testing.T) {
	m := NewManager(10*time.Millisecond, 5*time.Millisecond, zap.NewNop())
	defer m.Close()

	m.Create()

	// Get would refresh the idle timer, so poll the session count instead.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if m.ActiveSessions() == 0 {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("expected idle session to expire")
}

func TestActiveSessions(t *testing.T) {
	m := newTestManager(t)

	m.Create()
	m.Create()
	c := m.Create()
	m.Destroy(c.SessionID)

	if n := m.ActiveSessions(); n != 2 {
		t.Errorf("expected 2 active sessions, got %d", n)
	}
}
