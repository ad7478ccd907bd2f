package cart

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/seu-repo/pdv-varejo/internal/domain"
	"github.com/seu-repo/pdv-varejo/pkg/money"
)

const (
	// DefaultSessionTTL is how long an idle cart survives before the
	// janitor discards it. Abandoning a draft needs no other cleanup:
	// nothing outside the cart has been touched.
	DefaultSessionTTL = 2 * time.Hour

	// DefaultCleanupInterval is how often the janitor runs.
	DefaultCleanupInterval = time.Minute
)

type session struct {
	cart       *domain.Cart
	lastAccess time.Time
}

// Manager owns every operator cart session. Carts are in-memory only and
// single-writer per session; the manager serializes all mutation so a
// misbehaving client cannot corrupt a cart. No network calls originate here.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*session
	ttl      time.Duration

	stop chan struct{}
	wg   sync.WaitGroup
	log  *zap.Logger
}

func NewManager(ttl, cleanupInterval time.Duration, log *zap.Logger) *Manager {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	if cleanupInterval <= 0 {
		cleanupInterval = DefaultCleanupInterval
	}
	m := &Manager{
		sessions: make(map[string]*session),
		ttl:      ttl,
		stop:     make(chan struct{}),
		log:      log,
	}

	m.wg.Add(1)
	go m.cleanupLoop(cleanupInterval)

	return m
}

func (m *Manager) cleanupLoop(interval time.Duration) {
	defer m.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.expireSessions()
		case <-m.stop:
			return
		}
	}
}

func (m *Manager) expireSessions() {
	m.mu.Lock()
	defer m.mu.Unlock()
	cutoff := time.Now().Add(-m.ttl)
	for id, s := range m.sessions {
		if s.lastAccess.Before(cutoff) {
			delete(m.sessions, id)
			m.log.Debug("Expired idle cart session", zap.String("session_id", id))
		}
	}
}

// Create starts a new empty cart session.
func (m *Manager) Create() *domain.Cart {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	c := &domain.Cart{
		SessionID: uuid.New().String(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.sessions[c.SessionID] = &session{cart: c, lastAccess: now}
	return copyCart(c)
}

// Get returns a copy of the cart, or ErrSessionNotFound.
func (m *Manager) Get(sessionID string) (*domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	s.lastAccess = time.Now()
	return copyCart(s.cart), nil
}

// AddLine appends a line to the session cart. Duplicate products are
// rejected, never merged.
func (m *Manager) AddLine(sessionID string, line domain.CartLine) error {
	return m.mutate(sessionID, func(c *domain.Cart) error {
		return c.Add(line)
	})
}

// UpdateQuantity sets a line quantity, clamping values below 1 up to 1.
func (m *Manager) UpdateQuantity(sessionID string, productID int64, qty int) error {
	return m.mutate(sessionID, func(c *domain.Cart) error {
		return c.UpdateQuantity(productID, qty)
	})
}

// SetDiscount sets a line discount.
func (m *Manager) SetDiscount(sessionID string, productID int64, discount money.Cents) error {
	return m.mutate(sessionID, func(c *domain.Cart) error {
		return c.SetDiscount(productID, discount)
	})
}

// RemoveLine drops a line from the cart.
func (m *Manager) RemoveLine(sessionID string, productID int64) error {
	return m.mutate(sessionID, func(c *domain.Cart) error {
		return c.Remove(productID)
	})
}

// Clear drops all lines but keeps the session alive.
func (m *Manager) Clear(sessionID string) error {
	return m.mutate(sessionID, func(c *domain.Cart) error {
		c.Clear()
		return nil
	})
}

// Destroy discards the session entirely.
func (m *Manager) Destroy(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
}

// Snapshot returns a copy of the session's lines for checkout.
func (m *Manager) Snapshot(sessionID string) ([]domain.CartLine, error) {
	c, err := m.Get(sessionID)
	if err != nil {
		return nil, err
	}
	return c.Snapshot(), nil
}

// ActiveSessions reports the number of live carts.
func (m *Manager) ActiveSessions() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Close stops the janitor and waits for it to finish.
func (m *Manager) Close() error {
	close(m.stop)
	m.wg.Wait()
	return nil
}

func (m *Manager) mutate(sessionID string, fn func(c *domain.Cart) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[sessionID]
	if !ok {
		return domain.ErrSessionNotFound
	}
	s.lastAccess = time.Now()
	if err := fn(s.cart); err != nil {
		return err
	}
	s.cart.UpdatedAt = s.lastAccess
	return nil
}

func copyCart(c *domain.Cart) *domain.Cart {
	cp := *c
	cp.Lines = append([]domain.CartLine(nil), c.Lines...)
	return &cp
}
