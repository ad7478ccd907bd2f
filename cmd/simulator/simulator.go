package main

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

// SimulatorConfig holds the simulator configuration
type SimulatorConfig struct {
	ServerURL string
	Terminals int
	Interval  time.Duration
	MaxLines  int
	Seed      bool
}

// demoProduct is a catalog entry seeded before the run starts.
type demoProduct struct {
	Name  string `json:"name"`
	Price int64  `json:"unit_price_cents"`
	Stock int    `json:"stock_qty"`
}

var demoCatalog = []demoProduct{
	{Name: "Café Premium 500g", Price: 3490, Stock: 500},
	{Name: "Leite Integral 1L", Price: 649, Stock: 800},
	{Name: "Pão Francês kg", Price: 1590, Stock: 300},
	{Name: "Arroz Branco 5kg", Price: 2890, Stock: 400},
	{Name: "Feijão Carioca 1kg", Price: 899, Stock: 600},
	{Name: "Açúcar Refinado 1kg", Price: 549, Stock: 700},
	{Name: "Óleo de Soja 900ml", Price: 789, Stock: 450},
	{Name: "Sabão em Pó 800g", Price: 1249, Stock: 250},
}

// Simulator drives a fleet of fake POS terminals against the HTTP API.
// Each terminal opens a cart session, scans a few items and submits
// the sale, so a running server gets realistic checkout traffic.
type Simulator struct {
	config *SimulatorConfig
	client *fasthttp.Client
	log    *zap.Logger

	products []seededProduct

	completed atomic.Int64
	rejected  atomic.Int64
	failed    atomic.Int64

	stopChan chan struct{}
	wg       sync.WaitGroup
}

type seededProduct struct {
	ID    int64
	Price int64
}

// NewSimulator creates a new checkout traffic simulator
func NewSimulator(config *SimulatorConfig, log *zap.Logger) *Simulator {
	return &Simulator{
		config: config,
		client: &fasthttp.Client{
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		log:      log,
		stopChan: make(chan struct{}),
	}
}

// Start seeds the catalog if requested and launches the terminal loops.
func (s *Simulator) Start() error {
	if s.config.Seed {
		if err := s.seedCatalog(); err != nil {
			return fmt.Errorf("failed to seed catalog: %w", err)
		}
	}
	if len(s.products) == 0 {
		if err := s.loadCatalog(); err != nil {
			return fmt.Errorf("failed to load catalog: %w", err)
		}
	}
	if len(s.products) == 0 {
		return fmt.Errorf("no products available on %s, run with -seed", s.config.ServerURL)
	}

	for i := 1; i <= s.config.Terminals; i++ {
		s.wg.Add(1)
		go s.terminalLoop(i)
	}
	return nil
}

// Stop signals all terminals and waits for in-flight sales to finish.
func (s *Simulator) Stop() {
	close(s.stopChan)
	s.wg.Wait()
}

// Report prints the run totals.
func (s *Simulator) Report() {
	s.log.Info("Simulation finished",
		zap.Int64("completed", s.completed.Load()),
		zap.Int64("rejected", s.rejected.Load()),
		zap.Int64("transport_errors", s.failed.Load()),
	)
}

func (s *Simulator) seedCatalog() error {
	for _, p := range demoCatalog {
		status, body, err := s.doJSON("POST", "/api/v1/products", p)
		if err != nil {
			return err
		}
		if status != fasthttp.StatusCreated {
			return fmt.Errorf("seeding %q: unexpected status %d", p.Name, status)
		}
		var created struct {
			ID    int64 `json:"id"`
			Price int64 `json:"unit_price_cents"`
		}
		if err := json.Unmarshal(body, &created); err != nil {
			return err
		}
		s.products = append(s.products, seededProduct{ID: created.ID, Price: created.Price})
	}
	return nil
}

func (s *Simulator) loadCatalog() error {
	status, body, err := s.doJSON("GET", "/api/v1/products", nil)
	if err != nil {
		return err
	}
	if status != fasthttp.StatusOK {
		return fmt.Errorf("listing products: unexpected status %d", status)
	}
	var listed []struct {
		ID    int64 `json:"id"`
		Price int64 `json:"unit_price_cents"`
	}
	if err := json.Unmarshal(body, &listed); err != nil {
		return err
	}
	s.products = s.products[:0]
	for _, p := range listed {
		s.products = append(s.products, seededProduct{ID: p.ID, Price: p.Price})
	}
	return nil
}

func (s *Simulator) terminalLoop(terminal int) {
	defer s.wg.Done()

	rng := rand.New(rand.NewSource(time.Now().UnixNano() + int64(terminal)))
	log := s.log.With(zap.Int("terminal", terminal))

	for {
		select {
		case <-s.stopChan:
			return
		default:
		}

		if err := s.runSale(rng, log); err != nil {
			s.failed.Add(1)
			log.Warn("Sale failed", zap.Error(err))
		}

		select {
		case <-s.stopChan:
			return
		case <-time.After(s.config.Interval):
		}
	}
}

// runSale walks one full customer through the API: open a session,
// scan items, then pay with a random cash and card split.
func (s *Simulator) runSale(rng *rand.Rand, log *zap.Logger) error {
	status, body, err := s.doJSON("POST", "/api/v1/sessions", nil)
	if err != nil {
		return err
	}
	if status != fasthttp.StatusCreated {
		return fmt.Errorf("creating session: unexpected status %d", status)
	}
	var session struct {
		SessionID string `json:"session_id"`
	}
	if err := json.Unmarshal(body, &session); err != nil {
		return err
	}

	lineCount := 1 + rng.Intn(s.config.MaxLines)
	var total int64
	picked := rng.Perm(len(s.products))
	if lineCount > len(picked) {
		lineCount = len(picked)
	}
	for _, idx := range picked[:lineCount] {
		p := s.products[idx]
		qty := 1 + rng.Intn(3)
		line := map[string]interface{}{
			"product_id": p.ID,
			"quantity":   qty,
		}
		status, _, err := s.doJSON("POST", "/api/v1/sessions/"+session.SessionID+"/lines", line)
		if err != nil {
			return err
		}
		if status != fasthttp.StatusOK {
			return fmt.Errorf("adding line: unexpected status %d", status)
		}
		total += p.Price * int64(qty)
	}

	// Roughly a third of customers pay part of the total in cash.
	var cash int64
	if rng.Intn(3) == 0 && total > 0 {
		cash = rng.Int63n(total)
	}
	payment := map[string]interface{}{
		"session_id": session.SessionID,
		"cash_cents": cash,
		"card_cents": total - cash,
	}

	status, body, err = s.doJSON("POST", "/api/v1/transactions", payment)
	if err != nil {
		return err
	}
	switch status {
	case fasthttp.StatusCreated:
		s.completed.Add(1)
		var result struct {
			TransactionID string `json:"transaction_id"`
		}
		if err := json.Unmarshal(body, &result); err == nil {
			log.Debug("Sale completed",
				zap.String("transaction_id", result.TransactionID),
				zap.Int64("total_cents", total),
			)
		}
		return nil
	case fasthttp.StatusConflict, fasthttp.StatusBadRequest:
		s.rejected.Add(1)
		log.Debug("Sale rejected", zap.Int("status", status), zap.ByteString("body", body))
		return nil
	default:
		return fmt.Errorf("submitting sale: unexpected status %d", status)
	}
}

func (s *Simulator) doJSON(method, path string, payload interface{}) (int, []byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(s.config.ServerURL + path)
	req.Header.SetMethod(method)
	if payload != nil {
		body, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, err
		}
		req.Header.SetContentType("application/json")
		req.SetBody(body)
	}

	if err := s.client.Do(req, resp); err != nil {
		return 0, nil, err
	}

	body := make([]byte, len(resp.Body()))
	copy(body, resp.Body())
	return resp.StatusCode(), body, nil
}
