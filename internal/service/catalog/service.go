package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/pdv-varejo/internal/domain"
	"github.com/seu-repo/pdv-varejo/internal/observability/telemetry"
	"github.com/seu-repo/pdv-varejo/internal/ports"
	"github.com/seu-repo/pdv-varejo/pkg/money"
)

// Service serves the product catalog with a read-through cache in front of
// the repository. Cached entries are for counter lookups only; checkout
// always re-reads stock under lock, so a stale cached StockQty can never
// oversell.
type Service struct {
	repo     ports.ProductRepository
	cache    ports.Cache
	cacheTTL time.Duration
	log      *zap.Logger
}

func NewService(repo ports.ProductRepository, cache ports.Cache, cacheTTL time.Duration, log *zap.Logger) ports.CatalogService {
	return &Service{repo: repo, cache: cache, cacheTTL: cacheTTL, log: log}
}

func cacheKey(id int64) string {
	return fmt.Sprintf("product:%d", id)
}

func (s *Service) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, cacheKey(id)); err == nil && raw != "" {
			var p domain.Product
			if err := json.Unmarshal([]byte(raw), &p); err == nil {
				telemetry.CacheHitsTotal.WithLabelValues("hit").Inc()
				return &p, nil
			}
		}
		telemetry.CacheHitsTotal.WithLabelValues("miss").Inc()
	}

	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find product %d: %w", id, err)
	}
	if p == nil {
		return nil, domain.ErrProductNotFound
	}

	s.cacheProduct(ctx, p)
	return p, nil
}

func (s *Service) ListProducts(ctx context.Context) ([]domain.Product, error) {
	products, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

func (s *Service) CreateProduct(ctx context.Context, name string, unitPrice money.Cents, stockQty int) (*domain.Product, error) {
	if name == "" {
		return nil, domain.ValidationError("product name is required")
	}
	if unitPrice <= 0 {
		return nil, domain.ValidationError("unit price must be positive")
	}
	if stockQty < 0 {
		return nil, domain.ValidationError("stock quantity cannot be negative")
	}

	now := time.Now()
	p := &domain.Product{
		Name:      name,
		UnitPrice: unitPrice,
		StockQty:  stockQty,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("save product: %w", err)
	}

	s.log.Info("Product created",
		zap.Int64("product_id", p.ID),
		zap.String("name", p.Name),
		zap.String("unit_price", p.UnitPrice.String()),
	)
	return p, nil
}

// AdjustStock applies a purchase-in (or shrinkage) delta outside of sale
// commits. Sale decrements never go through here; they run inside the
// checkout transaction.
func (s *Service) AdjustStock(ctx context.Context, id int64, delta int) (*domain.Product, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find product %d: %w", id, err)
	}
	if p == nil {
		return nil, domain.ErrProductNotFound
	}

	next := p.StockQty + delta
	if next < 0 {
		return nil, domain.ConflictError("stock adjustment would go negative: have %d, delta %d", p.StockQty, delta)
	}

	if err := s.repo.UpdateStock(ctx, id, next); err != nil {
		return nil, fmt.Errorf("update stock for product %d: %w", id, err)
	}
	p.StockQty = next

	s.invalidate(ctx, id)

	s.log.Info("Stock adjusted",
		zap.Int64("product_id", id),
		zap.Int("delta", delta),
		zap.Int("stock_qty", next),
	)
	return p, nil
}

func (s *Service) cacheProduct(ctx context.Context, p *domain.Product) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, cacheKey(p.ID), string(raw), s.cacheTTL); err != nil {
		s.log.Debug("Could not cache product", zap.Int64("product_id", p.ID), zap.Error(err))
	}
}

func (s *Service) invalidate(ctx context.Context, id int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, cacheKey(id)); err != nil {
		s.log.Debug("Could not invalidate product cache", zap.Int64("product_id", id), zap.Error(err))
	}
}
