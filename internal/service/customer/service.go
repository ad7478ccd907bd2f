package customer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/seu-repo/pdv-varejo/internal/domain"
	"github.com/seu-repo/pdv-varejo/internal/ports"
)

// Service registers loyalty customers and resolves them by phone at the
// counter. Attaching a customer to a sale is always optional.
type Service struct {
	repo ports.CustomerRepository
	log  *zap.Logger
}

func NewService(repo ports.CustomerRepository, log *zap.Logger) ports.CustomerService {
	return &Service{repo: repo, log: log}
}

func (s *Service) FindByPhone(ctx context.Context, phone string) (*domain.Customer, error) {
	phone = normalizePhone(phone)
	if phone == "" {
		return nil, domain.ValidationError("phone is required")
	}

	c, err := s.repo.FindByPhone(ctx, phone)
	if err != nil {
		return nil, fmt.Errorf("find customer by phone: %w", err)
	}
	if c == nil {
		return nil, domain.ErrCustomerNotFound
	}
	return c, nil
}

func (s *Service) Register(ctx context.Context, name, phone, email string) (*domain.Customer, error) {
	name = strings.TrimSpace(name)
	phone = normalizePhone(phone)
	email = strings.TrimSpace(email)
	if name == "" {
		return nil, domain.ValidationError("name is required")
	}
	if phone == "" {
		return nil, domain.ValidationError("phone is required")
	}
	if email != "" && !strings.Contains(email, "@") {
		return nil, domain.ValidationError("invalid email address")
	}

	existing, err := s.repo.FindByPhone(ctx, phone)
	if err != nil {
		return nil, fmt.Errorf("check existing customer: %w", err)
	}
	if existing != nil {
		return nil, domain.ConflictError("phone %s already registered", phone)
	}

	now := time.Now()
	c := &domain.Customer{
		ID:        uuid.New().String(),
		Name:      name,
		Phone:     phone,
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Save(ctx, c); err != nil {
		return nil, fmt.Errorf("save customer: %w", err)
	}

	s.log.Info("Customer registered", zap.String("customer_id", c.ID))
	return c, nil
}

// normalizePhone strips everything but digits so "+55 (11) 91234-5678" and
// "5511912345678" resolve to the same record.
func normalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
