package postgres

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/seu-repo/pdv-varejo/internal/domain"
	"github.com/seu-repo/pdv-varejo/internal/ports"
)

type CustomerRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewCustomerRepository(db *gorm.DB, log *zap.Logger) ports.CustomerRepository {
	return &CustomerRepository{
		db:  db,
		log: log,
	}
}

func (r *CustomerRepository) Save(ctx context.Context, c *domain.Customer) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *CustomerRepository) FindByID(ctx context.Context, id string) (*domain.Customer, error) {
	var c domain.Customer
	err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *CustomerRepository) FindByPhone(ctx context.Context, phone string) (*domain.Customer, error) {
	var c domain.Customer
	err := r.db.WithContext(ctx).First(&c, "phone = ?", phone).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}
