package postgres

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/seu-repo/pdv-varejo/internal/domain"
	"github.com/seu-repo/pdv-varejo/internal/ports"
)

type ProductRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewProductRepository(db *gorm.DB, log *zap.Logger) ports.ProductRepository {
	return &ProductRepository{
		db:  db,
		log: log,
	}
}

func (r *ProductRepository) Save(ctx context.Context, p *domain.Product) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *ProductRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	var p domain.Product
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// FindByIDForUpdate locks the product row for the current transaction.
func (r *ProductRepository) FindByIDForUpdate(ctx context.Context, id int64) (*domain.Product, error) {
	var p domain.Product
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&p, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepository) FindAll(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product
	err := r.db.WithContext(ctx).Order("name asc").Find(&products).Error
	return products, err
}

func (r *ProductRepository) UpdateStock(ctx context.Context, id int64, stockQty int) error {
	result := r.db.WithContext(ctx).Model(&domain.Product{}).
		Where("id = ?", id).
		Update("stock_qty", stockQty)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}
