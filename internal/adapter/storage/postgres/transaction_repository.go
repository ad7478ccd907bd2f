package postgres

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/seu-repo/pdv-varejo/internal/domain"
	"github.com/seu-repo/pdv-varejo/internal/ports"
)

type TransactionRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewTransactionRepository(db *gorm.DB, log *zap.Logger) ports.TransactionRepository {
	return &TransactionRepository{
		db:  db,
		log: log,
	}
}

func (r *TransactionRepository) Save(ctx context.Context, tx *domain.Transaction) error {
	return r.db.WithContext(ctx).Save(tx).Error
}

func (r *TransactionRepository) FindByID(ctx context.Context, id string) (*domain.Transaction, error) {
	var tx domain.Transaction
	err := r.db.WithContext(ctx).Preload("Lines").First(&tx, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &tx, nil
}

func (r *TransactionRepository) FindByDate(ctx context.Context, date time.Time) ([]domain.Transaction, error) {
	var txs []domain.Transaction
	startOfDay := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	endOfDay := startOfDay.Add(24 * time.Hour)
	err := r.db.WithContext(ctx).Preload("Lines").
		Where("timestamp >= ? AND timestamp < ?", startOfDay, endOfDay).
		Order("timestamp desc").
		Find(&txs).Error
	return txs, err
}

func (r *TransactionRepository) FindRecent(ctx context.Context, limit int) ([]domain.Transaction, error) {
	if limit <= 0 {
		limit = 50
	}
	var txs []domain.Transaction
	err := r.db.WithContext(ctx).Preload("Lines").
		Order("timestamp desc").
		Limit(limit).
		Find(&txs).Error
	return txs, err
}
