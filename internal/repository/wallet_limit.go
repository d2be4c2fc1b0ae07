package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/averyk/lifeledger/internal/model"
)

type WalletLimitRepository interface {
	Create(ctx context.Context, limit *model.WalletLimit) error
	GetByID(ctx context.Context, id uint) (*model.WalletLimit, error)
	Update(ctx context.Context, limit *model.WalletLimit) error
	Delete(ctx context.Context, id uint) error
	ListByWallet(ctx context.Context, walletID uint) ([]model.WalletLimit, error)
	ListByPeriod(ctx context.Context, walletID uint, period model.LimitPeriod) ([]model.WalletLimit, error)
}

type walletLimitRepo struct {
	db *gorm.DB
}

func NewWalletLimitRepository(db *gorm.DB) WalletLimitRepository {
	return &walletLimitRepo{db: db}
}

func (r *walletLimitRepo) Create(ctx context.Context, limit *model.WalletLimit) error {
	return r.db.WithContext(ctx).Create(limit).Error
}

func (r *walletLimitRepo) GetByID(ctx context.Context, id uint) (*model.WalletLimit, error) {
	var l model.WalletLimit
	if err := r.db.WithContext(ctx).First(&l, id).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *walletLimitRepo) Update(ctx context.Context, limit *model.WalletLimit) error {
	return r.db.WithContext(ctx).Save(limit).Error
}

func (r *walletLimitRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.WalletLimit{}, id).Error
}

func (r *walletLimitRepo) ListByWallet(ctx context.Context, walletID uint) ([]model.WalletLimit, error) {
	var limits []model.WalletLimit
	err := r.db.WithContext(ctx).Where("wallet_id = ?", walletID).Find(&limits).Error
	return limits, err
}

func (r *walletLimitRepo) ListByPeriod(ctx context.Context, walletID uint, period model.LimitPeriod) ([]model.WalletLimit, error) {
	var limits []model.WalletLimit
	err := r.db.WithContext(ctx).
		Where("wallet_id = ? AND period = ?", walletID, period).
		Find(&limits).Error
	return limits, err
}
