package repository

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/averyk/lifeledger/internal/model"
)

// WalletRepository is the only gateway to the wallets table. Balance
// arithmetic happens server-side (balance = balance + ?) so concurrent
// mutations never lose updates.
type WalletRepository interface {
	WithTx(tx *gorm.DB) WalletRepository
	Create(ctx context.Context, wallet *model.Wallet) error
	GetByID(ctx context.Context, id uint) (*model.Wallet, error)
	GetByUserID(ctx context.Context, userID string) (*model.Wallet, error)
	Update(ctx context.Context, wallet *model.Wallet) error
	AddToBalance(ctx context.Context, walletID uint, delta decimal.Decimal) error
}

type walletRepo struct {
	db *gorm.DB
}

func NewWalletRepository(db *gorm.DB) WalletRepository {
	return &walletRepo{db: db}
}

func (r *walletRepo) WithTx(tx *gorm.DB) WalletRepository {
	return &walletRepo{db: tx}
}

func (r *walletRepo) Create(ctx context.Context, wallet *model.Wallet) error {
	return r.db.WithContext(ctx).Create(wallet).Error
}

func (r *walletRepo) GetByID(ctx context.Context, id uint) (*model.Wallet, error) {
	var w model.Wallet
	if err := r.db.WithContext(ctx).First(&w, id).Error; err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *walletRepo) GetByUserID(ctx context.Context, userID string) (*model.Wallet, error) {
	var w model.Wallet
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&w).Error; err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *walletRepo) Update(ctx context.Context, wallet *model.Wallet) error {
	return r.db.WithContext(ctx).Save(wallet).Error
}

func (r *walletRepo) AddToBalance(ctx context.Context, walletID uint, delta decimal.Decimal) error {
	if delta.IsZero() {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&model.Wallet{}).
		Where("id = ?", walletID).
		UpdateColumn("balance", gorm.Expr("balance + ?", delta)).Error
}
