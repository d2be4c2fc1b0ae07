package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/averyk/lifeledger/internal/model"
)

type SubscriptionRepository interface {
	WithTx(tx *gorm.DB) SubscriptionRepository
	Create(ctx context.Context, sub *model.Subscription) error
	GetByID(ctx context.Context, id uint) (*model.Subscription, error)
	Update(ctx context.Context, sub *model.Subscription) error
	ListByWallet(ctx context.Context, walletID uint) ([]model.Subscription, error)

	// DueOn returns active subscriptions billing exactly on the given
	// midnight-truncated date.
	DueOn(ctx context.Context, date time.Time) ([]model.Subscription, error)
	// DueWithin returns active subscriptions billing in [from, to).
	DueWithin(ctx context.Context, from, to time.Time) ([]model.Subscription, error)

	// AdvanceBillingDate moves next_billing_date from expected to next,
	// guarded on the expected value so the same cycle can never be billed
	// twice. Reports whether this call won the advance.
	AdvanceBillingDate(ctx context.Context, id uint, expected, next time.Time) (bool, error)
}

type subscriptionRepo struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepo{db: db}
}

func (r *subscriptionRepo) WithTx(tx *gorm.DB) SubscriptionRepository {
	return &subscriptionRepo{db: tx}
}

func (r *subscriptionRepo) Create(ctx context.Context, sub *model.Subscription) error {
	return r.db.WithContext(ctx).Create(sub).Error
}

func (r *subscriptionRepo) GetByID(ctx context.Context, id uint) (*model.Subscription, error) {
	var s model.Subscription
	if err := r.db.WithContext(ctx).First(&s, id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *subscriptionRepo) Update(ctx context.Context, sub *model.Subscription) error {
	return r.db.WithContext(ctx).Save(sub).Error
}

func (r *subscriptionRepo) ListByWallet(ctx context.Context, walletID uint) ([]model.Subscription, error) {
	var subs []model.Subscription
	err := r.db.WithContext(ctx).
		Where("wallet_id = ?", walletID).
		Order("next_billing_date ASC").
		Find(&subs).Error
	return subs, err
}

func (r *subscriptionRepo) DueOn(ctx context.Context, date time.Time) ([]model.Subscription, error) {
	var subs []model.Subscription
	err := r.db.WithContext(ctx).
		Where("is_active = ? AND next_billing_date = ?", true, date).
		Find(&subs).Error
	return subs, err
}

func (r *subscriptionRepo) DueWithin(ctx context.Context, from, to time.Time) ([]model.Subscription, error) {
	var subs []model.Subscription
	err := r.db.WithContext(ctx).
		Where("is_active = ? AND next_billing_date >= ? AND next_billing_date < ?", true, from, to).
		Order("next_billing_date ASC").
		Find(&subs).Error
	return subs, err
}

func (r *subscriptionRepo) AdvanceBillingDate(ctx context.Context, id uint, expected, next time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Subscription{}).
		Where("id = ? AND is_active = ? AND next_billing_date = ?", id, true, expected).
		UpdateColumn("next_billing_date", next)
	return res.RowsAffected == 1, res.Error
}
