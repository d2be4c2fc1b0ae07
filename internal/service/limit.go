package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/averyk/lifeledger/internal/model"
	"github.com/averyk/lifeledger/internal/repository"
)

// LimitService is plain CRUD for spending ceilings; the insight engine
// reads them as one of its budget sources.
type LimitService struct {
	wallets repository.WalletRepository
	limits  repository.WalletLimitRepository
}

func NewLimitService(wallets repository.WalletRepository, limits repository.WalletLimitRepository) *LimitService {
	return &LimitService{wallets: wallets, limits: limits}
}

type LimitInput struct {
	Category *string           `json:"category,omitempty"`
	Amount   decimal.Decimal   `json:"amount"`
	Period   model.LimitPeriod `json:"period"`
}

func (in *LimitInput) validate() error {
	if in.Amount.IsNegative() {
		return fmt.Errorf("%w: limit amount must not be negative", ErrInvalidInput)
	}
	if !in.Period.Valid() {
		return fmt.Errorf("%w: unknown limit period %q", ErrInvalidInput, in.Period)
	}
	return nil
}

func (s *LimitService) Create(ctx context.Context, userID string, in LimitInput) (*model.WalletLimit, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	wallet, err := s.wallets.GetByUserID(ctx, userID)
	if err != nil {
		return nil, walletErr(err)
	}
	limit := &model.WalletLimit{
		WalletID: wallet.ID,
		Category: in.Category,
		Amount:   in.Amount,
		Period:   in.Period,
	}
	if err := s.limits.Create(ctx, limit); err != nil {
		return nil, err
	}
	return limit, nil
}

func (s *LimitService) Update(ctx context.Context, userID string, limitID uint, in LimitInput) (*model.WalletLimit, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	limit, err := s.resolveOwned(ctx, userID, limitID)
	if err != nil {
		return nil, err
	}
	limit.Category = in.Category
	limit.Amount = in.Amount
	limit.Period = in.Period
	if err := s.limits.Update(ctx, limit); err != nil {
		return nil, err
	}
	return limit, nil
}

func (s *LimitService) Delete(ctx context.Context, userID string, limitID uint) error {
	limit, err := s.resolveOwned(ctx, userID, limitID)
	if err != nil {
		return err
	}
	return s.limits.Delete(ctx, limit.ID)
}

func (s *LimitService) List(ctx context.Context, userID string) ([]model.WalletLimit, error) {
	wallet, err := s.wallets.GetByUserID(ctx, userID)
	if err != nil {
		return nil, walletErr(err)
	}
	return s.limits.ListByWallet(ctx, wallet.ID)
}

func (s *LimitService) resolveOwned(ctx context.Context, userID string, limitID uint) (*model.WalletLimit, error) {
	wallet, err := s.wallets.GetByUserID(ctx, userID)
	if err != nil {
		return nil, walletErr(err)
	}
	limit, err := s.limits.GetByID(ctx, limitID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("limit %w", ErrNotFound)
		}
		return nil, err
	}
	if limit.WalletID != wallet.ID {
		return nil, ErrForbidden
	}
	return limit, nil
}
