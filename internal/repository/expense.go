package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/averyk/lifeledger/internal/model"
)

// ExpenseFilter narrows List queries. Zero values mean "no constraint".
type ExpenseFilter struct {
	WalletID  uint
	Category  string
	Type      model.ExpenseType
	StartDate time.Time
	EndDate   time.Time
	Page      int
	PageSize  int
}

// CategoryTotal is one row of the per-category aggregation.
type CategoryTotal struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
	Count    int             `json:"count"`
}

type ExpenseRepository interface {
	WithTx(tx *gorm.DB) ExpenseRepository
	Create(ctx context.Context, expense *model.Expense) error
	GetByID(ctx context.Context, id uint) (*model.Expense, error)
	Update(ctx context.Context, expense *model.Expense) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filter ExpenseFilter) ([]model.Expense, int64, error)
	ListRecent(ctx context.Context, walletID uint, limit int) ([]model.Expense, error)
	ListRealizedInRange(ctx context.Context, walletID uint, from, to time.Time) ([]model.Expense, error)

	// DueScheduled returns unrealized scheduled entries whose effective
	// date has arrived.
	DueScheduled(ctx context.Context, now time.Time) ([]model.Expense, error)
	// MarkRealized flips schedule to false, guarded so a re-run realizes
	// an entry at most once. Reports whether this call won the flip.
	MarkRealized(ctx context.Context, id uint) (bool, error)

	// LatestForSubscription returns the newest entry linked to the
	// subscription; it serves as the materialization template.
	LatestForSubscription(ctx context.Context, subscriptionID uint) (*model.Expense, error)

	// SumSpent totals realized expense-type entries in [from, to).
	SumSpent(ctx context.Context, walletID uint, from, to time.Time) (decimal.Decimal, error)
	CategoryTotals(ctx context.Context, walletID uint, from, to time.Time) ([]CategoryTotal, error)
}

type expenseRepo struct {
	db *gorm.DB
}

func NewExpenseRepository(db *gorm.DB) ExpenseRepository {
	return &expenseRepo{db: db}
}

func (r *expenseRepo) WithTx(tx *gorm.DB) ExpenseRepository {
	return &expenseRepo{db: tx}
}

func (r *expenseRepo) Create(ctx context.Context, expense *model.Expense) error {
	return r.db.WithContext(ctx).Create(expense).Error
}

func (r *expenseRepo) GetByID(ctx context.Context, id uint) (*model.Expense, error) {
	var e model.Expense
	if err := r.db.WithContext(ctx).Preload("Subexpenses").First(&e, id).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *expenseRepo) Update(ctx context.Context, expense *model.Expense) error {
	return r.db.WithContext(ctx).Save(expense).Error
}

func (r *expenseRepo) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Where("expense_id = ?", id).Delete(&model.Subexpense{}).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Delete(&model.Expense{}, id).Error
}

func (r *expenseRepo) List(ctx context.Context, filter ExpenseFilter) ([]model.Expense, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Expense{}).Where("wallet_id = ?", filter.WalletID)
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}
	if !filter.StartDate.IsZero() {
		q = q.Where("date >= ?", filter.StartDate)
	}
	if !filter.EndDate.IsZero() {
		q = q.Where("date < ?", filter.EndDate)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size < 1 {
		size = 20
	}

	var expenses []model.Expense
	err := q.Preload("Subexpenses").
		Order("date DESC").
		Offset((page - 1) * size).
		Limit(size).
		Find(&expenses).Error
	return expenses, total, err
}

func (r *expenseRepo) ListRecent(ctx context.Context, walletID uint, limit int) ([]model.Expense, error) {
	var expenses []model.Expense
	err := r.db.WithContext(ctx).
		Where("wallet_id = ? AND schedule = ?", walletID, false).
		Order("date DESC").
		Limit(limit).
		Find(&expenses).Error
	return expenses, err
}

func (r *expenseRepo) ListRealizedInRange(ctx context.Context, walletID uint, from, to time.Time) ([]model.Expense, error) {
	var expenses []model.Expense
	err := r.db.WithContext(ctx).
		Where("wallet_id = ? AND schedule = ? AND date >= ? AND date < ?", walletID, false, from, to).
		Order("date DESC").
		Find(&expenses).Error
	return expenses, err
}

func (r *expenseRepo) DueScheduled(ctx context.Context, now time.Time) ([]model.Expense, error) {
	var expenses []model.Expense
	err := r.db.WithContext(ctx).
		Where("schedule = ? AND date <= ?", true, now).
		Find(&expenses).Error
	return expenses, err
}

func (r *expenseRepo) MarkRealized(ctx context.Context, id uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Expense{}).
		Where("id = ? AND schedule = ?", id, true).
		UpdateColumn("schedule", false)
	return res.RowsAffected == 1, res.Error
}

func (r *expenseRepo) LatestForSubscription(ctx context.Context, subscriptionID uint) (*model.Expense, error) {
	var e model.Expense
	err := r.db.WithContext(ctx).
		Where("subscription_id = ?", subscriptionID).
		Order("date DESC").
		First(&e).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *expenseRepo) SumSpent(ctx context.Context, walletID uint, from, to time.Time) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := r.db.WithContext(ctx).
		Model(&model.Expense{}).
		Select("SUM(amount)").
		Where("wallet_id = ? AND type = ? AND schedule = ? AND date >= ? AND date < ?",
			walletID, model.ExpenseTypeExpense, false, from, to).
		Scan(&total).Error
	if err != nil || !total.Valid {
		return decimal.Zero, err
	}
	return total.Decimal, nil
}

func (r *expenseRepo) CategoryTotals(ctx context.Context, walletID uint, from, to time.Time) ([]CategoryTotal, error) {
	var rows []CategoryTotal
	err := r.db.WithContext(ctx).
		Model(&model.Expense{}).
		Select("category, SUM(amount) AS total, COUNT(*) AS count").
		Where("wallet_id = ? AND type = ? AND schedule = ? AND date >= ? AND date < ?",
			walletID, model.ExpenseTypeExpense, false, from, to).
		Group("category").
		Order("total DESC").
		Scan(&rows).Error
	return rows, err
}
