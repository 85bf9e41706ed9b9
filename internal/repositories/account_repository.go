package repositories

import (
	"context"
	"errors"

	"github.com/anonto42/gamehub/backend/internal/models"
	"gorm.io/gorm"
)

// ErrBalanceNotAdjusted is returned by Adjust when the account is missing or
// the adjustment would take the balance below zero.
var ErrBalanceNotAdjusted = errors.New("balance not adjusted")

// AccountRepository is the currency ledger.
type AccountRepository interface {
	WithTx(tx *gorm.DB) AccountRepository
	CreateAccount(ctx context.Context, account *models.Account) error
	GetByUserID(ctx context.Context, userID uint) (*models.Account, error)
	Adjust(ctx context.Context, userID uint, delta int64) error
}

type PostgresAccountRepository struct {
	db *gorm.DB
}

func NewPostgresAccountRepository(db *gorm.DB) *PostgresAccountRepository {
	return &PostgresAccountRepository{db: db}
}

func (r *PostgresAccountRepository) WithTx(tx *gorm.DB) AccountRepository {
	return &PostgresAccountRepository{db: tx}
}

func (r *PostgresAccountRepository) CreateAccount(ctx context.Context, account *models.Account) error {
	return r.db.WithContext(ctx).Create(account).Error
}

func (r *PostgresAccountRepository) GetByUserID(ctx context.Context, userID uint) (*models.Account, error) {
	var account models.Account
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// Adjust adds delta to the balance in a single conditional UPDATE, so two
// concurrent debits can never overdraw the account.
func (r *PostgresAccountRepository) Adjust(ctx context.Context, userID uint, delta int64) error {
	res := r.db.WithContext(ctx).Model(&models.Account{}).
		Where("user_id = ? AND balance + ? >= 0", userID, delta).
		Update("balance", gorm.Expr("balance + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrBalanceNotAdjusted
	}
	return nil
}
