package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/anonto42/gamehub/backend/internal/apperrors"
	"github.com/anonto42/gamehub/backend/internal/models"
	"github.com/anonto42/gamehub/backend/internal/query"
	"github.com/anonto42/gamehub/backend/internal/repositories"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// AccountService registers players and reads their wallet and inventory.
type AccountService struct {
	db              *gorm.DB
	userRepo        repositories.UserRepository
	accountRepo     repositories.AccountRepository
	itemRepo        repositories.ItemRepository
	startingBalance int64
	log             logrus.FieldLogger
}

func NewAccountService(
	db *gorm.DB,
	userRepo repositories.UserRepository,
	accountRepo repositories.AccountRepository,
	itemRepo repositories.ItemRepository,
	startingBalance int64,
	log logrus.FieldLogger,
) *AccountService {
	return &AccountService{
		db:              db,
		userRepo:        userRepo,
		accountRepo:     accountRepo,
		itemRepo:        itemRepo,
		startingBalance: startingBalance,
		log:             log,
	}
}

// Register stores user and opens their account in the same transaction.
func (s *AccountService) Register(ctx context.Context, user *models.User) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.userRepo.WithTx(tx).CreateUser(ctx, user); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperrors.Conflict("User", "username or email is already taken")
			}
			return fmt.Errorf("creating user: %w", err)
		}
		err := s.accountRepo.WithTx(tx).CreateAccount(ctx, &models.Account{
			UserID:  user.ID,
			Balance: s.startingBalance,
		})
		if err != nil {
			return fmt.Errorf("creating account: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{"user_id": user.ID, "username": user.Username}).Info("user registered")
	return nil
}

func (s *AccountService) GetWallet(ctx context.Context, userID uint) (*models.Account, error) {
	account, err := s.accountRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading account: %w", err)
	}
	if account == nil {
		return nil, apperrors.NotFound("Account")
	}
	return account, nil
}

func (s *AccountService) ListInventory(ctx context.Context, userID uint, p query.Params) (query.Page[models.ItemInstance], error) {
	instances, total, err := s.itemRepo.ListInventory(ctx, userID, p)
	if err != nil {
		return query.Page[models.ItemInstance]{}, fmt.Errorf("listing inventory: %w", err)
	}
	return query.NewPage(instances, p, total), nil
}
