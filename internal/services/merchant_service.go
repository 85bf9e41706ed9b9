package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/anonto42/gamehub/backend/internal/apperrors"
	"github.com/anonto42/gamehub/backend/internal/metrics"
	"github.com/anonto42/gamehub/backend/internal/models"
	"github.com/anonto42/gamehub/backend/internal/repositories"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// MerchantService sells catalog items. Catalog offers have unlimited stock:
// every purchase mints a new item instance and leaves the offer untouched.
type MerchantService struct {
	db           *gorm.DB
	merchantRepo repositories.MerchantRepository
	itemRepo     repositories.ItemRepository
	accountRepo  repositories.AccountRepository
	cache        repositories.CatalogCache
	events       repositories.ExchangeEventRepository
	log          logrus.FieldLogger
}

// NewMerchantService wires the merchant flow. cache and events may be nil.
func NewMerchantService(
	db *gorm.DB,
	merchantRepo repositories.MerchantRepository,
	itemRepo repositories.ItemRepository,
	accountRepo repositories.AccountRepository,
	cache repositories.CatalogCache,
	events repositories.ExchangeEventRepository,
	log logrus.FieldLogger,
) *MerchantService {
	return &MerchantService{
		db:           db,
		merchantRepo: merchantRepo,
		itemRepo:     itemRepo,
		accountRepo:  accountRepo,
		cache:        cache,
		events:       events,
		log:          log,
	}
}

func (s *MerchantService) GetOffers(ctx context.Context, merchantID uint) ([]models.MerchantOffer, error) {
	if s.cache != nil {
		offers, ok, err := s.cache.Get(ctx, merchantID)
		if err != nil {
			s.log.WithField("merchant_id", merchantID).WithError(err).Warn("catalog cache read failed")
		} else if ok {
			return offers, nil
		}
	}

	merchant, err := s.merchantRepo.GetMerchant(ctx, merchantID)
	if err != nil {
		return nil, fmt.Errorf("loading merchant: %w", err)
	}
	if merchant == nil {
		return nil, apperrors.NotFound("Merchant")
	}

	offers, err := s.merchantRepo.ListOffers(ctx, merchantID)
	if err != nil {
		return nil, fmt.Errorf("listing merchant offers: %w", err)
	}
	if offers == nil {
		offers = []models.MerchantOffer{}
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, merchantID, offers); err != nil {
			s.log.WithField("merchant_id", merchantID).WithError(err).Warn("catalog cache write failed")
		}
	}
	return offers, nil
}

// PurchaseOffer debits buyerID and grants a new instance of the offer's item.
func (s *MerchantService) PurchaseOffer(ctx context.Context, buyerID, offerID uint) (instance *models.ItemInstance, err error) {
	defer func() { metrics.RecordPurchase("merchant", outcomeOf(err)) }()

	var offer *models.MerchantOffer
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		accounts := s.accountRepo.WithTx(tx)

		var err error
		offer, err = s.merchantRepo.WithTx(tx).GetOffer(ctx, offerID)
		if err != nil {
			return fmt.Errorf("loading merchant offer: %w", err)
		}
		if offer == nil {
			return apperrors.NotFound("Merchant offer")
		}

		account, err := accounts.GetByUserID(ctx, buyerID)
		if err != nil {
			return fmt.Errorf("loading buyer account: %w", err)
		}
		if account == nil {
			return apperrors.NotFound("Account")
		}
		if account.Balance < offer.Price {
			return apperrors.Unprocessable("Balance", "insufficient balance")
		}

		if err := accounts.Adjust(ctx, buyerID, -offer.Price); err != nil {
			if errors.Is(err, repositories.ErrBalanceNotAdjusted) {
				return apperrors.Unprocessable("Balance", "insufficient balance")
			}
			return fmt.Errorf("debiting buyer: %w", err)
		}

		instance, err = s.itemRepo.WithTx(tx).MintInstance(ctx, buyerID, offer.ItemID)
		if err != nil {
			return fmt.Errorf("minting item: %w", err)
		}
		instance.Item = offer.Item
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"merchant_offer_id": offer.ID,
		"instance_id":       instance.ID,
		"buyer_id":          buyerID,
		"price":             offer.Price,
	}).Info("merchant offer purchased")
	recordEvent(ctx, s.log, s.events, &models.ExchangeEvent{
		Reference:      uuid.NewString(),
		Kind:           models.EventMerchantPurchase,
		OfferID:        offer.ID,
		ItemID:         offer.ItemID,
		ItemInstanceID: instance.ID,
		MerchantID:     offer.MerchantID,
		BuyerID:        buyerID,
		Price:          offer.Price,
		OccurredAt:     instance.AcquiredAt,
	})
	return instance, nil
}
