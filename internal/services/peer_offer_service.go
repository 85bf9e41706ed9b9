package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anonto42/gamehub/backend/internal/apperrors"
	"github.com/anonto42/gamehub/backend/internal/metrics"
	"github.com/anonto42/gamehub/backend/internal/models"
	"github.com/anonto42/gamehub/backend/internal/query"
	"github.com/anonto42/gamehub/backend/internal/repositories"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// PeerOfferService runs the player marketplace.
type PeerOfferService struct {
	db               *gorm.DB
	offerRepo        repositories.PeerOfferRepository
	itemRepo         repositories.ItemRepository
	accountRepo      repositories.AccountRepository
	notificationRepo repositories.NotificationRepository
	events           repositories.ExchangeEventRepository
	maxPrice         int64
	log              logrus.FieldLogger
}

func NewPeerOfferService(
	db *gorm.DB,
	offerRepo repositories.PeerOfferRepository,
	itemRepo repositories.ItemRepository,
	accountRepo repositories.AccountRepository,
	notificationRepo repositories.NotificationRepository,
	events repositories.ExchangeEventRepository,
	maxPrice int64,
	log logrus.FieldLogger,
) *PeerOfferService {
	return &PeerOfferService{
		db:               db,
		offerRepo:        offerRepo,
		itemRepo:         itemRepo,
		accountRepo:      accountRepo,
		notificationRepo: notificationRepo,
		events:           events,
		maxPrice:         maxPrice,
		log:              log,
	}
}

// CreateOffer lists an item instance owned by ownerID for sale.
func (s *PeerOfferService) CreateOffer(ctx context.Context, ownerID, instanceID uint, price int64) (*models.PeerOffer, error) {
	if price < 0 || price > s.maxPrice {
		return nil, apperrors.InvalidOperation(fmt.Sprintf("price must be between 0 and %d", s.maxPrice))
	}

	var offer *models.PeerOffer
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		offers := s.offerRepo.WithTx(tx)

		instance, err := s.itemRepo.WithTx(tx).GetInstance(ctx, instanceID)
		if err != nil {
			return fmt.Errorf("loading item instance: %w", err)
		}
		if instance == nil {
			return apperrors.NotFound("Item instance")
		}
		if instance.OwnerID != ownerID {
			return apperrors.Forbidden("you do not own this item")
		}

		active, err := offers.GetActiveByInstance(ctx, instanceID)
		if err != nil {
			return fmt.Errorf("checking active offers: %w", err)
		}
		if active != nil {
			return apperrors.Conflict("ItemInstance", "item is already on offer")
		}

		offer = &models.PeerOffer{
			ItemInstanceID: instanceID,
			SellerID:       ownerID,
			Price:          price,
			PublishedAt:    time.Now(),
		}
		if err := offers.CreateOffer(ctx, offer); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperrors.Conflict("ItemInstance", "item is already on offer")
			}
			return fmt.Errorf("creating offer: %w", err)
		}
		offer.ItemInstance = instance
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"offer_id":    offer.ID,
		"instance_id": instanceID,
		"seller_id":   ownerID,
		"price":       price,
	}).Info("peer offer created")
	recordEvent(ctx, s.log, s.events, &models.ExchangeEvent{
		Reference:      uuid.NewString(),
		Kind:           models.EventOfferListed,
		OfferID:        offer.ID,
		ItemID:         offer.ItemInstance.ItemID,
		ItemInstanceID: instanceID,
		SellerID:       ownerID,
		Price:          price,
	})
	return offer, nil
}

// CancelOffer withdraws an unsold offer. The caller must be both the seller
// and the current owner of the item.
func (s *PeerOfferService) CancelOffer(ctx context.Context, callerID, offerID uint) error {
	var offer *models.PeerOffer
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		offers := s.offerRepo.WithTx(tx)

		var err error
		offer, err = offers.GetOfferByID(ctx, offerID)
		if err != nil {
			return fmt.Errorf("loading offer: %w", err)
		}
		if offer == nil {
			return apperrors.NotFound("Offer")
		}
		if !offer.Active() {
			return apperrors.InvalidOperation("offer has already been sold")
		}
		if offer.SellerID != callerID || offer.ItemInstance == nil || offer.ItemInstance.OwnerID != callerID {
			return apperrors.Forbidden("only the owner can cancel this offer")
		}

		ok, err := offers.DeleteActive(ctx, offer.ID)
		if err != nil {
			return fmt.Errorf("deleting offer: %w", err)
		}
		if !ok {
			return apperrors.Conflict("Offer", "offer was sold meanwhile")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{"offer_id": offerID, "seller_id": callerID}).Info("peer offer canceled")
	recordEvent(ctx, s.log, s.events, &models.ExchangeEvent{
		Reference:      uuid.NewString(),
		Kind:           models.EventOfferCanceled,
		OfferID:        offer.ID,
		ItemID:         offer.ItemInstance.ItemID,
		ItemInstanceID: offer.ItemInstanceID,
		SellerID:       callerID,
		Price:          offer.Price,
	})
	return nil
}

// PurchaseOffer buys an active offer. The offer closure, both balance
// changes and the ownership transfer commit together.
func (s *PeerOfferService) PurchaseOffer(ctx context.Context, buyerID, offerID uint) (offer *models.PeerOffer, err error) {
	defer func() { metrics.RecordPurchase("peer", outcomeOf(err)) }()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		offers := s.offerRepo.WithTx(tx)
		accounts := s.accountRepo.WithTx(tx)

		var err error
		offer, err = offers.GetOfferByID(ctx, offerID)
		if err != nil {
			return fmt.Errorf("loading offer: %w", err)
		}
		if offer == nil || !offer.Active() || offer.ItemInstance == nil {
			return apperrors.NotFound("Offer")
		}
		instance := offer.ItemInstance
		if instance.OwnerID == buyerID {
			return apperrors.Unprocessable("Offer", "you cannot buy your own item")
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
		if instance.OwnerID != offer.SellerID {
			return apperrors.Conflict("Offer", "seller no longer owns this item")
		}

		now := time.Now()
		sold, err := offers.MarkSold(ctx, offer.ID, buyerID, now)
		if err != nil {
			return fmt.Errorf("closing offer: %w", err)
		}
		if !sold {
			return apperrors.Conflict("Offer", "offer was sold to someone else")
		}

		if err := accounts.Adjust(ctx, buyerID, -offer.Price); err != nil {
			if errors.Is(err, repositories.ErrBalanceNotAdjusted) {
				return apperrors.Unprocessable("Balance", "insufficient balance")
			}
			return fmt.Errorf("debiting buyer: %w", err)
		}
		if err := accounts.Adjust(ctx, offer.SellerID, offer.Price); err != nil {
			if errors.Is(err, repositories.ErrBalanceNotAdjusted) {
				return apperrors.NotFound("Account")
			}
			return fmt.Errorf("crediting seller: %w", err)
		}

		moved, err := s.itemRepo.WithTx(tx).TransferOwnership(ctx, instance.ID, offer.SellerID, buyerID)
		if err != nil {
			return fmt.Errorf("transferring item: %w", err)
		}
		if !moved {
			return apperrors.Conflict("Offer", "seller no longer owns this item")
		}

		err = s.notificationRepo.WithTx(tx).CreateNotification(ctx, &models.Notification{
			Type:        models.NotificationOfferSold,
			ActorID:     buyerID,
			RecipientID: offer.SellerID,
			TargetID:    offer.ID,
			TargetType:  "peer_offer",
			Message:     fmt.Sprintf("bought your %s for %d", instance.Item.Name, offer.Price),
		})
		if err != nil {
			return fmt.Errorf("creating notification: %w", err)
		}

		offer.BuyerID = &buyerID
		offer.BoughtAt = &now
		instance.OwnerID = buyerID
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"offer_id":  offer.ID,
		"buyer_id":  buyerID,
		"seller_id": offer.SellerID,
		"price":     offer.Price,
	}).Info("peer offer purchased")
	recordEvent(ctx, s.log, s.events, &models.ExchangeEvent{
		Reference:      uuid.NewString(),
		Kind:           models.EventOfferSold,
		OfferID:        offer.ID,
		ItemID:         offer.ItemInstance.ItemID,
		ItemInstanceID: offer.ItemInstanceID,
		SellerID:       offer.SellerID,
		BuyerID:        buyerID,
		Price:          offer.Price,
		OccurredAt:     *offer.BoughtAt,
	})
	return offer, nil
}

// ListOffers pages through active listings, or sold history when activeOnly
// is false.
func (s *PeerOfferService) ListOffers(ctx context.Context, p query.Params, activeOnly bool) (query.Page[models.PeerOfferView], error) {
	views, total, err := s.offerRepo.ListOffers(ctx, p, activeOnly)
	if err != nil {
		return query.Page[models.PeerOfferView]{}, fmt.Errorf("listing offers: %w", err)
	}
	return query.NewPage(views, p, total), nil
}
