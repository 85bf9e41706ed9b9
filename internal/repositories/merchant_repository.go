package repositories

import (
	"context"
	"errors"

	"github.com/anonto42/gamehub/backend/internal/models"
	"gorm.io/gorm"
)

// MerchantRepository reads the merchant catalog. The catalog is administered
// outside this service, so there are no write methods.
type MerchantRepository interface {
	WithTx(tx *gorm.DB) MerchantRepository
	GetMerchant(ctx context.Context, id uint) (*models.Merchant, error)
	ListOffers(ctx context.Context, merchantID uint) ([]models.MerchantOffer, error)
	GetOffer(ctx context.Context, id uint) (*models.MerchantOffer, error)
}

type PostgresMerchantRepository struct {
	db *gorm.DB
}

func NewPostgresMerchantRepository(db *gorm.DB) *PostgresMerchantRepository {
	return &PostgresMerchantRepository{db: db}
}

func (r *PostgresMerchantRepository) WithTx(tx *gorm.DB) MerchantRepository {
	return &PostgresMerchantRepository{db: tx}
}

func (r *PostgresMerchantRepository) GetMerchant(ctx context.Context, id uint) (*models.Merchant, error) {
	var merchant models.Merchant
	err := r.db.WithContext(ctx).First(&merchant, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &merchant, nil
}

func (r *PostgresMerchantRepository) ListOffers(ctx context.Context, merchantID uint) ([]models.MerchantOffer, error) {
	var offers []models.MerchantOffer
	err := r.db.WithContext(ctx).Preload("Item").
		Where("merchant_id = ?", merchantID).
		Order("id ASC").
		Find(&offers).Error
	return offers, err
}

func (r *PostgresMerchantRepository) GetOffer(ctx context.Context, id uint) (*models.MerchantOffer, error) {
	var offer models.MerchantOffer
	err := r.db.WithContext(ctx).Preload("Item").First(&offer, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &offer, nil
}
