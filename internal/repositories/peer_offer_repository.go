package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/anonto42/gamehub/backend/internal/models"
	"github.com/anonto42/gamehub/backend/internal/query"
	"gorm.io/gorm"
)

// PeerOfferRepository stores player marketplace listings.
type PeerOfferRepository interface {
	WithTx(tx *gorm.DB) PeerOfferRepository
	CreateOffer(ctx context.Context, offer *models.PeerOffer) error
	GetOfferByID(ctx context.Context, id uint) (*models.PeerOffer, error)
	GetActiveByInstance(ctx context.Context, instanceID uint) (*models.PeerOffer, error)
	MarkSold(ctx context.Context, id, buyerID uint, at time.Time) (bool, error)
	DeleteActive(ctx context.Context, id uint) (bool, error)
	ListOffers(ctx context.Context, p query.Params, activeOnly bool) ([]models.PeerOfferView, int64, error)
}

type PostgresPeerOfferRepository struct {
	db *gorm.DB
}

func NewPostgresPeerOfferRepository(db *gorm.DB) *PostgresPeerOfferRepository {
	return &PostgresPeerOfferRepository{db: db}
}

func (r *PostgresPeerOfferRepository) WithTx(tx *gorm.DB) PeerOfferRepository {
	return &PostgresPeerOfferRepository{db: tx}
}

func (r *PostgresPeerOfferRepository) CreateOffer(ctx context.Context, offer *models.PeerOffer) error {
	return r.db.WithContext(ctx).Omit("ItemInstance").Create(offer).Error
}

// GetOfferByID loads an offer with its item instance and catalog item.
func (r *PostgresPeerOfferRepository) GetOfferByID(ctx context.Context, id uint) (*models.PeerOffer, error) {
	var offer models.PeerOffer
	err := r.db.WithContext(ctx).Preload("ItemInstance.Item").First(&offer, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &offer, nil
}

func (r *PostgresPeerOfferRepository) GetActiveByInstance(ctx context.Context, instanceID uint) (*models.PeerOffer, error) {
	var offer models.PeerOffer
	err := r.db.WithContext(ctx).Where("item_instance_id = ? AND buyer_id IS NULL", instanceID).First(&offer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &offer, nil
}

// MarkSold stamps the buyer only while the offer is still unsold. A false
// result means another purchase won the race.
func (r *PostgresPeerOfferRepository) MarkSold(ctx context.Context, id, buyerID uint, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.PeerOffer{}).
		Where("id = ? AND buyer_id IS NULL", id).
		Updates(map[string]interface{}{"buyer_id": buyerID, "bought_at": at})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// DeleteActive removes an offer that has not been sold.
func (r *PostgresPeerOfferRepository) DeleteActive(ctx context.Context, id uint) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ? AND buyer_id IS NULL", id).Delete(&models.PeerOffer{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// ListOffers returns active listings, or sold history when activeOnly is false.
func (r *PostgresPeerOfferRepository) ListOffers(ctx context.Context, p query.Params, activeOnly bool) ([]models.PeerOfferView, int64, error) {
	base := func() *gorm.DB {
		db := r.db.WithContext(ctx).Table("peer_offers AS o").
			Joins("JOIN item_instances AS ii ON ii.id = o.item_instance_id").
			Joins("JOIN items AS i ON i.id = ii.item_id").
			Joins("JOIN users AS s ON s.id = o.seller_id").
			Joins("LEFT JOIN users AS b ON b.id = o.buyer_id")
		if activeOnly {
			db = db.Where("o.buyer_id IS NULL")
		} else {
			db = db.Where("o.buyer_id IS NOT NULL")
		}
		if p.HasSearch() {
			pattern := p.LikePattern()
			if activeOnly {
				db = db.Where(`(LOWER(i.name) LIKE ? ESCAPE '\' OR LOWER(i.type) LIKE ? ESCAPE '\' OR LOWER(s.username) LIKE ? ESCAPE '\')`,
					pattern, pattern, pattern)
			} else {
				db = db.Where(`(LOWER(i.name) LIKE ? ESCAPE '\' OR LOWER(i.type) LIKE ? ESCAPE '\' OR LOWER(s.username) LIKE ? ESCAPE '\' OR LOWER(b.username) LIKE ? ESCAPE '\')`,
					pattern, pattern, pattern, pattern)
			}
		}
		return db
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	fallback := "published_at"
	if !activeOnly {
		fallback = "bought_at"
	}

	var views []models.PeerOfferView
	err := base().
		Select("o.id AS id, o.item_instance_id AS item_instance_id, i.id AS item_id, i.name AS item_name, i.type AS item_type, " +
			"o.seller_id AS seller_id, s.username AS seller_username, o.price AS price, o.published_at AS published_at, " +
			"o.buyer_id AS buyer_id, b.username AS buyer_username, o.bought_at AS bought_at").
		Order(p.OrderBy(peerOfferSortColumns, fallback, "o.id")).
		Scopes(p.Paginate).
		Scan(&views).Error
	return views, total, err
}

var peerOfferSortColumns = query.Sortable{
	"price":        "o.price",
	"published_at": "o.published_at",
	"bought_at":    "o.bought_at",
	"item_name":    "i.name",
}
