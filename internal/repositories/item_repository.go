package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/anonto42/gamehub/backend/internal/models"
	"github.com/anonto42/gamehub/backend/internal/query"
	"gorm.io/gorm"
)

// ItemRepository is the item ownership store.
type ItemRepository interface {
	WithTx(tx *gorm.DB) ItemRepository
	GetItem(ctx context.Context, id uint) (*models.Item, error)
	GetInstance(ctx context.Context, id uint) (*models.ItemInstance, error)
	TransferOwnership(ctx context.Context, instanceID, fromOwnerID, toOwnerID uint) (bool, error)
	MintInstance(ctx context.Context, ownerID, itemID uint) (*models.ItemInstance, error)
	ListInventory(ctx context.Context, ownerID uint, p query.Params) ([]models.ItemInstance, int64, error)
}

type PostgresItemRepository struct {
	db *gorm.DB
}

func NewPostgresItemRepository(db *gorm.DB) *PostgresItemRepository {
	return &PostgresItemRepository{db: db}
}

func (r *PostgresItemRepository) WithTx(tx *gorm.DB) ItemRepository {
	return &PostgresItemRepository{db: tx}
}

func (r *PostgresItemRepository) GetItem(ctx context.Context, id uint) (*models.Item, error) {
	var item models.Item
	err := r.db.WithContext(ctx).First(&item, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// GetInstance loads an owned item instance together with its catalog item.
func (r *PostgresItemRepository) GetInstance(ctx context.Context, id uint) (*models.ItemInstance, error) {
	var instance models.ItemInstance
	err := r.db.WithContext(ctx).Preload("Item").First(&instance, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &instance, nil
}

// TransferOwnership moves the instance only if fromOwnerID still owns it.
func (r *PostgresItemRepository) TransferOwnership(ctx context.Context, instanceID, fromOwnerID, toOwnerID uint) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.ItemInstance{}).
		Where("id = ? AND owner_id = ?", instanceID, fromOwnerID).
		Updates(map[string]interface{}{"owner_id": toOwnerID, "acquired_at": time.Now()})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// MintInstance grants ownerID a brand new instance of itemID.
func (r *PostgresItemRepository) MintInstance(ctx context.Context, ownerID, itemID uint) (*models.ItemInstance, error) {
	instance := &models.ItemInstance{
		ItemID:     itemID,
		OwnerID:    ownerID,
		AcquiredAt: time.Now(),
	}
	if err := r.db.WithContext(ctx).Omit("Item").Create(instance).Error; err != nil {
		return nil, err
	}
	return instance, nil
}

func (r *PostgresItemRepository) ListInventory(ctx context.Context, ownerID uint, p query.Params) ([]models.ItemInstance, int64, error) {
	base := func() *gorm.DB {
		db := r.db.WithContext(ctx).Model(&models.ItemInstance{}).
			Joins("JOIN items ON items.id = item_instances.item_id").
			Where("item_instances.owner_id = ?", ownerID)
		if p.HasSearch() {
			pattern := p.LikePattern()
			db = db.Where(`(LOWER(items.name) LIKE ? ESCAPE '\' OR LOWER(items.type) LIKE ? ESCAPE '\')`, pattern, pattern)
		}
		return db
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var instances []models.ItemInstance
	err := base().Preload("Item").
		Order(p.OrderBy(inventorySortColumns, "acquired_at", "item_instances.id")).
		Scopes(p.Paginate).
		Find(&instances).Error
	return instances, total, err
}

var inventorySortColumns = query.Sortable{
	"acquired_at": "item_instances.acquired_at",
	"name":        "items.name",
	"type":        "items.type",
}
