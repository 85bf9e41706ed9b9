package services

import (
	"context"
	"errors"
	"testing"

	"github.com/anonto42/gamehub/backend/internal/apperrors"
	"github.com/anonto42/gamehub/backend/internal/models"
	"github.com/anonto42/gamehub/backend/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeCatalogCache struct {
	entries map[uint][]models.MerchantOffer
	getErr  error
	hits    int
}

func (c *fakeCatalogCache) Get(_ context.Context, merchantID uint) ([]models.MerchantOffer, bool, error) {
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	offers, ok := c.entries[merchantID]
	if ok {
		c.hits++
	}
	return offers, ok, nil
}

func (c *fakeCatalogCache) Set(_ context.Context, merchantID uint, offers []models.MerchantOffer) error {
	if c.entries == nil {
		c.entries = map[uint][]models.MerchantOffer{}
	}
	c.entries[merchantID] = offers
	return nil
}

func newMerchantService(t *testing.T, cache repositories.CatalogCache) (*MerchantService, *gorm.DB, *recordingEvents) {
	t.Helper()
	db := newTestDB(t)
	log, _ := newTestLogger()
	events := &recordingEvents{}
	svc := NewMerchantService(
		db,
		repositories.NewPostgresMerchantRepository(db),
		repositories.NewPostgresItemRepository(db),
		repositories.NewPostgresAccountRepository(db),
		cache,
		events,
		log,
	)
	return svc, db, events
}

func createMerchantOffer(t *testing.T, db *gorm.DB, price int64) (*models.Merchant, *models.MerchantOffer) {
	t.Helper()
	merchant := &models.Merchant{Name: "Blacksmith"}
	require.NoError(t, db.Create(merchant).Error)
	item := createItem(t, db, "Iron Sword", "weapon")
	offer := &models.MerchantOffer{MerchantID: merchant.ID, ItemID: item.ID, Price: price}
	require.NoError(t, db.Omit("Item").Create(offer).Error)
	return merchant, offer
}

func TestGetMerchantOffers(t *testing.T) {
	svc, db, _ := newMerchantService(t, nil)
	ctx := context.Background()
	merchant, offer := createMerchantOffer(t, db, 40)

	_, err := svc.GetOffers(ctx, 9999)
	assertKind(t, err, apperrors.KindNotFound)

	offers, err := svc.GetOffers(ctx, merchant.ID)
	require.NoError(t, err)
	require.Len(t, offers, 1)
	assert.Equal(t, offer.ID, offers[0].ID)
	assert.Equal(t, "Iron Sword", offers[0].Item.Name)
	assert.Equal(t, int64(40), offers[0].Price)
}

func TestGetMerchantOffersUsesCache(t *testing.T) {
	cache := &fakeCatalogCache{}
	svc, db, _ := newMerchantService(t, cache)
	ctx := context.Background()
	merchant, _ := createMerchantOffer(t, db, 40)

	_, err := svc.GetOffers(ctx, merchant.ID)
	require.NoError(t, err)
	assert.Zero(t, cache.hits)

	offers, err := svc.GetOffers(ctx, merchant.ID)
	require.NoError(t, err)
	assert.Len(t, offers, 1)
	assert.Equal(t, 1, cache.hits)

	cache.getErr = errors.New("redis down")
	offers, err = svc.GetOffers(ctx, merchant.ID)
	require.NoError(t, err)
	assert.Len(t, offers, 1)
}

func TestMerchantOfferIsNeverConsumed(t *testing.T) {
	svc, db, events := newMerchantService(t, nil)
	ctx := context.Background()
	_, offer := createMerchantOffer(t, db, 40)
	alice := createUser(t, db, "alice", 100)
	bob := createUser(t, db, "bob", 40)

	seen := map[uint]bool{}
	for _, buyer := range []*models.User{alice, alice, bob} {
		instance, err := svc.PurchaseOffer(ctx, buyer.ID, offer.ID)
		require.NoError(t, err)
		assert.Equal(t, buyer.ID, instance.OwnerID)
		assert.Equal(t, offer.ItemID, instance.ItemID)
		assert.Equal(t, "Iron Sword", instance.Item.Name)
		assert.False(t, seen[instance.ID], "instance minted twice")
		seen[instance.ID] = true
	}

	assert.Equal(t, int64(20), balanceOf(t, db, alice))
	assert.Equal(t, int64(0), balanceOf(t, db, bob))

	var stored models.MerchantOffer
	require.NoError(t, db.First(&stored, offer.ID).Error)
	assert.Equal(t, int64(40), stored.Price)

	var count int64
	require.NoError(t, db.Model(&models.ItemInstance{}).Where("item_id = ?", offer.ItemID).Count(&count).Error)
	assert.Equal(t, int64(3), count)
	assert.Len(t, events.kinds(), 3)
}

func TestMerchantPurchaseFailures(t *testing.T) {
	svc, db, _ := newMerchantService(t, nil)
	ctx := context.Background()
	_, offer := createMerchantOffer(t, db, 40)
	poor := createUser(t, db, "poor", 39)

	_, err := svc.PurchaseOffer(ctx, poor.ID, 9999)
	assertKind(t, err, apperrors.KindNotFound)

	_, err = svc.PurchaseOffer(ctx, 9999, offer.ID)
	assertKind(t, err, apperrors.KindNotFound)

	_, err = svc.PurchaseOffer(ctx, poor.ID, offer.ID)
	assertKind(t, err, apperrors.KindUnprocessable)
	appErr, _ := apperrors.As(err)
	assert.Contains(t, appErr.Fields, "Balance")

	assert.Equal(t, int64(39), balanceOf(t, db, poor))
	var count int64
	require.NoError(t, db.Model(&models.ItemInstance{}).Where("owner_id = ?", poor.ID).Count(&count).Error)
	assert.Zero(t, count)
}
