package models

import "time"

// PeerOffer is a player listing for one item instance. It is active while
// BuyerID is nil; after a purchase it stays as an immutable history row.
type PeerOffer struct {
	ID             uint          `json:"id" gorm:"primaryKey"`
	ItemInstanceID uint          `json:"item_instance_id" gorm:"not null;index;uniqueIndex:idx_peer_offers_active_instance,where:buyer_id IS NULL"`
	ItemInstance   *ItemInstance `json:"item_instance,omitempty" gorm:"foreignKey:ItemInstanceID"`
	SellerID       uint          `json:"seller_id" gorm:"not null;index"`
	Price          int64         `json:"price" gorm:"not null"`
	PublishedAt    time.Time     `json:"published_at" gorm:"not null;index"`
	BuyerID        *uint         `json:"buyer_id,omitempty" gorm:"index"`
	BoughtAt       *time.Time    `json:"bought_at,omitempty"`
}

func (o *PeerOffer) Active() bool {
	return o.BuyerID == nil
}

// PeerOfferView is a marketplace listing row joined with item and user names.
type PeerOfferView struct {
	ID             uint       `json:"id"`
	ItemInstanceID uint       `json:"item_instance_id"`
	ItemID         uint       `json:"item_id"`
	ItemName       string     `json:"item_name"`
	ItemType       string     `json:"item_type"`
	SellerID       uint       `json:"seller_id"`
	SellerUsername string     `json:"seller_username"`
	Price          int64      `json:"price"`
	PublishedAt    time.Time  `json:"published_at"`
	BuyerID        *uint      `json:"buyer_id,omitempty"`
	BuyerUsername  *string    `json:"buyer_username,omitempty"`
	BoughtAt       *time.Time `json:"bought_at,omitempty"`
}

type CreatePeerOfferRequest struct {
	ItemInstanceID uint  `json:"item_instance_id" validate:"required"`
	Price          int64 `json:"price" validate:"gte=0"`
}
