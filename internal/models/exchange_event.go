package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ExchangeEventKind string

const (
	EventOfferListed      ExchangeEventKind = "offer_listed"
	EventOfferCanceled    ExchangeEventKind = "offer_canceled"
	EventOfferSold        ExchangeEventKind = "offer_sold"
	EventMerchantPurchase ExchangeEventKind = "merchant_purchase"
)

// ExchangeEvent is an append-only record of a committed exchange, stored in
// MongoDB. Reference correlates it with the relational commit.
type ExchangeEvent struct {
	ID             primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Reference      string             `json:"reference" bson:"reference"`
	Kind           ExchangeEventKind  `json:"kind" bson:"kind"`
	OfferID        uint               `json:"offer_id" bson:"offer_id"`
	ItemID         uint               `json:"item_id" bson:"item_id"`
	ItemInstanceID uint               `json:"item_instance_id" bson:"item_instance_id"`
	SellerID       uint               `json:"seller_id,omitempty" bson:"seller_id,omitempty"`
	MerchantID     uint               `json:"merchant_id,omitempty" bson:"merchant_id,omitempty"`
	BuyerID        uint               `json:"buyer_id,omitempty" bson:"buyer_id,omitempty"`
	Price          int64              `json:"price" bson:"price"`
	OccurredAt     time.Time          `json:"occurred_at" bson:"occurred_at"`
}
