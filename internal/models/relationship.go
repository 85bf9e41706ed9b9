package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

type RelationshipStatus string

const (
	RelationshipPending  RelationshipStatus = "pending"
	RelationshipAccepted RelationshipStatus = "accepted"
	RelationshipRejected RelationshipStatus = "rejected"
)

// RelationshipRequest is a directed friend request. Once accepted the same
// row represents the (symmetric) friendship.
type RelationshipRequest struct {
	ID          uint               `json:"id" gorm:"primaryKey"`
	RequesterID uint               `json:"requester_id" gorm:"not null;index"`
	ReceiverID  uint               `json:"receiver_id" gorm:"not null;index"`
	PairKey     string             `json:"-" gorm:"size:64;not null;uniqueIndex:idx_relationship_active_pair,where:status <> 'rejected'"`
	Status      RelationshipStatus `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	CreatedAt   time.Time          `json:"created_at"`
	RespondedAt *time.Time         `json:"responded_at,omitempty"`
}

// PairKey identifies the unordered pair {a, b}.
func PairKey(a, b uint) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%d:%d", a, b)
}

func (r *RelationshipRequest) BeforeCreate(tx *gorm.DB) error {
	r.PairKey = PairKey(r.RequesterID, r.ReceiverID)
	return nil
}

// RelationshipView is a relationship row seen from one participant: the
// user fields always describe the counterpart.
type RelationshipView struct {
	RequestID   uint               `json:"request_id"`
	UserID      uint               `json:"user_id"`
	Username    string             `json:"username"`
	AvatarURL   string             `json:"avatar_url"`
	Status      RelationshipStatus `json:"status"`
	CreatedAt   time.Time          `json:"created_at"`
	RespondedAt *time.Time         `json:"responded_at,omitempty"`
}

// CreateFriendRequest defines the request body for sending a friend request
type CreateFriendRequest struct {
	ReceiverID uint `json:"receiver_id" validate:"required"`
}
