package models

import "time"

type NotificationType string

const (
	NotificationFriendRequest  NotificationType = "friend_request"
	NotificationFriendAccepted NotificationType = "friend_accepted"
	NotificationOfferSold      NotificationType = "offer_sold"
)

// Notification represents a user notification (PostgreSQL)
type Notification struct {
	ID          uint             `json:"id" gorm:"primaryKey"`
	Type        NotificationType `json:"type" gorm:"size:30;index"`
	ActorID     uint             `json:"actor_id" gorm:"index"`
	RecipientID uint             `json:"recipient_id" gorm:"index"`
	TargetID    uint             `json:"target_id"`                  // relationship request ID, peer offer ID
	TargetType  string           `json:"target_type" gorm:"size:30"` // relationship_request, peer_offer
	Message     string           `json:"message"`
	IsRead      bool             `json:"is_read" gorm:"default:false;index"`
	CreatedAt   time.Time        `json:"created_at" gorm:"index"`
}
