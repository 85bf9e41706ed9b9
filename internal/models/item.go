package models

import "time"

// Item is a catalog entry. Players own ItemInstances of it.
type Item struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	Name        string `json:"name" gorm:"size:100;not null;index"`
	Type        string `json:"type" gorm:"size:50;not null;index"`
	Description string `json:"description"`
}

// ItemInstance is one owned copy of an Item.
type ItemInstance struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	ItemID     uint      `json:"item_id" gorm:"not null;index"`
	Item       Item      `json:"item" gorm:"foreignKey:ItemID"`
	OwnerID    uint      `json:"owner_id" gorm:"not null;index"`
	AcquiredAt time.Time `json:"acquired_at"`
}
