package models

import "time"

// Account holds a user's currency balance.
type Account struct {
	UserID    uint      `json:"user_id" gorm:"primaryKey;autoIncrement:false"`
	Balance   int64     `json:"balance" gorm:"not null;default:0;check:balance >= 0"`
	UpdatedAt time.Time `json:"updated_at"`
}
