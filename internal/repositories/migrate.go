package repositories

import (
	"github.com/anonto42/gamehub/backend/internal/models"
	"gorm.io/gorm"
)

// Migrate creates or updates every table the service owns.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Account{},
		&models.Item{},
		&models.ItemInstance{},
		&models.RelationshipRequest{},
		&models.PeerOffer{},
		&models.Merchant{},
		&models.MerchantOffer{},
		&models.Notification{},
	)
}
