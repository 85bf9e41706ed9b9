package models

// Merchant sells catalog items at fixed prices with unlimited stock.
type Merchant struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"size:100;not null"`
}

// MerchantOffer is an immutable catalog listing. Buying it never consumes it.
type MerchantOffer struct {
	ID         uint  `json:"id" gorm:"primaryKey"`
	MerchantID uint  `json:"merchant_id" gorm:"not null;index"`
	ItemID     uint  `json:"item_id" gorm:"not null"`
	Item       Item  `json:"item" gorm:"foreignKey:ItemID"`
	Price      int64 `json:"price" gorm:"not null;check:price >= 0"`
}
