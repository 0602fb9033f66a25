package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Marketplace item statuses.
const (
	ItemAvailable = "available"
	ItemPending   = "pending"
	ItemCompleted = "completed"
	ItemRemoved   = "removed"
)

// Marketplace transaction types.
const (
	TransactionSell   = "sell"
	TransactionDonate = "donate"
	TransactionLend   = "lend"
)

// Item is a resident's marketplace listing, scoped to their municipality.
type Item struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID         uint          `gorm:"index;not null" json:"user_id"`
	User           *User         `gorm:"foreignKey:UserID" json:"user,omitempty"`
	MunicipalityID uint          `gorm:"index;not null" json:"municipality_id"`
	Municipality   *Municipality `gorm:"foreignKey:MunicipalityID" json:"municipality,omitempty"`

	Title           string           `gorm:"size:255;not null" json:"title"`
	Description     string           `gorm:"size:2048" json:"description"`
	Category        string           `gorm:"size:64;index" json:"category"`
	Condition       string           `gorm:"size:32" json:"condition"`
	TransactionType string           `gorm:"size:16;not null" json:"transaction_type"`
	Price           *decimal.Decimal `gorm:"type:decimal(12,2)" json:"price,omitempty"`
	Images          datatypes.JSON   `json:"images,omitempty"`

	Status string `gorm:"size:16;not null;default:available;index" json:"status"`
}

// Transaction records a buyer's interest in an item through completion or
// cancellation. Sellers may never transact on their own items.
type Transaction struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ItemID   uint  `gorm:"index;not null" json:"item_id"`
	Item     *Item `gorm:"foreignKey:ItemID" json:"item,omitempty"`
	BuyerID  uint  `gorm:"index;not null" json:"buyer_id"`
	Buyer    *User `gorm:"foreignKey:BuyerID" json:"buyer,omitempty"`
	SellerID uint  `gorm:"index;not null" json:"seller_id"`
	Seller   *User `gorm:"foreignKey:SellerID" json:"seller,omitempty"`

	Status string `gorm:"size:16;not null;default:pending;index" json:"status"`
	Notes  string `gorm:"size:1024" json:"notes,omitempty"`

	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
}
