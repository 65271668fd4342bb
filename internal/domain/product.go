package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a persisted catalog item. It always belongs to one Category.
type Product struct {
	ID            int             `gorm:"primaryKey"`
	Name          string          `gorm:"size:255;not null"`
	Description   string          `gorm:"type:text;not null"`
	Price         decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	StockQuantity int             `gorm:"not null"`
	CategoryID    int             `gorm:"not null;index"`
	Category      *Category       `gorm:"foreignKey:CategoryID"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (Product) TableName() string { return "products" }

// Category groups products. Products are a back-reference only; a category
// never owns or cascades to them.
type Category struct {
	ID          int       `gorm:"primaryKey"`
	Name        string    `gorm:"size:100;not null"`
	Description string    `gorm:"type:text;not null"`
	Products    []Product `gorm:"foreignKey:CategoryID"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (Category) TableName() string { return "categories" }
