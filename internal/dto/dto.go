// Package dto holds the shapes exchanged over HTTP. They are decoupled from
// the persisted entities so schema changes do not leak into the API.
package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Prices travel as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// Column limits of the products table.
const (
	MaxInt32      = 2147483647
	PriceScale    = 2
	PriceIntegers = 16
)

// ProductDTO is validated against the products columns: integers fit INTEGER
// and prices fit NUMERIC(18,2). Price precision is checked at struct level.
type ProductDTO struct {
	ID            int             `json:"id" validate:"lte=2147483647"`
	Name          string          `json:"name" validate:"required,max=255"`
	Description   string          `json:"description" validate:"max=4000"`
	Price         decimal.Decimal `json:"price" validate:"gte=0"`
	StockQuantity int             `json:"stockQuantity" validate:"gte=0,lte=2147483647"`
	CategoryID    int             `json:"categoryId" validate:"gt=0,lte=2147483647"`
	Category      *CategoryDTO    `json:"category,omitempty" validate:"-"`
	CreatedAt     *time.Time      `json:"createdAt,omitempty" validate:"-"`
	UpdatedAt     *time.Time      `json:"updatedAt,omitempty" validate:"-"`
}

// CategoryConsistent reports whether an embedded category, if any, names
// the same category as CategoryID. A zero embedded id is treated as unset.
func (p ProductDTO) CategoryConsistent() bool {
	return p.Category == nil || p.Category.ID == 0 || p.Category.ID == p.CategoryID
}

// CategoryDTO carries Products only when they were loaded. A nil pointer is
// omitted from JSON; a loaded category without products encodes as [].
// PriceFits reports whether the price has at most PriceScale fractional
// digits and fewer than PriceIntegers integer digits.
func (p ProductDTO) PriceFits() bool {
	return p.Price.Equal(p.Price.Truncate(PriceScale)) &&
		p.Price.Abs().LessThan(decimal.New(1, PriceIntegers))
}

type CategoryDTO struct {
	ID          int           `json:"id" validate:"lte=2147483647"`
	Name        string        `json:"name" validate:"required,max=100"`
	Description string        `json:"description" validate:"max=4000"`
	Products    *[]ProductDTO `json:"products,omitempty" validate:"-"`
	CreatedAt   *time.Time    `json:"createdAt,omitempty" validate:"-"`
	UpdatedAt   *time.Time    `json:"updatedAt,omitempty" validate:"-"`
}
