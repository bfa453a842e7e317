package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category is the closed set of catalog departments.
type Category string

const (
	CategoryElectronics Category = "Electronics"
	CategoryFashion     Category = "Fashion"
	CategoryBooks       Category = "Books"
	CategoryHome        Category = "Home & Kitchen"
	CategorySports      Category = "Sports"
	CategoryBeauty      Category = "Beauty"
)

// Categories lists every valid category in display order.
var Categories = []Category{
	CategoryElectronics,
	CategoryFashion,
	CategoryBooks,
	CategoryHome,
	CategorySports,
	CategoryBeauty,
}

// Valid reports whether c is one of Categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

type Product struct {
	ID             string            `json:"id"`
	Name           string            `json:"name"`
	Brand          string            `json:"brand"`
	Category       Category          `json:"category"`
	Subcategory    string            `json:"subcategory"`
	Description    string            `json:"description"`
	Price          decimal.Decimal   `json:"price"`
	OriginalPrice  decimal.Decimal   `json:"originalPrice"`
	Discount       int               `json:"discount"`
	Rating         float64           `json:"rating"`
	Reviews        int               `json:"reviews"`
	Image          string            `json:"image"`
	Images         []string          `json:"images"`
	Features       []string          `json:"features"`
	Specifications map[string]string `json:"specifications,omitempty"`
	Tags           []string          `json:"tags"`
	Seller         string            `json:"seller"`
	Warranty       string            `json:"warranty"`
	ReturnPolicy   string            `json:"returnPolicy"`
	InStock        bool              `json:"inStock"`
	StockQuantity  int               `json:"stockQuantity"`
	FastDelivery   bool              `json:"fastDelivery"`
	CreatedAt      time.Time         `json:"createdAt"`
	UpdatedAt      time.Time         `json:"updatedAt"`
}
