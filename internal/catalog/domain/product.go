package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type Category string

const (
	CategoryCandy     Category = "candy"
	CategoryChocolate Category = "chocolate"
	CategoryCake      Category = "cake"
	CategoryCupcake   Category = "cupcake"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryCandy, CategoryChocolate, CategoryCake, CategoryCupcake:
		return true
	}
	return false
}

// Product is a catalog entry. Price is a decimal carried as text on the
// wire to avoid floating-point display drift. Exactly one of ImageURL
// (hosted image) and PlaceholderGlyph (literal emoji shown until an
// image is uploaded) is expected to be set; both may be empty.
type Product struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	Description      string          `json:"description"`
	Price            decimal.Decimal `json:"price"`
	Category         Category        `json:"category"`
	ImageURL         *string         `json:"image_url,omitempty"`
	PlaceholderGlyph *string         `json:"placeholder_glyph,omitempty"`
	Stock            int             `json:"stock"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// ProductRequest is the admin create/update payload. Price arrives as a
// string and is validated by the service.
type ProductRequest struct {
	Name             string  `json:"name"`
	Description      string  `json:"description"`
	Price            string  `json:"price"`
	Category         string  `json:"category"`
	ImageURL         *string `json:"image_url"`
	PlaceholderGlyph *string `json:"placeholder_glyph"`
	Stock            int     `json:"stock"`
}

// ValidationError names the offending field of a malformed product.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
