// Package domain contains the core business entities and domain logic for the Readshelf catalog.
package domain

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/readshelfapp/readshelf-server/internal/errors"
)

// Price constraints: up to 5 significant digits with exactly 2 fraction
// digits, so the largest representable price is 999.99.
const (
	priceMaxDigits = 5
	priceScale     = 2
)

// RatingScale is the number of fraction digits stored on an aggregated rating.
const RatingScale = 2

// Book represents a catalog entry.
//
// Rating is the stored aggregate over all relationship ratings for this
// book. It is nil until at least one reader rates the book, and is only
// ever written by the rating aggregator, never directly by a client.
type Book struct {
	ID        string           `json:"id"`
	Title     string           `json:"title"`
	Author    string           `json:"author"`
	Price     decimal.Decimal  `json:"price"`
	OwnerID   string           `json:"owner_id,omitempty"` // empty when the owner account was deleted
	Rating    *decimal.Decimal `json:"rating"`             // nil means "no ratings yet"
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// HasOwner reports whether the book still has an owner account.
func (b *Book) HasOwner() bool {
	return b.OwnerID != ""
}

// ValidatePrice checks a price against the catalog's fixed-point rules.
func ValidatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return errors.Validation("price must not be negative")
	}
	if price.Exponent() < -priceScale {
		return errors.Validationf("price must have at most %d decimal places", priceScale)
	}
	// 5 significant digits at scale 2 leaves 3 integer digits.
	if !price.LessThan(decimal.New(1, priceMaxDigits-priceScale)) {
		return errors.Validationf("price must be less than %s", decimal.New(1, priceMaxDigits-priceScale))
	}
	return nil
}

// CanonicalPrice normalizes a price to exactly two fraction digits so
// that equality filters compare a single representation.
func CanonicalPrice(price decimal.Decimal) decimal.Decimal {
	return price.Round(priceScale)
}

// AverageRating computes the aggregate rating for a set of individual
// ratings: the arithmetic mean in the decimal domain, rounded half away
// from zero to two fraction digits. Returns nil for an empty set.
//
// The rounding policy matters: mean(5, 4, 5) = 4.666... must store as 4.67.
func AverageRating(ratings []int) *decimal.Decimal {
	if len(ratings) == 0 {
		return nil
	}
	sum := decimal.Zero
	for _, r := range ratings {
		sum = sum.Add(decimal.NewFromInt(int64(r)))
	}
	mean := sum.DivRound(decimal.NewFromInt(int64(len(ratings))), RatingScale)
	return &mean
}
