package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyName is returned when a food is registered with a blank name
	ErrEmptyName = errors.New("food name cannot be empty")

	// ErrDuplicateFood is returned when a registered name already exists in the catalog
	ErrDuplicateFood = errors.New("food already exists in the catalog")

	// ErrFoodNotFound is returned when a catalog lookup finds no matching food
	ErrFoodNotFound = errors.New("food not found in the catalog")

	// ErrUnknownUnit is returned in strict mode for a unit that is neither
	// weight-based nor a known piece unit
	ErrUnknownUnit = errors.New("unknown measurement unit")

	// ErrInvalidQuantity is returned when a quantity is below the configured minimum
	ErrInvalidQuantity = errors.New("quantity below the allowed minimum")

	// ErrInvalidMacros is returned when a profile carries a negative nutrient value
	ErrInvalidMacros = errors.New("nutrient values must be non-negative")

	// ErrInvalidTarget is returned when goal progress is requested with a
	// non-positive target; callers skip the computation instead of failing
	ErrInvalidTarget = errors.New("goal target must be positive")

	// ErrMalformedDate is returned when a date string cannot be parsed
	ErrMalformedDate = errors.New("malformed date")

	// ErrUnknownNutrient is returned for an unrecognized nutrient selector
	ErrUnknownNutrient = errors.New("unknown nutrient")

	// ErrUnknownPeriod is returned for an unrecognized aggregation period
	ErrUnknownPeriod = errors.New("unknown aggregation period")

	// ErrRowOutOfRange is returned when a delete targets the header row or a
	// row past the end of the table
	ErrRowOutOfRange = errors.New("row out of range")

	// ErrStoreWriteFailed wraps any failure to persist to the backing workbook
	ErrStoreWriteFailed = errors.New("store write failed")

	// ErrCacheMiss is returned when a snapshot is not in the cache
	ErrCacheMiss = errors.New("cache miss")
)

// DuplicateFoodsError reports non-unique food names found in the backing store
// at catalog load time. The catalog refuses to pick a winner; the duplicates
// must be removed from the sheet.
type DuplicateFoodsError struct {
	Names []string
}

func (e *DuplicateFoodsError) Error() string {
	return fmt.Sprintf("duplicate foods in the store: %s", strings.Join(e.Names, ", "))
}
