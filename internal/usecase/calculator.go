package usecase

import (
	"strings"

	"github.com/macroledger/backend/internal/domain"
)

// Atwater factors, kcal per gram, used when a profile omits calories.
const (
	kcalPerGramProtein = 4
	kcalPerGramCarbs   = 4
	kcalPerGramFats    = 9
)

// weightBasedUnits are the units whose profiles are expressed per 100 units.
// Everything else is treated as per-piece.
var weightBasedUnits = map[string]bool{
	"gram":  true,
	"grams": true,
	"g":     true,
	"ml":    true,
}

// pieceUnits are the piece-based units accepted in strict mode. Outside strict
// mode arbitrary custom unit strings are allowed and scale per-piece.
var pieceUnits = map[string]bool{
	"piece":       true,
	"pieces":      true,
	"cup":         true,
	"cups":        true,
	"tablespoon":  true,
	"tablespoons": true,
	"teaspoon":    true,
	"teaspoons":   true,
	"capsule":     true,
	"capsules":    true,
	"scoop":       true,
	"scoops":      true,
	"slice":       true,
	"slices":      true,
}

// IsWeightBased reports whether a unit's nutrient profile is defined per 100
// units rather than per single piece. Matching is case-insensitive.
func IsWeightBased(unit string) bool {
	return weightBasedUnits[strings.ToLower(strings.TrimSpace(unit))]
}

// CalculatorConfig holds the logging policy knobs: the minimum accepted
// quantity and whether unknown units are rejected.
type CalculatorConfig struct {
	MinQuantity float64
	StrictUnits bool
}

// Calculator converts a food profile plus a requested quantity into an absolute
// macro contribution. It is pure: no I/O, no stored state beyond the policy.
type Calculator struct {
	minQuantity float64
	strictUnits bool
}

// NewCalculator creates a calculator with the given policy. A zero MinQuantity
// falls back to 0.1 so fractional gram quantities stay loggable.
func NewCalculator(cfg CalculatorConfig) *Calculator {
	minQuantity := cfg.MinQuantity
	if minQuantity == 0 {
		minQuantity = 0.1
	}
	return &Calculator{
		minQuantity: minQuantity,
		strictUnits: cfg.StrictUnits,
	}
}

// Calculate scales the profile's nutrients by the requested quantity.
// Weight-based units scale by quantity/100 (profiles are per 100 units);
// piece-based units scale by quantity directly.
func (c *Calculator) Calculate(profile domain.FoodProfile, quantity float64) (domain.Macros, error) {
	if err := c.CheckQuantity(quantity); err != nil {
		return domain.Macros{}, err
	}

	unit := strings.ToLower(strings.TrimSpace(profile.Unit))
	if c.strictUnits && !weightBasedUnits[unit] && !pieceUnits[unit] {
		return domain.Macros{}, domain.ErrUnknownUnit
	}

	factor := quantity
	if IsWeightBased(profile.Unit) {
		factor = quantity / 100
	}

	return withDerivedCalories(profile.Macros).Scale(factor), nil
}

// CheckQuantity enforces the configured minimum on a requested quantity. Every
// path that accepts a quantity goes through this, scaled or not.
func (c *Calculator) CheckQuantity(quantity float64) error {
	if quantity < c.minQuantity {
		return domain.ErrInvalidQuantity
	}
	return nil
}

// withDerivedCalories fills in calories from the 4/4/9 Atwater factors when the
// profile supplies none. A profile with all-zero macros is left untouched.
func withDerivedCalories(m domain.Macros) domain.Macros {
	if m.Calories == 0 && (m.Protein > 0 || m.Carbs > 0 || m.Fats > 0) {
		m.Calories = m.Protein*kcalPerGramProtein + m.Carbs*kcalPerGramCarbs + m.Fats*kcalPerGramFats
	}
	return m
}
