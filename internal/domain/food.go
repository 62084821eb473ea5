package domain

import "time"

// Macros holds the four tracked values. For a FoodProfile they are expressed
// per 100 units (weight-based) or per single piece; for a LogEntry they are
// absolute contributions, already scaled by quantity.
type Macros struct {
	Protein  float64 `json:"protein"`  // grams
	Carbs    float64 `json:"carbs"`    // grams
	Fats     float64 `json:"fats"`     // grams
	Calories float64 `json:"calories"` // kcal
}

// Add returns the element-wise sum of two Macros.
func (m Macros) Add(other Macros) Macros {
	return Macros{
		Protein:  m.Protein + other.Protein,
		Carbs:    m.Carbs + other.Carbs,
		Fats:     m.Fats + other.Fats,
		Calories: m.Calories + other.Calories,
	}
}

// Scale multiplies every field by factor.
func (m Macros) Scale(factor float64) Macros {
	return Macros{
		Protein:  m.Protein * factor,
		Carbs:    m.Carbs * factor,
		Fats:     m.Fats * factor,
		Calories: m.Calories * factor,
	}
}

// Nutrient returns the value of a single tracked nutrient.
func (m Macros) Nutrient(n Nutrient) float64 {
	switch n {
	case NutrientProtein:
		return m.Protein
	case NutrientCarbs:
		return m.Carbs
	case NutrientFats:
		return m.Fats
	case NutrientCalories:
		return m.Calories
	}
	return 0
}

// Nutrient selects one of the tracked values for rankings and goal checks.
type Nutrient string

const (
	NutrientProtein  Nutrient = "protein"
	NutrientCarbs    Nutrient = "carbs"
	NutrientFats     Nutrient = "fats"
	NutrientCalories Nutrient = "calories"
)

// ParseNutrient maps a query-string value to a Nutrient.
func ParseNutrient(s string) (Nutrient, error) {
	switch Nutrient(s) {
	case NutrientProtein, NutrientCarbs, NutrientFats, NutrientCalories:
		return Nutrient(s), nil
	}
	return "", ErrUnknownNutrient
}

// FoodProfile describes one catalog food. Name is the unique key.
type FoodProfile struct {
	Name string `json:"name"`
	Unit string `json:"unit"`
	Macros
	CreatedAt time.Time `json:"createdAt,omitempty"`
	Row       int       `json:"row,omitempty"` // 1-based sheet row, header is row 1
}

// LogEntry is one logged food with its absolute macro contribution.
// Entries are immutable once appended; the only mutation is row deletion.
type LogEntry struct {
	Date     time.Time `json:"date"` // normalized to UTC midnight
	Food     string    `json:"food"`
	Quantity float64   `json:"quantity"`
	Unit     string    `json:"unit"`
	Macros
	Row int `json:"row,omitempty"`
}

// Period selects the bucket size for ledger rollups.
type Period string

const (
	PeriodDay     Period = "day"
	PeriodWeek    Period = "week" // ISO week, starting Monday
	PeriodMonth   Period = "month"
	PeriodQuarter Period = "quarter"
	PeriodYear    Period = "year"
	PeriodAll     Period = "all"
)

// ParsePeriod maps a query-string value to a Period.
func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case PeriodDay, PeriodWeek, PeriodMonth, PeriodQuarter, PeriodYear, PeriodAll:
		return Period(s), nil
	}
	return "", ErrUnknownPeriod
}
