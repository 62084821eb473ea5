package usecase

import (
	"context"
	"time"

	"github.com/macroledger/backend/internal/domain"
)

// GoalTargets holds the configured daily targets plus the band cut points for
// the calendar view, expressed as fractions of the target (e.g. 0.8 and 1.2).
type GoalTargets struct {
	Protein  float64
	Carbs    float64
	Fats     float64
	Calories float64
	BandLow  float64
	BandHigh float64
}

// Target returns the configured target for one nutrient.
func (g GoalTargets) Target(n domain.Nutrient) float64 {
	switch n {
	case domain.NutrientProtein:
		return g.Protein
	case domain.NutrientCarbs:
		return g.Carbs
	case domain.NutrientFats:
		return g.Fats
	case domain.NutrientCalories:
		return g.Calories
	}
	return 0
}

// SummaryReport is a period rollup over the whole ledger.
type SummaryReport struct {
	Period  domain.Period  `json:"period"`
	Buckets []PeriodTotals `json:"buckets"`
	Skipped int            `json:"skipped,omitempty"` // rows excluded for malformed dates
}

// DayBand is one day of the calendar view with its threshold band: "low",
// "target" or "high" relative to the configured goal.
type DayBand struct {
	DayTotals
	Band string `json:"band,omitempty"`
}

// ReportService renders aggregate views over a single ledger snapshot per
// call. All computations are stateless transformations of that snapshot.
type ReportService struct {
	ledger *LedgerService
	goals  GoalTargets
}

// NewReportService creates a report service over the given ledger.
func NewReportService(ledger *LedgerService, goals GoalTargets) *ReportService {
	if goals.BandLow == 0 {
		goals.BandLow = 0.8
	}
	if goals.BandHigh == 0 {
		goals.BandHigh = 1.2
	}
	return &ReportService{ledger: ledger, goals: goals}
}

// Summary groups the ledger by period and sums macros per bucket. An empty
// ledger yields an empty report, not an error.
func (s *ReportService) Summary(ctx context.Context, period domain.Period) (*SummaryReport, error) {
	snapshot, err := s.ledger.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return &SummaryReport{
		Period:  period,
		Buckets: AggregateByPeriod(snapshot.Entries, period),
		Skipped: snapshot.Skipped,
	}, nil
}

// Top ranks the foods contributing most of one nutrient, optionally restricted
// to a single day.
func (s *ReportService) Top(ctx context.Context, nutrient domain.Nutrient, n int, date *time.Time) ([]Contributor, error) {
	snapshot, err := s.ledger.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	entries := snapshot.Entries
	if date != nil {
		entries = FilterByDate(entries, *date)
	}
	return TopContributors(entries, nutrient, n), nil
}

// Goal reports progress toward a nutrient target for one day (today when date
// is nil). A zero target falls back to the configured default; if that is not
// positive either, GoalProgress surfaces ErrInvalidTarget.
func (s *ReportService) Goal(ctx context.Context, nutrient domain.Nutrient, target float64, date *time.Time) (GoalStatus, error) {
	if target == 0 {
		target = s.goals.Target(nutrient)
	}

	day := domain.NormalizeDate(time.Now().UTC())
	if date != nil {
		day = domain.NormalizeDate(*date)
	}

	snapshot, err := s.ledger.Snapshot(ctx)
	if err != nil {
		return GoalStatus{}, err
	}

	var total float64
	for _, e := range FilterByDate(snapshot.Entries, day) {
		total += e.Nutrient(nutrient)
	}
	return GoalProgress(total, target)
}

// Daily produces the zero-filled calendar view for one nutrient, banding each
// day against the configured target. Days stay unbanded when no positive
// target exists for the nutrient.
func (s *ReportService) Daily(ctx context.Context, nutrient domain.Nutrient, from, to time.Time) ([]DayBand, error) {
	snapshot, err := s.ledger.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	target := s.goals.Target(nutrient)
	days := DailyTotals(snapshot.Entries, from, to)
	out := make([]DayBand, 0, len(days))
	for _, d := range days {
		band := ""
		if target > 0 {
			switch value := d.Nutrient(nutrient); {
			case value < s.goals.BandLow*target:
				band = "low"
			case value <= s.goals.BandHigh*target:
				band = "target"
			default:
				band = "high"
			}
		}
		out = append(out, DayBand{DayTotals: d, Band: band})
	}
	return out, nil
}
