package usecase

import (
	"sort"
	"time"

	"github.com/macroledger/backend/internal/domain"
)

// PeriodTotals is one rollup bucket: the start of the containing period plus
// the macro sums and the number of entries that landed in it.
type PeriodTotals struct {
	Start   time.Time `json:"start"`
	Entries int       `json:"entries"`
	domain.Macros
}

// Contributor is one row of a top-foods ranking.
type Contributor struct {
	Food  string  `json:"food"`
	Total float64 `json:"total"`
}

// GoalStatus reports progress against a single nutrient target. Deficit is
// negative while under target, non-negative once met or exceeded.
type GoalStatus struct {
	Total   float64 `json:"total"`
	Target  float64 `json:"target"`
	Percent float64 `json:"percent"`
	Deficit float64 `json:"deficit"`
	Met     bool    `json:"met"`
}

// DayTotals is one day of a zero-filled calendar view.
type DayTotals struct {
	Date    time.Time `json:"date"`
	Entries int       `json:"entries"`
	domain.Macros
}

// FilterByDate returns the entries logged on exactly the given day. Dates are
// normalized at ingestion, so equality here is a plain instant comparison.
func FilterByDate(entries []domain.LogEntry, date time.Time) []domain.LogEntry {
	date = domain.NormalizeDate(date)
	var out []domain.LogEntry
	for _, e := range entries {
		if e.Date.Equal(date) {
			out = append(out, e)
		}
	}
	return out
}

// PeriodStart truncates a date to the start of its containing period.
// Weeks are ISO weeks starting Monday.
func PeriodStart(date time.Time, period domain.Period) time.Time {
	date = domain.NormalizeDate(date)
	switch period {
	case domain.PeriodWeek:
		wd := int(date.Weekday())
		if wd == 0 {
			wd = 7 // Sunday belongs to the week that started the previous Monday
		}
		return date.AddDate(0, 0, -(wd - 1))
	case domain.PeriodMonth:
		return time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, time.UTC)
	case domain.PeriodQuarter:
		month := time.Month((int(date.Month())-1)/3*3 + 1)
		return time.Date(date.Year(), month, 1, 0, 0, 0, 0, time.UTC)
	case domain.PeriodYear:
		return time.Date(date.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	default:
		return date
	}
}

// AggregateByPeriod groups entries by the start of their containing period and
// sums macros per bucket. Buckets with no entries are omitted; the result is
// sorted ascending by bucket start. For PeriodAll everything collapses into a
// single bucket starting at the earliest logged date.
func AggregateByPeriod(entries []domain.LogEntry, period domain.Period) []PeriodTotals {
	if len(entries) == 0 {
		return nil
	}

	if period == domain.PeriodAll {
		bucket := PeriodTotals{Start: entries[0].Date}
		for _, e := range entries {
			if e.Date.Before(bucket.Start) {
				bucket.Start = e.Date
			}
			bucket.Macros = bucket.Macros.Add(e.Macros)
			bucket.Entries++
		}
		return []PeriodTotals{bucket}
	}

	index := make(map[time.Time]int)
	var buckets []PeriodTotals
	for _, e := range entries {
		start := PeriodStart(e.Date, period)
		i, ok := index[start]
		if !ok {
			i = len(buckets)
			index[start] = i
			buckets = append(buckets, PeriodTotals{Start: start})
		}
		buckets[i].Macros = buckets[i].Macros.Add(e.Macros)
		buckets[i].Entries++
	}

	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].Start.Before(buckets[j].Start)
	})
	return buckets
}

// TopContributors ranks foods by their summed contribution of one nutrient.
// Sorting is descending by total with ties broken by first occurrence in the
// input; foods with a zero total are dropped. At most n rows are returned.
func TopContributors(entries []domain.LogEntry, nutrient domain.Nutrient, n int) []Contributor {
	if n <= 0 || len(entries) == 0 {
		return nil
	}

	index := make(map[string]int)
	var totals []Contributor
	for _, e := range entries {
		i, ok := index[e.Food]
		if !ok {
			i = len(totals)
			index[e.Food] = i
			totals = append(totals, Contributor{Food: e.Food})
		}
		totals[i].Total += e.Nutrient(nutrient)
	}

	sort.SliceStable(totals, func(i, j int) bool {
		return totals[i].Total > totals[j].Total
	})

	var out []Contributor
	for _, c := range totals {
		if c.Total <= 0 {
			continue
		}
		out = append(out, c)
		if len(out) == n {
			break
		}
	}
	return out
}

// GoalProgress computes percent-of-target capped at 100 and the signed deficit.
// A non-positive target returns ErrInvalidTarget; the caller skips the
// computation rather than treating it as fatal.
func GoalProgress(total, target float64) (GoalStatus, error) {
	if target <= 0 {
		return GoalStatus{}, domain.ErrInvalidTarget
	}
	percent := total / target * 100
	if percent > 100 {
		percent = 100
	}
	return GoalStatus{
		Total:   total,
		Target:  target,
		Percent: percent,
		Deficit: total - target,
		Met:     total >= target,
	}, nil
}

// DailyTotals sums macros per day over [from, to], zero-filling days with no
// entries. This is the calendar-heatmap view, so absent days must be explicit.
func DailyTotals(entries []domain.LogEntry, from, to time.Time) []DayTotals {
	from = domain.NormalizeDate(from)
	to = domain.NormalizeDate(to)
	if to.Before(from) {
		return nil
	}

	index := make(map[time.Time]int)
	var days []DayTotals
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		index[d] = len(days)
		days = append(days, DayTotals{Date: d})
	}

	for _, e := range entries {
		i, ok := index[e.Date]
		if !ok {
			continue // outside the requested window
		}
		days[i].Macros = days[i].Macros.Add(e.Macros)
		days[i].Entries++
	}
	return days
}
