package domain

import "time"

// DateLayout is the display and storage format for log dates (day first,
// matching the FoodLog sheet).
const DateLayout = "02/01/2006"

// isoLayout is accepted on read so older exports still parse; looseLayout
// covers hand-edited workbook rows without zero padding.
const (
	isoLayout   = "2006-01-02"
	looseLayout = "2/1/2006"
)

// ParseDate parses a sheet or query date. dd/mm/yyyy (padded or not) and
// yyyy-mm-dd are accepted; the result is normalized to UTC midnight so that
// equality checks never depend on the source format.
func ParseDate(s string) (time.Time, error) {
	for _, layout := range []string{DateLayout, looseLayout, isoLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			return NormalizeDate(t), nil
		}
	}
	return time.Time{}, ErrMalformedDate
}

// NormalizeDate truncates a timestamp to UTC midnight.
func NormalizeDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// FormatDate renders a date in the storage format.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
