package domain

import (
	"errors"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	want := time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{name: "padded storage format", input: "03/03/2025", want: want},
		{name: "hand-edited without padding", input: "3/3/2025", want: want},
		{name: "mixed padding", input: "3/03/2025", want: want},
		{name: "ISO fallback", input: "2025-03-03", want: want},
		{name: "words", input: "March 3rd", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "month out of range", input: "03/13/2025", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrMalformedDate) {
					t.Errorf("ParseDate(%q) error = %v, want ErrMalformedDate", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDate(%q) error = %v", tt.input, err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParseDate(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeDate(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*60*60)
	in := time.Date(2025, time.March, 3, 23, 45, 12, 999, loc)

	got := NormalizeDate(in)
	want := time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("NormalizeDate() = %v, want %v", got, want)
	}
}

func TestFormatDateRoundTrip(t *testing.T) {
	day := time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC)

	if got := FormatDate(day); got != "03/03/2025" {
		t.Fatalf("FormatDate() = %q, want 03/03/2025", got)
	}
	parsed, err := ParseDate(FormatDate(day))
	if err != nil {
		t.Fatalf("ParseDate(FormatDate()) error = %v", err)
	}
	if !parsed.Equal(day) {
		t.Errorf("round trip = %v, want %v", parsed, day)
	}
}
