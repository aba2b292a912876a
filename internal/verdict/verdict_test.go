package verdict

import (
	"testing"
	"time"

	"github.com/ngmaloney/isitfrozen/internal/models"
)

func temp(v float64) *float64 { return &v }

func obs(v *float64, ts time.Time) models.Observation {
	return models.Observation{Timestamp: ts, Temperature: v, UnitCode: "wmoUnit:degC"}
}

func TestCompute(t *testing.T) {
	ts := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name         string
		observations []models.Observation
		want         models.Verdict
		wantReadings int
	}{
		{"all above zero", []models.Observation{obs(temp(3), ts), obs(temp(1.5), ts)}, models.VerdictNotFrozen, 2},
		{"all at or below zero", []models.Observation{obs(temp(-2), ts), obs(temp(0), ts)}, models.VerdictFrozen, 2},
		{"mixed", []models.Observation{obs(temp(-2), ts), obs(temp(3), ts), obs(temp(-8), ts)}, models.VerdictNotFrozen, 3},
		{"only nulls", []models.Observation{obs(nil, ts), obs(nil, ts)}, models.VerdictNoData, 0},
		{"empty", nil, models.VerdictNoData, 0},
		{"nulls skipped", []models.Observation{obs(nil, ts), obs(temp(-1), ts), obs(nil, ts)}, models.VerdictFrozen, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compute(tt.observations)
			if got.Verdict != tt.want {
				t.Errorf("Compute() verdict = %v, want %v", got.Verdict, tt.want)
			}
			if len(got.Readings) != tt.wantReadings {
				t.Errorf("Compute() readings = %d, want %d", len(got.Readings), tt.wantReadings)
			}
		})
	}
}

func TestCompute_KeepsResponseOrder(t *testing.T) {
	t1 := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	t2 := t1.Add(-time.Hour)

	got := Compute([]models.Observation{obs(temp(-2), t1), obs(temp(3), t2)})

	if got.Verdict != models.VerdictNotFrozen {
		t.Fatalf("Compute() verdict = %v, want VerdictNotFrozen", got.Verdict)
	}
	if len(got.Readings) != 2 {
		t.Fatalf("Compute() readings = %d, want 2", len(got.Readings))
	}
	if !got.Readings[0].Timestamp.Equal(t1) || !got.Readings[1].Timestamp.Equal(t2) {
		t.Errorf("Compute() reordered readings: %v", got.Readings)
	}
}

func TestUnitSuffix(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{"wmoUnit:degC", "C"},
		{"wmoUnit:degF", "F"},
		{"unit:K", "K"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if got := UnitSuffix(tt.code); got != tt.want {
				t.Errorf("UnitSuffix(%q) = %q, want %q", tt.code, got, tt.want)
			}
		})
	}
}

func TestFormatReading(t *testing.T) {
	ts := time.Date(2024, 1, 5, 15, 4, 0, 0, time.UTC)

	tests := []struct {
		name string
		obs  models.Observation
		want string
	}{
		{"negative celsius", obs(temp(-2), ts), "1/5/24, 3:04 PM: -2C"},
		{"fractional", obs(temp(1.7), ts), "1/5/24, 3:04 PM: 1.7C"},
		{"zero", obs(temp(0), ts), "1/5/24, 3:04 PM: 0C"},
		{"null", obs(nil, ts), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatReading(tt.obs, time.UTC); got != tt.want {
				t.Errorf("FormatReading() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatReadings_SkipsNulls(t *testing.T) {
	ts := time.Date(2024, 1, 5, 9, 30, 0, 0, time.UTC)
	lines := FormatReadings([]models.Observation{obs(temp(-2), ts), obs(nil, ts), obs(temp(3), ts)}, time.UTC)

	want := []string{"1/5/24, 9:30 AM: -2C", "1/5/24, 9:30 AM: 3C"}
	if len(lines) != len(want) {
		t.Fatalf("FormatReadings() = %v, want %v", lines, want)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("FormatReadings()[%d] = %q, want %q", i, lines[i], want[i])
		}
	}
}
