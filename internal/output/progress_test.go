package output

import (
	"strings"
	"testing"
	"time"
)

func TestIntensityBar(t *testing.T) {
	SetNoColor(true)
	defer SetNoColor(false)

	tests := []struct {
		name  string
		value int
		peak  int
		width int
		want  string
	}{
		{"half", 5, 10, 10, "█████░░░░░ 5"},
		{"full", 10, 10, 4, "████ 10"},
		{"zero peak", 0, 0, 4, "░░░░ 0"},
		{"over peak clamps", 12, 10, 4, "████ 12"},
		{"default width", 0, 1, 0, strings.Repeat("░", 20) + " 0"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := IntensityBar(tc.value, tc.peak, tc.width)
			if got != tc.want {
				t.Errorf("IntensityBar(%d, %d, %d) = %q, want %q", tc.value, tc.peak, tc.width, got, tc.want)
			}
		})
	}
}

func TestSparkline(t *testing.T) {
	tests := []struct {
		values []int
		want   string
	}{
		{nil, ""},
		{[]int{0, 0}, "▁▁"},
		{[]int{0, 2, 4}, "▁▄█"},
		{[]int{7, 7}, "██"},
	}

	for _, tc := range tests {
		if got := Sparkline(tc.values); got != tc.want {
			t.Errorf("Sparkline(%v) = %q, want %q", tc.values, got, tc.want)
		}
	}
}

func TestTrendArrow(t *testing.T) {
	SetNoColor(true)
	defer SetNoColor(false)

	if got := TrendArrow(0, true); got != "─" {
		t.Errorf("TrendArrow(0) = %q", got)
	}
	if got := TrendArrow(1.5, false); got != "▲ +1.50" {
		t.Errorf("TrendArrow(1.5) = %q", got)
	}
	if got := TrendArrow(-2, true); got != "▼ -2.00" {
		t.Errorf("TrendArrow(-2) = %q", got)
	}
	if got := TrendArrowPercent(25, true); got != "▲ +25%" {
		t.Errorf("TrendArrowPercent(25) = %q", got)
	}
}

func TestSection(t *testing.T) {
	SetNoColor(true)
	defer SetNoColor(false)

	got := Section("Summary")
	if !strings.Contains(got, "Summary") || !strings.Contains(got, "─") {
		t.Errorf("Section() = %q", got)
	}
}

func TestFormatHelpers(t *testing.T) {
	if got := Count(1234567); got != "1,234,567" {
		t.Errorf("Count = %q", got)
	}
	if got := Ago(time.Time{}); got != "unknown" {
		t.Errorf("Ago(zero) = %q", got)
	}
	if got := Ago(time.Now().Add(-3 * time.Hour)); !strings.Contains(got, "hours ago") {
		t.Errorf("Ago(-3h) = %q", got)
	}
	if got := Bytes(2048); got != "2.0 kB" {
		t.Errorf("Bytes(2048) = %q", got)
	}
}
