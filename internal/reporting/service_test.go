package reporting

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestMonthWindowStart(t *testing.T) {
	now := time.Date(2025, time.September, 18, 14, 30, 0, 0, time.UTC)
	got := monthWindowStart(now, 6)
	want := time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("monthWindowStart = %s, want %s", got, want)
	}
}

func TestFillMonthsPadsGaps(t *testing.T) {
	since := time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC)
	now := time.Date(2025, time.September, 18, 0, 0, 0, 0, time.UTC)
	rows := []MonthlySales{
		{Year: 2025, Month: 5, Orders: 3, Revenue: decimal.RequireFromString("4500.00")},
		{Year: 2025, Month: 8, Orders: 1, Revenue: decimal.RequireFromString("999.00")},
	}

	filled := fillMonths(since, now, rows)
	if len(filled) != 6 {
		t.Fatalf("expected 6 months, got %d", len(filled))
	}
	if filled[0].Month != 4 || filled[0].Orders != 0 || !filled[0].Revenue.IsZero() {
		t.Errorf("april bucket not zeroed: %+v", filled[0])
	}
	if filled[1].Orders != 3 {
		t.Errorf("may bucket lost data: %+v", filled[1])
	}
	if filled[5].Month != 9 || filled[5].Orders != 0 {
		t.Errorf("current month missing: %+v", filled[5])
	}
}

func TestFillMonthsCrossesYearBoundary(t *testing.T) {
	since := time.Date(2024, time.November, 1, 0, 0, 0, 0, time.UTC)
	now := time.Date(2025, time.April, 2, 0, 0, 0, 0, time.UTC)

	filled := fillMonths(since, now, nil)
	if len(filled) != 6 {
		t.Fatalf("expected 6 months, got %d", len(filled))
	}
	if filled[0].Year != 2024 || filled[0].Month != 11 {
		t.Errorf("first bucket = %+v", filled[0])
	}
	if filled[2].Year != 2025 || filled[2].Month != 1 {
		t.Errorf("january bucket = %+v", filled[2])
	}
}
