package datetime

import (
	"testing"
	"time"
)

func TestMustParseTime(t *testing.T) {
	got := MustParseTime(DateLayout, "2025-03-15")
	if got.Year() != 2025 || got.Month() != time.March || got.Day() != 15 {
		t.Errorf("MustParseTime() = %v", got)
	}
}

func TestMustParseTimePanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for invalid date")
		}
	}()
	MustParseTime(DateLayout, "not-a-date")
}

func TestOffsetMonths(t *testing.T) {
	tests := []struct {
		name     string
		start    string
		months   int
		expected string
	}{
		{"Simple month", "2025-01-15", 1, "2025-02-15"},
		{"Year rollover", "2025-12-10", 1, "2026-01-10"},
		{"Clamp to February", "2025-01-31", 1, "2025-02-28"},
		{"Clamp to leap February", "2024-01-31", 1, "2024-02-29"},
		{"Clamp to thirty days", "2025-03-31", 1, "2025-04-30"},
		{"Twelve months", "2025-05-20", 12, "2026-05-20"},
		{"Negative offset", "2025-03-31", -1, "2025-02-28"},
		{"Zero offset", "2025-03-31", 0, "2025-03-31"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := OffsetMonths(MustParseTime(DateLayout, tt.start), tt.months)
			if got.Format(DateLayout) != tt.expected {
				t.Errorf("OffsetMonths(%s, %d) = %s, expected %s",
					tt.start, tt.months, got.Format(DateLayout), tt.expected)
			}
		})
	}
}

func TestDaysInMonth(t *testing.T) {
	tests := map[string]int{
		"2025-02-10": 28,
		"2024-02-10": 29,
		"2025-04-01": 30,
		"2025-12-31": 31,
	}
	for date, expected := range tests {
		if got := DaysInMonth(MustParseTime(DateLayout, date)); got != expected {
			t.Errorf("DaysInMonth(%s) = %d, expected %d", date, got, expected)
		}
	}
}

func TestDueDates(t *testing.T) {
	start := MustParseTime(DateLayout, "2025-10-31")
	dates := DueDates(start, 4)
	expected := []string{"2025-11-30", "2025-12-31", "2026-01-31", "2026-02-28"}
	if len(dates) != len(expected) {
		t.Fatalf("expected %d dates, got %d", len(expected), len(dates))
	}
	for i, date := range dates {
		if date.Format(DateLayout) != expected[i] {
			t.Errorf("due date %d = %s, expected %s", i+1, date.Format(DateLayout), expected[i])
		}
	}

	if DueDates(start, 0) != nil {
		t.Error("expected nil for zero count")
	}
}

func TestIsOverdue(t *testing.T) {
	due := MustParseTime(DateLayout, "2025-06-10")
	sameDayLater := time.Date(2025, time.June, 10, 18, 30, 0, 0, time.UTC)
	if IsOverdue(due, sameDayLater) {
		t.Error("installment due today should not be overdue")
	}
	if !IsOverdue(due, due.AddDate(0, 0, 1)) {
		t.Error("installment should be overdue the next day")
	}
}
