package presets

import (
	"testing"

	"cronjob/pkg/cronexpr"
)

func TestPresetsMatchEnglish(t *testing.T) {
	t.Parallel()
	tests := []struct {
		preset string
		phrase string
	}{
		{Every5Sec, "every 5 seconds"},
		{Every10Sec, "every 10 seconds"},
		{Every30Sec, "every 30 seconds"},
		{EveryMin, "every minute"},
		{Every5Min, "every 5 minutes"},
		{Every10Min, "every 10 minutes"},
		{Every30Min, "every 30 minutes"},
		{EveryHour, "every hour"},
		{EveryDay, "every day"},
		{Every1AM, "every day at 1 am"},
		{Every12PM, "every day at 12 pm"},
		{Every11PM, "every day at 11 pm"},
		{Every12AM, "every day at 12 am"},
	}
	for _, tt := range tests {
		got, err := cronexpr.Translate(tt.phrase)
		if err != nil {
			t.Fatalf("Translate(%q) error: %v", tt.phrase, err)
		}
		if got != tt.preset {
			t.Fatalf("Translate(%q) = %q, want preset %q", tt.phrase, got, tt.preset)
		}
	}
}

func TestLookup(t *testing.T) {
	t.Parallel()
	if v, ok := Lookup("every_hour"); !ok || v != EveryHour {
		t.Fatalf("Lookup(every_hour) = %q, %v", v, ok)
	}
	if _, ok := Lookup("every_fortnight"); ok {
		t.Fatal("unexpected preset")
	}
	names := Names()
	if len(names) != len(table) {
		t.Fatalf("Names() len = %d, want %d", len(names), len(table))
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Fatalf("Names() not sorted at %d: %q >= %q", i, names[i-1], names[i])
		}
	}
}
