package cronexpr

import (
	"errors"
	"testing"
)

func TestTranslatePhrases(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   string
		want string
	}{
		{"every second", "* * * * * ? *"},
		{"every 1 second", "0/1 * * * * ? *"},
		{"every 5 seconds", "0/5 * * * * ? *"},
		{"Every 30 Seconds", "0/30 * * * * ? *"},
		{"every minute", "0 * * * * ? *"},
		{"every 1 minute", "0 0/1 * * * ? *"},
		{"every 10 minutes", "0 0/10 * * * ? *"},
		{"every hour", "0 0 * * * ? *"},
		{"every 2 hours", "0 0 0/2 * * ? *"},
		{"every day", "0 0 0 */1 * ? *"},
		{"every 3 days", "0 0 0 */3 * ? *"},
		{"every day at 1 am", "0 0 1 */1 * ? *"},
		{"every day at 12 am", "0 0 0 */1 * ? *"},
		{"every day at 12 pm", "0 0 12 */1 * ? *"},
		{"every day at 11pm", "0 0 23 */1 * ? *"},
		{"every day at 9:30 pm", "0 30 21 */1 * ? *"},
		{"every day at 21:15", "0 15 21 */1 * ? *"},
		{"every day at noon", "0 0 12 */1 * ? *"},
		{"every day at midnight", "0 0 0 */1 * ? *"},
		{"every monday", "0 0 0 ? * 2 *"},
		{"every Friday at 5 pm", "0 0 17 ? * 6 *"},
		{"every tues at 07:45", "0 45 7 ? * 3 *"},
		{"every weekday at 9 am", "0 0 9 ? * 2-6 *"},
		{"every weekend", "0 0 0 ? * 1,7 *"},
		{"  every   5   seconds  ", "0/5 * * * * ? *"},
		{"@hourly", "0 0 * * * ? *"},
		{"@daily", "0 0 0 */1 * ? *"},
		{"@weekly", "0 0 0 ? * 1 *"},
		{"@monthly", "0 0 0 1 * ? *"},
		{"@yearly", "0 0 0 1 1 ? *"},
		{"@every 15s", "0/15 * * * * ? *"},
		{"@every 5m", "0 0/5 * * * ? *"},
		{"@every 6h", "0 0 0/6 * * ? *"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := Translate(tt.in)
			if err != nil {
				t.Fatalf("Translate(%q) error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Fatalf("Translate(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestTranslateRejects(t *testing.T) {
	t.Parallel()
	bad := []string{
		"",
		"not a real schedule",
		"invalid cron expression",
		"every 0 seconds",
		"every 60 seconds",
		"every 24 hours",
		"every day at 13 pm",
		"every day at 25:00",
		"every day at 9:75",
		"every fortnight",
		"@every 90s",
		"@every 1500ms",
		"@every soon",
		"@reboot",
	}
	for _, in := range bad {
		_, err := Translate(in)
		if err == nil {
			t.Fatalf("Translate(%q) expected error", in)
		}
		if !errors.Is(err, ErrUntranslatable) {
			t.Fatalf("Translate(%q) error = %v, want ErrUntranslatable", in, err)
		}
		if errors.Is(err, ErrInvalidSyntax) {
			t.Fatalf("Translate(%q) error must not match ErrInvalidSyntax", in)
		}
	}
}

func TestParseClock(t *testing.T) {
	t.Parallel()
	h, m, ok := parseClock("7:05 am")
	if !ok || h != 7 || m != 5 {
		t.Fatalf("parseClock = %d:%d ok=%v", h, m, ok)
	}
	if _, _, ok := parseClock("0 am"); ok {
		t.Fatal("expected 0 am to be rejected")
	}
	if h, _, ok := parseClock("0"); !ok || h != 0 {
		t.Fatalf("expected bare 0 to mean midnight, got %d ok=%v", h, ok)
	}
}
