package cronexpr

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Canonical output always carries seven fields with "?" day-of-week and a
// "*" year, the same shape the preset table uses.

var descriptors = map[string]string{
	"@yearly":   "0 0 0 1 1 ? *",
	"@annually": "0 0 0 1 1 ? *",
	"@monthly":  "0 0 0 1 * ? *",
	"@weekly":   "0 0 0 ? * 1 *",
	"@daily":    "0 0 0 */1 * ? *",
	"@midnight": "0 0 0 */1 * ? *",
	"@hourly":   "0 0 * * * ? *",
}

// Day-of-week numbering: 1 = Sunday ... 7 = Saturday.
var weekdays = map[string]string{
	"sunday": "1", "sun": "1",
	"monday": "2", "mon": "2",
	"tuesday": "3", "tue": "3", "tues": "3",
	"wednesday": "4", "wed": "4",
	"thursday": "5", "thu": "5", "thur": "5", "thurs": "5",
	"friday": "6", "fri": "6",
	"saturday": "7", "sat": "7",
	"weekday": "2-6",
	"weekend": "1,7",
}

var (
	reEveryUnit = regexp.MustCompile(`^every (?:(\d+) )?(second|minute|hour|day)s?$`)
	reDayAt     = regexp.MustCompile(`^every day at (.+)$`)
	reWeekday   = regexp.MustCompile(`^every ([a-z]+?)s?(?: at (.+))?$`)
	reEvery     = regexp.MustCompile(`^@every (\S+)$`)
	reClock     = regexp.MustCompile(`^(\d{1,2})(?::(\d{2}))? ?(am|pm)?$`)
)

// Translate converts a restricted English phrase into canonical cron syntax.
//
// Supported phrases (case-insensitive):
//   - "every second", "every N seconds|minutes|hours|days"
//   - "every minute", "every hour", "every day"
//   - "every day at 9 am", "every day at 9:30 pm", "every day at 21:15",
//     "every day at noon|midnight"
//   - "every monday [at TIME]", "every weekday [at TIME]", "every weekend [at TIME]"
//   - descriptors "@hourly", "@daily", "@weekly", "@monthly", "@yearly", "@every 30s"
func Translate(phrase string) (string, error) {
	s := strings.ToLower(strings.Join(strings.Fields(phrase), " "))
	if s == "" {
		return "", Untranslatable(phrase)
	}

	if c, ok := descriptors[s]; ok {
		return c, nil
	}
	if m := reEvery.FindStringSubmatch(s); m != nil {
		d, err := time.ParseDuration(m[1])
		if err != nil {
			return "", Untranslatable(phrase)
		}
		c, ok := everyDuration(d)
		if !ok {
			return "", Untranslatable(phrase)
		}
		return c, nil
	}
	if m := reEveryUnit.FindStringSubmatch(s); m != nil {
		c, ok := everyUnit(m[1], m[2])
		if !ok {
			return "", Untranslatable(phrase)
		}
		return c, nil
	}
	if m := reDayAt.FindStringSubmatch(s); m != nil {
		h, min, ok := parseClock(m[1])
		if !ok {
			return "", Untranslatable(phrase)
		}
		return fmt.Sprintf("0 %d %d */1 * ? *", min, h), nil
	}
	if m := reWeekday.FindStringSubmatch(s); m != nil {
		dow, ok := weekdays[m[1]]
		if !ok {
			return "", Untranslatable(phrase)
		}
		h, min := 0, 0
		if m[2] != "" {
			if h, min, ok = parseClock(m[2]); !ok {
				return "", Untranslatable(phrase)
			}
		}
		return fmt.Sprintf("0 %d %d ? * %s *", min, h, dow), nil
	}
	return "", Untranslatable(phrase)
}

func everyUnit(count, unit string) (string, bool) {
	n := -1
	if count != "" {
		v, err := strconv.Atoi(count)
		if err != nil {
			return "", false
		}
		n = v
	}
	switch unit {
	case "second":
		if n < 0 {
			return "* * * * * ? *", true
		}
		if n < 1 || n > 59 {
			return "", false
		}
		return fmt.Sprintf("0/%d * * * * ? *", n), true
	case "minute":
		if n < 0 {
			return "0 * * * * ? *", true
		}
		if n < 1 || n > 59 {
			return "", false
		}
		return fmt.Sprintf("0 0/%d * * * ? *", n), true
	case "hour":
		if n < 0 {
			return "0 0 * * * ? *", true
		}
		if n < 1 || n > 23 {
			return "", false
		}
		return fmt.Sprintf("0 0 0/%d * * ? *", n), true
	case "day":
		if n < 0 {
			n = 1
		}
		if n < 1 || n > 31 {
			return "", false
		}
		return fmt.Sprintf("0 0 0 */%d * ? *", n), true
	}
	return "", false
}

// everyDuration maps "@every d" onto a step expression. Only durations that
// a single step field can express are accepted.
func everyDuration(d time.Duration) (string, bool) {
	switch {
	case d <= 0 || d%time.Second != 0:
		return "", false
	case d < time.Minute:
		return fmt.Sprintf("0/%d * * * * ? *", int(d/time.Second)), true
	case d%time.Minute == 0 && d < time.Hour:
		return fmt.Sprintf("0 0/%d * * * ? *", int(d/time.Minute)), true
	case d%time.Hour == 0 && d < 24*time.Hour:
		return fmt.Sprintf("0 0 0/%d * * ? *", int(d/time.Hour)), true
	}
	return "", false
}

// parseClock accepts "9", "9 am", "9:30pm", "21:15", "noon", "midnight".
func parseClock(s string) (hour, minute int, ok bool) {
	switch s {
	case "noon":
		return 12, 0, true
	case "midnight":
		return 0, 0, true
	}
	m := reClock.FindStringSubmatch(s)
	if m == nil {
		return 0, 0, false
	}
	h, _ := strconv.Atoi(m[1])
	if m[2] != "" {
		minute, _ = strconv.Atoi(m[2])
	}
	if minute > 59 {
		return 0, 0, false
	}
	switch m[3] {
	case "":
		if h > 23 {
			return 0, 0, false
		}
	case "am", "pm":
		if h < 1 || h > 12 {
			return 0, 0, false
		}
		h %= 12
		if m[3] == "pm" {
			h += 12
		}
	}
	return h, minute, true
}
