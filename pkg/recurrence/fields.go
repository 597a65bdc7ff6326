package recurrence

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"cronjob/pkg/cronexpr"
)

const (
	posSecond = iota
	posMinute
	posHour
	posDom
	posMonth
	posDow
	posYear
)

type bounds struct{ min, max int }

var fieldNames = [...]string{"second", "minute", "hour", "day-of-month", "month", "day-of-week", "year"}

var fieldBounds = [...]bounds{
	{0, 59},
	{0, 59},
	{0, 23},
	{1, 31},
	{1, 12},
	{1, 7},
	{1970, 2100},
}

var monthNames = map[string]int{
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "may": 5, "jun": 6,
	"jul": 7, "aug": 8, "sep": 9, "oct": 10, "nov": 11, "dec": 12,
}

// 1 = Sunday, matching the numeric day-of-week range.
var dowNames = map[string]int{
	"sun": 1, "mon": 2, "tue": 3, "wed": 4, "thu": 5, "fri": 6, "sat": 7,
}

// spec is a validated expression split into backend-ready parts.
//
// six holds the first six fields rewritten for a 0-6 (Sunday=0) day-of-week
// backend: names become numbers, "?" becomes "*", "a/n" becomes "a-max/n".
// The year field is never handed to a backend; it is enforced by years.
//
// Both backends treat a restricted day-of-month plus a restricted
// day-of-week as "either matches". days is set only in that case and
// requires both.
type spec struct {
	six   [6]string
	years yearSet
	days  *dayFilter
}

// dayFilter holds the allowed days of month (bits 1-31) and days of week
// (bits 0-6, Sunday = 0).
type dayFilter struct {
	dom uint32
	dow uint8
}

func (d *dayFilter) match(t time.Time) bool {
	return d.dom&(1<<t.Day()) != 0 && d.dow&(1<<t.Weekday()) != 0
}

func newDayFilter(dom, dow string) *dayFilter {
	if dom == "*" || dow == "*" {
		return nil
	}
	return &dayFilter{
		dom: uint32(expandField(dom, 1, 31)),
		dow: uint8(expandField(dow, 0, 6)),
	}
}

// expandField turns an adapted field back into a bit set. Adapted fields
// are numeric and already validated.
func expandField(field string, lo, hi int) uint64 {
	var set uint64
	for _, item := range strings.Split(field, ",") {
		base, step, _ := strings.Cut(item, "/")
		n := 1
		if step != "" {
			n, _ = strconv.Atoi(step)
		}
		a, b := lo, hi
		if base != "*" {
			l, h, isRange := strings.Cut(base, "-")
			a, _ = strconv.Atoi(l)
			b = a
			if isRange {
				b, _ = strconv.Atoi(h)
			}
		}
		for v := a; v <= b; v += n {
			set |= 1 << v
		}
	}
	return set
}

func (s spec) sixFields() string { return strings.Join(s.six[:], " ") }

func parseSpec(expr string) (spec, error) {
	parts := strings.Fields(expr)
	if len(parts) != 6 && len(parts) != 7 {
		return spec{}, cronexpr.InvalidSyntax(expr, "", fmt.Errorf("expected 6 or 7 fields, got %d", len(parts)))
	}

	var out spec
	for pos := posSecond; pos <= posDow; pos++ {
		f, err := adaptField(pos, parts[pos])
		if err != nil {
			return spec{}, cronexpr.InvalidSyntax(expr, fieldNames[pos], err)
		}
		out.six[pos] = f
	}

	yearField := "*"
	if len(parts) == 7 {
		yearField = parts[posYear]
	}
	ys, err := parseYears(yearField)
	if err != nil {
		return spec{}, cronexpr.InvalidSyntax(expr, fieldNames[posYear], err)
	}
	out.years = ys
	out.days = newDayFilter(out.six[posDom], out.six[posDow])
	return out, nil
}

func adaptField(pos int, field string) (string, error) {
	items := strings.Split(field, ",")
	out := make([]string, 0, len(items))
	for _, item := range items {
		a, err := adaptItem(pos, item)
		if err != nil {
			return "", err
		}
		out = append(out, a)
	}
	return strings.Join(out, ","), nil
}

// adaptItem handles one comma-separated item: "*", "?", "v", "a-b", each
// optionally followed by "/step".
func adaptItem(pos int, item string) (string, error) {
	b := fieldBounds[pos]
	base, step, err := splitStep(item)
	if err != nil {
		return "", err
	}

	switch base {
	case "":
		return "", errors.New("empty value")
	case "?":
		if pos != posDom && pos != posDow {
			return "", errors.New("'?' is only allowed in day fields")
		}
		if step != "" {
			return "", errors.New("'?' cannot take a step")
		}
		return "*", nil
	case "*":
		if step == "" {
			return "*", nil
		}
		return "*/" + step, nil
	}

	lo, hi := 0, 0
	if l, h, isRange := strings.Cut(base, "-"); isRange {
		if lo, err = parseValue(pos, l); err != nil {
			return "", err
		}
		if hi, err = parseValue(pos, h); err != nil {
			return "", err
		}
		if lo > hi {
			return "", fmt.Errorf("range %s is reversed", base)
		}
	} else {
		if lo, err = parseValue(pos, base); err != nil {
			return "", err
		}
		hi = lo
		if step != "" {
			hi = b.max
		}
	}

	if pos == posDow {
		lo--
		hi--
	}
	s := strconv.Itoa(lo)
	if hi != lo || step != "" {
		s += "-" + strconv.Itoa(hi)
	}
	if step != "" {
		s += "/" + step
	}
	return s, nil
}

func splitStep(item string) (base, step string, err error) {
	base, step, hasStep := strings.Cut(item, "/")
	if !hasStep {
		return base, "", nil
	}
	n, err := strconv.Atoi(step)
	if !isDigits(step) || err != nil || n < 1 {
		return "", "", fmt.Errorf("invalid step %q", step)
	}
	return base, strconv.Itoa(n), nil
}

func parseValue(pos int, tok string) (int, error) {
	b := fieldBounds[pos]
	low := strings.ToLower(tok)
	switch pos {
	case posMonth:
		if v, ok := monthNames[low]; ok {
			return v, nil
		}
	case posDow:
		if v, ok := dowNames[low]; ok {
			return v, nil
		}
	}
	v, err := strconv.Atoi(tok)
	if !isDigits(tok) || err != nil {
		return 0, fmt.Errorf("invalid value %q", tok)
	}
	if v < b.min || v > b.max {
		return 0, fmt.Errorf("value %d out of range %d-%d", v, b.min, b.max)
	}
	return v, nil
}

// isDigits reports whether tok is a non-empty run of ASCII digits. Atoi alone
// would also take a leading sign.
func isDigits(tok string) bool {
	if tok == "" {
		return false
	}
	for i := 0; i < len(tok); i++ {
		if tok[i] < '0' || tok[i] > '9' {
			return false
		}
	}
	return true
}
