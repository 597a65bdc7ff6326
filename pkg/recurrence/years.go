package recurrence

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	minYear = 1970
	maxYear = 2100
)

// yearSet is a bitset over minYear..maxYear.
type yearSet [(maxYear - minYear + 64) / 64]uint64

func (s *yearSet) add(y int) {
	i := y - minYear
	s[i/64] |= 1 << (uint(i) % 64)
}

func (s *yearSet) has(y int) bool {
	if y < minYear || y > maxYear {
		return false
	}
	i := y - minYear
	return s[i/64]&(1<<(uint(i)%64)) != 0
}

// next returns the smallest year >= y in the set.
func (s *yearSet) next(y int) (int, bool) {
	if y < minYear {
		y = minYear
	}
	for ; y <= maxYear; y++ {
		if s.has(y) {
			return y, true
		}
	}
	return 0, false
}

func (s *yearSet) empty() bool {
	for _, w := range s {
		if w != 0 {
			return false
		}
	}
	return true
}

func parseYears(field string) (yearSet, error) {
	var s yearSet
	for _, item := range strings.Split(field, ",") {
		base, step, err := splitStep(item)
		if err != nil {
			return s, err
		}
		n := 1
		if step != "" {
			n, _ = strconv.Atoi(step)
		}

		lo, hi := minYear, maxYear
		switch base {
		case "":
			return s, errors.New("empty value")
		case "*":
		default:
			if l, h, isRange := strings.Cut(base, "-"); isRange {
				if lo, err = parseValue(posYear, l); err != nil {
					return s, err
				}
				if hi, err = parseValue(posYear, h); err != nil {
					return s, err
				}
				if lo > hi {
					return s, fmt.Errorf("range %s is reversed", base)
				}
			} else {
				if lo, err = parseValue(posYear, base); err != nil {
					return s, err
				}
				if step == "" {
					hi = lo
				}
			}
		}
		for y := lo; y <= hi; y += n {
			s.add(y)
		}
	}
	if s.empty() {
		return s, errors.New("no years selected")
	}
	return s, nil
}
