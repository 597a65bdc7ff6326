// Package presets is a lookup table of commonly used canonical cron strings.
//
// The trigger core never consults this table; it exists for callers (config
// files, CLIs) that prefer a name over an expression.
package presets

import "sort"

const (
	Every5Sec  = "0/5 * * * * ? *"
	Every10Sec = "0/10 * * * * ? *"
	Every30Sec = "0/30 * * * * ? *"
	EveryMin   = "0 * * * * ? *"
	Every5Min  = "0 0/5 * * * ? *"
	Every10Min = "0 0/10 * * * ? *"
	Every30Min = "0 0/30 * * * ? *"
	EveryHour  = "0 0 * * * ? *"
	EveryDay   = "0 0 0 */1 * ? *"

	Every1AM  = "0 0 1 */1 * ? *"
	Every2AM  = "0 0 2 */1 * ? *"
	Every3AM  = "0 0 3 */1 * ? *"
	Every4AM  = "0 0 4 */1 * ? *"
	Every5AM  = "0 0 5 */1 * ? *"
	Every6AM  = "0 0 6 */1 * ? *"
	Every7AM  = "0 0 7 */1 * ? *"
	Every8AM  = "0 0 8 */1 * ? *"
	Every9AM  = "0 0 9 */1 * ? *"
	Every10AM = "0 0 10 */1 * ? *"
	Every11AM = "0 0 11 */1 * ? *"
	Every12PM = "0 0 12 */1 * ? *"
	Every1PM  = "0 0 13 */1 * ? *"
	Every2PM  = "0 0 14 */1 * ? *"
	Every3PM  = "0 0 15 */1 * ? *"
	Every4PM  = "0 0 16 */1 * ? *"
	Every5PM  = "0 0 17 */1 * ? *"
	Every6PM  = "0 0 18 */1 * ? *"
	Every7PM  = "0 0 19 */1 * ? *"
	Every8PM  = "0 0 20 */1 * ? *"
	Every9PM  = "0 0 21 */1 * ? *"
	Every10PM = "0 0 22 */1 * ? *"
	Every11PM = "0 0 23 */1 * ? *"
	Every12AM = "0 0 0 */1 * ? *"
)

var table = map[string]string{
	"every_5_sec":  Every5Sec,
	"every_10_sec": Every10Sec,
	"every_30_sec": Every30Sec,
	"every_min":    EveryMin,
	"every_5_min":  Every5Min,
	"every_10_min": Every10Min,
	"every_30_min": Every30Min,
	"every_hour":   EveryHour,
	"every_day":    EveryDay,
	"every_1_am":   Every1AM,
	"every_2_am":   Every2AM,
	"every_3_am":   Every3AM,
	"every_4_am":   Every4AM,
	"every_5_am":   Every5AM,
	"every_6_am":   Every6AM,
	"every_7_am":   Every7AM,
	"every_8_am":   Every8AM,
	"every_9_am":   Every9AM,
	"every_10_am":  Every10AM,
	"every_11_am":  Every11AM,
	"every_12_pm":  Every12PM,
	"every_1_pm":   Every1PM,
	"every_2_pm":   Every2PM,
	"every_3_pm":   Every3PM,
	"every_4_pm":   Every4PM,
	"every_5_pm":   Every5PM,
	"every_6_pm":   Every6PM,
	"every_7_pm":   Every7PM,
	"every_8_pm":   Every8PM,
	"every_9_pm":   Every9PM,
	"every_10_pm":  Every10PM,
	"every_11_pm":  Every11PM,
	"every_12_am":  Every12AM,
}

// Lookup returns the canonical expression registered under name.
func Lookup(name string) (string, bool) {
	v, ok := table[name]
	return v, ok
}

// Names returns all preset names, sorted.
func Names() []string {
	out := make([]string, 0, len(table))
	for k := range table {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
