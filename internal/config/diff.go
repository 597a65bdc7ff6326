package config

import (
	"reflect"
	"sort"
	"strings"

	"cronjob/pkg/logx"
)

// SummarizeChange lists the top-level sections that differ between two
// configs, plus log fields describing the new values. Secrets are never
// included.
func SummarizeChange(oldCfg, newCfg *Config) ([]string, []logx.Field) {
	if oldCfg == nil {
		oldCfg = &Config{}
	}
	if newCfg == nil {
		newCfg = &Config{}
	}
	var changed []string
	var fields []logx.Field

	if oldCfg.Logging != newCfg.Logging {
		changed = append(changed, "logging")
		fields = append(fields,
			logx.String("logging.level", newCfg.Logging.Level),
			logx.Bool("logging.file", newCfg.Logging.File.Enabled),
			logx.Bool("logging.forward", newCfg.Logging.Forward.Enabled),
		)
	}
	if oldCfg.Loop != newCfg.Loop {
		changed = append(changed, "loop")
		fields = append(fields,
			logx.String("loop.interval", newCfg.Loop.Interval),
			logx.String("loop.timezone", newCfg.Loop.Timezone),
			logx.String("loop.engine", newCfg.Loop.Engine),
		)
	}
	if oldCfg.StorageDriver() != newCfg.StorageDriver() || !reflect.DeepEqual(oldCfg.Storage, newCfg.Storage) {
		changed = append(changed, "storage")
		fields = append(fields, logx.String("storage.driver", newCfg.StorageDriver()))
	}
	if !reflect.DeepEqual(oldCfg.Telegram, newCfg.Telegram) {
		changed = append(changed, "telegram")
		set := newCfg.Telegram != nil && strings.TrimSpace(newCfg.Telegram.Token) != ""
		fields = append(fields, logx.Bool("telegram.token_set", set))
	}
	if jobs := diffJobs(oldCfg.Jobs, newCfg.Jobs); len(jobs) > 0 {
		changed = append(changed, "jobs")
		fields = append(fields, logx.Strings("jobs.changed", jobs), logx.Int("jobs.count", len(newCfg.Jobs)))
	}
	sort.Strings(changed)
	return changed, fields
}

// diffJobs returns the sorted names of jobs added, removed or modified.
func diffJobs(oldJobs, newJobs []JobConfig) []string {
	index := func(js []JobConfig) map[string]JobConfig {
		m := make(map[string]JobConfig, len(js))
		for _, j := range js {
			m[strings.TrimSpace(j.Name)] = j
		}
		return m
	}
	o, n := index(oldJobs), index(newJobs)
	var out []string
	for name, nj := range n {
		if oj, ok := o[name]; !ok || oj != nj {
			out = append(out, name)
		}
	}
	for name := range o {
		if _, ok := n[name]; !ok {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}
