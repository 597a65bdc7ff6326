package storage

import (
	"fmt"
	"strings"

	"cronjob/pkg/logx"
)

// Open returns the configured store, or (nil, nil) when storage is disabled.
func Open(cfg Config, log logx.Logger) (Store, error) {
	switch driver := strings.ToLower(strings.TrimSpace(cfg.Driver)); driver {
	case "", "none":
		return nil, nil
	case "file":
		return openFile(cfg, log)
	case "sqlite", "sqlite3":
		return openSQLite(cfg, log)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}
