package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"cronjob/pkg/logx"
)

func TestOpenDisabled(t *testing.T) {
	t.Parallel()
	for _, d := range []string{"", "none", " NONE "} {
		st, err := Open(Config{Driver: d}, logx.Nop())
		if err != nil || st != nil {
			t.Fatalf("Open(%q) = %v, %v", d, st, err)
		}
	}
	if _, err := Open(Config{Driver: "redis"}, logx.Nop()); err == nil {
		t.Fatal("expected unknown driver error")
	}
	if _, err := Open(Config{Driver: "file"}, logx.Nop()); err == nil {
		t.Fatal("expected missing path error")
	}
}

func TestStores(t *testing.T) {
	t.Parallel()
	for _, driver := range []string{"file", "sqlite"} {
		t.Run(driver, func(t *testing.T) {
			t.Parallel()
			path := filepath.Join(t.TempDir(), "hist", "cronjob.db")
			st, err := Open(Config{Driver: driver, Path: path, BusyTimeout: time.Second}, logx.Nop())
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			ctx := context.Background()
			base := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
			for i := 0; i < 5; i++ {
				timer := "a"
				if i%2 == 1 {
					timer = "b"
				}
				f := Firing{
					Timer:      timer,
					Expression: "* * * * * ? *",
					Occurrence: base.Add(time.Duration(i) * time.Second),
					At:         base.Add(time.Duration(i)*time.Second + 5*time.Millisecond),
					Action:     "log",
					OK:         i != 4,
					TookMS:     int64(i),
				}
				if i == 4 {
					f.Error = "exit status 1"
				}
				if err := st.AppendFiring(ctx, f); err != nil {
					t.Fatalf("AppendFiring: %v", err)
				}
			}

			all, err := st.RecentFirings(ctx, "", 10)
			if err != nil || len(all) != 5 {
				t.Fatalf("RecentFirings(all) = %d, %v", len(all), err)
			}
			newest := all[0]
			if newest.Timer != "a" || newest.OK || newest.Error != "exit status 1" || newest.TookMS != 4 {
				t.Fatalf("newest = %+v", newest)
			}
			if !newest.Occurrence.Equal(base.Add(4 * time.Second)) {
				t.Fatalf("occurrence = %v", newest.Occurrence)
			}

			a, err := st.RecentFirings(ctx, "a", 2)
			if err != nil || len(a) != 2 {
				t.Fatalf("RecentFirings(a, 2) = %d, %v", len(a), err)
			}
			if a[0].TookMS != 4 || a[1].TookMS != 2 {
				t.Fatalf("order = %d, %d", a[0].TookMS, a[1].TookMS)
			}
			if none, _ := st.RecentFirings(ctx, "zzz", 3); len(none) != 0 {
				t.Fatalf("unknown timer returned %d", len(none))
			}

			if err := st.Close(); err != nil {
				t.Fatalf("Close: %v", err)
			}
			// History survives a reopen.
			st, err = Open(Config{Driver: driver, Path: path}, logx.Nop())
			if err != nil {
				t.Fatalf("reopen: %v", err)
			}
			defer st.Close()
			if got, _ := st.RecentFirings(ctx, "b", 10); len(got) != 2 {
				t.Fatalf("after reopen b has %d firings", len(got))
			}
		})
	}
}

func TestFileStoreSkipsTornLine(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "h.log")
	st, err := Open(Config{Driver: "file", Path: path}, logx.Nop())
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()
	ctx := context.Background()
	if err := st.AppendFiring(ctx, Firing{Timer: "x", OK: true}); err != nil {
		t.Fatal(err)
	}
	f, err := os.OpenFile(filepath.Join(filepath.Dir(path), "h.firings.jsonl"), os.O_APPEND|os.O_WRONLY, 0)
	if err != nil {
		t.Fatal(err)
	}
	_, _ = f.WriteString(`{"timer":"x","ok`)
	_ = f.Close()

	got, err := st.RecentFirings(ctx, "x", 5)
	if err != nil || len(got) != 1 {
		t.Fatalf("RecentFirings = %d, %v", len(got), err)
	}
}

func TestFileStoreClosed(t *testing.T) {
	t.Parallel()
	st, err := Open(Config{Driver: "file", Path: filepath.Join(t.TempDir(), "h")}, logx.Nop())
	if err != nil {
		t.Fatal(err)
	}
	_ = st.Close()
	if err := st.AppendFiring(context.Background(), Firing{}); !errors.Is(err, ErrClosed) {
		t.Fatalf("AppendFiring after Close = %v", err)
	}
}
