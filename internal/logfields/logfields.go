package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRunID       = "run_id"
	KeyStage       = "stage"
	KeyDurationMS  = "duration_ms"
	KeyPath        = "path"
	KeyURL         = "url"
	KeyCommand     = "command"
	KeyDir         = "dir"
	KeyImportIndex = "import_index"
	KeyImportKind  = "import_kind"
	KeyStatus      = "status"
	KeyCount       = "count"
	KeyStatement   = "statement"
	KeyError       = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func RunID(id string) slog.Attr       { return slog.String(KeyRunID, id) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func URL(u string) slog.Attr          { return slog.String(KeyURL, u) }
func Command(c string) slog.Attr      { return slog.String(KeyCommand, c) }
func Dir(d string) slog.Attr          { return slog.String(KeyDir, d) }
func ImportIndex(i int) slog.Attr     { return slog.Int(KeyImportIndex, i) }
func ImportKind(k string) slog.Attr   { return slog.String(KeyImportKind, k) }
func Status(code int) slog.Attr       { return slog.Int(KeyStatus, code) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func Statement(s string) slog.Attr    { return slog.String(KeyStatement, s) }

// Since reports the elapsed time since start in milliseconds.
func Since(start time.Time) slog.Attr {
	return DurationMS(float64(time.Since(start).Microseconds()) / 1000)
}

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
