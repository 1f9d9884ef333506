package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyPassID     = "pass_id"
	KeyDoc        = "doc"
	KeySource     = "source"
	KeyOutput     = "output"
	KeyDocs       = "docs"
	KeyFigures    = "figures"
	KeyImages     = "images"
	KeyCacheHits  = "cache_hits"
	KeyDurationMS = "duration_ms"
	KeyPort       = "port"
	KeySubject    = "subject"
	KeyCount      = "count"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func PassID(id string) slog.Attr       { return slog.String(KeyPassID, id) }
func Doc(path string) slog.Attr        { return slog.String(KeyDoc, path) }
func Source(dir string) slog.Attr      { return slog.String(KeySource, dir) }
func Output(dir string) slog.Attr      { return slog.String(KeyOutput, dir) }
func Docs(n int) slog.Attr             { return slog.Int(KeyDocs, n) }
func Figures(n int) slog.Attr          { return slog.Int(KeyFigures, n) }
func Images(n int) slog.Attr           { return slog.Int(KeyImages, n) }
func CacheHits(n int) slog.Attr        { return slog.Int(KeyCacheHits, n) }
func DurationMS(ms float64) slog.Attr  { return slog.Float64(KeyDurationMS, ms) }
func Port(p int) slog.Attr             { return slog.Int(KeyPort, p) }
func Subject(s string) slog.Attr       { return slog.String(KeySubject, s) }
func Count(n int) slog.Attr            { return slog.Int(KeyCount, n) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
