package view

import (
	"html"
	"time"

	"github.com/dustin/go-humanize"
)

// EscapeHTML escapes text for use in element content and quoted attribute
// values. Empty input stays empty.
func EscapeHTML(s string) string {
	if s == "" {
		return ""
	}
	return html.EscapeString(s)
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp accepts the ISO-8601 shapes the admin API emits. Zone-less
// values are read as local time.
func ParseTimestamp(ts string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		var t time.Time
		var err error
		if layout == time.RFC3339Nano {
			t, err = time.Parse(layout, ts)
		} else {
			t, err = time.ParseInLocation(layout, ts, time.Local)
		}
		if err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatTimestamp renders ts in local time. Empty input gives "-" and
// anything unparseable is returned as is.
func FormatTimestamp(ts string) string {
	if ts == "" {
		return "-"
	}
	t, ok := ParseTimestamp(ts)
	if !ok {
		return ts
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

// RelativeTime renders ts relative to now ("3 minutes ago"), with the same
// fallbacks as FormatTimestamp.
func RelativeTime(ts string, now time.Time) string {
	if ts == "" {
		return "-"
	}
	t, ok := ParseTimestamp(ts)
	if !ok {
		return ts
	}
	return humanize.RelTime(t, now, "ago", "from now")
}
