package web

import (
	"time"

	"github.com/dustin/go-humanize"
	"github.com/glefebvre/catalog-console/internal/models"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// KindLabel returns "Movie" or "Show"
func KindLabel(kind models.Kind) string {
	return titleCaser.String(string(kind))
}

// RelativeTime formats a timestamp as "3 minutes ago"
func RelativeTime(t time.Time) string {
	if t.IsZero() {
		return "N/A"
	}
	return humanize.Time(t)
}

// Count formats a count with thousands separators
func Count(n int64) string {
	return humanize.Comma(n)
}

// Votes formats an optional vote count
func Votes(n *int64) string {
	if n == nil {
		return "N/A"
	}
	return humanize.Comma(*n)
}
