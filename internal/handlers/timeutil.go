package handlers

import (
	"strings"
	"time"

	"github.com/floorwarden/warden/internal/config"
)

// Export timestamps, e.g. "2026-10-19 14:05", in the configured timezone
func fmtDateTime(t time.Time) string {
	return t.In(config.Location()).Format("2006-01-02 15:04")
}

func fullName(first, last string) string {
	return strings.TrimSpace(first + " " + last)
}
