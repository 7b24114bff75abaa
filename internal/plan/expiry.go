package plan

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

const defaultDurationMonths = 3

var firstNumber = regexp.MustCompile(`\d+`)

// ComputeExpiry derives a plan's expiry from its activation time and a
// human-entered duration string. A duration containing "year" means one
// year; otherwise the first number in the string is a month count,
// defaulting to three months when nothing parses. Pure: same inputs,
// same output.
func ComputeExpiry(activatedAt time.Time, duration string) time.Time {
	if strings.Contains(strings.ToLower(duration), "year") {
		return activatedAt.AddDate(1, 0, 0)
	}

	months := defaultDurationMonths
	if m := firstNumber.FindString(duration); m != "" {
		if n, err := strconv.Atoi(m); err == nil && n > 0 {
			months = n
		}
	}

	return activatedAt.AddDate(0, months, 0)
}

// IsExpired reports whether a plan activated at activatedAt with the given
// duration has lapsed as of now.
func IsExpired(activatedAt time.Time, duration string, now time.Time) bool {
	return now.After(ComputeExpiry(activatedAt, duration))
}
