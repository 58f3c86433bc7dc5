package challenge

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// clockLiteral matches M:SS, MM:SS, and H:MM:SS style guesses
var clockLiteral = regexp.MustCompile(`^\d{1,2}(:\d{2}){1,2}$`)

// IsClockLiteral reports whether s (after trimming) looks like a clock
// time
func IsClockLiteral(s string) bool {
	return clockLiteral.MatchString(strings.TrimSpace(s))
}

// ParseClock converts a clock literal into total seconds
func ParseClock(s string) (int64, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	var total int64
	for _, part := range parts {
		n, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid clock literal %q: %w", s, err)
		}
		total = total*60 + n
	}
	return total, nil
}

// FormatClock renders total seconds as M:SS, the canonical form answers
// are compared and announced in
func FormatClock(seconds int64) string {
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// CanonicalChoice normalizes a fixed-choice answer for comparison:
// whitespace trimmed, lower-cased
func CanonicalChoice(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
