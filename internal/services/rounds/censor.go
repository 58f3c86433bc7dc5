package rounds

import (
	"regexp"
	"strings"
)

// Patterns that would leak the answer inside a run description. The
// censored placeholder pattern comes last so an already-censored span
// is not censored twice.
var timePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b\d{1,2}:\d{2}:\d{2}\.\d{1,3}\b`), // h:mm:ss.mmm
	regexp.MustCompile(`\b\d{1,2}:\d{2}:\d{2}\b`),          // h:mm:ss
	regexp.MustCompile(`\b\d{1,2}:\d{2}\.\d{1,3}\b`),       // m:ss.mmm
	regexp.MustCompile(`\b\d{1,2}:\d{2}\b`),                // m:ss
	regexp.MustCompile(`\b\d{1,2}\.\d{2}\b`),               // m.ss
}

// modNote strips moderator annotations appended to descriptions
var modNote = regexp.MustCompile(`(?is)mod\s*(note|message):.*`)

const censoredMark = "~~__**CENSORED**__~~"

// CleanDescription removes moderator notes and surrounding whitespace
// from a run description
func CleanDescription(description string) string {
	if description == "" {
		return "No description available."
	}
	cleaned := modNote.ReplaceAllString(description, "")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return "No description available."
	}
	return cleaned
}

// CensorTimes replaces anything clock-shaped in a description so the
// prompt cannot give the answer away
func CensorTimes(description string) string {
	for _, p := range timePatterns {
		description = p.ReplaceAllString(description, censoredMark)
	}
	return description
}
