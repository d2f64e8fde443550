// Package transcript holds transcript text rules: time-code detection, the
// replace-or-keep decision and the plain-text file format used for import
// and export.
package transcript

import "regexp"

// Time codes only count at the start of a line; a clock time inside a
// sentence is speech, not a marker.
var timestampPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?m)^\s*\[\d{1,2}:\d{2}(:\d{2})?\]`),   // [MM:SS] or [HH:MM:SS]
	regexp.MustCompile(`(?m)^\s*\(\d{1,2}:\d{2}(:\d{2})?\)`),   // (MM:SS)
	regexp.MustCompile(`(?m)^\s*<\d{1,2}:\d{2}(:\d{2})?>`),     // <MM:SS>
	regexp.MustCompile(`(?m)^\s*\d{1,2}:\d{2}(:\d{2})?\s`),     // MM:SS text or HH:MM:SS - text
}

// HasTimestamps reports whether text carries time codes at line starts. It
// is a heuristic over the recognised layouts.
func HasTimestamps(text string) bool {
	for _, p := range timestampPatterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

// ShouldReplace reports whether incoming may overwrite existing. A time-coded
// transcript is never replaced by a plain one.
func ShouldReplace(existing, incoming string) bool {
	return HasTimestamps(incoming) || !HasTimestamps(existing)
}
