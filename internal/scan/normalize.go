package scan

import (
	"regexp"
	"strings"
)

var (
	reDecorative = regexp.MustCompile("[«»“”„‟‘’‚‛`´]")
	reControl    = regexp.MustCompile(`[\x00-\x1f\x7f-\x9f]`)
	reWhitespace = regexp.MustCompile(`\s+`)
	// trailing OCR junk: a pipe separator followed by 1-3 short mixed-case runs
	reTrailJunk = regexp.MustCompile(`\s*\|\s*[A-Za-z]{1,3}(?:\s+[A-Za-z]{1,3}){0,2}\s*$`)
)

// Normalize cleans raw OCR text line by line: decorative quote characters and
// ASCII/Latin-1 control characters are removed, trailing pipe-separated OCR
// artifacts are stripped, and whitespace runs collapse to single spaces.
// Pure and idempotent; always returns a string, possibly empty.
func Normalize(s string) string {
	if s == "" {
		return s
	}
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		out = append(out, cleanLine(line))
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

// CleanValue applies the same per-line cleaning to a single field value.
// The merge policy uses it to defend against model output echoing OCR noise.
func CleanValue(s string) string {
	return cleanLine(s)
}

func cleanLine(line string) string {
	line = reDecorative.ReplaceAllString(line, "")
	line = reControl.ReplaceAllString(line, "")
	// strip repeatedly: removing one artifact tail can expose another
	for {
		trimmed := reTrailJunk.ReplaceAllString(line, "")
		if trimmed == line {
			break
		}
		line = trimmed
	}
	line = reWhitespace.ReplaceAllString(line, " ")
	return strings.TrimSpace(line)
}
