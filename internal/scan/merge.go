package scan

import (
	"strings"
)

// Merge combines AI and heuristic extraction results per field: the AI's
// cleaned value wins whenever present, the heuristic fills the gaps, and a
// website-derived roaster-name guess is applied last. Either input may be
// fully empty.
func Merge(ai, heuristic LabelFields) LabelFields {
	var out LabelFields
	for _, acc := range fieldAccessors {
		if v := CleanValue(*acc(&ai)); v != "" {
			*acc(&out) = v
			continue
		}
		if v := *acc(&heuristic); v != "" {
			*acc(&out) = v
		}
	}
	if out.RoasterName == "" && out.RoasterWebsite != "" {
		out.RoasterName = RoasterNameFromWebsite(out.RoasterWebsite)
	}
	return out
}

// RoasterNameFromWebsite derives a last-resort roaster name from the domain
// label of a website. Low confidence: "happygoat.ca" becomes "Happygoat
// Coffee", which may or may not be the real trading name.
func RoasterNameFromWebsite(site string) string {
	s := strings.TrimSpace(site)
	for _, prefix := range []string{"https://", "http://"} {
		if strings.HasPrefix(strings.ToLower(s), prefix) {
			s = s[len(prefix):]
			break
		}
	}
	if strings.HasPrefix(strings.ToLower(s), "www.") {
		s = s[len("www."):]
	}
	if idx := strings.IndexAny(s, "/."); idx >= 0 {
		s = s[:idx]
	}
	if s == "" {
		return ""
	}

	tokens := strings.FieldsFunc(s, func(r rune) bool { return r == '-' || r == '_' })
	for i, t := range tokens {
		tokens[i] = capitalize(strings.ToLower(t))
	}
	name := strings.Join(tokens, " ")
	if name == "" {
		return ""
	}

	lower := strings.ToLower(name)
	if !strings.Contains(lower, "coffee") && !strings.Contains(lower, "roaster") {
		name += " Coffee"
	}
	return name
}

// NormalizeOrigin tidies multi-origin blends: segments are trimmed, empties
// dropped, and the result rejoined with a single comma-space separator.
// Case is preserved.
func NormalizeOrigin(origin string) string {
	parts := strings.Split(origin, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ", ")
}
