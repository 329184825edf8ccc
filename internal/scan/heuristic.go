package scan

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/beanvault/coffee-journal/constants"
)

// Closed vocabularies for keyword fallbacks. Matching is case-insensitive;
// the canonical casing stored here is what ends up in the field value.
var (
	originCountries = []string{
		"Ethiopia", "Kenya", "Colombia", "Brazil", "Guatemala", "Costa Rica",
		"Honduras", "El Salvador", "Nicaragua", "Panama", "Peru", "Bolivia",
		"Ecuador", "Mexico", "Rwanda", "Burundi", "Tanzania", "Uganda",
		"Indonesia", "Yemen", "Vietnam", "India",
	}

	varietalNames = []string{
		"Gesha", "Geisha", "Bourbon", "Pink Bourbon", "Yellow Bourbon",
		"Typica", "Caturra", "Catuai", "Pacamara", "Maragogipe", "Mundo Novo",
		"Castillo", "SL28", "SL34", "Heirloom", "Sidra",
	}

	flavorDescriptors = []string{
		"blueberry", "strawberry", "raspberry", "blackberry", "cherry",
		"apricot", "peach", "plum", "apple", "pear", "grape", "currant",
		"fig", "raisin", "citrus", "lemon", "lime", "orange", "grapefruit",
		"bergamot", "mango", "pineapple", "melon", "jasmine", "rose",
		"lavender", "floral", "honey", "caramel", "toffee", "butterscotch",
		"chocolate", "cocoa", "vanilla", "almond", "hazelnut", "molasses",
		"winey",
	}

	maxFlavorMatches = 5
)

// processKeywords maps each canonical category in constants.ProcessMethods
// onto the label keywords that imply it. Categories are evaluated in
// constants.ProcessMethods order; the first matching category wins.
var processKeywords = map[string][]string{
	"Washed":    {"washed", "wet"},
	"Natural":   {"natural", "dry"},
	"Honey":     {"honey process", "pulped natural", "honey"},
	"Anaerobic": {"anaerobic"},
}

// labeledRule spots explicit "LABEL: value" lines. Rules are independent and
// evaluated in order; the first match per field wins.
type labeledRule struct {
	re  *regexp.Regexp
	set func(*LabelFields, string)
}

func labelPattern(label string) *regexp.Regexp {
	// optional colon or whitespace separator, value runs to end of line
	return regexp.MustCompile(fmt.Sprintf(`(?im)\b%s\b\s*[:\s]\s*([^\n]+)$`, label))
}

var labeledRules = []labeledRule{
	{labelPattern(`FARM`), func(f *LabelFields, v string) { f.Farm = v }},
	{labelPattern(`ORIGIN`), func(f *LabelFields, v string) { f.Origin = v }},
	{labelPattern(`VARIET(?:Y|AL)`), func(f *LabelFields, v string) { f.Variety = v }},
	{labelPattern(`PROCESS(?:ING)?`), func(f *LabelFields, v string) { f.ProcessMethod = v }},
	{labelPattern(`FLAVOU?RS?(?:\s+NOTES)?`), func(f *LabelFields, v string) { f.FlavorNotes = v }},
	{labelPattern(`ROAST(?:ED)?(?:\s+(?:DATE|ON))?`), func(f *LabelFields, v string) {
		// "ROAST LEVEL: Medium" also matches the bare ROAST label; that line
		// describes the roast level, not a date.
		if strings.HasPrefix(strings.ToLower(v), "level") {
			return
		}
		f.RoastDate = v
	}},
}

var (
	reRoasterCandidate = regexp.MustCompile(`(?:[A-Z][\w&'’.-]*\s+){1,5}(?:Coffee|Roasters)\b`)
	reCapWord          = regexp.MustCompile(`(?:^|\s)[A-Z][\w&'’.-]*`)
	reLabelWord        = regexp.MustCompile(`(?i)\b(?:farm|origin|variety|varietal|process|flavou?rs?|roasted?)\b\s*:`)

	reWebsite = regexp.MustCompile(`(?i)\b(?:https?://)?(?:www\.)?[a-z0-9][a-z0-9-]*(?:\.[a-z0-9-]+)*\.[a-z]{2,}(?:/[^\s]*)?`)

	reDateTextual = regexp.MustCompile(`(?i)\b(?:Jan(?:uary)?|Feb(?:ruary)?|Mar(?:ch)?|Apr(?:il)?|May|Jun(?:e)?|Jul(?:y)?|Aug(?:ust)?|Sep(?:t(?:ember)?)?|Oct(?:ober)?|Nov(?:ember)?|Dec(?:ember)?)\.?\s+\d{1,2}(?:st|nd|rd|th)?,?\s+\d{4}\b`)
	reDateDMY     = regexp.MustCompile(`\b\d{1,2}[/-]\d{1,2}[/-]\d{2,4}\b`)
	reDateYMD     = regexp.MustCompile(`\b\d{4}[/-]\d{1,2}[/-]\d{1,2}\b`)
)

// fillerPrefixes disqualify roaster-name candidates that start mid-phrase.
var fillerPrefixes = map[string]struct{}{
	"roasted": {}, "locally": {}, "the": {}, "this": {}, "our": {},
	"your": {}, "a": {}, "an": {}, "by": {}, "from": {}, "with": {},
	"for": {}, "and": {}, "fresh": {},
}

// lineBlacklist disqualifies fallback roaster-name lines that look like
// field labels or packaging boilerplate.
var lineBlacklist = []string{
	"farm", "origin", "variety", "varietal", "process", "flavor", "flavour",
	"roast", "notes", "net", "weight", "oz", "kg", "www", "http",
}

// ExtractHeuristic spots label fields in normalized OCR text using labeled
// patterns first and closed-vocabulary scans as fallback. Best effort: any
// subset of fields may be absent, but a present field is never empty.
func ExtractHeuristic(text string) LabelFields {
	var f LabelFields
	if strings.TrimSpace(text) == "" {
		return f
	}

	for _, rule := range labeledRules {
		if m := rule.re.FindStringSubmatch(text); m != nil {
			if v := CleanValue(m[1]); v != "" {
				rule.set(&f, v)
			}
		}
	}

	if f.Origin == "" {
		f.Origin = firstCountry(text)
	}
	if f.Variety == "" {
		f.Variety = allVarietals(text)
	}
	if f.ProcessMethod == "" {
		f.ProcessMethod = processFromKeywords(text)
	}
	if f.FlavorNotes == "" {
		f.FlavorNotes = flavorsFromKeywords(text)
	}
	if f.RoastDate == "" {
		f.RoastDate = firstDate(text)
	}

	f.RoasterName = findRoasterName(text)
	if site := reWebsite.FindString(text); site != "" {
		f.RoasterWebsite = normalizeWebsite(site)
	}
	return f
}

// firstCountry returns the origin whose first textual occurrence comes
// earliest in the document.
func firstCountry(text string) string {
	lower := strings.ToLower(text)
	best, bestIdx := "", -1
	for _, c := range originCountries {
		if idx := wordIndex(lower, strings.ToLower(c)); idx >= 0 {
			if bestIdx < 0 || idx < bestIdx {
				best, bestIdx = c, idx
			}
		}
	}
	return best
}

// allVarietals joins every varietal found, in vocabulary order.
func allVarietals(text string) string {
	lower := strings.ToLower(text)
	var found []string
	for _, v := range varietalNames {
		if wordIndex(lower, strings.ToLower(v)) >= 0 {
			found = append(found, v)
		}
	}
	return strings.Join(found, ", ")
}

func processFromKeywords(text string) string {
	lower := strings.ToLower(text)
	for _, canonical := range constants.ProcessMethods {
		for _, kw := range processKeywords[canonical] {
			if wordIndex(lower, kw) >= 0 {
				return canonical
			}
		}
	}
	return ""
}

// flavorsFromKeywords joins up to five descriptors found, in vocabulary
// order (not document order), each with its first letter capitalized.
func flavorsFromKeywords(text string) string {
	lower := strings.ToLower(text)
	var found []string
	for _, fl := range flavorDescriptors {
		if wordIndex(lower, fl) >= 0 {
			found = append(found, capitalize(fl))
			if len(found) == maxFlavorMatches {
				break
			}
		}
	}
	return strings.Join(found, ", ")
}

func firstDate(text string) string {
	for _, re := range []*regexp.Regexp{reDateTextual, reDateDMY, reDateYMD} {
		if m := re.FindString(text); m != "" {
			return strings.TrimSpace(m)
		}
	}
	return ""
}

// findRoasterName searches for capitalized phrases ending in "Coffee" or
// "Roasters", applying the exclusion rules, then falls back to scanning the
// first lines for a plausible name line.
func findRoasterName(text string) string {
	for _, loc := range reRoasterCandidate.FindAllStringIndex(text, -1) {
		cand := strings.TrimSpace(text[loc[0]:loc[1]])
		if loc[0] > 0 {
			prev := rune(text[loc[0]-1])
			if unicode.IsLower(prev) {
				continue // mid-sentence false positive
			}
		}
		if roasterCandidateOK(cand) {
			return cand
		}
	}

	lines := strings.Split(text, "\n")
	if len(lines) > 10 {
		lines = lines[:10]
	}
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if fallbackLineOK(line) {
			return line
		}
	}
	return ""
}

func roasterCandidateOK(cand string) bool {
	if len(cand) < 6 || len(cand) > 59 {
		return false
	}
	if hasFillerPrefix(cand) {
		return false
	}
	if reLabelWord.MatchString(cand) {
		return false
	}
	return capWordCount(cand) >= 2
}

func fallbackLineOK(line string) bool {
	if len(line) < 5 || len(line) > 50 {
		return false
	}
	first := rune(line[0])
	if !unicode.IsUpper(first) {
		return false
	}
	if hasFillerPrefix(line) {
		return false
	}
	lower := strings.ToLower(line)
	for _, w := range lineBlacklist {
		if wordIndex(lower, w) >= 0 {
			return false
		}
	}
	return capWordCount(line) >= 2
}

func hasFillerPrefix(s string) bool {
	first, _, _ := strings.Cut(s, " ")
	_, bad := fillerPrefixes[strings.ToLower(first)]
	return bad
}

func capWordCount(s string) int {
	return len(reCapWord.FindAllString(s, -1))
}

// normalizeWebsite prepends https:// when the match carried no scheme.
func normalizeWebsite(site string) string {
	lower := strings.ToLower(site)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return site
	}
	return "https://" + site
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// wordIndex finds needle in haystack at word boundaries; -1 when absent.
func wordIndex(haystack, needle string) int {
	from := 0
	for {
		idx := strings.Index(haystack[from:], needle)
		if idx < 0 {
			return -1
		}
		idx += from
		end := idx + len(needle)
		beforeOK := idx == 0 || !isWordByte(haystack[idx-1])
		afterOK := end == len(haystack) || !isWordByte(haystack[end])
		if beforeOK && afterOK {
			return idx
		}
		from = idx + 1
	}
}

func isWordByte(b byte) bool {
	return b == '_' ||
		(b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}
