package llm

import (
	"strings"

	"github.com/beanvault/coffee-journal/constants"
)

// SchemaVersion tags the label field schema. Bump when the field set or a
// field's wire format changes.
const SchemaVersion = "v1"

// fieldSpec describes one extractable field. The prompt text and the JSON
// schema are both generated from this table so they cannot drift apart.
type fieldSpec struct {
	Key   string
	Desc  string
	Array bool
}

var labelFieldSpecs = []fieldSpec{
	{Key: constants.FieldRoasterName, Desc: "the roasting company's name as printed"},
	{Key: constants.FieldRoasterWebsite, Desc: "the roaster's website or domain, if printed"},
	{Key: constants.FieldRoasterLocation, Desc: "city/region/country of the roaster; a country-code TLD on the website (e.g. .ca, .com.au) may hint at the country"},
	{Key: constants.FieldRoasterAddress, Desc: "street address of the roaster, if printed"},
	{Key: constants.FieldFarm, Desc: "farm, estate, washing station, or cooperative"},
	{Key: constants.FieldOrigin, Desc: "producing country or countries; for blends list countries comma-separated"},
	{Key: constants.FieldVariety, Desc: "coffee varietal(s), e.g. Bourbon, Gesha, SL28"},
	{Key: constants.FieldProcessMethod, Desc: "processing method, e.g. Washed, Natural, Honey, Anaerobic"},
	{Key: constants.FieldRoastLevel, Desc: "roast level, e.g. Light, Medium, Dark"},
	{Key: constants.FieldRoastDate, Desc: "roast date; prefer YYYY-MM-DD, otherwise keep exactly as printed"},
	{Key: constants.FieldFlavorNotes, Desc: "tasting notes as an array of short strings", Array: true},
}

// BuildSystemPrompt establishes the extraction task and formatting rules.
func BuildSystemPrompt() string {
	parts := []string{
		"You are a specialty-coffee label parser. You receive OCR text from a photographed coffee bag and return ONLY a JSON object with the extracted fields.",
		"Output clean human-readable text only: no OCR artifacts, no surrounding quotes, no markdown.",
		"Use the exact field keys you are given. If a field is not present on the label, omit it entirely.",
		"Never output null or empty strings.",
		"Dates: prefer ISO-8601 (YYYY-MM-DD); if the printed date is ambiguous, keep it as printed.",
	}
	return strings.Join(parts, " ")
}

// BuildUserPrompt embeds the label text and the field-by-field specification.
func BuildUserPrompt(text string) string {
	var b strings.Builder
	b.WriteString("Extract these fields from the coffee bag label text below (schema ")
	b.WriteString(SchemaVersion)
	b.WriteString("):\n")
	for _, fs := range labelFieldSpecs {
		b.WriteString("- ")
		b.WriteString(fs.Key)
		if fs.Array {
			b.WriteString(" (array of strings)")
		}
		b.WriteString(": ")
		b.WriteString(fs.Desc)
		b.WriteString("\n")
	}
	b.WriteString("\nLabel text:\n")
	b.WriteString(text)
	b.WriteString("\n\nReturn ONLY JSON.")
	return b.String()
}

// BuildLabelJSONSchema returns the label schema (draft 2020-12 subset) as a
// generic map. Used both to instruct the model and to validate its output.
func BuildLabelJSONSchema() map[string]any {
	props := make(map[string]any, len(labelFieldSpecs))
	for _, fs := range labelFieldSpecs {
		if fs.Array {
			props[fs.Key] = map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string", "minLength": 1},
			}
			continue
		}
		props[fs.Key] = map[string]any{"type": "string", "minLength": 1}
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
	}
}
