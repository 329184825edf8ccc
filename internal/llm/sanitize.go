package llm

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/beanvault/coffee-journal/constants"
	"github.com/beanvault/coffee-journal/internal/scan"
)

// NormalizeAndSanitizeJSON turns the model's raw JSON into LabelFields:
// - string fields are accepted only when they are strings, then trimmed
// - origin is re-joined with a single comma-space separator (blends)
// - flavor_notes is accepted only as an array; non-string/empty elements drop
// - unknown keys and empty values are dropped
// It also returns the re-encoded sanitized document for schema validation
// and the list of keys it dropped or rewrote.
func NormalizeAndSanitizeJSON(raw []byte, logger *slog.Logger) (scan.LabelFields, []byte, []string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return scan.LabelFields{}, nil, nil, fmt.Errorf("sanitize: decode: %w", err)
	}

	dropped := make([]string, 0, 4)
	clean := make(map[string]any, len(m))

	for _, fs := range labelFieldSpecs {
		v, ok := m[fs.Key]
		if !ok {
			continue
		}
		delete(m, fs.Key)

		if fs.Array {
			items, ok := v.([]any)
			if !ok {
				dropped = append(dropped, fs.Key+"(type)")
				continue
			}
			notes := make([]string, 0, len(items))
			for _, it := range items {
				s, ok := it.(string)
				if !ok {
					dropped = append(dropped, fs.Key+"(element)")
					continue
				}
				if s = scan.CleanValue(s); s != "" {
					notes = append(notes, s)
				}
			}
			if len(notes) > 0 {
				clean[fs.Key] = notes
			}
			continue
		}

		s, ok := v.(string)
		if !ok {
			dropped = append(dropped, fs.Key+"(type)")
			continue
		}
		s = strings.TrimSpace(s)
		if fs.Key == constants.FieldOrigin {
			s = scan.NormalizeOrigin(s)
		}
		if s == "" {
			dropped = append(dropped, fs.Key+"(empty)")
			continue
		}
		clean[fs.Key] = s
	}

	// whatever is left in m is an unknown key
	for k := range m {
		dropped = append(dropped, k+"(unknown)")
	}

	out, err := json.Marshal(clean)
	if err != nil {
		return scan.LabelFields{}, nil, dropped, fmt.Errorf("sanitize: encode: %w", err)
	}
	if len(dropped) > 0 {
		logger.Warn("llm.extract.sanitize", "dropped", dropped)
	}

	return fieldsFromSanitized(clean), out, dropped, nil
}

// fieldsFromSanitized maps the sanitized document onto the boundary shape,
// joining flavor notes into the comma-separated form.
func fieldsFromSanitized(m map[string]any) scan.LabelFields {
	str := func(key string) string {
		s, _ := m[key].(string)
		return s
	}
	var f scan.LabelFields
	f.RoasterName = str(constants.FieldRoasterName)
	f.RoasterWebsite = str(constants.FieldRoasterWebsite)
	f.RoasterLocation = str(constants.FieldRoasterLocation)
	f.RoasterAddress = str(constants.FieldRoasterAddress)
	f.Farm = str(constants.FieldFarm)
	f.Origin = str(constants.FieldOrigin)
	f.Variety = str(constants.FieldVariety)
	f.ProcessMethod = str(constants.FieldProcessMethod)
	f.RoastLevel = str(constants.FieldRoastLevel)
	f.RoastDate = str(constants.FieldRoastDate)
	if notes, ok := m[constants.FieldFlavorNotes].([]string); ok {
		f.FlavorNotes = strings.Join(notes, ", ")
	}
	return f
}
