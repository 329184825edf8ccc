package scan

// LabelFields is the normalized shape of everything we can read off a coffee
// bag label. All fields are optional; a present field is always a non-empty
// trimmed string. FlavorNotes is comma-joined at this boundary.
type LabelFields struct {
	RoasterName     string `json:"roaster_name,omitempty"`
	RoasterWebsite  string `json:"roaster_website,omitempty"`
	RoasterLocation string `json:"roaster_location,omitempty"`
	RoasterAddress  string `json:"roaster_address,omitempty"`
	Farm            string `json:"farm,omitempty"`
	Origin          string `json:"origin,omitempty"`
	Variety         string `json:"variety,omitempty"`
	ProcessMethod   string `json:"process_method,omitempty"`
	RoastLevel      string `json:"roast_level,omitempty"`
	RoastDate       string `json:"roast_date,omitempty"`
	FlavorNotes     string `json:"flavor_notes,omitempty"`
}

// fieldAccessors enumerates every field once so the merge policy and tests
// can iterate the record without reflection.
var fieldAccessors = []func(*LabelFields) *string{
	func(f *LabelFields) *string { return &f.RoasterName },
	func(f *LabelFields) *string { return &f.RoasterWebsite },
	func(f *LabelFields) *string { return &f.RoasterLocation },
	func(f *LabelFields) *string { return &f.RoasterAddress },
	func(f *LabelFields) *string { return &f.Farm },
	func(f *LabelFields) *string { return &f.Origin },
	func(f *LabelFields) *string { return &f.Variety },
	func(f *LabelFields) *string { return &f.ProcessMethod },
	func(f *LabelFields) *string { return &f.RoastLevel },
	func(f *LabelFields) *string { return &f.RoastDate },
	func(f *LabelFields) *string { return &f.FlavorNotes },
}

// IsEmpty reports whether no field is set.
func (f LabelFields) IsEmpty() bool {
	for _, acc := range fieldAccessors {
		if *acc(&f) != "" {
			return false
		}
	}
	return true
}

// Cleaned returns a copy with CleanValue applied to every field, preserving
// the absent-or-non-empty invariant for values from untrusted sources.
func (f LabelFields) Cleaned() LabelFields {
	for _, acc := range fieldAccessors {
		*acc(&f) = CleanValue(*acc(&f))
	}
	return f
}

// Count returns the number of populated fields.
func (f LabelFields) Count() int {
	n := 0
	for _, acc := range fieldAccessors {
		if *acc(&f) != "" {
			n++
		}
	}
	return n
}
