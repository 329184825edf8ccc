package constants

// Canonical wire keys for extracted label fields. The prompt builder, the
// JSON sanitizer, and the journal store all reference this set so they cannot
// drift apart.
const (
	FieldRoasterName     = "roaster_name"
	FieldRoasterWebsite  = "roaster_website"
	FieldRoasterLocation = "roaster_location"
	FieldRoasterAddress  = "roaster_address"
	FieldFarm            = "farm"
	FieldOrigin          = "origin"
	FieldVariety         = "variety"
	FieldProcessMethod   = "process_method"
	FieldRoastLevel      = "roast_level"
	FieldRoastDate       = "roast_date"
	FieldFlavorNotes     = "flavor_notes"
)

// ProcessMethods are the canonical process categories the heuristic extractor
// maps keyword hits onto, in priority order.
var ProcessMethods = []string{"Washed", "Natural", "Honey", "Anaerobic"}
