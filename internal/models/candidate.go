package models

// Place is a single result returned by a geocoding provider.
type Place struct {
	Lat        float64  // Lat is the latitude of the place.
	Lon        float64  // Lon is the longitude of the place.
	Label      string   // Label is the human-readable place description.
	Confidence *float64 // Confidence is the provider confidence in [0,1], nil when the provider omits it.
}

// GeocodeCandidate is a Place tagged with the query variant that produced it.
// Candidates are immutable after creation.
type GeocodeCandidate struct {
	Place
	VariantIndex int    // VariantIndex is the generation index of the source variant (0 = canonical).
	VariantText  string // VariantText is the variant string sent to the geocoder.
}
