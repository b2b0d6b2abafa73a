package models

// NoMatchMessage is returned when no candidate survives transit-area validation.
const NoMatchMessage = "No matching location found in HSL area."

// LocationPayload is the public-facing shape of a resolved location.
type LocationPayload struct {
	Lat        float64  `json:"lat"`
	Lon        float64  `json:"lon"`
	Label      string   `json:"label"`
	Confidence *float64 `json:"confidence"`
}

// Resolution is the response body of one query resolution.
// Choices holds 2-4 competing locations when Ambiguous is true, otherwise it is empty.
type Resolution struct {
	Query     string            `json:"query"`
	Location  *LocationPayload  `json:"location"`
	Choices   []LocationPayload `json:"choices"`
	Ambiguous bool              `json:"ambiguous"`
	Message   string            `json:"message,omitempty"`
}

// PayloadFromCandidate converts a ranked candidate into its public shape.
func PayloadFromCandidate(cand GeocodeCandidate) LocationPayload {
	return LocationPayload{
		Lat:        cand.Lat,
		Lon:        cand.Lon,
		Label:      cand.Label,
		Confidence: cand.Confidence,
	}
}
