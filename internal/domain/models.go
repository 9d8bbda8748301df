package domain

// Domain contains core models shared across the pipeline.

// Listing is one property listing flowing through the processor chain.
// ID and URL are set before a listing leaves a source plugin; every other
// field may be empty. Prices stay free-form strings because sources format
// currency differently.
type Listing struct {
	ID      string `json:"id"`
	URL     string `json:"url"`
	Title   string `json:"title"`
	Price   string `json:"price"`
	Size    string `json:"size,omitempty"`
	Rooms   string `json:"rooms,omitempty"`
	Address string `json:"address,omitempty"`
	Image   string `json:"image,omitempty"`
	Source  string `json:"source"`

	Images    []string `json:"images,omitempty"`
	Durations string   `json:"durations,omitempty"`
	CreatedAt string   `json:"created_at,omitempty"`

	// Enrichment fields populated by later pipeline stages.
	AIScore           *float64       `json:"ai_score,omitempty"`
	AIReasoning       string         `json:"ai_reasoning,omitempty"`
	AIHighlights      []string       `json:"ai_highlights,omitempty"`
	AIWarnings        []string       `json:"ai_warnings,omitempty"`
	AIConfidence      string         `json:"ai_confidence,omitempty"`
	ExtractedFeatures map[string]any `json:"extracted_features,omitempty"`
}

// Key identifies a saved listing uniquely across sources.
func (l Listing) Key() string {
	return l.ID + "|" + l.Source
}
