package notify

import (
	"strings"

	"github.com/letscout-hq/letscout/internal/domain"
)

// Message is one rendered announcement plus the listing it came from.
// Text-oriented channels send Text; structured channels may serialize the
// listing instead.
type Message struct {
	Text    string
	Listing domain.Listing
}

// NewMessage renders the listing through the configured format string.
// Placeholders are literal tokens such as {title} and {url}; unknown
// tokens pass through untouched.
func NewMessage(format string, l domain.Listing) Message {
	durations := l.Durations
	if durations == "" {
		durations = "N/A"
	}
	replacer := strings.NewReplacer(
		"{title}", l.Title,
		"{rooms}", l.Rooms,
		"{size}", l.Size,
		"{price}", l.Price,
		"{url}", l.URL,
		"{address}", l.Address,
		"{durations}", durations,
		"{id}", l.ID,
		"{source}", l.Source,
	)
	return Message{Text: replacer.Replace(format), Listing: l}
}
