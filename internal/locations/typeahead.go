package locations

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/letscout-hq/letscout/pkg/httpclient"
)

const typeaheadBase = "https://www.rightmove.co.uk/typeAhead/uknostreet"

// TypeaheadResolver resolves area names against the Rightmove typeahead API.
type TypeaheadResolver struct {
	client  httpclient.Client
	baseURL string
}

// NewTypeaheadResolver builds a resolver using the provided HTTP client.
func NewTypeaheadResolver(client httpclient.Client) *TypeaheadResolver {
	return &TypeaheadResolver{client: client, baseURL: typeaheadBase}
}

type typeaheadResponse struct {
	TypeAheadLocations []struct {
		LocationIdentifier string `json:"locationIdentifier"`
	} `json:"typeAheadLocations"`
}

// LookupIdentifier returns the first matching locationIdentifier for the area.
func (r *TypeaheadResolver) LookupIdentifier(ctx context.Context, area, _ string) (string, error) {
	if r == nil || r.client == nil {
		return "", fmt.Errorf("typeahead resolver is not initialized")
	}

	url := fmt.Sprintf("%s/%s/", r.baseURL, tokenizeArea(area))
	resp, err := r.client.Get(ctx, url, nil)
	if err != nil {
		return "", fmt.Errorf("typeahead request: %w", err)
	}
	if resp.StatusCode() != 200 {
		return "", fmt.Errorf("typeahead status %d", resp.StatusCode())
	}

	var decoded typeaheadResponse
	if err := json.Unmarshal(resp.Body(), &decoded); err != nil {
		return "", fmt.Errorf("decode typeahead response: %w", err)
	}
	if len(decoded.TypeAheadLocations) == 0 {
		return "", fmt.Errorf("no typeahead results for %q", area)
	}
	return decoded.TypeAheadLocations[0].LocationIdentifier, nil
}

// tokenizeArea converts an area name to the API's 2-char-chunk path format,
// e.g. "Fitzrovia" -> "FI/TZ/RO/VI/A".
func tokenizeArea(area string) string {
	upper := strings.ToUpper(strings.ReplaceAll(area, " ", ""))
	chunks := make([]string, 0, len(upper)/2+1)
	for i := 0; i < len(upper); i += 2 {
		end := i + 2
		if end > len(upper) {
			end = len(upper)
		}
		chunks = append(chunks, upper[i:end])
	}
	return strings.Join(chunks, "/")
}
