package processing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/letscout-hq/letscout/internal/config"
	"github.com/letscout-hq/letscout/internal/domain"
	"github.com/letscout-hq/letscout/internal/logger"
	"github.com/letscout-hq/letscout/pkg/httpclient"
)

const distanceMatrixURL = "https://maps.googleapis.com/maps/api/distancematrix/json"

// DurationsProcessor annotates listings with commute durations from the
// listing address to each configured destination, via the Google Distance
// Matrix API. One request per listing and destination; a failed lookup
// skips that destination only.
type DurationsProcessor struct {
	client       *resty.Client
	apiKey       string
	destinations []config.Destination
	baseURL      string
}

// NewDurationsProcessor returns a processor for the given key and
// destinations. A missing key or empty destination list leaves the
// processor disabled.
func NewDurationsProcessor(apiKey string, destinations []config.Destination) *DurationsProcessor {
	return &DurationsProcessor{
		client:       httpclient.NewRestyHTTPClient(15 * time.Second),
		apiKey:       apiKey,
		destinations: destinations,
		baseURL:      distanceMatrixURL,
	}
}

// Enabled reports whether the processor has everything it needs to run.
func (p *DurationsProcessor) Enabled() bool {
	return p != nil && p.apiKey != "" && len(p.destinations) > 0
}

func (p *DurationsProcessor) Name() string { return "calculate_durations" }

func (p *DurationsProcessor) ProcessListings(ctx context.Context, listings []domain.Listing) []domain.Listing {
	for i := range listings {
		if listings[i].Address == "" {
			continue
		}
		var lines []string
		for _, dest := range p.destinations {
			text, err := p.lookup(ctx, listings[i].Address, dest)
			if err != nil {
				logger.DebugObj("duration lookup failed", "durations_error", map[string]any{
					"address":     listings[i].Address,
					"destination": dest.Name,
					"error":       err.Error(),
				})
				continue
			}
			lines = append(lines, fmt.Sprintf("%s to %s (%s)", text, dest.Name, dest.Mode))
		}
		listings[i].Durations = strings.Join(lines, "\n")
	}
	return listings
}

type distanceMatrixResponse struct {
	Status string `json:"status"`
	Rows   []struct {
		Elements []struct {
			Status   string `json:"status"`
			Duration struct {
				Text string `json:"text"`
			} `json:"duration"`
		} `json:"elements"`
	} `json:"rows"`
}

func (p *DurationsProcessor) lookup(ctx context.Context, origin string, dest config.Destination) (string, error) {
	mode := dest.Mode
	if mode == "" {
		mode = "transit"
	}
	var out distanceMatrixResponse
	resp, err := p.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"origins":      origin,
			"destinations": dest.Address,
			"mode":         mode,
			"key":          p.apiKey,
		}).
		SetResult(&out).
		Get(p.baseURL)
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		return "", fmt.Errorf("distance matrix returned status %d", resp.StatusCode())
	}
	if out.Status != "OK" || len(out.Rows) == 0 || len(out.Rows[0].Elements) == 0 {
		return "", fmt.Errorf("distance matrix status %q", out.Status)
	}
	elem := out.Rows[0].Elements[0]
	if elem.Status != "OK" {
		return "", fmt.Errorf("element status %q", elem.Status)
	}
	return elem.Duration.Text, nil
}
