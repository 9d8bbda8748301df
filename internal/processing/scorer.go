package processing

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/letscout-hq/letscout/internal/domain"
	"github.com/letscout-hq/letscout/internal/logger"
	"github.com/letscout-hq/letscout/pkg/httpclient"
)

const (
	messagesURL      = "https://api.anthropic.com/v1/messages"
	anthropicVersion = "2023-06-01"
	defaultModel     = "claude-haiku-4-5"
)

// ScoreProcessor asks a language model to rate each listing against the
// user's stated priorities and dealbreakers. A failed or unparseable
// response leaves the listing unscored rather than dropping it.
type ScoreProcessor struct {
	client       *resty.Client
	apiKey       string
	model        string
	priorities   []string
	dealbreakers []string
	baseURL      string
}

// NewScoreProcessor returns a scorer for the given key. An empty key
// leaves the processor disabled.
func NewScoreProcessor(apiKey, model string, priorities, dealbreakers []string) *ScoreProcessor {
	if model == "" {
		model = defaultModel
	}
	return &ScoreProcessor{
		client:       httpclient.NewRestyHTTPClient(60 * time.Second),
		apiKey:       apiKey,
		model:        model,
		priorities:   priorities,
		dealbreakers: dealbreakers,
		baseURL:      messagesURL,
	}
}

// Enabled reports whether an API key is configured.
func (p *ScoreProcessor) Enabled() bool {
	return p != nil && p.apiKey != ""
}

func (p *ScoreProcessor) Name() string { return "score_listings" }

func (p *ScoreProcessor) ProcessListings(ctx context.Context, listings []domain.Listing) []domain.Listing {
	for i := range listings {
		verdict, err := p.score(ctx, listings[i])
		if err != nil {
			logger.WarnObj("listing scoring failed", "scoring_error", map[string]any{"id": listings[i].ID, "error": err.Error()})
			continue
		}
		score := verdict.Score
		listings[i].AIScore = &score
		listings[i].AIReasoning = verdict.Reasoning
		listings[i].AIHighlights = verdict.Highlights
		listings[i].AIWarnings = verdict.Warnings
		listings[i].AIConfidence = verdict.Confidence
		if len(verdict.Features) > 0 {
			listings[i].ExtractedFeatures = verdict.Features
		}
	}
	return listings
}

type scoreVerdict struct {
	Score      float64        `json:"score"`
	Reasoning  string         `json:"reasoning"`
	Highlights []string       `json:"highlights"`
	Warnings   []string       `json:"warnings"`
	Confidence string         `json:"confidence"`
	Features   map[string]any `json:"features"`
}

type messagesRequest struct {
	Model     string        `json:"model"`
	MaxTokens int           `json:"max_tokens"`
	Messages  []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

func (p *ScoreProcessor) score(ctx context.Context, l domain.Listing) (*scoreVerdict, error) {
	var out messagesResponse
	resp, err := p.client.R().
		SetContext(ctx).
		SetHeader("x-api-key", p.apiKey).
		SetHeader("anthropic-version", anthropicVersion).
		SetHeader("Content-Type", "application/json").
		SetBody(messagesRequest{
			Model:     p.model,
			MaxTokens: 1024,
			Messages:  []chatMessage{{Role: "user", Content: p.prompt(l)}},
		}).
		SetResult(&out).
		Post(p.baseURL)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("messages API returned status %d", resp.StatusCode())
	}
	if len(out.Content) == 0 {
		return nil, fmt.Errorf("empty model response")
	}
	text := strings.TrimSpace(out.Content[0].Text)
	// Models wrap JSON in fences often enough to strip them unconditionally.
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	var verdict scoreVerdict
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &verdict); err != nil {
		return nil, fmt.Errorf("parsing verdict: %w", err)
	}
	return &verdict, nil
}

func (p *ScoreProcessor) prompt(l domain.Listing) string {
	var b strings.Builder
	b.WriteString("Rate this rental listing from 0 to 10 for the tenant described below.\n\n")
	b.WriteString("Listing:\n")
	fmt.Fprintf(&b, "  Title: %s\n  Price: %s\n  Size: %s\n  Rooms: %s\n  Address: %s\n", l.Title, l.Price, l.Size, l.Rooms, l.Address)
	if len(p.priorities) > 0 {
		fmt.Fprintf(&b, "\nPriorities: %s\n", strings.Join(p.priorities, "; "))
	}
	if len(p.dealbreakers) > 0 {
		fmt.Fprintf(&b, "Dealbreakers: %s\n", strings.Join(p.dealbreakers, "; "))
	}
	b.WriteString("\nRespond with a single JSON object and nothing else, with keys: ")
	b.WriteString(`"score" (number), "reasoning" (string), "highlights" (array of strings), "warnings" (array of strings), "confidence" ("low"|"medium"|"high"), "features" (object).`)
	return b.String()
}
