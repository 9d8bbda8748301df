package notify

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// NotifierConfig describes one delivery channel from the notifiers file.
// Exactly one of the per-type blocks is read, selected by Type.
type NotifierConfig struct {
	ID      string `yaml:"id" json:"id"`
	Type    string `yaml:"type" json:"type"`
	Enabled *bool  `yaml:"enabled" json:"enabled"`

	Telegram TelegramConfig `yaml:"telegram" json:"telegram"`
	Webhook  WebhookConfig  `yaml:"webhook" json:"webhook"`
	File     FileConfig     `yaml:"file" json:"file"`
	SQS      SQSConfig      `yaml:"sqs" json:"sqs"`
	SNS      SNSConfig      `yaml:"sns" json:"sns"`
	PubSub   PubSubConfig   `yaml:"pubsub" json:"pubsub"`
}

type TelegramConfig struct {
	BotToken string   `yaml:"bot_token" json:"bot_token"`
	ChatIDs  []string `yaml:"chat_ids" json:"chat_ids"`
}

type WebhookConfig struct {
	URL     string `yaml:"url" json:"url"`
	Flavour string `yaml:"flavour" json:"flavour"`
}

type FileConfig struct {
	Path string `yaml:"path" json:"path"`
}

type SQSConfig struct {
	QueueURL  string `yaml:"queue_url" json:"queue_url"`
	Region    string `yaml:"region" json:"region"`
	AccessKey string `yaml:"access_key" json:"access_key"`
	SecretKey string `yaml:"secret_key" json:"secret_key"`
}

type SNSConfig struct {
	TopicARN  string `yaml:"topic_arn" json:"topic_arn"`
	Region    string `yaml:"region" json:"region"`
	AccessKey string `yaml:"access_key" json:"access_key"`
	SecretKey string `yaml:"secret_key" json:"secret_key"`
}

type PubSubConfig struct {
	ProjectID       string `yaml:"project_id" json:"project_id"`
	TopicID         string `yaml:"topic_id" json:"topic_id"`
	CredentialsFile string `yaml:"credentials_file" json:"credentials_file"`
}

// IsEnabled treats a missing enabled flag as true.
func (c NotifierConfig) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

var knownTypes = map[string]struct{}{
	"telegram": {},
	"slack":    {},
	"webhook":  {},
	"file":     {},
	"sqs":      {},
	"sns":      {},
	"pubsub":   {},
}

// LoadConfigs reads the notifiers file, normalizes it, and validates every
// entry. YAML and JSON files are both accepted, chosen by extension.
func LoadConfigs(path string) ([]NotifierConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading notifiers file: %w", err)
	}

	var wrapper struct {
		Notifiers []NotifierConfig `yaml:"notifiers" json:"notifiers"`
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(raw, &wrapper)
	default:
		err = yaml.Unmarshal(raw, &wrapper)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing notifiers file: %w", err)
	}

	configs := sanitizeConfigs(wrapper.Notifiers)
	if err := validateConfigs(configs); err != nil {
		return nil, err
	}
	return configs, nil
}

func sanitizeConfigs(configs []NotifierConfig) []NotifierConfig {
	out := make([]NotifierConfig, 0, len(configs))
	for _, c := range configs {
		c.ID = strings.TrimSpace(c.ID)
		c.Type = strings.ToLower(strings.TrimSpace(c.Type))
		out = append(out, c)
	}
	return out
}

func validateConfigs(configs []NotifierConfig) error {
	seen := make(map[string]struct{}, len(configs))
	for i, c := range configs {
		if c.ID == "" {
			return fmt.Errorf("notifier #%d: id is required", i)
		}
		if _, dup := seen[c.ID]; dup {
			return fmt.Errorf("notifier %q: duplicate id", c.ID)
		}
		seen[c.ID] = struct{}{}
		if _, ok := knownTypes[c.Type]; !ok {
			return fmt.Errorf("notifier %q: unknown type %q", c.ID, c.Type)
		}
	}
	return nil
}
