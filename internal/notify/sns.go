package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"

	"github.com/letscout-hq/letscout/internal/logger"
)

// snsClient defines the minimal subset of the SNS client used here.
type snsClient interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// snsNotifier publishes each listing as a JSON message to an SNS topic.
type snsNotifier struct {
	id       string
	topicARN string
	client   snsClient
}

func newSNSNotifier(ctx context.Context, cfg NotifierConfig) (Notifier, error) {
	if cfg.SNS.TopicARN == "" {
		return nil, fmt.Errorf("sns: topic_arn is required")
	}
	if cfg.SNS.Region == "" {
		return nil, fmt.Errorf("sns: region is required")
	}

	opts := []func(*awscfg.LoadOptions) error{awscfg.WithRegion(cfg.SNS.Region)}
	if cfg.SNS.AccessKey != "" {
		opts = append(opts, awscfg.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.SNS.AccessKey, cfg.SNS.SecretKey, ""),
		))
	}
	awsCfg, err := awscfg.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return &snsNotifier{
		id:       cfg.ID,
		topicARN: cfg.SNS.TopicARN,
		client:   sns.NewFromConfig(awsCfg),
	}, nil
}

func (s *snsNotifier) ID() string { return s.id }

func (s *snsNotifier) Send(ctx context.Context, msg Message) error {
	payload, err := json.Marshal(msg.Listing)
	if err != nil {
		return fmt.Errorf("marshal listing: %w", err)
	}

	input := &sns.PublishInput{
		TopicArn: aws.String(s.topicARN),
		Message:  aws.String(string(payload)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"source": {
				DataType:    aws.String("String"),
				StringValue: aws.String(msg.Listing.Source),
			},
		},
	}

	if _, err := s.client.Publish(ctx, input); err != nil {
		logger.ErrorObj("sns publish failed", "notifier_error", map[string]any{"notifier": s.id, "error": err.Error()})
		return fmt.Errorf("publish to sns: %w", err)
	}
	logger.DebugObj("sns delivered listing", "notifier_delivery", map[string]any{"notifier": s.id, "listing": msg.Listing.ID})
	return nil
}

func (s *snsNotifier) Close() error { return nil }
