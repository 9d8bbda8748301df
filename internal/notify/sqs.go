package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"github.com/letscout-hq/letscout/internal/logger"
)

// sqsClient defines the minimal subset of the SQS client used here.
type sqsClient interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// sqsNotifier sends each listing as a JSON message to an SQS queue.
type sqsNotifier struct {
	id       string
	queueURL string
	client   sqsClient
}

func newSQSNotifier(ctx context.Context, cfg NotifierConfig) (Notifier, error) {
	if cfg.SQS.QueueURL == "" {
		return nil, fmt.Errorf("sqs: queue_url is required")
	}
	if cfg.SQS.Region == "" {
		return nil, fmt.Errorf("sqs: region is required")
	}

	opts := []func(*awscfg.LoadOptions) error{awscfg.WithRegion(cfg.SQS.Region)}
	if cfg.SQS.AccessKey != "" {
		opts = append(opts, awscfg.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.SQS.AccessKey, cfg.SQS.SecretKey, ""),
		))
	}
	awsCfg, err := awscfg.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return &sqsNotifier{
		id:       cfg.ID,
		queueURL: cfg.SQS.QueueURL,
		client:   sqs.NewFromConfig(awsCfg),
	}, nil
}

func (s *sqsNotifier) ID() string { return s.id }

func (s *sqsNotifier) Send(ctx context.Context, msg Message) error {
	payload, err := json.Marshal(msg.Listing)
	if err != nil {
		return fmt.Errorf("marshal listing: %w", err)
	}

	input := &sqs.SendMessageInput{
		QueueUrl:    aws.String(s.queueURL),
		MessageBody: aws.String(string(payload)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"source": {
				DataType:    aws.String("String"),
				StringValue: aws.String(msg.Listing.Source),
			},
		},
	}

	if _, err := s.client.SendMessage(ctx, input); err != nil {
		logger.ErrorObj("sqs send failed", "notifier_error", map[string]any{"notifier": s.id, "error": err.Error()})
		return fmt.Errorf("send message to sqs: %w", err)
	}
	logger.DebugObj("sqs delivered listing", "notifier_delivery", map[string]any{"notifier": s.id, "listing": msg.Listing.ID})
	return nil
}

func (s *sqsNotifier) Close() error { return nil }
