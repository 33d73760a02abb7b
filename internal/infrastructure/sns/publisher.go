package sns

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/go-iot-telemetry/internal/config"
	"github.com/go-iot-telemetry/internal/domain"
)

// AlarmPublisher pushes fired alarm notifications to subscribers.
type AlarmPublisher interface {
	PublishAlarm(ctx context.Context, n *domain.Notification, metric domain.Metric) error
}

// snsAPI is the part of *sns.Client the publisher uses.
type snsAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type publisher struct {
	client   snsAPI
	topicARN string
}

// NewPublisher returns a topic publisher. It returns an error when no topic is
// configured so callers can run without push delivery.
func NewPublisher(awsCfg aws.Config, cfg *config.Config) (AlarmPublisher, error) {
	if cfg.SNSAlarmTopic == "" {
		return nil, fmt.Errorf("SNS_ALARM_TOPIC_ARN not set")
	}
	snsCfg := awsCfg.Copy()
	snsCfg.Region = cfg.SNSRegion
	client := sns.NewFromConfig(snsCfg, func(o *sns.Options) {
		if cfg.AWSEndpointURL != "" {
			o.BaseEndpoint = aws.String(cfg.AWSEndpointURL)
		}
	})
	return newPublisher(client, cfg.SNSAlarmTopic), nil
}

func newPublisher(client snsAPI, topicARN string) *publisher {
	return &publisher{client: client, topicARN: topicARN}
}

// PublishAlarm sends the notification message with user and metric attributes
// so subscriptions can filter per user.
func (p *publisher) PublishAlarm(ctx context.Context, n *domain.Notification, metric domain.Metric) error {
	attrs := map[string]types.MessageAttributeValue{
		"user_id": {DataType: aws.String("String"), StringValue: aws.String(n.UserID)},
		"metric":  {DataType: aws.String("String"), StringValue: aws.String(string(metric))},
	}
	if n.AlarmID != nil {
		attrs["alarm_id"] = types.MessageAttributeValue{DataType: aws.String("String"), StringValue: n.AlarmID}
	}
	_, err := p.client.Publish(ctx, &sns.PublishInput{
		TopicArn:          aws.String(p.topicARN),
		Subject:           aws.String("Alarm triggered"),
		Message:           aws.String(n.Message),
		MessageAttributes: attrs,
	})
	if err != nil {
		return fmt.Errorf("sns publish: %w", err)
	}
	return nil
}
