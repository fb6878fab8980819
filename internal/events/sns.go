// internal/events/sns.go
package events

import (
	"context"
	"encoding/json"

	"startup-scoring/internal/common/aws"
	apperrors "startup-scoring/internal/common/errors"
	"startup-scoring/internal/common/logger"
)

// SNSPublisher publishes events as JSON messages on one SNS topic.
type SNSPublisher struct {
	client   *aws.SNSClient
	topicARN string
	logger   logger.Logger
}

func NewSNSPublisher(client *aws.SNSClient, topicARN string, log logger.Logger) *SNSPublisher {
	return &SNSPublisher{
		client:   client,
		topicARN: topicARN,
		logger:   log.WithFields(map[string]interface{}{"component": "events"}),
	}
}

func (p *SNSPublisher) Publish(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return apperrors.NewEventPublishFailedError(event.Type, err)
	}

	attrs := map[string]string{"event_type": event.Type}
	if event.StartupID != "" {
		attrs["startup_id"] = event.StartupID
	}

	messageID, err := p.client.PublishMessage(ctx, p.topicARN, event.Type, string(body), attrs)
	if err != nil {
		return apperrors.NewEventPublishFailedError(event.Type, err)
	}

	p.logger.Debug("event published", map[string]interface{}{
		"eventId":   event.ID,
		"eventType": event.Type,
		"messageId": messageID,
	})
	return nil
}
