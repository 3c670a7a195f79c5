package dispatch

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"go.opentelemetry.io/otel/attribute"

	"github.com/ab0utbla-k/zm-alarm-skill/internal/clip"
	"github.com/ab0utbla-k/zm-alarm-skill/internal/config"
)

// SNSAPI defines the SNS operations required for publishing messages.
type SNSAPI interface {
	Publish(
		ctx context.Context,
		params *sns.PublishInput,
		optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSSender publishes clip requests to an SNS topic.
type SNSSender struct {
	client   SNSAPI
	topicARN string
}

func NewSNSSender(client SNSAPI, topicARN string) *SNSSender {
	return &SNSSender{
		client:   client,
		topicARN: topicARN,
	}
}

func (s *SNSSender) Send(ctx context.Context, r clip.Range) error {
	ctx, span := tracer.Start(ctx, "dispatch.send")
	defer span.End()
	span.SetAttributes(
		attribute.String("dispatch.target", string(config.TargetSNS)),
		attribute.Int64("clip.event_id", r.EventID),
	)

	req := newClipRequest(r)
	msg, err := req.JSON()
	if err != nil {
		return err
	}

	input := &sns.PublishInput{
		TopicArn: aws.String(s.topicARN),
		Subject:  aws.String(req.Subject()),
		Message:  aws.String(msg),
	}

	if _, err := s.client.Publish(ctx, input); err != nil {
		return fmt.Errorf("cannot publish to %q: %w", s.topicARN, err)
	}

	return nil
}

func (s *SNSSender) Async() bool {
	return true
}
