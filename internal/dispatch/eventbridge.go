package dispatch

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"go.opentelemetry.io/otel/attribute"

	"github.com/ab0utbla-k/zm-alarm-skill/internal/clip"
	"github.com/ab0utbla-k/zm-alarm-skill/internal/config"
)

// EventBridgeAPI defines the EventBridge operations required for sending events.
type EventBridgeAPI interface {
	PutEvents(
		ctx context.Context,
		params *eventbridge.PutEventsInput,
		optFns ...func(*eventbridge.Options)) (*eventbridge.PutEventsOutput, error)
}

// EventBridgeSender publishes clip requests to an EventBridge event bus.
type EventBridgeSender struct {
	client  EventBridgeAPI
	busName string
}

// NewEventBridgeSender creates a new EventBridgeSender instance.
func NewEventBridgeSender(client EventBridgeAPI, busName string) *EventBridgeSender {
	return &EventBridgeSender{
		client:  client,
		busName: busName,
	}
}

// Send publishes the clip request to the configured EventBridge event bus.
func (s *EventBridgeSender) Send(ctx context.Context, r clip.Range) error {
	ctx, span := tracer.Start(ctx, "dispatch.send")
	defer span.End()
	span.SetAttributes(
		attribute.String("dispatch.target", string(config.TargetEventBridge)),
		attribute.Int64("clip.event_id", r.EventID),
	)

	msg, err := newClipRequest(r).JSON()
	if err != nil {
		return err
	}

	params := &eventbridge.PutEventsInput{
		Entries: []types.PutEventsRequestEntry{{
			Detail:       aws.String(msg),
			DetailType:   aws.String(eventDetailType),
			EventBusName: aws.String(s.busName),
			Source:       aws.String(eventSource),
		}},
	}

	out, err := s.client.PutEvents(ctx, params)
	if err != nil {
		return fmt.Errorf("cannot put event to %q: %w", s.busName, err)
	}

	if out.FailedEntryCount > 0 {
		entry := out.Entries[0]
		return fmt.Errorf("cannot put event to %q: %s - %s",
			s.busName, aws.ToString(entry.ErrorCode), aws.ToString(entry.ErrorMessage))
	}

	return nil
}

func (s *EventBridgeSender) Async() bool {
	return true
}
