// Package dispatch requests alarm clips from the video generation endpoint.
package dispatch

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"go.opentelemetry.io/otel"

	"github.com/ab0utbla-k/zm-alarm-skill/internal/clip"
	"github.com/ab0utbla-k/zm-alarm-skill/internal/config"
)

var tracer = otel.Tracer("github.com/ab0utbla-k/zm-alarm-skill/internal/dispatch")

// Sender requests generation of an alarm clip.
type Sender interface {
	// Send asks the configured target to render the given frame range.
	Send(ctx context.Context, r clip.Range) error

	// Async reports whether the clip is produced after Send returns. Synchronous senders
	// only return once the video is ready to play.
	Async() bool
}

// NewSender creates a Sender implementation based on the configured clip target.
// Supported targets: cgi, eventbridge, sns.
// Returns an error if the clip target is unknown.
func NewSender(awsCfg aws.Config, cfg *config.Config) (Sender, error) {
	switch cfg.ClipTarget {
	case config.TargetCGI:
		baseURL := "https://" + net.JoinHostPort(cfg.CGIHost, strconv.Itoa(cfg.CGIPort))
		return NewCGISender(baseURL, cfg.CGIUser, cfg.CGIPassword, DefaultCGITimeout), nil

	case config.TargetEventBridge:
		client := eventbridge.NewFromConfig(awsCfg)
		return NewEventBridgeSender(client, cfg.EventBusName), nil

	case config.TargetSNS:
		client := sns.NewFromConfig(awsCfg)
		return NewSNSSender(client, cfg.SNSTopicARN), nil

	default:
		return nil, fmt.Errorf("unknown clip target: %s", cfg.ClipTarget)
	}
}
