package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/attribute"

	"github.com/ab0utbla-k/zm-alarm-skill/internal/clip"
	"github.com/ab0utbla-k/zm-alarm-skill/internal/config"
)

// DefaultCGITimeout bounds a clip generation request. Rendering a clip can take a while.
const DefaultCGITimeout = 45 * time.Second

const genVidPath = "/cgi/gen-vid.py"

// ErrClipFailed indicates the endpoint answered but did not produce the clip.
var ErrClipFailed = errors.New("clip generation failed")

// CGISender asks the ZoneMinder host to render a clip over HTTPS with basic auth.
type CGISender struct {
	client *resty.Client
}

// NewCGISender creates a new CGISender instance for the endpoint at baseURL.
func NewCGISender(baseURL, user, password string, timeout time.Duration) *CGISender {
	client := resty.New().
		SetBaseURL(baseURL).
		SetBasicAuth(user, password).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	return &CGISender{client: client}
}

// Send requests the clip and waits for the endpoint to report success.
func (s *CGISender) Send(ctx context.Context, r clip.Range) error {
	ctx, span := tracer.Start(ctx, "dispatch.send")
	defer span.End()
	span.SetAttributes(
		attribute.String("dispatch.target", string(config.TargetCGI)),
		attribute.Int64("clip.event_id", r.EventID),
		attribute.Int64("clip.frames", r.Frames()),
	)

	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"event":       strconv.FormatInt(r.EventID, 10),
			"start_frame": strconv.FormatInt(r.StartFrame, 10),
			"end_frame":   strconv.FormatInt(r.EndFrame, 10),
		}).
		Get(genVidPath)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("cannot request clip for event %d: %w", r.EventID, err)
	}

	if resp.IsError() {
		return fmt.Errorf("%w: event %d: status %d: %s",
			ErrClipFailed, r.EventID, resp.StatusCode(), resp.String())
	}

	var result struct {
		Success bool `json:"success"`
	}
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return fmt.Errorf("%w: event %d: cannot parse response: %v", ErrClipFailed, r.EventID, err)
	}

	if !result.Success {
		return fmt.Errorf("%w: event %d", ErrClipFailed, r.EventID)
	}

	return nil
}

func (s *CGISender) Async() bool {
	return false
}
