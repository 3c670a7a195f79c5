package dispatch

import (
	"encoding/json"
	"fmt"

	"github.com/ab0utbla-k/zm-alarm-skill/internal/clip"
)

const (
	eventSource     = "zoneminder.alarm.skill"
	eventDetailType = "Clip Requested"
)

// ClipRequest is the payload published to asynchronous targets.
type ClipRequest struct {
	EventID    int64 `json:"event"`
	StartFrame int64 `json:"start_frame"`
	EndFrame   int64 `json:"end_frame"`
}

func newClipRequest(r clip.Range) ClipRequest {
	return ClipRequest{
		EventID:    r.EventID,
		StartFrame: r.StartFrame,
		EndFrame:   r.EndFrame,
	}
}

// JSON returns the request encoded as a JSON object.
func (c ClipRequest) JSON() (string, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("cannot marshal clip request: %w", err)
	}
	return string(b), nil
}

// Subject returns a short human-readable title for the request.
func (c ClipRequest) Subject() string {
	return fmt.Sprintf("ZoneMinder clip request for event %d", c.EventID)
}
