package alexa

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultProgressiveTimeout bounds a progressive response call.
const DefaultProgressiveTimeout = 2 * time.Second

// Progress tells the user something while a slow request is still being worked on.
type Progress interface {
	Speak(ctx context.Context, req Request, speech string) error
}

// ProgressiveClient sends VoicePlayer.Speak directives through the Alexa directive service.
type ProgressiveClient struct {
	client *resty.Client
}

func NewProgressiveClient(timeout time.Duration) *ProgressiveClient {
	return &ProgressiveClient{
		client: resty.New().SetTimeout(timeout),
	}
}

type progressiveDirective struct {
	Header struct {
		RequestID string `json:"requestId"`
	} `json:"header"`
	Directive struct {
		Type   string `json:"type"`
		Speech string `json:"speech"`
	} `json:"directive"`
}

// Speak plays speech on the device that issued req. Requests without an API endpoint,
// such as those replayed from tests or the simulator, are skipped.
func (p *ProgressiveClient) Speak(ctx context.Context, req Request, speech string) error {
	endpoint := req.Context.System.APIEndpoint
	token := req.Context.System.APIAccessToken
	if endpoint == "" || token == "" {
		return nil
	}

	var body progressiveDirective
	body.Header.RequestID = req.Body.RequestID
	body.Directive.Type = "VoicePlayer.Speak"
	body.Directive.Speech = ssml(speech).SSML

	resp, err := p.client.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post(endpoint + "/v1/directives")
	if err != nil {
		return fmt.Errorf("cannot send progressive response: %w", err)
	}

	if resp.IsError() {
		return fmt.Errorf("cannot send progressive response: status %d: %s", resp.StatusCode(), resp.String())
	}

	return nil
}
