// Package alexa models the JSON envelopes exchanged with the Alexa Skills Kit and builds
// the display templates used by the skill.
package alexa

import (
	"encoding/json"
	"strings"
)

// Request types.
const (
	TypeLaunch          = "LaunchRequest"
	TypeIntent          = "IntentRequest"
	TypeSessionEnded    = "SessionEndedRequest"
	TypeElementSelected = "Display.ElementSelected"
)

// Request is the envelope Alexa sends to the skill.
type Request struct {
	Version string      `json:"version"`
	Session Session     `json:"session"`
	Context Context     `json:"context"`
	Body    RequestBody `json:"request"`
}

type Session struct {
	New         bool           `json:"new"`
	SessionID   string         `json:"sessionId"`
	Application Application    `json:"application"`
	Attributes  map[string]any `json:"attributes,omitempty"`
}

type Application struct {
	ApplicationID string `json:"applicationId"`
}

type Context struct {
	System System `json:"System"`
}

type System struct {
	Application    Application `json:"application"`
	Device         Device      `json:"device"`
	APIEndpoint    string      `json:"apiEndpoint"`
	APIAccessToken string      `json:"apiAccessToken"`
}

type Device struct {
	DeviceID            string                     `json:"deviceId"`
	SupportedInterfaces map[string]json.RawMessage `json:"supportedInterfaces"`
}

type RequestBody struct {
	Type      string  `json:"type"`
	RequestID string  `json:"requestId"`
	Timestamp string  `json:"timestamp"`
	Locale    string  `json:"locale"`
	Intent    *Intent `json:"intent,omitempty"`
	// Token identifies the list item touched in a Display.ElementSelected request.
	Token  string `json:"token,omitempty"`
	Reason string `json:"reason,omitempty"`
}

type Intent struct {
	Name  string          `json:"name"`
	Slots map[string]Slot `json:"slots,omitempty"`
}

type Slot struct {
	Name  string `json:"name"`
	Value string `json:"value,omitempty"`
}

// IntentName returns the intent of an IntentRequest, or "" for other request types.
func (r Request) IntentName() string {
	if r.Body.Intent == nil {
		return ""
	}
	return r.Body.Intent.Name
}

// Slot returns the trimmed value of a slot, or "" when the slot is absent or unfilled.
func (r Request) Slot(name string) string {
	if r.Body.Intent == nil {
		return ""
	}
	return strings.TrimSpace(r.Body.Intent.Slots[name].Value)
}

// SupportsDisplay reports whether the device can render display templates.
func (r Request) SupportsDisplay() bool {
	_, ok := r.Context.System.Device.SupportedInterfaces["Display"]
	return ok
}
