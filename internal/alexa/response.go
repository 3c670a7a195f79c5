package alexa

import (
	"html"
	"strconv"
	"strings"
)

const version = "1.0"

// Back button visibility.
const (
	BackButtonVisible = "VISIBLE"
	BackButtonHidden  = "HIDDEN"
)

// Response is the envelope the skill returns to Alexa.
type Response struct {
	Version           string         `json:"version"`
	SessionAttributes map[string]any `json:"sessionAttributes,omitempty"`
	Body              ResponseBody   `json:"response"`
}

type ResponseBody struct {
	OutputSpeech     *OutputSpeech `json:"outputSpeech,omitempty"`
	Reprompt         *Reprompt     `json:"reprompt,omitempty"`
	Directives       []Directive   `json:"directives,omitempty"`
	ShouldEndSession *bool         `json:"shouldEndSession,omitempty"`
}

type OutputSpeech struct {
	Type string `json:"type"`
	SSML string `json:"ssml"`
}

type Reprompt struct {
	OutputSpeech OutputSpeech `json:"outputSpeech"`
}

type Directive struct {
	Type      string     `json:"type"`
	Template  *Template  `json:"template,omitempty"`
	Hint      *Hint      `json:"hint,omitempty"`
	VideoItem *VideoItem `json:"videoItem,omitempty"`
}

type Template struct {
	Type            string       `json:"type"`
	Token           string       `json:"token"`
	BackButton      string       `json:"backButton,omitempty"`
	Title           string       `json:"title,omitempty"`
	BackgroundImage *Image       `json:"backgroundImage,omitempty"`
	TextContent     *TextContent `json:"textContent,omitempty"`
	ListItems       []ListItem   `json:"listItems,omitempty"`
}

type Image struct {
	ContentDescription string        `json:"contentDescription,omitempty"`
	Sources            []ImageSource `json:"sources"`
}

type ImageSource struct {
	URL string `json:"url"`
}

type TextContent struct {
	PrimaryText   *Text `json:"primaryText,omitempty"`
	SecondaryText *Text `json:"secondaryText,omitempty"`
	TertiaryText  *Text `json:"tertiaryText,omitempty"`
}

type Text struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type ListItem struct {
	Token       string       `json:"token"`
	Image       *Image       `json:"image,omitempty"`
	TextContent *TextContent `json:"textContent,omitempty"`
}

type Hint struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type VideoItem struct {
	Source   string        `json:"source"`
	Metadata VideoMetadata `json:"metadata"`
}

type VideoMetadata struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
}

// Tell speaks text and ends the session.
func Tell(speech string) *Response {
	return &Response{
		Version: version,
		Body: ResponseBody{
			OutputSpeech:     ssml(speech),
			ShouldEndSession: boolPtr(true),
		},
	}
}

// Ask speaks text and keeps the session open for the reprompt.
func Ask(speech, reprompt string) *Response {
	return &Response{
		Version: version,
		Body: ResponseBody{
			OutputSpeech:     ssml(speech),
			Reprompt:         &Reprompt{OutputSpeech: *ssml(reprompt)},
			ShouldEndSession: boolPtr(false),
		},
	}
}

// WithSession sets the session attributes carried to the next request.
func (r *Response) WithSession(attrs map[string]any) *Response {
	r.SessionAttributes = attrs
	return r
}

// Speech returns the text of the output speech without SSML markup.
func (r *Response) Speech() string {
	if r.Body.OutputSpeech == nil {
		return ""
	}
	s := strings.TrimPrefix(r.Body.OutputSpeech.SSML, "<speak>")
	return html.UnescapeString(strings.TrimSuffix(s, "</speak>"))
}

func ssml(text string) *OutputSpeech {
	return &OutputSpeech{
		Type: "SSML",
		SSML: "<speak>" + html.EscapeString(text) + "</speak>",
	}
}

func plainText(text string) *Text {
	return &Text{Type: "PlainText", Text: text}
}

func richText(size int, text string) *Text {
	return &Text{
		Type: "RichText",
		Text: "<font size = '" + strconv.Itoa(size) + "'>" + html.EscapeString(text) + "</font>",
	}
}

func boolPtr(b bool) *bool {
	return &b
}
