package alexa

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTell(t *testing.T) {
	r := Tell("No alarms were found.")

	require.NotNil(t, r.Body.ShouldEndSession)
	assert.True(t, *r.Body.ShouldEndSession)
	assert.Equal(t, "<speak>No alarms were found.</speak>", r.Body.OutputSpeech.SSML)
	assert.Equal(t, "No alarms were found.", r.Speech())
	assert.Nil(t, r.Body.Reprompt)
}

func TestAsk_EscapesSpeech(t *testing.T) {
	r := Ask("Showing alarms from Front & Back", "Say <help>")

	assert.Equal(t, "<speak>Showing alarms from Front &amp; Back</speak>", r.Body.OutputSpeech.SSML)
	assert.Equal(t, "Showing alarms from Front & Back", r.Speech())
	assert.Equal(t, "<speak>Say &lt;help&gt;</speak>", r.Body.Reprompt.OutputSpeech.SSML)
	require.NotNil(t, r.Body.ShouldEndSession)
	assert.False(t, *r.Body.ShouldEndSession)
}

func TestShowText(t *testing.T) {
	r := ShowText(Content{Title: "zoneminder help", Body: "Say Show Last Event", Hint: "help", Speech: "hi", Reprompt: "say something"})

	require.Len(t, r.Body.Directives, 2)
	tmpl := r.Body.Directives[0].Template
	require.NotNil(t, tmpl)
	assert.Equal(t, "Display.RenderTemplate", r.Body.Directives[0].Type)
	assert.Equal(t, "BodyTemplate1", tmpl.Type)
	assert.Equal(t, TokenShowText, tmpl.Token)
	assert.Equal(t, BackButtonHidden, tmpl.BackButton)
	assert.Equal(t, "<font size = '7'>Say Show Last Event</font>", tmpl.TextContent.PrimaryText.Text)
	assert.Equal(t, "Hint", r.Body.Directives[1].Type)
	assert.Equal(t, "help", r.Body.Directives[1].Hint.Text)
}

func TestShowImage_JSON(t *testing.T) {
	r := ShowImage(Content{
		Title:    "Driveway",
		Body:     "2024-1-1 4:00:00",
		ImageURL: "https://zm.example.com/a.jpg",
		Speech:   "Showing most recent alarm from Driveway camera.",
		Reprompt: "You can ask zone minder for something else.",
	}).WithSession(map[string]any{"ZmEventId": 7})

	b, err := json.Marshal(r)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(b, &decoded))

	assert.Equal(t, "1.0", decoded["version"])
	assert.Equal(t, float64(7), decoded["sessionAttributes"].(map[string]any)["ZmEventId"])

	body := decoded["response"].(map[string]any)
	assert.Equal(t, false, body["shouldEndSession"])

	directives := body["directives"].([]any)
	require.Len(t, directives, 1)
	tmpl := directives[0].(map[string]any)["template"].(map[string]any)
	assert.Equal(t, "BodyTemplate6", tmpl["type"])
	assert.Equal(t, "ShowImage", tmpl["token"])
	sources := tmpl["backgroundImage"].(map[string]any)["sources"].([]any)
	assert.Equal(t, "https://zm.example.com/a.jpg", sources[0].(map[string]any)["url"])
}

func TestShowImageList(t *testing.T) {
	items := []ListItem{
		NewImageListItem("1", "https://zm.example.com/1.jpg", "Driveway", "Driveway", "2024-1-1 4:00:00"),
		NewImageListItem("2", "https://zm.example.com/2.jpg", "Porch", "Porch", "2024-1-1 3:00:00"),
	}

	r := ShowImageList(Content{Title: "Most recent alarms.", Items: items, Hint: "select number 1"})

	tmpl := r.Body.Directives[0].Template
	assert.Equal(t, "ListTemplate2", tmpl.Type)
	assert.Equal(t, BackButtonVisible, tmpl.BackButton)
	require.Len(t, tmpl.ListItems, 2)
	assert.Equal(t, "2", tmpl.ListItems[1].Token)
	assert.Equal(t, "Porch", tmpl.ListItems[1].TextContent.PrimaryText.Text)
	assert.Equal(t, "https://zm.example.com/2.jpg", tmpl.ListItems[1].Image.Sources[0].URL)
}

func TestShowVideo(t *testing.T) {
	r := ShowVideo("https://zm.example.com/clip.mp4", "Alarm Video", "Showing clip of selected alarm.")

	assert.Nil(t, r.Body.ShouldEndSession)
	require.Len(t, r.Body.Directives, 1)
	assert.Equal(t, "VideoApp.Launch", r.Body.Directives[0].Type)
	assert.Equal(t, "https://zm.example.com/clip.mp4", r.Body.Directives[0].VideoItem.Source)
	assert.Equal(t, "Alarm Video", r.Body.Directives[0].VideoItem.Metadata.Title)

	b, err := json.Marshal(r)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "shouldEndSession")
}
