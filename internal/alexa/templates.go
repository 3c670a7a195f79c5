package alexa

// Template tokens.
const (
	TokenShowText      = "ShowText"
	TokenShowImage     = "ShowImage"
	TokenShowImageList = "ShowImageList"
	TokenShowVideo     = "ShowVideo"
)

// Content describes what a display template shows and says.
type Content struct {
	Title      string
	Body       string
	ImageURL   string
	Hint       string
	BackButton string
	Items      []ListItem
	Speech     string
	Reprompt   string
}

// ShowText renders a full-screen text template.
func ShowText(c Content) *Response {
	backButton := c.BackButton
	if backButton == "" {
		backButton = BackButtonHidden
	}

	return render(c, Template{
		Type:        "BodyTemplate1",
		Token:       TokenShowText,
		BackButton:  backButton,
		Title:       c.Title,
		TextContent: &TextContent{PrimaryText: richText(7, c.Body)},
	})
}

// ShowImage renders an alarm image as the background with a caption.
func ShowImage(c Content) *Response {
	t := Template{
		Type:        "BodyTemplate6",
		Token:       TokenShowImage,
		BackButton:  BackButtonVisible,
		Title:       c.Title,
		TextContent: &TextContent{PrimaryText: richText(3, c.Body)},
	}
	if c.ImageURL != "" {
		t.BackgroundImage = &Image{Sources: []ImageSource{{URL: c.ImageURL}}}
	}

	return render(c, t)
}

// ShowImageList renders a horizontally scrolling list of selectable alarm images.
func ShowImageList(c Content) *Response {
	return render(c, Template{
		Type:       "ListTemplate2",
		Token:      TokenShowImageList,
		BackButton: BackButtonVisible,
		Title:      c.Title,
		ListItems:  c.Items,
	})
}

// ShowVideo launches the video player on a clip. The session ends when the video starts.
func ShowVideo(uri, title, speech string) *Response {
	return &Response{
		Version: version,
		Body: ResponseBody{
			OutputSpeech: ssml(speech),
			Directives: []Directive{{
				Type: "VideoApp.Launch",
				VideoItem: &VideoItem{
					Source:   uri,
					Metadata: VideoMetadata{Title: title},
				},
			}},
		},
	}
}

// NewImageListItem builds a list entry with an image and up to two lines of text.
func NewImageListItem(token, imageURL, description, primary, secondary string) ListItem {
	return ListItem{
		Token: token,
		Image: &Image{
			ContentDescription: description,
			Sources:            []ImageSource{{URL: imageURL}},
		},
		TextContent: &TextContent{
			PrimaryText:   plainText(primary),
			SecondaryText: plainText(secondary),
			TertiaryText:  plainText(""),
		},
	}
}

func render(c Content, t Template) *Response {
	directives := []Directive{{Type: "Display.RenderTemplate", Template: &t}}
	if c.Hint != "" {
		directives = append(directives, Directive{Type: "Hint", Hint: &Hint{Type: "PlainText", Text: c.Hint}})
	}

	r := Ask(c.Speech, c.Reprompt)
	r.Body.Directives = directives
	return r
}
