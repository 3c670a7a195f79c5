package handler

import (
	"fmt"
	"strings"
	"time"
)

const (
	speechWelcome         = "Welcome to zoneminder!"
	speechWelcomeReprompt = "Say Show Last Event to view last alarm or say Show Video to see a recording. You can also say Help to see example commands."
	speechCameraNotFound  = "Sorry, I cannot find that camera name."
	speechNoAlarms        = "No alarms were found."
	speechCannotComplete  = "Sorry, I cannot complete the request."
	speechNeedDisplay     = "Sorry, I need a display to do that."
	speechNoVideo         = "Sorry, I cannot play video on this device"
	speechGoodbye         = "goodbye"
	speechUnhandled       = "Something went wrong. Goodbye."
	speechPleaseWait      = "Please wait."
	speechSomethingElse   = "You can ask zone minder for something else."
	speechSelectReprompt  = "You can ask to see an alarm by number, or touch it."
	speechSayCommand      = "Please say a command."
	speechShowingClip     = "Showing clip of selected alarm."
	speechClipRequested   = "Your alarm clip has been requested."
	speechSelected        = "Showing selected alarm."
	speechRecentAlarms    = "Showing most recent alarms"

	titleRecentAlarms = "Most recent alarms."
	titleHelp         = "zoneminder help"
	titleVideo        = "Alarm Video"

	hintHelp   = "help"
	hintSelect = "select number 1"
	hintVideo  = "show video"
)

var helpMessages = []string{
	"Show Last Event",
	"Show Last Video",
	"Show Event from front porch",
	"Show Events",
	"Show Events from back yard",
	"Show Video from back yard",
	"Show Lindo at front porch",
}

func helpSpeech() string {
	return "Here are some example commands " + strings.Join(helpMessages, " ")
}

func helpText() string {
	return "Here are some example commands: " + strings.Join(helpMessages, ", ")
}

// formatEventTime renders an alarm timestamp the way it is shown on screen and spoken,
// for example "2024-1-9 7:05:03".
func formatEventTime(t time.Time, loc *time.Location) string {
	t = t.In(loc)
	return fmt.Sprintf("%d-%d-%d %d:%02d:%02d",
		t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second())
}
