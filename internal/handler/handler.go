// Package handler routes voice skill requests to alarm queries and renders the replies.
package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/sourcegraph/conc"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/ab0utbla-k/zm-alarm-skill/internal/alarm"
	"github.com/ab0utbla-k/zm-alarm-skill/internal/alexa"
	"github.com/ab0utbla-k/zm-alarm-skill/internal/catalog"
	"github.com/ab0utbla-k/zm-alarm-skill/internal/clip"
	"github.com/ab0utbla-k/zm-alarm-skill/internal/dispatch"
	"github.com/ab0utbla-k/zm-alarm-skill/internal/media"
)

var tracer = otel.Tracer("github.com/ab0utbla-k/zm-alarm-skill/internal/handler")

// Intent names.
const (
	IntentLastAlarm  = "LastAlarm"
	IntentAlarms     = "Alarms"
	IntentSelectItem = "SelectItem"
	IntentAlarmClip  = "AlarmClip"
	IntentFaces      = "Faces"
	IntentHelp       = "AMAZON.HelpIntent"
	IntentCancel     = "AMAZON.CancelIntent"
	IntentStop       = "AMAZON.StopIntent"
)

// Slot names.
const (
	slotLocation = "Location"
	slotName     = "Name"
	slotNumber   = "number"
)

const (
	singleCameraAlarms = 10
	faceAlarms         = 10
)

// ErrMalformedRequest indicates an envelope without a request type.
var ErrMalformedRequest = errors.New("malformed skill request")

// Flusher publishes buffered telemetry at the end of a request.
type Flusher interface {
	Flush(ctx context.Context) error
}

// Options wires the collaborators of an EventHandler. Progress and Metrics are optional.
type Options struct {
	Alarms       alarm.Fetcher
	Catalog      *catalog.Catalog
	Locator      media.Locator
	Sender       dispatch.Sender
	Progress     alexa.Progress
	Metrics      Flusher
	ClipVideoURI string
	Location     *time.Location
}

type EventHandler struct {
	opts   Options
	logger *slog.Logger
}

func NewEventHandler(opts Options, logger *slog.Logger) *EventHandler {
	if opts.Location == nil {
		opts.Location = time.UTC
	}

	return &EventHandler{
		opts:   opts,
		logger: logger,
	}
}

// HandleRequest answers one skill request. Failures talking to the alarm store or the clip
// endpoint are spoken to the user; only a malformed envelope returns an error.
func (h *EventHandler) HandleRequest(ctx context.Context, req alexa.Request) (*alexa.Response, error) {
	ctx, span := tracer.Start(ctx, "handler.request")
	defer span.End()
	span.SetAttributes(
		attribute.String("alexa.request_type", req.Body.Type),
		attribute.String("alexa.intent", req.IntentName()),
	)

	if h.opts.Metrics != nil {
		defer func() {
			if err := h.opts.Metrics.Flush(ctx); err != nil {
				h.logger.WarnContext(ctx, "cannot flush metrics", slog.String("error", err.Error()))
			}
		}()
	}

	h.logger.InfoContext(
		ctx,
		"skill request received",
		slog.String("requestType", req.Body.Type),
		slog.String("intent", req.IntentName()),
		slog.Bool("display", req.SupportsDisplay()),
	)

	switch req.Body.Type {
	case "":
		return nil, ErrMalformedRequest
	case alexa.TypeLaunch:
		return h.launch(req), nil
	case alexa.TypeSessionEnded:
		return alexa.Tell(speechGoodbye), nil
	case alexa.TypeElementSelected:
		return h.selectItem(ctx, req, req.Body.Token), nil
	case alexa.TypeIntent:
		return h.routeIntent(ctx, req), nil
	default:
		return alexa.Tell(speechUnhandled), nil
	}
}

func (h *EventHandler) routeIntent(ctx context.Context, req alexa.Request) *alexa.Response {
	switch req.IntentName() {
	case IntentLastAlarm:
		return h.lastAlarm(ctx, req)
	case IntentAlarms:
		return h.alarms(ctx, req)
	case IntentSelectItem:
		return h.selectItem(ctx, req, req.Slot(slotNumber))
	case IntentAlarmClip:
		return h.alarmClip(ctx, req)
	case IntentFaces:
		return h.faces(ctx, req)
	case IntentHelp:
		return h.help(req)
	case IntentCancel, IntentStop:
		return alexa.Tell(speechGoodbye)
	default:
		h.logger.WarnContext(ctx, "unhandled intent", slog.String("intent", req.IntentName()))
		return alexa.Tell(speechUnhandled)
	}
}

func (h *EventHandler) launch(req alexa.Request) *alexa.Response {
	if !req.SupportsDisplay() {
		return alexa.Ask(speechWelcome, speechWelcomeReprompt)
	}

	return alexa.ShowText(alexa.Content{
		Title:      speechWelcome,
		Body:       speechWelcomeReprompt,
		Hint:       hintHelp,
		BackButton: alexa.BackButtonHidden,
		Speech:     speechWelcome,
		Reprompt:   speechWelcomeReprompt,
	}).WithSession(req.Session.Attributes)
}

func (h *EventHandler) help(req alexa.Request) *alexa.Response {
	if !req.SupportsDisplay() {
		return alexa.Ask(helpSpeech(), speechSayCommand)
	}

	return alexa.ShowText(alexa.Content{
		Title:      titleHelp,
		Body:       helpText(),
		Hint:       hintHelp,
		BackButton: alexa.BackButtonHidden,
		Speech:     "Here are some example commands you can say.",
		Reprompt:   speechSayCommand,
	}).WithSession(req.Session.Attributes)
}

// lastAlarm shows the newest alarm of one camera, or of all cameras when none is named.
func (h *EventHandler) lastAlarm(ctx context.Context, req alexa.Request) *alexa.Response {
	cameras, resp := h.camerasFor(ctx, req)
	if resp != nil {
		return resp
	}

	wait := h.pleaseWait(ctx, req)
	records, err := h.opts.Alarms.FetchAcrossCameras(ctx, cameras, alarm.Filter{}, 1)
	wait()
	if err != nil {
		return h.queryFailed(ctx, err)
	}

	latest, ok := alarm.Latest(records)
	if !ok {
		return alexa.Tell(speechNoAlarms)
	}

	attrs, err := sessionState{Record: &latest}.encode()
	if err != nil {
		return h.failed(ctx, "cannot save session", err)
	}

	when := formatEventTime(latest.EventTime, h.opts.Location)

	if !req.SupportsDisplay() {
		return alexa.Tell(fmt.Sprintf("Last alarm was from %s on %s", latest.CameraName, when)).
			WithSession(attrs)
	}

	imageURL, err := h.opts.Locator.ImageURL(ctx, latest)
	if err != nil {
		return h.failed(ctx, "cannot locate alarm image", err)
	}

	return alexa.ShowImage(alexa.Content{
		Title:    latest.CameraName,
		Body:     when,
		ImageURL: imageURL,
		Hint:     hintVideo,
		Speech:   fmt.Sprintf("Showing most recent alarm from %s camera.", latest.CameraName),
		Reprompt: speechSomethingElse,
	}).WithSession(attrs)
}

// alarms lists the newest alarm of every camera, or the newest alarms of one camera.
func (h *EventHandler) alarms(ctx context.Context, req alexa.Request) *alexa.Response {
	if !req.SupportsDisplay() {
		return alexa.Tell(speechNeedDisplay)
	}

	cameras, resp := h.camerasFor(ctx, req)
	if resp != nil {
		return resp
	}

	perCamera := 1
	if req.Slot(slotLocation) != "" {
		perCamera = singleCameraAlarms
	}

	wait := h.pleaseWait(ctx, req)
	records, err := h.opts.Alarms.FetchAcrossCameras(ctx, cameras, alarm.Filter{}, perCamera)
	wait()
	if err != nil {
		return h.queryFailed(ctx, err)
	}

	if len(records) == 0 {
		return alexa.Tell(speechNoAlarms)
	}

	items, err := h.listItems(ctx, records, func(r alarm.Record, when string) (string, string, string) {
		return r.CameraName, r.CameraName, when
	})
	if err != nil {
		return h.failed(ctx, "cannot locate alarm image", err)
	}

	attrs, err := sessionState{Alarms: records}.encode()
	if err != nil {
		return h.failed(ctx, "cannot save session", err)
	}

	return alexa.ShowImageList(alexa.Content{
		Title:    titleRecentAlarms,
		Items:    items,
		Hint:     hintSelect,
		Speech:   speechRecentAlarms,
		Reprompt: speechSelectReprompt,
	}).WithSession(attrs)
}

// faces lists the newest alarms of a camera in which a person or object was recognized.
func (h *EventHandler) faces(ctx context.Context, req alexa.Request) *alexa.Response {
	if !req.SupportsDisplay() {
		return alexa.Tell(speechNeedDisplay)
	}

	spokenCamera := req.Slot(slotLocation)
	spokenName := req.Slot(slotName)
	if spokenCamera == "" || spokenName == "" {
		h.logger.WarnContext(ctx, "faces request without camera or name")
		return alexa.Tell(speechCannotComplete)
	}

	camera, ok := h.opts.Catalog.ResolveCamera(spokenCamera)
	if !ok {
		h.logger.WarnContext(ctx, "unknown camera", slog.String("camera", spokenCamera))
		return alexa.Tell(speechCameraNotFound)
	}

	subject := h.opts.Catalog.ResolveSubject(spokenName)

	records, err := h.opts.Alarms.Fetch(ctx, alarm.Query{Camera: camera, Filter: subject.Filter, Count: faceAlarms})
	if err != nil {
		return h.queryFailed(ctx, err)
	}

	if len(records) == 0 {
		return alexa.Tell(speechNoAlarms)
	}

	items, err := h.listItems(ctx, records, func(_ alarm.Record, when string) (string, string, string) {
		return spokenCamera, when, ""
	})
	if err != nil {
		return h.failed(ctx, "cannot locate alarm image", err)
	}

	attrs, err := sessionState{Alarms: records}.encode()
	if err != nil {
		return h.failed(ctx, "cannot save session", err)
	}

	return alexa.ShowImageList(alexa.Content{
		Title:    fmt.Sprintf("Most recent alarms from %s for %s.", spokenCamera, subject.Spoken),
		Items:    items,
		Hint:     hintSelect,
		Speech:   fmt.Sprintf("Showing most recent alarms from %s for %s", spokenCamera, subject.Spoken),
		Reprompt: speechSomethingElse,
	}).WithSession(attrs)
}

// selectItem shows one alarm of the list displayed earlier in the session. The token is
// the one-based position in that list.
func (h *EventHandler) selectItem(ctx context.Context, req alexa.Request, token string) *alexa.Response {
	state, err := decodeSession(req.Session.Attributes)
	if err != nil {
		return h.failed(ctx, "cannot read session", err)
	}

	n, err := strconv.Atoi(token)
	if err != nil || n < 1 || n > len(state.Alarms) {
		h.logger.WarnContext(
			ctx,
			"invalid list selection",
			slog.String("token", token),
			slog.Int("listSize", len(state.Alarms)),
		)
		return alexa.Tell(speechCannotComplete)
	}

	selected := state.Alarms[n-1]
	state.Record = &selected

	attrs, err := state.encode()
	if err != nil {
		return h.failed(ctx, "cannot save session", err)
	}

	imageURL, err := h.opts.Locator.ImageURL(ctx, selected)
	if err != nil {
		return h.failed(ctx, "cannot locate alarm image", err)
	}

	return alexa.ShowImage(alexa.Content{
		Title:    selected.CameraName,
		Body:     formatEventTime(selected.EventTime, h.opts.Location),
		ImageURL: imageURL,
		Hint:     hintVideo,
		Speech:   speechSelected,
		Reprompt: speechSomethingElse,
	}).WithSession(attrs)
}

// alarmClip requests a video of the alarm the user is looking at, or of the newest event
// of the named camera when no alarm is in the session.
func (h *EventHandler) alarmClip(ctx context.Context, req alexa.Request) *alexa.Response {
	state, err := decodeSession(req.Session.Attributes)
	if err != nil {
		return h.failed(ctx, "cannot read session", err)
	}

	needsDisplay := !h.opts.Sender.Async()

	var r clip.Range
	if state.Record != nil {
		if needsDisplay && !req.SupportsDisplay() {
			return alexa.Tell(speechNoVideo)
		}
		r = clip.InSession(state.EventID, state.FrameID)
	} else {
		spoken := req.Slot(slotLocation)
		if spoken == "" {
			h.logger.WarnContext(ctx, "clip request without camera")
			return alexa.Tell(speechCannotComplete)
		}

		camera, ok := h.opts.Catalog.ResolveCamera(spoken)
		if !ok {
			h.logger.WarnContext(ctx, "unknown camera", slog.String("camera", spoken))
			return alexa.Tell(speechCameraNotFound)
		}

		records, err := h.opts.Alarms.Fetch(ctx, alarm.Query{Camera: camera, Count: clip.LookbackRecords})
		if err != nil {
			return h.queryFailed(ctx, err)
		}

		if len(records) == 0 {
			return alexa.Tell(speechNoAlarms)
		}

		if needsDisplay && !req.SupportsDisplay() {
			return alexa.Tell(speechNoVideo)
		}

		if r, err = clip.FromRecords(records); err != nil {
			return h.failed(ctx, "cannot build clip range", err)
		}
	}

	h.logger.InfoContext(
		ctx,
		"requesting alarm clip",
		slog.Int64("eventId", r.EventID),
		slog.Int64("startFrame", r.StartFrame),
		slog.Int64("endFrame", r.EndFrame),
	)

	wait := h.pleaseWait(ctx, req)
	err = h.opts.Sender.Send(ctx, r)
	wait()
	if err != nil {
		return h.failed(ctx, "cannot request alarm clip", err)
	}

	if h.opts.Sender.Async() {
		return alexa.Tell(speechClipRequested)
	}

	return alexa.ShowVideo(h.opts.ClipVideoURI, titleVideo, speechShowingClip)
}

// camerasFor resolves the Location slot. An empty slot selects every camera.
func (h *EventHandler) camerasFor(ctx context.Context, req alexa.Request) ([]string, *alexa.Response) {
	spoken := req.Slot(slotLocation)
	if spoken == "" {
		return h.opts.Catalog.CameraNames(), nil
	}

	camera, ok := h.opts.Catalog.ResolveCamera(spoken)
	if !ok {
		h.logger.WarnContext(ctx, "unknown camera", slog.String("camera", spoken))
		return nil, alexa.Tell(speechCameraNotFound)
	}

	return []string{camera}, nil
}

type itemText func(r alarm.Record, when string) (description, primary, secondary string)

func (h *EventHandler) listItems(ctx context.Context, records []alarm.Record, text itemText) ([]alexa.ListItem, error) {
	items := make([]alexa.ListItem, 0, len(records))
	for i, r := range records {
		imageURL, err := h.opts.Locator.ImageURL(ctx, r)
		if err != nil {
			return nil, err
		}

		description, primary, secondary := text(r, formatEventTime(r.EventTime, h.opts.Location))
		items = append(items, alexa.NewImageListItem(strconv.Itoa(i+1), imageURL, description, primary, secondary))
	}
	return items, nil
}

// pleaseWait starts a progressive response and returns a function that waits for it.
func (h *EventHandler) pleaseWait(ctx context.Context, req alexa.Request) func() {
	if h.opts.Progress == nil {
		return func() {}
	}

	var wg conc.WaitGroup
	wg.Go(func() {
		if err := h.opts.Progress.Speak(ctx, req, speechPleaseWait); err != nil {
			h.logger.WarnContext(ctx, "cannot send progressive response", slog.String("error", err.Error()))
		}
	})

	return wg.Wait
}

func (h *EventHandler) queryFailed(ctx context.Context, err error) *alexa.Response {
	attrs := []any{slog.String("error", err.Error())}

	var timeoutErr *alarm.TimeoutError
	var storeErr *alarm.StoreQueryError
	switch {
	case errors.As(err, &timeoutErr):
		attrs = append(attrs, slog.String("camera", timeoutErr.Camera), slog.Duration("timeout", timeoutErr.Timeout))
	case errors.As(err, &storeErr):
		attrs = append(attrs, slog.String("camera", storeErr.Camera))
	}

	h.logger.ErrorContext(ctx, "cannot query alarms", attrs...)
	return alexa.Tell(speechCannotComplete)
}

func (h *EventHandler) failed(ctx context.Context, msg string, err error) *alexa.Response {
	h.logger.ErrorContext(ctx, msg, slog.String("error", err.Error()))
	return alexa.Tell(speechCannotComplete)
}
