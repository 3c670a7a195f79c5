// Package clip chooses the frame range of an alarm video.
package clip

import (
	"errors"

	"github.com/ab0utbla-k/zm-alarm-skill/internal/alarm"
)

const (
	// SessionPreFrames and SessionPostFrames surround an alarm the user just viewed.
	SessionPreFrames  = 100
	SessionPostFrames = 100

	// Padding widens a clip built from fetched records.
	Padding = 20
	// MaxFrames caps the length of a clip built from fetched records.
	MaxFrames = 500

	// LookbackRecords is how many alarm frames are fetched to find the start of the latest event.
	LookbackRecords = 100
)

// ErrNoFrames is returned when there is no alarm to build a clip from.
var ErrNoFrames = errors.New("no alarm frames to build a clip from")

// Range identifies the frames of one ZoneMinder event to render as video.
type Range struct {
	EventID    int64
	StartFrame int64
	EndFrame   int64
}

// Frames returns the number of frames covered by the range.
func (r Range) Frames() int64 {
	return r.EndFrame - r.StartFrame
}

// InSession returns the range around a frame the user is already looking at.
func InSession(eventID, frameID int64) Range {
	var start int64
	if frameID > SessionPreFrames {
		start = frameID - SessionPreFrames
	}

	return Range{
		EventID:    eventID,
		StartFrame: start,
		EndFrame:   frameID + SessionPostFrames,
	}
}

// FromRecords builds a range covering the newest event in records, which must be ordered
// newest first. The clip starts at the oldest fetched frame of that event and ends at the
// newest one. Frames below the padding are not padded down; a short end frame is doubled.
func FromRecords(records []alarm.Record) (Range, error) {
	latest, ok := alarm.Latest(records)
	if !ok {
		return Range{}, ErrNoFrames
	}

	start := latest.FrameID
	for _, r := range records {
		if r.EventID == latest.EventID {
			start = r.FrameID
		}
	}
	end := latest.FrameID

	if start < Padding {
		start = 0
	} else {
		start -= Padding
	}

	if end < Padding {
		end += end
	} else {
		end += Padding
	}

	if end-start > MaxFrames {
		end = start + MaxFrames
	}

	return Range{EventID: latest.EventID, StartFrame: start, EndFrame: end}, nil
}
