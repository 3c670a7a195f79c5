package alarm

import (
	"fmt"
	"slices"
	"time"
)

// Record is a single alarm frame as indexed in the alarm-frames table.
// Records are read-only projections; the engine never writes them back.
type Record struct {
	CameraName    string   `json:"ZmCameraName" dynamodbav:"ZmCameraName"`
	EventDateTime string   `json:"ZmEventDateTime" dynamodbav:"ZmEventDateTime"`
	EventID       int64    `json:"ZmEventId" dynamodbav:"ZmEventId"`
	FrameID       int64    `json:"ZmFrameId" dynamodbav:"ZmFrameId"`
	StorageKey    string   `json:"S3Key" dynamodbav:"S3Key"`
	LocalPath     string   `json:"ZmLocalEventPath" dynamodbav:"ZmLocalEventPath"`
	Labels        []string `json:"Labels,omitempty" dynamodbav:"Labels,omitempty"`
	IsAlert       bool     `json:"-" dynamodbav:"-"`

	// EventTime is EventDateTime parsed; it is the sort key of every result list.
	EventTime time.Time `json:"-" dynamodbav:"-"`
}

// Filter narrows a query to frames carrying a detected label.
// Face and Object are mutually exclusive; when both are set Face wins and Object is ignored.
type Filter struct {
	Face   string
	Object string
}

// label returns the expression placeholder and value used to filter on Labels.
func (f Filter) label() (string, string, bool) {
	switch {
	case f.Face != "":
		return ":face", f.Face, true
	case f.Object != "":
		return ":object", f.Object, true
	default:
		return "", "", false
	}
}

// Query describes one logical single-camera query.
type Query struct {
	Camera string
	Filter Filter
	Count  int
}

func (q Query) validate() error {
	if q.Camera == "" {
		return fmt.Errorf("%w: camera name is empty", ErrInvalidQuery)
	}
	if q.Count <= 0 {
		return fmt.Errorf("%w: count must be positive, got %d", ErrInvalidQuery, q.Count)
	}
	return nil
}

var eventTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05.000",
}

// ParseEventTime parses the ISO-8601-like timestamps written by the ZoneMinder uploader.
// Timestamps without a zone are taken as UTC.
func ParseEventTime(s string) (time.Time, error) {
	for _, layout := range eventTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse event time %q", s)
}

// SortNewestFirst orders records by EventTime descending.
// The sort is stable: records with equal timestamps keep their relative input order.
func SortNewestFirst(records []Record) {
	slices.SortStableFunc(records, func(a, b Record) int {
		return b.EventTime.Compare(a.EventTime)
	})
}

// Latest returns the newest record of an already sorted list.
func Latest(records []Record) (Record, bool) {
	if len(records) == 0 {
		return Record{}, false
	}
	return records[0], true
}

// Window returns at most n leading records without copying or reordering.
func Window(records []Record, n int) []Record {
	if n < 0 || n >= len(records) {
		return records
	}
	return records[:n]
}
