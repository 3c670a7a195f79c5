package handler

import (
	"encoding/json"
	"fmt"

	"github.com/ab0utbla-k/zm-alarm-skill/internal/alarm"
)

// sessionState is what the skill remembers between turns. The selected alarm is stored
// at the top level of the session attributes; the last displayed list under Alarms.
type sessionState struct {
	*alarm.Record
	Alarms []alarm.Record `json:"Alarms,omitempty"`
}

func decodeSession(attrs map[string]any) (sessionState, error) {
	var state sessionState
	if len(attrs) == 0 {
		return state, nil
	}

	b, err := json.Marshal(attrs)
	if err != nil {
		return sessionState{}, fmt.Errorf("cannot marshal session attributes: %w", err)
	}

	if err := json.Unmarshal(b, &state); err != nil {
		return sessionState{}, fmt.Errorf("cannot unmarshal session attributes: %w", err)
	}

	if state.Record != nil {
		if err := restoreEventTime(state.Record); err != nil {
			return sessionState{}, err
		}
	}

	for i := range state.Alarms {
		if err := restoreEventTime(&state.Alarms[i]); err != nil {
			return sessionState{}, err
		}
	}

	return state, nil
}

func (s sessionState) encode() (map[string]any, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("cannot marshal session state: %w", err)
	}

	var attrs map[string]any
	if err := json.Unmarshal(b, &attrs); err != nil {
		return nil, fmt.Errorf("cannot unmarshal session state: %w", err)
	}

	return attrs, nil
}

func restoreEventTime(rec *alarm.Record) error {
	t, err := alarm.ParseEventTime(rec.EventDateTime)
	if err != nil {
		return err
	}
	rec.EventTime = t
	rec.IsAlert = true
	return nil
}
