package handler

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/ab0utbla-k/zm-alarm-skill/internal/alarm"
	"github.com/ab0utbla-k/zm-alarm-skill/internal/alexa"
	"github.com/ab0utbla-k/zm-alarm-skill/internal/clip"
)

// FetcherMock is a mock implementation of the alarm.Fetcher interface.
type FetcherMock struct {
	mock.Mock
}

func (m *FetcherMock) Fetch(ctx context.Context, q alarm.Query) ([]alarm.Record, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]alarm.Record), args.Error(1)
}

func (m *FetcherMock) FetchAcrossCameras(ctx context.Context, cameras []string, filter alarm.Filter, perCameraCount int) ([]alarm.Record, error) {
	args := m.Called(ctx, cameras, filter, perCameraCount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]alarm.Record), args.Error(1)
}

// SenderMock is a mock implementation of the dispatch.Sender interface.
type SenderMock struct {
	mock.Mock
}

func (m *SenderMock) Send(ctx context.Context, r clip.Range) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *SenderMock) Async() bool {
	args := m.Called()
	return args.Bool(0)
}

// LocatorMock is a mock implementation of the media.Locator interface.
type LocatorMock struct {
	mock.Mock
}

func (m *LocatorMock) ImageURL(ctx context.Context, rec alarm.Record) (string, error) {
	args := m.Called(ctx, rec)
	return args.String(0), args.Error(1)
}

// ProgressMock is a mock implementation of the alexa.Progress interface.
type ProgressMock struct {
	mock.Mock
}

func (m *ProgressMock) Speak(ctx context.Context, req alexa.Request, speech string) error {
	args := m.Called(ctx, req, speech)
	return args.Error(0)
}

// FlusherMock is a mock implementation of the Flusher interface.
type FlusherMock struct {
	mock.Mock
}

func (m *FlusherMock) Flush(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
