package internal

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) FetchCues(ctx context.Context, videoID string) ([]Cue, error) {
	args := m.Called(ctx, videoID)
	cues, _ := args.Get(0).([]Cue)
	return cues, args.Error(1)
}

type mockMetadata struct {
	mock.Mock
}

func (m *mockMetadata) Metadata(ctx context.Context, videoID string) (*VideoMetadata, error) {
	args := m.Called(ctx, videoID)
	md, _ := args.Get(0).(*VideoMetadata)
	return md, args.Error(1)
}

type mockClipboard struct {
	mock.Mock
}

func (m *mockClipboard) WriteAll(text string) error {
	return m.Called(text).Error(0)
}
