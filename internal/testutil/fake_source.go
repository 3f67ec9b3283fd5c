// Package testutil provides scripted transcript sources for testing the
// fetch pipeline without a real remote provider.
package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ytfetch/transcript-service/pkg/transcript"
)

// Entries builds n well-formed transcript entries.
func Entries(n int) []transcript.Entry {
	entries := make([]transcript.Entry, n)
	for i := range entries {
		entries[i] = transcript.Entry{
			Text:     fmt.Sprintf("line %d", i+1),
			Start:    float64(i) * 2.0,
			Duration: 2.0,
		}
	}
	return entries
}

// FakeDescriptor is a scripted transcript.Descriptor.
type FakeDescriptor struct {
	Lang         string
	Code         string
	Generated    bool
	Translatable bool

	FetchEntries []transcript.Entry
	FetchErr     error

	TranslateTo  map[string][]transcript.Entry
	TranslateErr error
}

func (d *FakeDescriptor) Language() string     { return d.Lang }
func (d *FakeDescriptor) LanguageCode() string { return d.Code }
func (d *FakeDescriptor) IsGenerated() bool    { return d.Generated }
func (d *FakeDescriptor) IsTranslatable() bool { return d.Translatable }

func (d *FakeDescriptor) Fetch(ctx context.Context) ([]transcript.Entry, error) {
	if d.FetchErr != nil {
		return nil, d.FetchErr
	}
	return d.FetchEntries, nil
}

func (d *FakeDescriptor) Translate(language string) (transcript.Descriptor, error) {
	if d.TranslateErr != nil {
		return nil, d.TranslateErr
	}
	entries, ok := d.TranslateTo[language]
	if !ok {
		return nil, fmt.Errorf("no translation scripted for %q", language)
	}
	return &FakeDescriptor{
		Lang:         language,
		Code:         language,
		Generated:    d.Generated,
		Translatable: true,
		FetchEntries: entries,
	}, nil
}

// FakeVideo scripts the behavior of one video.
type FakeVideo struct {
	// Direct maps language code to entries served by FetchDirect.
	Direct map[string][]transcript.Entry

	// Descriptors are returned by ListAvailable.
	Descriptors []*FakeDescriptor

	// Disabled makes every call fail with transcript.ErrDisabled.
	Disabled bool

	// TransientFailures makes the first n FetchDirect calls fail with a
	// transient "no element found" error before behaving normally.
	TransientFailures int

	// Delay is applied to FetchDirect, simulating a slow remote call.
	Delay time.Duration
}

// FakeSource is a scripted transcript.Source. It is safe for concurrent
// use and counts calls per video.
type FakeSource struct {
	mu     sync.Mutex
	videos map[string]*FakeVideo
	direct map[string]int
	list   map[string]int
}

// NewFakeSource creates an empty scripted source.
func NewFakeSource() *FakeSource {
	return &FakeSource{
		videos: make(map[string]*FakeVideo),
		direct: make(map[string]int),
		list:   make(map[string]int),
	}
}

// Add scripts a video.
func (s *FakeSource) Add(videoID string, v *FakeVideo) *FakeSource {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.videos[videoID] = v
	return s
}

// DirectCalls returns how many times FetchDirect ran for a video.
func (s *FakeSource) DirectCalls(videoID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.direct[videoID]
}

// ListCalls returns how many times ListAvailable ran for a video.
func (s *FakeSource) ListCalls(videoID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.list[videoID]
}

// FetchDirect implements transcript.Source.
func (s *FakeSource) FetchDirect(ctx context.Context, videoID, language string) ([]transcript.Entry, error) {
	s.mu.Lock()
	s.direct[videoID]++
	v, ok := s.videos[videoID]
	var (
		delay     time.Duration
		transient bool
	)
	if ok {
		delay = v.Delay
		if v.TransientFailures > 0 {
			v.TransientFailures--
			transient = true
		}
	}
	s.mu.Unlock()

	if delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}

	if !ok {
		return nil, transcript.ErrNotFound
	}
	if v.Disabled {
		return nil, transcript.ErrDisabled
	}
	if transient {
		return nil, fmt.Errorf("parse response: no element found: line 1, column 0")
	}
	if entries, ok := v.Direct[language]; ok {
		return entries, nil
	}
	return nil, transcript.ErrNotFound
}

// ListAvailable implements transcript.Source.
func (s *FakeSource) ListAvailable(ctx context.Context, videoID string) ([]transcript.Descriptor, error) {
	s.mu.Lock()
	s.list[videoID]++
	v, ok := s.videos[videoID]
	s.mu.Unlock()

	if !ok {
		return nil, nil
	}
	if v.Disabled {
		return nil, transcript.ErrDisabled
	}

	descriptors := make([]transcript.Descriptor, len(v.Descriptors))
	for i, d := range v.Descriptors {
		descriptors[i] = d
	}
	return descriptors, nil
}
