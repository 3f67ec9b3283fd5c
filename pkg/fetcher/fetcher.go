// Package fetcher implements language selection and translation fallback
// on top of a transcript Source. It tries the cheapest path first and
// degrades gracefully: direct fetch, exact language match, machine
// translation, and finally the first transcript available in any language.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"unicode"

	"github.com/rs/zerolog"

	"github.com/ytfetch/transcript-service/pkg/transcript"
)

// Fetcher resolves a complete transcript Result for one video. It
// implements transcript.Fetcher.
type Fetcher struct {
	source transcript.Source
	logger zerolog.Logger
}

// New creates a fetcher over the given source.
func New(source transcript.Source, logger zerolog.Logger) *Fetcher {
	return &Fetcher{
		source: source,
		logger: logger,
	}
}

// Fetch runs the fallback ladder for one video. It never returns nil and
// never propagates an error: every failure is converted into a Result with
// a descriptive message.
func (f *Fetcher) Fetch(ctx context.Context, videoID, language string) *transcript.Result {
	// Cheapest path: direct fetch in the target language.
	entries, err := f.source.FetchDirect(ctx, videoID, language)
	if err == nil {
		if verr := transcript.ValidateEntries(entries); verr != nil {
			return transcript.ErrorResult(videoID, fmt.Sprintf("error fetching %s transcript: %v", language, verr))
		}
		return &transcript.Result{
			VideoID:      videoID,
			Status:       transcript.StatusSuccess,
			Language:     titleCase(language),
			LanguageCode: language,
			Entries:      entries,
		}
	}

	if errors.Is(err, transcript.ErrDisabled) {
		return transcript.ErrorResult(videoID, "transcripts are disabled for this video")
	}
	if !errors.Is(err, transcript.ErrNotFound) {
		return transcript.ErrorResult(videoID, fmt.Sprintf("error fetching %s transcript: %v", language, err))
	}

	// Nothing in the target language directly; enumerate what exists.
	available, err := f.source.ListAvailable(ctx, videoID)
	if err != nil {
		if errors.Is(err, transcript.ErrDisabled) {
			return transcript.ErrorResult(videoID, "transcripts are disabled for this video")
		}
		return transcript.ErrorResult(videoID, fmt.Sprintf("error listing transcripts: %v", err))
	}

	if len(available) == 0 {
		return transcript.NoTranscriptResult(videoID, "no transcripts found for this video in any language")
	}

	f.logger.Debug().
		Str("video_id", videoID).
		Str("language", language).
		Int("available", len(available)).
		Msg("Direct fetch missed - selecting from available transcripts")

	// Exact language match beats translation.
	for _, desc := range available {
		if desc.LanguageCode() == language {
			return f.fetchDescriptor(ctx, videoID, desc)
		}
	}

	// Translatable transcript: attempt machine translation, falling back
	// to the untranslated original when translation fails.
	for _, desc := range available {
		if desc.IsTranslatable() {
			return f.translateDescriptor(ctx, videoID, language, desc)
		}
	}

	// Last resort: first transcript in any language.
	return f.fetchDescriptor(ctx, videoID, available[0])
}

// fetchDescriptor downloads and validates one transcript.
func (f *Fetcher) fetchDescriptor(ctx context.Context, videoID string, desc transcript.Descriptor) *transcript.Result {
	entries, err := desc.Fetch(ctx)
	if err == nil {
		err = transcript.ValidateEntries(entries)
	}
	if err != nil {
		return transcript.ErrorResult(videoID, fmt.Sprintf("error fetching %s transcript: %v", desc.LanguageCode(), err))
	}

	return &transcript.Result{
		VideoID:        videoID,
		Status:         transcript.StatusSuccess,
		Language:       desc.Language(),
		LanguageCode:   desc.LanguageCode(),
		IsGenerated:    desc.IsGenerated(),
		IsTranslatable: desc.IsTranslatable(),
		Entries:        entries,
	}
}

// translateDescriptor machine-translates desc into the target language.
// The original transcript is fetched first so translation failures can
// fall back to it with an explanatory note.
func (f *Fetcher) translateDescriptor(ctx context.Context, videoID, language string, desc transcript.Descriptor) *transcript.Result {
	original, err := desc.Fetch(ctx)
	if err == nil {
		err = transcript.ValidateEntries(original)
	}
	if err != nil {
		return transcript.ErrorResult(videoID, fmt.Sprintf("error fetching transcript: %v", err))
	}

	translated, terr := f.translate(ctx, language, desc)
	if terr != nil {
		f.logger.Debug().
			Str("video_id", videoID).
			Str("language", language).
			Err(terr).
			Msg("Translation failed - using original transcript")

		return &transcript.Result{
			VideoID:        videoID,
			Status:         transcript.StatusSuccess,
			Language:       desc.Language(),
			LanguageCode:   desc.LanguageCode(),
			IsGenerated:    desc.IsGenerated(),
			IsTranslatable: true,
			Entries:        original,
			Error:          fmt.Sprintf("translation failed: %v; using original transcript", terr),
		}
	}

	return &transcript.Result{
		VideoID:        videoID,
		Status:         transcript.StatusSuccess,
		Language:       fmt.Sprintf("%s (Translated)", titleCase(language)),
		LanguageCode:   language,
		IsGenerated:    desc.IsGenerated(),
		IsTranslatable: true,
		Entries:        translated,
	}
}

// translate resolves the translated variant and downloads its entries.
func (f *Fetcher) translate(ctx context.Context, language string, desc transcript.Descriptor) ([]transcript.Entry, error) {
	variant, err := desc.Translate(language)
	if err != nil {
		return nil, err
	}

	entries, err := variant.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	if err := transcript.ValidateEntries(entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// titleCase upper-cases the first rune of a language code for display
// ("en" -> "En").
func titleCase(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
