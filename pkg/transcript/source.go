package transcript

import "context"

// Descriptor describes one transcript available for a video, with fixed
// fields rather than loosely shaped remote objects. Implementations are
// provided by the Source; the fetcher never inspects anything beyond this
// interface.
type Descriptor interface {
	// Language is the display name (e.g. "English").
	Language() string

	// LanguageCode is the language code (e.g. "en").
	LanguageCode() string

	// IsGenerated reports whether the transcript is auto-generated.
	IsGenerated() bool

	// IsTranslatable reports whether Translate is expected to work.
	IsTranslatable() bool

	// Fetch downloads the transcript entries.
	Fetch(ctx context.Context) ([]Entry, error)

	// Translate returns a descriptor for a machine-translated variant of
	// this transcript in the given language.
	Translate(language string) (Descriptor, error)
}

// Source is the capability that provides transcripts. The orchestration
// core consumes it but does not implement it; the jsondir package provides
// a local-archive implementation, and network providers plug in the same
// way.
type Source interface {
	// FetchDirect fetches the transcript for a video in the given language.
	// Returns ErrNotFound when no transcript exists in that language.
	FetchDirect(ctx context.Context, videoID, language string) ([]Entry, error)

	// ListAvailable enumerates every transcript available for a video.
	// Returns ErrDisabled when the video forbids transcript access.
	ListAvailable(ctx context.Context, videoID string) ([]Descriptor, error)
}

// Fetcher produces a complete Result for one video, encoding the
// language-selection and translation fallback behavior. The orchestration
// layer dispatches Fetcher calls through the worker pool.
type Fetcher interface {
	Fetch(ctx context.Context, videoID, language string) *Result
}
