// Package transcript defines the transcript data model shared by the
// fetcher, orchestration, and HTTP layers: result/entry types, the Source
// capability interface, and the error taxonomy.
package transcript

// Status classifies the outcome of a transcript fetch.
type Status string

const (
	// StatusSuccess indicates transcript entries were retrieved.
	StatusSuccess Status = "success"

	// StatusNoTranscript indicates the video has no transcript in any language.
	StatusNoTranscript Status = "no_transcript"

	// StatusError indicates the fetch failed.
	StatusError Status = "error"
)

// Entry is a single timed transcript line.
type Entry struct {
	Text     string  `json:"text"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
}

// Result is the outcome of fetching a transcript for one video.
// It is constructed fresh per call and immutable once returned, except for
// ProcessingTime which the orchestration layer back-fills after the
// pipeline completes.
type Result struct {
	// VideoID is the video this result belongs to.
	VideoID string `json:"video_id"`

	// Status is the content-level outcome.
	Status Status `json:"status"`

	// Language is the display name of the transcript language
	// (e.g. "English", "Spanish (Translated)"). Empty on failure.
	Language string `json:"language,omitempty"`

	// LanguageCode is the BCP-47 style code (e.g. "en"). Empty on failure.
	LanguageCode string `json:"language_code,omitempty"`

	// IsGenerated is true for auto-generated transcripts.
	IsGenerated bool `json:"is_generated"`

	// IsTranslatable is true when the transcript supports machine translation.
	IsTranslatable bool `json:"is_translatable"`

	// Entries holds the transcript lines. Present only on StatusSuccess.
	Entries []Entry `json:"transcript,omitempty"`

	// Error carries a human-readable message on StatusError/StatusNoTranscript.
	// It may also annotate a StatusSuccess that used a fallback path
	// (e.g. translation failed and the original transcript was returned).
	Error string `json:"error,omitempty"`

	// ProcessingTime is the wall-clock duration of the call in seconds.
	ProcessingTime float64 `json:"processing_time"`
}

// IsSuccess reports whether the result carries transcript entries.
func (r *Result) IsSuccess() bool {
	return r.Status == StatusSuccess
}

// ErrorResult builds a StatusError result for a video.
func ErrorResult(videoID, msg string) *Result {
	return &Result{
		VideoID: videoID,
		Status:  StatusError,
		Error:   msg,
	}
}

// NoTranscriptResult builds a StatusNoTranscript result for a video.
func NoTranscriptResult(videoID, msg string) *Result {
	return &Result{
		VideoID: videoID,
		Status:  StatusNoTranscript,
		Error:   msg,
	}
}
