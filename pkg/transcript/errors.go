package transcript

import (
	"errors"
	"strings"
)

// Errors signaled by Source implementations and the dispatch layer.
var (
	// ErrDisabled indicates the video forbids transcript access. Terminal.
	ErrDisabled = errors.New("transcripts are disabled for this video")

	// ErrNotFound indicates no transcript exists in the requested language.
	ErrNotFound = errors.New("no transcript found")

	// ErrTimeout indicates a dispatch exceeded its deadline. Terminal per
	// attempt; the orchestrator does not retry timeouts.
	ErrTimeout = errors.New("timeout")
)

// transientPatterns are error-message fragments that identify a malformed
// or empty response from the remote source. The upstream endpoint
// intermittently returns truncated XML, which surfaces as "no element found".
var transientPatterns = []string{
	"no element found",
	"malformed",
	"empty transcript",
}

// IsTransient reports whether an error message matches a known transient
// failure pattern and is therefore worth retrying.
func IsTransient(msg string) bool {
	if msg == "" {
		return false
	}
	lower := strings.ToLower(msg)
	for _, p := range transientPatterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// ValidateEntries checks that a fetched transcript is a non-empty,
// well-formed sequence. A nil error means the entries are usable.
func ValidateEntries(entries []Entry) error {
	if len(entries) == 0 {
		return errors.New("empty transcript: no element found in response")
	}
	for _, e := range entries {
		if e.Start < 0 || e.Duration < 0 {
			return errors.New("malformed transcript entry: negative timing")
		}
	}
	return nil
}
