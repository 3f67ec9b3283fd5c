package transcript

import "testing"

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		msg  string
		want bool
	}{
		{"no_element_found", "error fetching en transcript: no element found: line 1, column 0", true},
		{"malformed", "error fetching en transcript: malformed transcript entry: negative timing", true},
		{"empty_transcript", "empty transcript: no element found in response", true},
		{"case_insensitive", "No Element Found", true},
		{"disabled", "transcripts are disabled for this video", false},
		{"timeout", "timeout: fetch did not complete within 10s", false},
		{"empty_message", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTransient(tt.msg); got != tt.want {
				t.Errorf("IsTransient(%q) = %v, want %v", tt.msg, got, tt.want)
			}
		})
	}
}

func TestValidateEntries(t *testing.T) {
	tests := []struct {
		name    string
		entries []Entry
		wantErr bool
	}{
		{"valid", []Entry{{Text: "hi", Start: 0, Duration: 2}}, false},
		{"empty", nil, true},
		{"negative_start", []Entry{{Text: "hi", Start: -1, Duration: 2}}, true},
		{"negative_duration", []Entry{{Text: "hi", Start: 0, Duration: -2}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEntries(tt.entries)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateEntries() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestResultHelpers(t *testing.T) {
	r := ErrorResult("vid1", "boom")
	if r.Status != StatusError || r.VideoID != "vid1" || r.Error != "boom" {
		t.Errorf("ErrorResult built %+v", r)
	}
	if r.IsSuccess() {
		t.Error("Error result must not report success")
	}

	n := NoTranscriptResult("vid2", "none")
	if n.Status != StatusNoTranscript || n.Error != "none" {
		t.Errorf("NoTranscriptResult built %+v", n)
	}
}
