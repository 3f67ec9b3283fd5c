// Package jsondir implements a transcript Source backed by a local
// directory of JSON files. It serves pre-downloaded transcript archives
// without any network access.
//
// Layout: <root>/<videoID>/<languageCode>.json, one file per transcript:
//
//	{
//	  "language": "English",
//	  "language_code": "en",
//	  "is_generated": false,
//	  "transcript": [{"text": "...", "start": 0.0, "duration": 2.0}]
//	}
package jsondir

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ytfetch/transcript-service/pkg/transcript"
)

// transcriptFile is the on-disk transcript format.
type transcriptFile struct {
	Language     string             `json:"language"`
	LanguageCode string             `json:"language_code"`
	IsGenerated  bool               `json:"is_generated"`
	Entries      []transcript.Entry `json:"transcript"`
}

// Source reads transcripts from a local directory tree. It implements
// transcript.Source.
type Source struct {
	root string
}

// New creates a source over the given root directory. The directory does
// not need to exist yet; missing videos simply report no transcripts.
func New(root string) *Source {
	return &Source{root: root}
}

// FetchDirect reads the transcript file for the exact language code.
func (s *Source) FetchDirect(ctx context.Context, videoID, language string) ([]transcript.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := s.transcriptPath(videoID, language+".json")
	if err != nil {
		return nil, err
	}

	tf, err := readTranscriptFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("no %s transcript for %s: %w", language, videoID, transcript.ErrNotFound)
		}
		return nil, err
	}

	return tf.Entries, nil
}

// ListAvailable enumerates all transcript files for the video, sorted by
// language code. An unknown video yields an empty listing.
func (s *Source) ListAvailable(ctx context.Context, videoID string) ([]transcript.Descriptor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dir, err := s.transcriptPath(videoID, "")
	if err != nil {
		return nil, err
	}

	files, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list transcripts for %s: %w", videoID, err)
	}

	var descriptors []transcript.Descriptor
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".json") {
			continue
		}

		path := filepath.Join(dir, f.Name())
		tf, err := readTranscriptFile(path)
		if err != nil {
			// Skip unreadable files rather than failing the whole listing.
			continue
		}

		code := tf.LanguageCode
		if code == "" {
			code = strings.TrimSuffix(f.Name(), ".json")
		}
		language := tf.Language
		if language == "" {
			language = code
		}

		descriptors = append(descriptors, &descriptor{
			path:      path,
			language:  language,
			code:      code,
			generated: tf.IsGenerated,
		})
	}

	sort.Slice(descriptors, func(i, j int) bool {
		return descriptors[i].LanguageCode() < descriptors[j].LanguageCode()
	})

	return descriptors, nil
}

// transcriptPath joins root, videoID and name, rejecting path traversal in
// caller-supplied components.
func (s *Source) transcriptPath(videoID, name string) (string, error) {
	for _, component := range []string{videoID, strings.TrimSuffix(name, ".json")} {
		if component == "" {
			continue
		}
		if strings.ContainsAny(component, `/\`) || component == "." || component == ".." {
			return "", fmt.Errorf("invalid path component %q", component)
		}
	}
	return filepath.Join(s.root, videoID, name), nil
}

func readTranscriptFile(path string) (*transcriptFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	tf := &transcriptFile{}
	if err := json.Unmarshal(data, tf); err != nil {
		return nil, fmt.Errorf("malformed transcript file %s: %w", filepath.Base(path), err)
	}
	return tf, nil
}

// descriptor is a lazily-loaded transcript file.
type descriptor struct {
	path      string
	language  string
	code      string
	generated bool
}

func (d *descriptor) Language() string     { return d.language }
func (d *descriptor) LanguageCode() string { return d.code }
func (d *descriptor) IsGenerated() bool    { return d.generated }

// IsTranslatable is always false: a local archive has no translation
// backend.
func (d *descriptor) IsTranslatable() bool { return false }

func (d *descriptor) Fetch(ctx context.Context) ([]transcript.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tf, err := readTranscriptFile(d.path)
	if err != nil {
		return nil, err
	}
	return tf.Entries, nil
}

func (d *descriptor) Translate(language string) (transcript.Descriptor, error) {
	return nil, fmt.Errorf("translation is not supported by the local archive source")
}
