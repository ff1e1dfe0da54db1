// Package transcript stores audio transcriptions and searches them.
//
// A transcript is a sequence of timed segments persisted as a single JSON
// document per recording. The package also provides fuzzy phrase search over
// segments (see [Searcher]) so that spoken commands like "find the part about
// pricing" can resolve to a playback position even when the query does not
// match the transcript text verbatim.
package transcript

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

// ErrNotFound is returned by [Store.Load] when no transcript exists for the
// requested recording.
var ErrNotFound = errors.New("transcript: not found")

// Word is a single recognised word with its timing.
type Word struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Segment is a contiguous span of speech.
type Segment struct {
	ID    int     `json:"id"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
	Words []Word  `json:"words,omitempty"`
}

// Transcript is the full transcription of one recording.
type Transcript struct {
	RecordingID string    `json:"recording_id"`
	Language    string    `json:"language,omitempty"`
	Duration    float64   `json:"duration,omitempty"`
	Segments    []Segment `json:"segments"`
}

// Store persists transcripts as one JSON file per recording inside a
// directory, named "<id>_transcription.json". IDs are restricted to a safe
// character set so a recording ID can never escape the directory.
type Store struct {
	dir string
}

// safeID guards against path traversal in recording IDs.
var safeID = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// NewStore creates a Store rooted at dir, creating the directory if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("transcript: create store dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Load reads the transcript for the given recording ID.
func (s *Store) Load(id string) (*Transcript, error) {
	path, err := s.pathFor(id)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("transcript: load %q: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("transcript: load %q: %w", id, err)
	}
	var t Transcript
	if err := json.Unmarshal(b, &t); err != nil {
		return nil, fmt.Errorf("transcript: decode %q: %w", id, err)
	}
	if t.RecordingID == "" {
		t.RecordingID = id
	}
	return &t, nil
}

// Save writes the transcript for the given recording ID, replacing any
// previous version atomically.
func (s *Store) Save(id string, t *Transcript) error {
	path, err := s.pathFor(id)
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return fmt.Errorf("transcript: encode %q: %w", id, err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("transcript: write %q: %w", id, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("transcript: write %q: %w", id, err)
	}
	return nil
}

// Exists reports whether a transcript is stored for the given recording ID.
func (s *Store) Exists(id string) bool {
	path, err := s.pathFor(id)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

func (s *Store) pathFor(id string) (string, error) {
	if !safeID.MatchString(id) {
		return "", fmt.Errorf("transcript: invalid recording id %q", id)
	}
	return filepath.Join(s.dir, id+"_transcription.json"), nil
}
