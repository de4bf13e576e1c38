package content

import (
	"errors"
	"fmt"
	"time"
)

// ErrUnknownContent is returned for content identifiers that do not exist.
var ErrUnknownContent = errors.New("unknown content")

// LoadError wraps a failure to read or parse an existing content set.
type LoadError struct {
	ID  string
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("loading content %q: %v", e.ID, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

type Question struct {
	Prompt string  `yaml:"prompt" json:"prompt"`
	Answer float64 `yaml:"answer" json:"-"`
}

// Set is an immutable, ordered list of questions sharing one round duration.
type Set struct {
	ID                   string     `yaml:"id" json:"id"`
	Title                string     `yaml:"title" json:"title"`
	RoundDurationSeconds int        `yaml:"round_duration_seconds" json:"round_duration_seconds"`
	Questions            []Question `yaml:"questions" json:"-"`
}

func (s *Set) RoundDuration() time.Duration {
	return time.Duration(s.RoundDurationSeconds) * time.Second
}

func (s *Set) Len() int {
	return len(s.Questions)
}

func (s *Set) Validate() error {
	if s.RoundDurationSeconds <= 0 {
		return fmt.Errorf("round_duration_seconds must be positive, got %d", s.RoundDurationSeconds)
	}
	for i, q := range s.Questions {
		if q.Prompt == "" {
			return fmt.Errorf("question %d has an empty prompt", i)
		}
	}
	return nil
}
