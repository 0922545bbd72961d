// Package export writes runs as YAML documents.
package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/tuisplit/internal/run"
	"github.com/verte-zerg/tuisplit/internal/timing"
)

const spanDecimals = 3

// Document is the exported form of a run.
type Document struct {
	Game         string    `yaml:"game"`
	Category     string    `yaml:"category"`
	Offset       string    `yaml:"offset"`
	AttemptCount int       `yaml:"attempt_count"`
	Comparisons  []string  `yaml:"comparisons"`
	Segments     []Segment `yaml:"segments"`
	Attempts     []Attempt `yaml:"attempts,omitempty"`
}

// Segment is one exported segment with its comparison split times.
type Segment struct {
	Name        string          `yaml:"name"`
	BestSegment Time            `yaml:"best_segment"`
	Splits      map[string]Time `yaml:"splits"`
}

// Attempt is one exported attempt.
type Attempt struct {
	Index   int32  `yaml:"index"`
	Time    Time   `yaml:"time"`
	Pause   string `yaml:"pause,omitempty"`
	Started string `yaml:"started,omitempty"`
	Ended   string `yaml:"ended,omitempty"`
}

// Time holds formatted real and game time; missing values are omitted.
type Time struct {
	Real string `yaml:"real,omitempty"`
	Game string `yaml:"game,omitempty"`
}

// FromRun builds the export document for r.
func FromRun(r *run.Run) Document {
	names := r.ComparisonNames()
	doc := Document{
		Game:         r.GameName,
		Category:     r.CategoryName,
		Offset:       timing.FormatDelta(timing.Known(r.Offset), spanDecimals),
		AttemptCount: r.AttemptCount(),
		Comparisons:  names,
		Segments:     make([]Segment, 0, r.Len()),
	}
	for i := range r.Len() {
		seg := r.Segment(i)
		s := Segment{
			Name:        seg.Name,
			BestSegment: fromTime(seg.BestSegmentTime()),
			Splits:      make(map[string]Time, len(names)),
		}
		for _, name := range names {
			if t := seg.Comparison(name); !t.IsEmpty() {
				s.Splits[name] = fromTime(t)
			}
		}
		doc.Segments = append(doc.Segments, s)
	}
	for _, a := range r.AttemptHistory() {
		doc.Attempts = append(doc.Attempts, Attempt{
			Index:   a.Index,
			Time:    fromTime(a.Time),
			Pause:   formatOptional(a.PauseTime),
			Started: formatInstant(a.Started),
			Ended:   formatInstant(a.Ended),
		})
	}
	return doc
}

// Write encodes r as YAML to w.
func Write(w io.Writer, r *run.Run) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(FromRun(r)); err != nil {
		return fmt.Errorf("failed to encode run: %w", err)
	}
	return enc.Close()
}

// WriteFile exports r into dir and returns the written path.
func WriteFile(dir string, r *run.Run) (path string, err error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create export dir: %w", err)
	}
	path = filepath.Join(dir, FileName(r))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create export file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close export file: %w", cerr)
		}
	}()
	if err := Write(f, r); err != nil {
		return "", err
	}
	return path, nil
}

// FileName derives a file name from the run's game and category.
func FileName(r *run.Run) string {
	name := strings.Map(func(c rune) rune {
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			return c
		case c >= 'A' && c <= 'Z':
			return c + ('a' - 'A')
		default:
			return '-'
		}
	}, r.ExtendedName())
	name = strings.Trim(name, "-")
	for strings.Contains(name, "--") {
		name = strings.ReplaceAll(name, "--", "-")
	}
	if name == "" {
		name = "run"
	}
	return name + ".yaml"
}

func fromTime(t timing.Time) Time {
	return Time{
		Real: formatOptional(t.Get(timing.RealTime)),
		Game: formatOptional(t.Get(timing.GameTime)),
	}
}

func formatOptional(o timing.OptionalSpan) string {
	if !o.IsKnown() {
		return ""
	}
	return timing.FormatSpan(o, spanDecimals)
}

func formatInstant(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
