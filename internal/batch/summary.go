package batch

import (
	"fmt"
	"io"

	"github.com/shinji-kodama/iconbatch/internal/model"
)

// MaxListedErrors caps the number of errors WriteText lists individually.
const MaxListedErrors = 20

// Summary is the outcome of a run. It is built as a fold over IconResults
// with Record, so it can be assembled and tested without a renderer.
type Summary struct {
	// RunID identifies the run in logs and JSON output.
	RunID string `json:"runId"`

	// Succeeded and Total count icons written and icons attempted.
	Succeeded int `json:"succeeded"`
	Total     int `json:"total"`

	// Added and Skipped are the manifest merge counts.
	Added   int `json:"added"`
	Skipped int `json:"skipped"`

	// ManifestReset is set when an existing manifest could not be parsed
	// and was rebuilt from an empty document.
	ManifestReset bool `json:"manifestReset,omitempty"`

	// Generated lists the output names of successful icons in run order.
	Generated []string `json:"generated"`

	// Errors lists failed icons in run order.
	Errors []model.IconResult `json:"errors"`
}

// Record folds one result into the summary.
func (s *Summary) Record(r model.IconResult) {
	s.Total++
	if r.Success {
		s.Succeeded++
		s.Generated = append(s.Generated, r.OutputName)
		return
	}
	s.Errors = append(s.Errors, r)
}

// Failed returns the number of failed icons.
func (s *Summary) Failed() int {
	return len(s.Errors)
}

// WriteText writes the human-readable report:
//
//	Generated 3/4 icons
//	item_texture.json: 2 added, 1 already existed
//	1 errors:
//	  - door_open: texture not found
func (s *Summary) WriteText(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "Generated %d/%d icons\n", s.Succeeded, s.Total); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "item_texture.json: %d added, %d already existed\n", s.Added, s.Skipped); err != nil {
		return err
	}
	if len(s.Errors) == 0 {
		return nil
	}

	if _, err := fmt.Fprintf(w, "%d errors:\n", len(s.Errors)); err != nil {
		return err
	}
	shown := s.Errors
	if len(shown) > MaxListedErrors {
		shown = shown[:MaxListedErrors]
	}
	for _, e := range shown {
		if _, err := fmt.Fprintf(w, "  - %s\n", e); err != nil {
			return err
		}
	}
	if more := len(s.Errors) - len(shown); more > 0 {
		if _, err := fmt.Fprintf(w, "  ... and %d more\n", more); err != nil {
			return err
		}
	}
	return nil
}
