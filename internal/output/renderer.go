package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"

	"github.com/arengifoc/logsort/internal/model"
	"github.com/arengifoc/logsort/internal/pipeline"
)

// Renderer writes pipeline events and the final run summary to an output
// stream.
type Renderer interface {
	Event(ev model.Event) error
	Summary(res *pipeline.Result) error
}

// ---------------------------------------------------------------------------
// Text Renderer (colorized terminal output)
// ---------------------------------------------------------------------------

var (
	styleMoved   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))             // green
	styleSkipped = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))            // yellow
	styleAudited = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))            // gray
	styleFailed  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true) // red bold
	stylePath    = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Faint(true) // cyan
	styleHeader  = lipgloss.NewStyle().Bold(true)
)

// TextRenderer prints events to the terminal with outcome-based colors.
type TextRenderer struct {
	w io.Writer
}

// NewTextRenderer returns a Renderer that writes colorized text to stdout.
func NewTextRenderer() *TextRenderer {
	return &TextRenderer{w: os.Stdout}
}

func (r *TextRenderer) Event(ev model.Event) error {
	tag := styleOutcomeTag(ev.Outcome)
	path := stylePath.Render(ev.Path)

	var detail string
	switch {
	case ev.Error != "":
		detail = ev.Error
	case ev.Outcome == model.OutcomeAudited:
		detail = fmt.Sprintf("%d errores", ev.Count)
	case ev.Service != "":
		detail = "→ " + ev.Service
	}

	_, err := fmt.Fprintf(r.w, "%s %s %s\n", tag, path, detail)
	return err
}

func (r *TextRenderer) Summary(res *pipeline.Result) error {
	header := styleHeader.Render(fmt.Sprintf("Run %s", res.State))
	line := fmt.Sprintf("%s — %d moved, %d skipped, %d audited, %d failed",
		header, res.Moved, res.Skipped, res.Audited, res.Failed())
	if _, err := fmt.Fprintln(r.w, line); err != nil {
		return err
	}

	for _, f := range res.Failures {
		if _, err := fmt.Fprintf(r.w, "  %s %s\n", styleFailed.Render("!"), f); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(r.w, "report: %s\n", res.ReportPath)
	return err
}

func styleOutcomeTag(outcome model.Outcome) string {
	padded := fmt.Sprintf("%-7s", outcome)
	switch outcome {
	case model.OutcomeMoved:
		return styleMoved.Render(padded)
	case model.OutcomeSkipped:
		return styleSkipped.Render(padded)
	case model.OutcomeFailed:
		return styleFailed.Render(padded)
	default:
		return styleAudited.Render(padded)
	}
}

// ---------------------------------------------------------------------------
// JSON Renderer (structured output for piping)
// ---------------------------------------------------------------------------

// JSONRenderer prints each event as a single JSON object per line.
type JSONRenderer struct {
	enc *json.Encoder
}

// NewJSONRenderer returns a Renderer that writes JSON lines to stdout.
func NewJSONRenderer() *JSONRenderer {
	return &JSONRenderer{enc: json.NewEncoder(os.Stdout)}
}

func (r *JSONRenderer) Event(ev model.Event) error {
	return r.enc.Encode(ev)
}

func (r *JSONRenderer) Summary(res *pipeline.Result) error {
	failures := make([]string, 0, len(res.Failures))
	for _, f := range res.Failures {
		failures = append(failures, f.String())
	}
	return r.enc.Encode(struct {
		*pipeline.Result
		Failures []string `json:"failures"`
	}{res, failures})
}
