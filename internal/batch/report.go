package batch

import (
	"fmt"
	"strings"
	"time"

	"elevation-marker/internal/matcher"
)

// ViewSummary counts the attempts made in one view.
type ViewSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Attempted int    `json:"attempted"`
	Succeeded int    `json:"succeeded"`
	Committed bool   `json:"committed"`
}

// Report is the full record of one batch run. Results hold every attempt,
// views x elements of them, in processing order.
type Report struct {
	RunID       string            `json:"run_id"`
	Started     time.Time         `json:"started"`
	Finished    time.Time         `json:"finished"`
	Mode        string            `json:"mode"`
	Direction   string            `json:"direction,omitempty"`
	Side        string            `json:"side"`
	Chain       []string          `json:"chain"`
	Views       []ViewSummary     `json:"views"`
	Results     []Result          `json:"results"`
	Diagnostics []string          `json:"diagnostics,omitempty"`
	Matches     []matcher.Outcome `json:"matches"`
}

// Total returns the number of markers placed.
func (r *Report) Total() int {
	n := 0
	for _, v := range r.Views {
		n += v.Succeeded
	}
	return n
}

// Failures returns one message per failed attempt, in order.
func (r *Report) Failures() []string {
	var out []string
	for _, res := range r.Results {
		if res.Success {
			continue
		}
		msg := fmt.Sprintf("%s / %s: [%s] %s", res.ViewName, res.ElementID, res.Kind, res.Error)
		if len(res.Diagnostics) > 0 {
			msg += " (" + strings.Join(res.Diagnostics, "; ") + ")"
		}
		out = append(out, msg)
	}
	return out
}

// Format renders the summary shown to the user. At most limit failure
// messages are listed; a non-positive limit lists none.
func (r *Report) Format(limit int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Placed %d of %d elevation markers in %d view(s)\n",
		r.Total(), len(r.Results), len(r.Views))
	for _, v := range r.Views {
		status := ""
		if !v.Committed {
			status = " (not committed)"
		}
		fmt.Fprintf(&b, "  %-24s %d/%d%s\n", v.Name, v.Succeeded, v.Attempted, status)
	}

	failures := r.Failures()
	if len(failures) > 0 {
		fmt.Fprintf(&b, "\nFailed (%d):\n", len(failures))
		shown := failures
		if limit < 0 {
			limit = 0
		}
		if len(shown) > limit {
			shown = shown[:limit]
		}
		for _, f := range shown {
			fmt.Fprintf(&b, "  %s\n", f)
		}
		if rest := len(failures) - len(shown); rest > 0 {
			fmt.Fprintf(&b, "  ... and %d more\n", rest)
		}
	}

	if len(r.Diagnostics) > 0 {
		b.WriteString("\nDiagnostics:\n")
		for _, d := range r.Diagnostics {
			fmt.Fprintf(&b, "  %s\n", d)
		}
	}
	return b.String()
}
