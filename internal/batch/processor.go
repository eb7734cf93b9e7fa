// Package batch places elevation markers for a selection of elements across
// every printable section view of a document.
package batch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"elevation-marker/internal/document"
	"elevation-marker/internal/geom"
	"elevation-marker/internal/leader"
	"elevation-marker/internal/matcher"
	"elevation-marker/internal/placement"
)

// TransactionName is the name given to each per-view transaction.
const TransactionName = "Place elevation markers"

// TemplatePick is the element and face the user picked as the model for all
// other markers.
type TemplatePick struct {
	ElementID string
	Face      string // "<element>:<solid>:<face>"
}

// Config holds everything a batch run needs.
type Config struct {
	Doc       document.Document
	Selection []string // element ids, in selection order

	// Template is nil in simple mode; every element then gets its first
	// referenceable face.
	Template  *TemplatePick
	Direction string
	Side      leader.Side

	AnyFaceFallback bool
	Policy          matcher.Policy
	Style           document.Style

	// MatchLogPath receives the match log at the end of the run. Empty
	// skips writing.
	MatchLogPath string

	Logger   *slog.Logger
	Progress io.Writer
}

// Result holds the outcome of one (view, element) attempt.
type Result struct {
	ViewID      string          `json:"view_id"`
	ViewName    string          `json:"view_name"`
	ElementID   string          `json:"element_id"`
	Approach    string          `json:"approach,omitempty"`
	Handle      document.Handle `json:"handle,omitempty"`
	Success     bool            `json:"success"`
	Kind        document.Kind   `json:"kind,omitempty"`
	Error       string          `json:"error,omitempty"`
	Diagnostics []string        `json:"diagnostics,omitempty"`
}

type run struct {
	cfg      Config
	log      *slog.Logger
	elements []document.Element
	views    []document.View
	chain    placement.Chain
	matches  *matcher.Log
	report   *Report
}

// Run validates the inputs and then attempts every selected element in every
// section view, one transaction per view. Input problems abort with an
// *InputError before the document is touched; everything after that is
// recorded in the report.
func Run(ctx context.Context, cfg Config) (*Report, error) {
	r := &run{cfg: cfg, log: cfg.Logger, matches: matcher.NewLog()}
	if r.log == nil {
		r.log = slog.Default()
	}
	if r.cfg.Side == 0 {
		r.cfg.Side = leader.Right
	}
	if err := r.init(ctx); err != nil {
		return nil, err
	}

	for _, v := range r.views {
		r.processView(v)
	}

	r.finalize()
	return r.report, nil
}

func (r *run) init(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return inputErr(ErrCancelled, "%v", err)
	}

	doc := r.cfg.Doc
	active, ok := doc.ActiveView()
	if !ok {
		return inputErr(ErrNoActiveView, "")
	}
	if len(r.cfg.Selection) == 0 {
		return inputErr(ErrEmptySelection, "")
	}
	for _, id := range r.cfg.Selection {
		el, ok := doc.Element(id)
		if !ok {
			return inputErr(ErrUnknownElement, "%s", id)
		}
		r.elements = append(r.elements, el)
	}

	mode := "simple"
	direction := ""
	if r.cfg.Template == nil {
		r.chain = placement.SimpleChain()
	} else {
		tpl, err := resolveTemplate(doc, active, *r.cfg.Template)
		if err != nil {
			return err
		}
		if r.cfg.Direction == "" {
			return inputErr(ErrNoDirection, "")
		}
		dir, err := matcher.ParseDirection(r.cfg.Direction)
		if err != nil {
			return inputErr(ErrNoDirection, "%v", err)
		}
		m := matcher.Matcher{Policy: r.cfg.Policy}
		r.chain = placement.TemplateChain(tpl, dir, m, r.matches, r.cfg.AnyFaceFallback)
		mode = "template"
		direction = dir.Token
	}

	r.views = document.SectionViews(doc.Views())
	if len(r.views) == 0 {
		return inputErr(ErrNoSectionViews, "")
	}

	r.report = &Report{
		RunID:     uuid.NewString(),
		Started:   time.Now(),
		Mode:      mode,
		Direction: direction,
		Side:      r.cfg.Side.String(),
		Chain:     r.chain.Names(),
	}
	r.log.Info("batch started",
		"run", r.report.RunID,
		"mode", mode,
		"views", len(r.views),
		"elements", len(r.elements))
	return nil
}

// resolveTemplate finds the picked face on the template element as seen in
// the active view and samples its anchor point.
func resolveTemplate(doc document.Document, active document.View, pick TemplatePick) (placement.Template, error) {
	if pick.ElementID == "" || pick.Face == "" {
		return placement.Template{}, inputErr(ErrNoFacePicked, "")
	}
	el, ok := doc.Element(pick.ElementID)
	if !ok {
		return placement.Template{}, inputErr(ErrUnknownElement, "template %s", pick.ElementID)
	}
	ref, err := geom.ParseReference(pick.Face)
	if err != nil {
		return placement.Template{}, inputErr(ErrNoFacePicked, "%v", err)
	}
	if ref.ElementID != el.ID {
		return placement.Template{}, inputErr(ErrNoFacePicked, "face %s is not on %s", ref, el.ID)
	}

	g, err := doc.Geometry(el, document.OptionsFor(active))
	if err != nil {
		return placement.Template{}, inputErr(ErrNoFacePicked, "%v", err)
	}
	f, ok := g.Lookup(ref)
	if !ok {
		return placement.Template{}, inputErr(ErrNoFacePicked, "face %s not found in view %s", ref, active.ID)
	}
	s, ok := geom.SampleSurface(f.Surface)
	if !ok {
		return placement.Template{}, inputErr(ErrNoFacePicked, "face %s cannot be sampled", ref)
	}
	return placement.Template{Element: el, Ref: ref, Point: s.Point}, nil
}

func (r *run) processView(v document.View) {
	doc := r.cfg.Doc
	summary := ViewSummary{ID: v.ID, Name: v.Name, Attempted: len(r.elements)}

	if err := doc.PrepareView(v); err != nil {
		r.diag("view %s: prepare: %v", v.ID, err)
		r.log.Warn("view preparation failed", "view", v.ID, "error", err)
	}

	tx, err := doc.Begin(v, TransactionName)
	if err != nil {
		err = classify(document.KindTransaction, "begin", err)
		for _, el := range r.elements {
			r.report.Results = append(r.report.Results, failed(v, el.ID, err, nil))
		}
		r.report.Views = append(r.report.Views, summary)
		r.log.Error("transaction failed", "view", v.ID, "error", err)
		return
	}

	first := len(r.report.Results)
	for _, el := range r.elements {
		res := r.processElement(v, el)
		if res.Success {
			summary.Succeeded++
		}
		r.report.Results = append(r.report.Results, res)
	}

	if err := tx.Commit(); err != nil {
		err = classify(document.KindTransaction, "commit", err)
		r.log.Error("commit failed", "view", v.ID, "error", err)
		if rbErr := tx.Rollback(); rbErr != nil {
			r.diag("view %s: rollback: %v", v.ID, rbErr)
		}
		for i := first; i < len(r.report.Results); i++ {
			res := &r.report.Results[i]
			if res.Success {
				*res = failed(v, res.ElementID, err, res.Diagnostics)
			}
		}
		summary.Succeeded = 0
	} else {
		summary.Committed = true
	}

	r.report.Views = append(r.report.Views, summary)
	if r.cfg.Progress != nil {
		fmt.Fprintf(r.cfg.Progress, "  [%d/%d] %s: %d/%d placed\n",
			len(r.report.Views), len(r.views), v.Name, summary.Succeeded, summary.Attempted)
	}
}

func (r *run) processElement(v document.View, el document.Element) (res Result) {
	defer func() {
		if p := recover(); p != nil {
			err := document.Wrap(document.KindPanic, "place", errors.Errorf("%v", p))
			res = failed(v, el.ID, err, res.Diagnostics)
			r.log.Error("placement panicked", "view", v.ID, "element", el.ID, "error", err)
		}
	}()

	res = Result{ViewID: v.ID, ViewName: v.Name, ElementID: el.ID}
	t := placement.Target{Doc: r.cfg.Doc, Element: el, View: v}

	att := r.chain.Run(t, func(a placement.Acquired) (document.Handle, error) {
		lg := leader.Compute(v.Direction, v.Up, r.cfg.Side, a.Anchor)
		return r.cfg.Doc.CreateAnnotation(document.AnnotationRequest{
			ViewID:    v.ID,
			ElementID: el.ID,
			Ref:       a.Ref,
			Anchor:    a.Anchor,
			Leader:    document.Leader{Bend: lg.Bend, End: lg.End},
			HasLeader: true,
		})
	})
	res.Diagnostics = att.Diagnostics

	if !att.Succeeded() {
		r.log.Debug("placement failed", "view", v.ID, "element", el.ID, "tried", att.Tried, "error", att.Err)
		return failed(v, el.ID, att.Err, att.Diagnostics)
	}

	res.Success = true
	res.Approach = att.Approach
	res.Handle = att.Handle

	if !r.cfg.Style.IsZero() {
		if err := r.cfg.Doc.ApplyStyle(att.Handle, r.cfg.Style); err != nil {
			err = classify(document.KindStyle, "style", err)
			res.Diagnostics = append(res.Diagnostics, err.Error())
			r.log.Warn("style not applied", "view", v.ID, "element", el.ID, "error", err)
		}
	}
	return res
}

func (r *run) finalize() {
	r.report.Matches = r.matches.Outcomes()
	if r.cfg.MatchLogPath != "" {
		if err := WriteMatchLog(r.cfg.MatchLogPath, r.matches); err != nil {
			r.diag("match log: %v", err)
			r.log.Error("match log not written", "path", r.cfg.MatchLogPath, "error", err)
		}
	}
	r.matches.Reset()
	r.report.Finished = time.Now()

	r.log.Info("batch finished",
		"run", r.report.RunID,
		"placed", r.report.Total(),
		"attempts", len(r.report.Results),
		"duration", r.report.Finished.Sub(r.report.Started))
}

func (r *run) diag(format string, args ...any) {
	r.report.Diagnostics = append(r.report.Diagnostics, fmt.Sprintf(format, args...))
}

func failed(v document.View, elementID string, err error, diags []string) Result {
	return Result{
		ViewID:      v.ID,
		ViewName:    v.Name,
		ElementID:   elementID,
		Kind:        document.KindOf(err),
		Error:       document.Message(err),
		Diagnostics: diags,
	}
}

// classify tags err with kind unless the document already did.
func classify(kind document.Kind, op string, err error) error {
	if document.KindOf(err) != document.KindUnknown {
		return err
	}
	return document.Wrap(kind, op, err)
}
