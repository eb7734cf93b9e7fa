package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/pkg/errors"

	"elevation-marker/internal/batch"
	"elevation-marker/internal/document"
	"elevation-marker/internal/matcher"
)

// ErrRunNotFound is returned for an unknown run id.
var ErrRunNotFound = errors.New("run not found")

// Run is the stored summary of one batch.
type Run struct {
	ID          string    `json:"id"`
	Scene       string    `json:"scene"`
	Mode        string    `json:"mode"`
	Direction   string    `json:"direction"`
	Side        string    `json:"side"`
	Views       int       `json:"views"`
	Attempts    int       `json:"attempts"`
	Placed      int       `json:"placed"`
	Diagnostics []string  `json:"diagnostics"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
}

// SaveRun stores rep and all of its attempts and match outcomes in one
// transaction.
func (db *DB) SaveRun(ctx context.Context, scene string, rep *batch.Report) error {
	diags, err := json.Marshal(nonNil(rep.Diagnostics))
	if err != nil {
		return errors.Wrap(err, "encode diagnostics")
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin")
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, scene, mode, direction, side, views, attempts, placed, diagnostics_json, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rep.RunID, scene, rep.Mode, rep.Direction, rep.Side,
		len(rep.Views), len(rep.Results), rep.Total(), string(diags),
		rep.Started.UTC(), rep.Finished.UTC(),
	)
	if err != nil {
		return errors.Wrapf(err, "insert run %s", rep.RunID)
	}

	for i, res := range rep.Results {
		d, err := json.Marshal(nonNil(res.Diagnostics))
		if err != nil {
			return errors.Wrap(err, "encode attempt diagnostics")
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO attempts (run_id, seq, view_id, view_name, element_id, approach, handle, success, kind, error, diagnostics_json)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rep.RunID, i, res.ViewID, res.ViewName, res.ElementID, res.Approach,
			string(res.Handle), res.Success, string(res.Kind), res.Error, string(d),
		)
		if err != nil {
			return errors.Wrapf(err, "insert attempt %d", i)
		}
	}

	for i, o := range rep.Matches {
		evals, err := json.Marshal(o.Evaluations)
		if err != nil {
			return errors.Wrap(err, "encode evaluations")
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO matches (run_id, seq, element_id, view_id, face_found, best_alignment, note, evaluations_json)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			rep.RunID, i, o.ElementID, o.ViewID, o.FaceFound, o.BestAlignment, o.Note, string(evals),
		)
		if err != nil {
			return errors.Wrapf(err, "insert match %d", i)
		}
	}

	return errors.Wrap(tx.Commit(), "commit")
}

// ListRuns returns the most recent runs first. A non-positive limit returns
// all of them.
func (db *DB) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, scene, mode, direction, side, views, attempts, placed, diagnostics_json, started_at, finished_at
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "list runs")
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetRun returns one run by id.
func (db *DB) GetRun(ctx context.Context, id string) (Run, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT id, scene, mode, direction, side, views, attempts, placed, diagnostics_json, started_at, finished_at
		 FROM runs WHERE id = ?`, id)
	r, err := scanRun(row)
	if errors.Cause(err) == sql.ErrNoRows {
		return Run{}, errors.Wrap(ErrRunNotFound, id)
	}
	return r, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (Run, error) {
	var r Run
	var diags string
	err := s.Scan(&r.ID, &r.Scene, &r.Mode, &r.Direction, &r.Side,
		&r.Views, &r.Attempts, &r.Placed, &diags, &r.StartedAt, &r.FinishedAt)
	if err != nil {
		return Run{}, errors.Wrap(err, "scan run")
	}
	if err := json.Unmarshal([]byte(diags), &r.Diagnostics); err != nil {
		return Run{}, errors.Wrap(err, "decode run diagnostics")
	}
	return r, nil
}

// Attempts returns the recorded attempts of a run in processing order.
func (db *DB) Attempts(ctx context.Context, runID string) ([]batch.Result, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT view_id, view_name, element_id, approach, handle, success, kind, error, diagnostics_json
		 FROM attempts WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, errors.Wrap(err, "list attempts")
	}
	defer rows.Close()

	var out []batch.Result
	for rows.Next() {
		var res batch.Result
		var handle, kind, diags string
		if err := rows.Scan(&res.ViewID, &res.ViewName, &res.ElementID, &res.Approach,
			&handle, &res.Success, &kind, &res.Error, &diags); err != nil {
			return nil, errors.Wrap(err, "scan attempt")
		}
		res.Handle = document.Handle(handle)
		res.Kind = document.Kind(kind)
		if err := json.Unmarshal([]byte(diags), &res.Diagnostics); err != nil {
			return nil, errors.Wrap(err, "decode attempt diagnostics")
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

// Matches returns the matcher outcomes recorded for a run.
func (db *DB) Matches(ctx context.Context, runID string) ([]matcher.Outcome, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT element_id, view_id, face_found, best_alignment, note, evaluations_json
		 FROM matches WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, errors.Wrap(err, "list matches")
	}
	defer rows.Close()

	var out []matcher.Outcome
	for rows.Next() {
		var o matcher.Outcome
		var evals string
		if err := rows.Scan(&o.ElementID, &o.ViewID, &o.FaceFound, &o.BestAlignment, &o.Note, &evals); err != nil {
			return nil, errors.Wrap(err, "scan match")
		}
		if err := json.Unmarshal([]byte(evals), &o.Evaluations); err != nil {
			return nil, errors.Wrap(err, "decode evaluations")
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
