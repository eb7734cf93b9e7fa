package batch

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"elevation-marker/internal/matcher"
)

// PlaceholderNote marks the single record written when a run matched nothing,
// so the log file always has content to inspect.
const PlaceholderNote = "no matcher invocations in this run"

// WriteMatchLog writes the outcomes in log to path as indented JSON and then
// clears log.
func WriteMatchLog(path string, log *matcher.Log) error {
	outcomes := log.Outcomes()
	if len(outcomes) == 0 {
		outcomes = []matcher.Outcome{{
			Note:        PlaceholderNote,
			Evaluations: []matcher.Evaluation{},
		}}
	}

	data, err := json.MarshalIndent(outcomes, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode match log")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, "create match log dir")
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrapf(err, "write %s", path)
	}

	log.Reset()
	return nil
}

// ReadMatchLog loads a log written by WriteMatchLog.
func ReadMatchLog(path string) ([]matcher.Outcome, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	var out []matcher.Outcome
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, errors.Wrapf(err, "decode %s", path)
	}
	return out, nil
}
