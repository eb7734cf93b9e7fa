package matcher

import (
	"math"

	"elevation-marker/internal/geom"
	"elevation-marker/internal/mathutil"
)

// Outcome notes.
const (
	NoteMatched          = "matched"
	NoteNoGeometry       = "no geometry"
	NoteNoCandidate      = "no candidate"
	NoteAntiAligned      = "best candidate is anti-aligned"
	NoteRejectedByPolicy = "best candidate is anti-aligned; rejected by policy"
	NoteSingular         = "transform not invertible"
	NoteZeroTarget       = "target direction is zero"
)

// Evaluation is the score of one visited candidate.
type Evaluation struct {
	Index     int     `json:"index"`
	Alignment float64 `json:"alignment"`
}

// Outcome is the audit record of one matcher invocation. BestAlignment is
// only meaningful when Evaluations is non-empty.
type Outcome struct {
	ElementID     string       `json:"element_id"`
	ViewID        string       `json:"view_id"`
	BestAlignment float64      `json:"best_alignment"`
	FaceFound     bool         `json:"face_found"`
	Note          string       `json:"note"`
	Evaluations   []Evaluation `json:"evaluations"`
}

// Match is the winning face.
type Match struct {
	Index     int
	Face      geom.Face
	Ref       geom.Reference
	Sample    geom.Sample
	Alignment float64
}

// Policy tunes acceptance of the best candidate.
type Policy struct {
	// RejectAntiAligned treats a negative best alignment as "no face".
	// Off by default: the least-negative face still wins.
	RejectAntiAligned bool
}

// Matcher scores the referenceable faces of an element against a local
// direction.
type Matcher struct {
	Policy Policy
}

// Subject is what Match evaluates: an element's geometry in one view.
type Subject struct {
	ElementID string
	ViewID    string
	Geometry  *geom.Geometry
	Transform mathutil.Transform
}

// Match finds the face of s whose outward normal, expressed in the element's
// local frame, has the largest dot product with target. Every visited
// candidate is scored and recorded; ties keep the first candidate seen.
// The outcome is appended to log (when non-nil) and returned.
func (m Matcher) Match(log *Log, s Subject, target mathutil.Vec3) (*Match, Outcome) {
	out := Outcome{ElementID: s.ElementID, ViewID: s.ViewID, Evaluations: []Evaluation{}}
	defer func() {
		if log != nil {
			log.Append(out)
		}
	}()

	if s.Geometry.Empty() {
		out.Note = NoteNoGeometry
		return nil, out
	}
	target = target.Normalize()
	if target.IsZero() {
		out.Note = NoteZeroTarget
		return nil, out
	}
	inv, err := s.Transform.Inverse()
	if err != nil {
		out.Note = NoteSingular
		return nil, out
	}

	var best *Match
	index := 0
	for _, solid := range s.Geometry.Solids {
		if math.Abs(solid.Volume) < mathutil.Epsilon {
			continue
		}
		for _, face := range solid.Faces {
			if !face.Referenceable() {
				continue
			}
			sample, ok := geom.SampleSurface(face.Surface)
			if !ok {
				continue
			}
			local := inv.ApplyVector(sample.Normal).Normalize()
			if local.IsZero() {
				continue
			}
			score := mathutil.Clamp(local.Dot(target), -1, 1)
			out.Evaluations = append(out.Evaluations, Evaluation{Index: index, Alignment: score})

			if best == nil || score > best.Alignment {
				best = &Match{Index: index, Face: face, Ref: *face.Ref, Sample: sample, Alignment: score}
			}
			index++
		}
	}

	switch {
	case best == nil:
		out.Note = NoteNoCandidate
		return nil, out
	case best.Alignment < 0 && m.Policy.RejectAntiAligned:
		out.BestAlignment = best.Alignment
		out.Note = NoteRejectedByPolicy
		return nil, out
	case best.Alignment < 0:
		out.BestAlignment = best.Alignment
		out.FaceFound = true
		out.Note = NoteAntiAligned
		return best, out
	}
	out.BestAlignment = best.Alignment
	out.FaceFound = true
	out.Note = NoteMatched
	return best, out
}
