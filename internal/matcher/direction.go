// Package matcher finds, for an element in a view, the face whose outward
// normal best agrees with a direction given in the element's own frame.
package matcher

import (
	"strings"

	"github.com/pkg/errors"

	"elevation-marker/internal/mathutil"
)

// Direction tokens offered to the user.
const (
	TokenLeft  = "Left Face"
	TokenRight = "Right Face"
	TokenFront = "Front Face"
	TokenBack  = "Back Face"
)

// Direction is a canonical local direction.
type Direction struct {
	Token string
	Local mathutil.Vec3
}

var directions = []Direction{
	{Token: TokenLeft, Local: mathutil.Vec3{-1, 0, 0}},
	{Token: TokenRight, Local: mathutil.Vec3{1, 0, 0}},
	{Token: TokenFront, Local: mathutil.Vec3{0, -1, 0}},
	{Token: TokenBack, Local: mathutil.Vec3{0, 1, 0}},
}

var aliases = map[string]string{
	"left": TokenLeft, "-x": TokenLeft,
	"right": TokenRight, "+x": TokenRight, "x": TokenRight,
	"front": TokenFront, "-y": TokenFront,
	"back": TokenBack, "+y": TokenBack, "y": TokenBack,
}

// Directions returns the four canonical directions in menu order.
func Directions() []Direction {
	out := make([]Direction, len(directions))
	copy(out, directions)
	return out
}

// ParseDirection maps a token (or a short alias such as "left" or "-x") to
// its direction. Matching is case-insensitive.
func ParseDirection(token string) (Direction, error) {
	t := strings.TrimSpace(token)
	for _, d := range directions {
		if strings.EqualFold(d.Token, t) {
			return d, nil
		}
	}
	if full, ok := aliases[strings.ToLower(t)]; ok {
		return ParseDirection(full)
	}
	return Direction{}, errors.Errorf("matcher: unknown direction %q", token)
}

func (d Direction) String() string {
	return d.Token
}
