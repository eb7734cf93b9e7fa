package document

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"elevation-marker/internal/mathutil"
)

func TestSectionViews(t *testing.T) {
	views := []View{
		{ID: "s1", Kind: ViewSection, Printable: true},
		{ID: "tpl", Kind: ViewSection, Printable: true, IsTemplate: true},
		{ID: "plan", Kind: ViewPlan, Printable: true},
		{ID: "draft", Kind: ViewSection},
		{ID: "s2", Kind: ViewSection, Printable: true},
	}
	got := SectionViews(views)
	ids := make([]string, 0, len(got))
	for _, v := range got {
		ids = append(ids, v.ID)
	}
	assert.Equal(t, []string{"s1", "s2"}, ids)
	assert.Empty(t, SectionViews(nil))
}

func TestView_Right(t *testing.T) {
	v := View{Direction: mathutil.UnitY.Neg(), Up: mathutil.UnitZ}
	assert.True(t, v.Right().ApproxEqual(mathutil.UnitX, 1e-12))
}

func TestKindOf(t *testing.T) {
	err := Errorf(KindReference, "create", "face %d not visible", 3)
	wrapped := errors.Wrap(err, "approach exact")

	assert.Equal(t, KindReference, KindOf(wrapped))
	assert.Equal(t, "create: face 3 not visible", Message(err))
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
	assert.Nil(t, Wrap(KindStyle, "style", nil))
}

func TestFamilyKey(t *testing.T) {
	a := FamilyKey{Family: "Window", Type: "900x1200"}
	b := FamilyKey{Family: "Window", Type: "900x1200"}
	assert.Equal(t, a, b)
	assert.Equal(t, "Window : 900x1200", a.String())
	assert.Equal(t, "Door", FamilyKey{Family: "Door"}.String())
}
