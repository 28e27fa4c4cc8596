package validation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type probe struct {
	id       string
	name     string
	interval float64
	ticks    []float64
	created  time.Time
}

func (p probe) ID() string { return p.id }

func TestMustShouldCould(t *testing.T) {
	p := probe{id: "p1", interval: -1, ticks: []float64{1, 3, 2}}

	r := Validate(
		Must(p, func(p probe) string { return p.name }, NotEmptyString, "name is not set!"),
		Must(p, func(p probe) float64 { return p.interval }, GreaterThan(0.0), "sampling interval is not set to valid value (> 0)!"),
		Should(p, func(p probe) time.Time { return p.created }, NotZeroTime, "date is not set!"),
		Could(p, func(p probe) []float64 { return p.ticks }, NotEmpty[float64](),
			Must(p, func(p probe) []float64 { return p.ticks }, IsSorted[float64](), "ticks are not sorted!"),
		),
	)

	assert.Len(t, r.Errors, 3)
	assert.Len(t, r.Warnings, 1)
	assert.Equal(t, Message{ID: "p1", Text: "name is not set!"}, r.Errors[0])
	assert.Equal(t, "ticks are not sorted!", r.Errors[2].Text)
	assert.True(t, r.HasErrors())
	assert.False(t, r.Ok())
}

func TestCouldSkipsNestedRules(t *testing.T) {
	p := probe{id: "p2"}
	r := Validate(
		Could(p, func(p probe) []float64 { return p.ticks }, NotEmpty[float64](),
			Error(p, "never reported"),
		),
	)
	assert.True(t, r.Ok())
}

func TestResultConcat(t *testing.T) {
	a := Result{Errors: []Message{{Text: "a"}}}
	b := Result{Warnings: []Message{{Text: "b"}}}
	c := Result{Errors: []Message{{Text: "c"}}, Warnings: []Message{{Text: "d"}}}

	left := a.Concat(b).Concat(c)
	right := a.Concat(b.Concat(c))
	assert.Equal(t, left, right)
	assert.Len(t, left.Errors, 2)
	assert.Len(t, left.Warnings, 2)

	// concatenating does not alias the inputs
	left.Errors[0].Text = "changed"
	assert.Equal(t, "a", a.Errors[0].Text)

	assert.True(t, Result{}.Concat(Result{}).Ok())
}

func TestChecks(t *testing.T) {
	assert.True(t, IsSorted[float64]()([]float64{1, 1, 2}))
	assert.False(t, IsSorted[float64]()([]float64{2, 1}))
	assert.True(t, IsAtomicUnit(""))
	assert.True(t, IsAtomicUnit("mV"))
	assert.False(t, IsAtomicUnit("mV*s"))
	assert.True(t, IsValidUnit("mV*s"))
	assert.True(t, AllValidUnits([]string{"none", "ms", ""}))
	assert.False(t, AllValidUnits([]string{"ms", "bogus"}))
	assert.True(t, AtMost(3)(3))
	assert.True(t, LengthEquals[int](2)([]int{1, 2}))
	assert.False(t, LengthEquals[int](2)([]int{1}))
}

func TestMessageWithoutID(t *testing.T) {
	r := Validate(Must(42, func(v int) int { return v }, AtMost(10), "too large"))
	assert.Equal(t, "", r.Errors[0].ID)
	assert.Equal(t, "ERROR: too large\n", r.String())
}
