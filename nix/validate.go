package nix

import (
	"fmt"
	"time"

	"github.com/G-Node/nix-sub001/internal/validation"
)

type validatable interface {
	ID() string
	CreatedAt() time.Time
}

type namedValidatable interface {
	validatable
	Name() string
	Type() string
}

func entityConditions[E validatable](e E) []validation.Condition {
	return []validation.Condition{
		validation.Must(e, func(e E) string { return e.ID() }, validation.NotEmptyString, "id is not set"),
		validation.Must(e, func(e E) time.Time { return e.CreatedAt() }, validation.NotZeroTime, "date of creation is not set"),
	}
}

func namedConditions[E namedValidatable](e E) []validation.Condition {
	return append(entityConditions(e),
		validation.Must(e, func(e E) string { return e.Name() }, validation.NotEmptyString, "name is not set"),
		validation.Must(e, func(e E) string { return e.Type() }, validation.NotEmptyString, "type is not set"),
	)
}

// ValidateBlock checks a block and everything it owns
func ValidateBlock(b *Block) validation.Result {
	conds := namedConditions(b)
	for _, a := range b.DataArrays() {
		conds = append(conds, validation.Nested(ValidateDataArray(a)))
	}
	for _, t := range b.Tags() {
		conds = append(conds, validation.Nested(ValidateTag(t)))
	}
	for _, m := range b.MultiTags() {
		conds = append(conds, validation.Nested(ValidateMultiTag(m)))
	}
	for _, g := range b.Groups() {
		conds = append(conds, validation.Nested(ValidateGroup(g)))
	}
	return validation.Validate(conds...)
}

// ValidateGroup checks a group
func ValidateGroup(g *Group) validation.Result {
	return validation.Validate(namedConditions(g)...)
}

// ValidateDataArray checks a data array and its dimensions
func ValidateDataArray(a *DataArray) validation.Result {
	rank := a.DataExtent().Rank()
	conds := append(namedConditions(a),
		validation.Must(a, (*DataArray).DimensionCount, validation.Equals(rank),
			"data dimensionality does not match number of defined dimensions"),
		validation.Must(a, (*DataArray).Unit, validation.IsValidUnit, "unit is not a valid SI unit"),
		validation.Should(a, originWithoutCoefficients, validation.IsFalse,
			"expansion origin is set but polynomial coefficients are missing"),
		validation.Could(a, (*DataArray).DimensionCount, validation.Equals(rank),
			func() validation.Result { return validateAxes(a) },
		),
	)
	for _, d := range a.Dimensions() {
		conds = append(conds, validation.Nested(ValidateDimension(d)))
	}
	return validation.Validate(conds...)
}

func originWithoutCoefficients(a *DataArray) bool {
	_, hasOrigin := a.ExpansionOrigin()
	return hasOrigin && len(a.PolynomCoefficients()) == 0
}

// validateAxes compares range ticks and set labels with the extent of the
// axis they describe.
func validateAxes(a *DataArray) validation.Result {
	extent := a.DataExtent()
	var conds []validation.Condition
	for i, d := range a.Dimensions() {
		n := int(extent[i])
		switch dim := d.(type) {
		case *RangeDimension:
			if !dim.IsAlias() {
				conds = append(conds, validation.Must(a, func(*DataArray) []float64 { return dim.Ticks() },
					validation.LengthEquals[float64](n),
					fmt.Sprintf("number of ticks of dimension %d differs from the data extent", i+1)))
			}
		case *SetDimension:
			labels := func(*DataArray) []string { return dim.Labels() }
			conds = append(conds, validation.Could(a, labels, validation.NotEmpty[string](),
				validation.Must(a, labels, validation.LengthEquals[string](n),
					fmt.Sprintf("number of labels of dimension %d differs from the data extent", i+1))))
		case *SampledDimension:
		}
	}
	return validation.Validate(conds...)
}

// ValidateDimension checks a single dimension descriptor
func ValidateDimension(d Dimension) validation.Result {
	prefix := fmt.Sprintf("dimension %d: ", d.Index())
	switch dim := d.(type) {
	case *SampledDimension:
		return validation.Validate(
			validation.Must(dim, (*SampledDimension).SamplingInterval, validation.GreaterThan(0.0),
				prefix+"sampling interval must be positive"),
			validation.Must(dim, (*SampledDimension).Unit, validation.IsAtomicUnit,
				prefix+"unit must be an atomic SI unit"),
		)
	case *RangeDimension:
		conds := []validation.Condition{
			validation.Must(dim, (*RangeDimension).Ticks, validation.IsSorted[float64](),
				prefix+"ticks are not sorted"),
			validation.Must(dim, (*RangeDimension).Unit, validation.IsAtomicUnit,
				prefix+"unit must be an atomic SI unit"),
		}
		if !dim.IsAlias() {
			conds = append(conds, validation.Must(dim, (*RangeDimension).Ticks, validation.NotEmpty[float64](),
				prefix+"ticks are not set"))
		}
		return validation.Validate(conds...)
	case *SetDimension:
		return validation.Result{}
	}
	return validation.Validate(validation.Error(d, prefix+"unknown dimension kind"))
}

// ValidateTag checks a tag against itself and every array it references
func ValidateTag(t *Tag) validation.Result {
	conds := append(namedConditions(t),
		validation.Must(t, (*Tag).Position, validation.NotEmpty[float64](), "position is not set"),
		validation.Could(t, (*Tag).Extent, validation.NotEmpty[float64](),
			validation.Must(t, func(t *Tag) int { return len(t.Extent()) }, validation.Equals(len(t.Position())),
				"number of entries in position and extent differ"),
		),
		validation.Must(t, (*Tag).Units, validation.AllValidUnits, "unit is not a valid SI unit"),
		validation.Could(t, (*Tag).Units, validation.NotEmpty[string](),
			validation.Must(t, func(t *Tag) int { return len(t.Units()) }, validation.Equals(len(t.Position())),
				"number of units differs from the number of position entries"),
		),
	)
	for _, ref := range t.References().All() {
		conds = append(conds, referenceConditions(t, len(t.Position()), t.Units(), ref)...)
	}
	for _, f := range t.Features() {
		conds = append(conds, validation.Nested(ValidateFeature(f)))
	}
	return validation.Validate(conds...)
}

// ValidateMultiTag checks a multi tag against itself and every array it
// references.
func ValidateMultiTag(m *MultiTag) validation.Result {
	hasPositions := func(m *MultiTag) bool { _, ok := m.Positions(); return ok }
	hasExtents := func(m *MultiTag) bool { _, ok := m.Extents(); return ok }
	conds := append(namedConditions(m),
		validation.Must(m, hasPositions, validation.IsTrue, "positions are not set"),
		validation.Could(m, hasExtents, validation.IsTrue,
			validation.Must(m, shapesMatch, validation.IsTrue, "positions and extents differ in shape"),
		),
		validation.Must(m, (*MultiTag).Units, validation.AllValidUnits, "unit is not a valid SI unit"),
	)
	if pos, ok := m.Positions(); ok {
		if _, width, err := rowGeometry(pos); err != nil {
			conds = append(conds, validation.Error(m, "positions must be 1-D or 2-D"))
		} else {
			for _, ref := range m.References().All() {
				conds = append(conds, referenceConditions(m, int(width), m.Units(), ref)...)
			}
		}
	}
	for _, f := range m.Features() {
		conds = append(conds, validation.Nested(ValidateFeature(f)))
	}
	return validation.Validate(conds...)
}

func shapesMatch(m *MultiTag) bool {
	pos, ok := m.Positions()
	ext, ok2 := m.Extents()
	return ok && ok2 && pos.DataExtent().Equal(ext.DataExtent())
}

// referenceConditions checks that a tag of the given width and units can
// address ref.
func referenceConditions[E validatable](tag E, width int, tagUnits []string, ref *DataArray) []validation.Condition {
	rank := ref.DataExtent().Rank()
	return []validation.Condition{
		validation.Must(tag, func(E) int { return width }, validation.AtMost(rank),
			fmt.Sprintf("position has more entries than referenced data %s has dimensions", ref.Name())),
		validation.Must(tag, func(E) bool { return unitsScalable(tagUnits, ref) }, validation.IsTrue,
			fmt.Sprintf("units are not scalable to the dimensions of referenced data %s", ref.Name())),
	}
}

// ValidateFeature checks a feature
func ValidateFeature(f *Feature) validation.Result {
	hasData := func(f *Feature) bool { _, ok := f.Data(); return ok }
	return validation.Validate(append(entityConditions(f),
		validation.Must(f, hasData, validation.IsTrue, "data is not set"),
	)...)
}

// ValidateSection checks a section with its properties and subsections
func ValidateSection(s *Section) validation.Result {
	conds := namedConditions(s)
	for _, p := range s.Properties() {
		conds = append(conds, validation.Nested(ValidateProperty(p)))
	}
	for _, sub := range s.Sections() {
		conds = append(conds, validation.Nested(ValidateSection(sub)))
	}
	return validation.Validate(conds...)
}

// ValidateProperty checks a property
func ValidateProperty(p *Property) validation.Result {
	return validation.Validate(append(namedConditions(p),
		validation.Must(p, (*Property).Unit, validation.IsValidUnit, "unit is not a valid SI unit"),
		validation.Could(p, (*Property).ValueCount, validation.GreaterThan(0),
			validation.Should(p, (*Property).Unit, validation.NotEmptyString, "values are set, but unit is missing"),
		),
	)...)
}

// Validate checks any entity of the model
func Validate(entity any) validation.Result {
	switch e := entity.(type) {
	case *File:
		return e.Validate()
	case *Block:
		return ValidateBlock(e)
	case *DataArray:
		return ValidateDataArray(e)
	case *Tag:
		return ValidateTag(e)
	case *MultiTag:
		return ValidateMultiTag(e)
	case *Group:
		return ValidateGroup(e)
	case *Feature:
		return ValidateFeature(e)
	case *Section:
		return ValidateSection(e)
	case *Property:
		return ValidateProperty(e)
	case Dimension:
		return ValidateDimension(e)
	}
	return validation.Validate(validation.Error(entity, fmt.Sprintf("cannot validate %T", entity)))
}
