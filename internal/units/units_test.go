package units

import (
	"testing"

	"github.com/G-Node/nix-sub001/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsSIUnit(t *testing.T) {
	valid := []string{"mV", "s", "ms", "Hz", "kHz", "mV^2", "cm^-2", "Ohm", "%", "mol", "cd", "kat", "daN", "µV"}
	for _, u := range valid {
		assert.True(t, IsSIUnit(u), "expected %q to be an atomic unit", u)
	}

	invalid := []string{"", "none", "mVV", "sec", "mV*cm", "m/s", "^2", "da"}
	for _, u := range invalid {
		assert.False(t, IsSIUnit(u), "expected %q to be rejected", u)
	}
}

func TestIsCompoundSIUnit(t *testing.T) {
	assert.True(t, IsCompoundSIUnit("mV*cm^-2"))
	assert.True(t, IsCompoundSIUnit("m/s"))
	assert.True(t, IsCompoundSIUnit("kg*m/s^2"))
	assert.False(t, IsCompoundSIUnit("mV"))
	assert.False(t, IsCompoundSIUnit("mV*"))
	assert.False(t, IsCompoundSIUnit("foo/bar"))

	assert.True(t, IsValid("mV"))
	assert.True(t, IsValid("mV*cm^-2"))
	assert.False(t, IsValid("parsec"))
}

func TestParse(t *testing.T) {
	atom, err := Parse("mV^2")
	require.NoError(t, err)
	assert.Equal(t, Atom{Prefix: "m", Base: "V", Power: 2}, atom)
	assert.Equal(t, "mV^2", atom.String())

	atom, err = Parse("m")
	require.NoError(t, err)
	assert.Equal(t, Atom{Base: "m", Power: 1}, atom)

	atom, err = Parse("mm")
	require.NoError(t, err)
	assert.Equal(t, Atom{Prefix: "m", Base: "m", Power: 1}, atom)

	_, err = Parse("mV*s")
	assert.ErrorIs(t, err, types.ErrInvalidUnit)
}

func TestSplit(t *testing.T) {
	atoms, err := Split("mV*cm^-2/s")
	require.NoError(t, err)
	assert.Equal(t, []Atom{
		{Prefix: "m", Base: "V", Power: 1},
		{Prefix: "c", Base: "m", Power: -2},
		{Base: "s", Power: -1},
	}, atoms)

	_, err = Split("furlong/fortnight")
	assert.ErrorIs(t, err, types.ErrInvalidUnit)
}

func TestScaling(t *testing.T) {
	tests := []struct {
		from, to string
		want     float64
	}{
		{"ms", "s", 1e-3},
		{"s", "ms", 1e3},
		{"mV", "mV", 1},
		{"kHz", "Hz", 1e3},
		{"mV^2", "V^2", 1e-6},
		{"uV", "mV", 1e-3},
		{"µV", "mV", 1e-3},
	}
	for _, tt := range tests {
		t.Run(tt.from+"->"+tt.to, func(t *testing.T) {
			got, err := Scaling(tt.from, tt.to)
			require.NoError(t, err)
			assert.InEpsilon(t, tt.want, got, 1e-12)
		})
	}

	_, err := Scaling("mV", "s")
	assert.ErrorIs(t, err, types.ErrIncompatibleDimensions)
	_, err = Scaling("mV^2", "mV")
	assert.ErrorIs(t, err, types.ErrIncompatibleDimensions)
	_, err = Scaling("mV*s", "V*s")
	assert.ErrorIs(t, err, types.ErrInvalidUnit)

	assert.True(t, IsScalable("ms", "s"))
	assert.False(t, IsScalable("ms", "V"))
}

func TestIsNone(t *testing.T) {
	assert.True(t, IsNone(""))
	assert.True(t, IsNone("none"))
	assert.False(t, IsNone("s"))
}
