// Package units parses SI unit strings and computes prefix scaling between them.
//
// Atomic units are an optional SI prefix, a base unit and an optional power,
// e.g. "mV", "s", "cm^2", "Hz^-1". Compound units join atomic units with '*'
// or '/', e.g. "mV*cm^-2" or "m/s".
package units

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/G-Node/nix-sub001/types"
)

const (
	prefixes  = "(Y|Z|E|P|T|G|M|k|h|da|d|c|m|u|n|p|f|a|z|y)"
	baseUnits = "(m|g|s|A|K|mol|cd|Hz|N|Pa|J|W|C|V|F|S|Wb|T|H|lm|lx|Bq|Gy|Sv|kat|l|L|Ohm|%)"
	power     = `(\^-?[0-9]+)`
)

var (
	atomicRe   = regexp.MustCompile("^" + prefixes + "?" + baseUnits + power + "?$")
	compoundRe = regexp.MustCompile("^" + prefixes + "?" + baseUnits + power + "?([*/]" + prefixes + "?" + baseUnits + power + "?)+$")

	prefixFactors = map[string]float64{
		"y": 1.0e-24, "z": 1.0e-21, "a": 1.0e-18, "f": 1.0e-15,
		"p": 1.0e-12, "n": 1.0e-9, "u": 1.0e-6, "m": 1.0e-3,
		"c": 1.0e-2, "d": 1.0e-1, "da": 1.0e1, "h": 1.0e2,
		"k": 1.0e3, "M": 1.0e6, "G": 1.0e9, "T": 1.0e12,
		"P": 1.0e15, "E": 1.0e18, "Z": 1.0e21, "Y": 1.0e24,
	}
)

// None is the literal used for "no unit" in positions and tag units
const None = "none"

// Atom is a parsed atomic unit
type Atom struct {
	Prefix string
	Base   string
	Power  int
}

// Factor returns the scale of the prefix raised to the unit's power
func (a Atom) Factor() float64 {
	f := 1.0
	if a.Prefix != "" {
		f = prefixFactors[a.Prefix]
	}
	return math.Pow(f, float64(a.Power))
}

// String renders the atom back to its unit string
func (a Atom) String() string {
	s := a.Prefix + a.Base
	if a.Power != 1 {
		s += "^" + strconv.Itoa(a.Power)
	}
	return s
}

// Sanitize removes blanks and normalizes the micro sign to "u"
func Sanitize(unit string) string {
	unit = strings.ReplaceAll(unit, " ", "")
	unit = strings.ReplaceAll(unit, "µ", "u")
	unit = strings.ReplaceAll(unit, "μ", "u")
	return unit
}

// IsNone reports whether the string denotes the absence of a unit
func IsNone(unit string) bool {
	return unit == "" || unit == None
}

// IsSIUnit reports whether unit is a valid atomic SI unit
func IsSIUnit(unit string) bool {
	return atomicRe.MatchString(Sanitize(unit))
}

// IsCompoundSIUnit reports whether unit is a valid compound SI unit
func IsCompoundSIUnit(unit string) bool {
	return compoundRe.MatchString(Sanitize(unit))
}

// IsValid reports whether unit is an atomic or compound SI unit
func IsValid(unit string) bool {
	return IsSIUnit(unit) || IsCompoundSIUnit(unit)
}

// Parse splits an atomic unit into prefix, base and power
func Parse(unit string) (Atom, error) {
	m := atomicRe.FindStringSubmatch(Sanitize(unit))
	if m == nil {
		return Atom{}, fmt.Errorf("%w: %q is not an atomic SI unit", types.ErrInvalidUnit, unit)
	}
	atom := Atom{Prefix: m[1], Base: m[2], Power: 1}
	if m[3] != "" {
		p, err := strconv.Atoi(m[3][1:])
		if err != nil {
			return Atom{}, fmt.Errorf("%w: bad power in %q", types.ErrInvalidUnit, unit)
		}
		atom.Power = p
	}
	return atom, nil
}

// Split breaks a compound unit into its atomic parts. Parts following a '/'
// have their power negated.
func Split(unit string) ([]Atom, error) {
	unit = Sanitize(unit)
	if !IsValid(unit) {
		return nil, fmt.Errorf("%w: %q", types.ErrInvalidUnit, unit)
	}
	var atoms []Atom
	sign := 1
	start := 0
	for i := 0; i <= len(unit); i++ {
		if i < len(unit) && unit[i] != '*' && unit[i] != '/' {
			continue
		}
		atom, err := Parse(unit[start:i])
		if err != nil {
			return nil, err
		}
		atom.Power *= sign
		atoms = append(atoms, atom)
		if i < len(unit) && unit[i] == '/' {
			sign = -1
		} else {
			sign = 1
		}
		start = i + 1
	}
	return atoms, nil
}

// Scaling returns the factor f such that a value v expressed in unit from
// equals v*f expressed in unit to. Both units must share base and power
// ("ms" to "s" is 1e-3, "mV^2" to "V^2" is 1e-6).
func Scaling(from, to string) (float64, error) {
	a, err := Parse(from)
	if err != nil {
		return 0, fmt.Errorf("cannot scale from %q: %w", from, err)
	}
	b, err := Parse(to)
	if err != nil {
		return 0, fmt.Errorf("cannot scale to %q: %w", to, err)
	}
	if a.Base != b.Base || a.Power != b.Power {
		return 0, fmt.Errorf("%w: %q and %q do not share a base unit", types.ErrIncompatibleDimensions, from, to)
	}
	return a.Factor() / b.Factor(), nil
}

// IsScalable reports whether Scaling(from, to) would succeed
func IsScalable(from, to string) bool {
	_, err := Scaling(from, to)
	return err == nil
}
