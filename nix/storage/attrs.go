package storage

import (
	"fmt"
	"sort"
	"time"

	"github.com/G-Node/nix-sub001/types"
)

// SetAttr stores an attribute value. Supported value types are string,
// []string, bool, int64, float64, []float64, []uint64 (or types.NDSize) and
// time.Time. Slices are copied.
func (n *Node) SetAttr(name string, value any) error {
	if name == "" {
		return fmt.Errorf("%w: attribute name", types.ErrEmptyString)
	}
	switch v := value.(type) {
	case string, bool, int64, float64, time.Time:
		n.attrs[name] = v
	case []string:
		n.attrs[name] = append([]string(nil), v...)
	case []float64:
		n.attrs[name] = append([]float64(nil), v...)
	case []uint64:
		n.attrs[name] = append([]uint64(nil), v...)
	case types.NDSize:
		n.attrs[name] = append([]uint64(nil), v...)
	case int:
		n.attrs[name] = int64(v)
	default:
		return fmt.Errorf("%w: unsupported attribute type %T for %s", types.ErrInvalidDataType, value, name)
	}
	return nil
}

// Attr returns a copy of the raw attribute value
func (n *Node) Attr(name string) (any, bool) {
	v, ok := n.attrs[name]
	if !ok {
		return nil, false
	}
	switch s := v.(type) {
	case []string:
		return append([]string(nil), s...), true
	case []float64:
		return append([]float64(nil), s...), true
	case []uint64:
		return append([]uint64(nil), s...), true
	}
	return v, true
}

// HasAttr reports whether the attribute is set
func (n *Node) HasAttr(name string) bool {
	_, ok := n.attrs[name]
	return ok
}

// DeleteAttr removes an attribute, reporting whether it existed
func (n *Node) DeleteAttr(name string) bool {
	_, ok := n.attrs[name]
	delete(n.attrs, name)
	return ok
}

// AttrNames returns the names of all attributes in sorted order
func (n *Node) AttrNames() []string {
	names := make([]string, 0, len(n.attrs))
	for k := range n.attrs {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// String returns a string attribute
func (n *Node) String(name string) (string, bool) {
	v, ok := n.attrs[name].(string)
	return v, ok
}

// Strings returns a string list attribute
func (n *Node) Strings(name string) ([]string, bool) {
	v, ok := n.attrs[name].([]string)
	if !ok {
		return nil, false
	}
	return append([]string(nil), v...), true
}

// Float returns a float attribute
func (n *Node) Float(name string) (float64, bool) {
	v, ok := n.attrs[name].(float64)
	return v, ok
}

// Floats returns a float list attribute
func (n *Node) Floats(name string) ([]float64, bool) {
	v, ok := n.attrs[name].([]float64)
	if !ok {
		return nil, false
	}
	return append([]float64(nil), v...), true
}

// Int returns an integer attribute
func (n *Node) Int(name string) (int64, bool) {
	v, ok := n.attrs[name].(int64)
	return v, ok
}

// Bool returns a boolean attribute
func (n *Node) Bool(name string) (bool, bool) {
	v, ok := n.attrs[name].(bool)
	return v, ok
}

// Time returns a timestamp attribute
func (n *Node) Time(name string) (time.Time, bool) {
	v, ok := n.attrs[name].(time.Time)
	return v, ok
}

// Size returns an NDSize attribute
func (n *Node) Size(name string) (types.NDSize, bool) {
	v, ok := n.attrs[name].([]uint64)
	if !ok {
		return nil, false
	}
	return types.NDSize(append([]uint64(nil), v...)), true
}
