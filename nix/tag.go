package nix

import (
	"fmt"
	"slices"

	"github.com/G-Node/nix-sub001/internal/units"
	"github.com/G-Node/nix-sub001/nix/storage"
	"github.com/G-Node/nix-sub001/types"
)

// tag layout
const (
	nodeReferences = "references"
	nodeFeatures   = "features"
	attrUnits      = "units"
	attrPosition   = "position"
	attrExtent     = "extent"
)

func initTagNode(n *storage.Node) error {
	for _, sub := range []string{nodeReferences, nodeFeatures} {
		if _, err := n.CreateChild(sub); err != nil {
			return err
		}
	}
	return nil
}

// baseTag holds what Tag and MultiTag share: units, references and features
type baseTag struct {
	metadataEntity
}

func (t *baseTag) block() *Block {
	return blockOf(t.node, t.file)
}

// References returns the data arrays addressed by the tag
func (t *baseTag) References() *ReferenceSet[*DataArray] {
	links, _ := t.node.Child(nodeReferences)
	var owner collection
	if b := t.block(); b != nil {
		owner = b.dataArrays()
	}
	owner.file = t.file
	return newReferenceSet(links, owner, newDataArray, t.touch)
}

// Units returns the unit of each position coordinate
func (t *baseTag) Units() []string {
	u, _ := t.node.Strings(attrUnits)
	return u
}

// SetUnits sets one unit per position coordinate. Entries may be "none";
// nil removes the units.
func (t *baseTag) SetUnits(list []string) error {
	if len(list) == 0 {
		t.node.DeleteAttr(attrUnits)
		t.touch()
		return nil
	}
	sanitized := make([]string, len(list))
	for i, u := range list {
		u = units.Sanitize(u)
		if u == "" {
			u = units.None
		}
		if !units.IsNone(u) && !units.IsValid(u) {
			return fmt.Errorf("%w: %q", types.ErrInvalidUnit, list[i])
		}
		sanitized[i] = u
	}
	_ = t.node.SetAttr(attrUnits, sanitized)
	t.touch()
	return nil
}

// unitAt returns the unit of position coordinate i, "none" when unset
func (t *baseTag) unitAt(i int) string {
	u := t.Units()
	if i < len(u) && u[i] != "" {
		return u[i]
	}
	return units.None
}

func (t *baseTag) features() collection {
	n, _ := t.node.Child(nodeFeatures)
	return collection{node: n, file: t.file}
}

// CreateFeature links data, an array of the same block, as a feature
func (t *baseTag) CreateFeature(data *DataArray, linkType LinkType) (*Feature, error) {
	if err := t.checkAlive(); err != nil {
		return nil, err
	}
	b := t.block()
	if data == nil || b == nil || !b.dataArrays().owns(data.node) {
		return nil, fmt.Errorf("%w: feature data must be a data array of the same block", types.ErrNotFound)
	}
	n, err := t.features().create()
	if err != nil {
		return nil, fmt.Errorf("failed to create feature: %w", err)
	}
	_ = n.SetAttr(attrLinkType, linkType.String())
	if err := n.CreateLink(linkData, data.node); err != nil {
		return nil, err
	}
	t.touch()
	return newFeature(n, t.file), nil
}

// Feature returns the feature with the given id, or the feature whose data
// array has the given name or id.
func (t *baseTag) Feature(id string) (*Feature, bool) {
	if n, ok := t.features().lookup(id); ok {
		return newFeature(n, t.file), true
	}
	for _, f := range t.Features() {
		if data, ok := f.Data(); ok && (data.ID() == id || data.Name() == id) {
			return f, true
		}
	}
	return nil, false
}

// FeatureAt returns the i-th feature in id order
func (t *baseTag) FeatureAt(i int) (*Feature, error) {
	features := t.Features()
	if i < 0 || i >= len(features) {
		return nil, fmt.Errorf("%w: feature %d of %d", types.ErrOutOfBounds, i, len(features))
	}
	return features[i], nil
}

// HasFeature reports whether Feature(id) would succeed
func (t *baseTag) HasFeature(id string) bool {
	_, ok := t.Feature(id)
	return ok
}

// Features returns all features in id order
func (t *baseTag) Features() []*Feature {
	return wrapAll(t.features(), newFeature)
}

// FeatureCount returns the number of features
func (t *baseTag) FeatureCount() int {
	return t.features().count()
}

// DeleteFeature removes a feature. Its data array is not affected.
func (t *baseTag) DeleteFeature(id string) bool {
	f, ok := t.Feature(id)
	if !ok {
		return false
	}
	t.features().node.DeleteChild(f.node.Name())
	t.touch()
	return true
}

// pruneFeatures removes features whose data array no longer exists
func (t *baseTag) pruneFeatures() {
	for _, n := range t.features().all() {
		if !n.HasLink(linkData) {
			t.features().node.DeleteChild(n.Name())
		}
	}
}

// Tag annotates a single point or region in the arrays it references
type Tag struct {
	baseTag
}

func newTag(n *storage.Node, f *File) *Tag {
	return &Tag{baseTag{metadataEntity{namedEntity{entity{node: n, file: f}}}}}
}

// Position returns the start coordinate of the tagged region
func (t *Tag) Position() []float64 {
	p, _ := t.node.Floats(attrPosition)
	return p
}

// SetPosition sets the start coordinate. An extent of a different length is
// removed.
func (t *Tag) SetPosition(position []float64) error {
	if err := t.checkAlive(); err != nil {
		return err
	}
	if ext := t.Extent(); len(ext) > 0 && len(ext) != len(position) {
		t.node.DeleteAttr(attrExtent)
	}
	_ = t.node.SetAttr(attrPosition, slices.Clone(position))
	t.touch()
	return nil
}

// Extent returns the size of the tagged region, nil for a point tag
func (t *Tag) Extent() []float64 {
	e, _ := t.node.Floats(attrExtent)
	return e
}

// SetExtent sets the size of the tagged region; it must have as many
// entries as the position. nil removes the extent.
func (t *Tag) SetExtent(extent []float64) error {
	if err := t.checkAlive(); err != nil {
		return err
	}
	if len(extent) == 0 {
		t.node.DeleteAttr(attrExtent)
		t.touch()
		return nil
	}
	if len(extent) != len(t.Position()) {
		return fmt.Errorf("%w: extent has %d entries, position %d", types.ErrIncompatibleDimensions, len(extent), len(t.Position()))
	}
	_ = t.node.SetAttr(attrExtent, slices.Clone(extent))
	t.touch()
	return nil
}
