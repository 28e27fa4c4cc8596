package nix

import (
	"fmt"

	"github.com/G-Node/nix-sub001/nix/storage"
	"github.com/G-Node/nix-sub001/types"
)

const (
	attrLinkType = "link_type"
	linkData     = "data"
)

// Feature attaches additional data to a tag. The link type decides which
// part of the data belongs to a tagged position.
type Feature struct {
	entity
}

func newFeature(n *storage.Node, f *File) *Feature {
	return &Feature{entity{node: n, file: f}}
}

// LinkType returns how the data aligns with the tag
func (f *Feature) LinkType() LinkType {
	s, _ := f.node.String(attrLinkType)
	lt, err := types.ParseLinkType(s)
	if err != nil {
		return types.Tagged
	}
	return lt
}

// SetLinkType changes how the data aligns with the tag
func (f *Feature) SetLinkType(lt LinkType) {
	_ = f.node.SetAttr(attrLinkType, lt.String())
	f.touch()
}

// Data returns the feature data array, if it still exists
func (f *Feature) Data() (*DataArray, bool) {
	n, ok := f.node.Link(linkData)
	if !ok {
		return nil, false
	}
	return newDataArray(n, f.file), true
}

// SetData replaces the feature data with an array of the same block
func (f *Feature) SetData(a *DataArray) error {
	if err := f.checkAlive(); err != nil {
		return err
	}
	b := blockOf(f.node, f.file)
	if a == nil || b == nil || !b.dataArrays().owns(a.node) {
		return fmt.Errorf("%w: feature data must be a data array of the same block", types.ErrNotFound)
	}
	f.node.RemoveLink(linkData)
	if err := f.node.CreateLink(linkData, a.node); err != nil {
		return err
	}
	f.touch()
	return nil
}
