package nix

import "github.com/G-Node/nix-sub001/nix/storage"

// Group collects data arrays, tags and multi tags of its block without
// owning them.
type Group struct {
	metadataEntity
}

func newGroup(n *storage.Node, f *File) *Group {
	return &Group{metadataEntity{namedEntity{entity{node: n, file: f}}}}
}

func groupRelation[T member](g *Group, sub string, owner func(*Block) collection, wrap func(*storage.Node, *File) T) *ReferenceSet[T] {
	links, _ := g.node.Child(sub)
	c := collection{file: g.file}
	if b := blockOf(g.node, g.file); b != nil {
		c = owner(b)
	}
	return newReferenceSet(links, c, wrap, g.touch)
}

// DataArrays returns the data arrays in the group
func (g *Group) DataArrays() *ReferenceSet[*DataArray] {
	return groupRelation(g, nodeDataArrays, (*Block).dataArrays, newDataArray)
}

// Tags returns the tags in the group
func (g *Group) Tags() *ReferenceSet[*Tag] {
	return groupRelation(g, nodeTags, (*Block).tags, newTag)
}

// MultiTags returns the multi tags in the group
func (g *Group) MultiTags() *ReferenceSet[*MultiTag] {
	return groupRelation(g, nodeMultiTags, (*Block).multiTags, newMultiTag)
}
