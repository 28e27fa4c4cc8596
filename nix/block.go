package nix

import (
	"fmt"

	"github.com/G-Node/nix-sub001/nix/storage"
	"github.com/G-Node/nix-sub001/types"
)

// block layout
const (
	nodeDataArrays = "data_arrays"
	nodeTags       = "tags"
	nodeMultiTags  = "multi_tags"
	nodeGroups     = "groups"
)

// Block owns data arrays, tags, multi tags and groups. Every relation in the
// entity graph stays within one block.
type Block struct {
	metadataEntity
}

func newBlock(n *storage.Node, f *File) *Block {
	return &Block{metadataEntity{namedEntity{entity{node: n, file: f}}}}
}

func (b *Block) sub(name string) collection {
	n, _ := b.node.Child(name)
	return collection{node: n, file: b.file}
}

func (b *Block) dataArrays() collection { return b.sub(nodeDataArrays) }
func (b *Block) tags() collection       { return b.sub(nodeTags) }
func (b *Block) multiTags() collection  { return b.sub(nodeMultiTags) }
func (b *Block) groups() collection     { return b.sub(nodeGroups) }

// CreateDataArray adds a zero filled array of the given type and shape
func (b *Block) CreateDataArray(name, typ string, dt DataType, shape NDSize) (*DataArray, error) {
	if err := b.checkAlive(); err != nil {
		return nil, err
	}
	ds, err := storage.NewDataset(dt, shape)
	if err != nil {
		return nil, fmt.Errorf("failed to create data array %s: %w", name, err)
	}
	return b.createDataArray(name, typ, ds)
}

// CreateDataArrayFromData adds an array holding a copy of data. The element
// type is taken from data, which must be a slice of a supported type whose
// length matches shape.
func (b *Block) CreateDataArrayFromData(name, typ string, data any, shape NDSize) (*DataArray, error) {
	if err := b.checkAlive(); err != nil {
		return nil, err
	}
	dt := types.DataTypeOf(data)
	if dt == types.Nothing {
		return nil, fmt.Errorf("%w: unsupported element type %T", types.ErrInvalidDataType, data)
	}
	ds, err := storage.NewDatasetFromData(dt, shape, data)
	if err != nil {
		return nil, fmt.Errorf("failed to create data array %s: %w", name, err)
	}
	return b.createDataArray(name, typ, ds)
}

func (b *Block) createDataArray(name, typ string, ds *storage.Dataset) (*DataArray, error) {
	n, err := b.dataArrays().createNamed(name, typ)
	if err != nil {
		return nil, fmt.Errorf("failed to create data array: %w", err)
	}
	n.AttachDataset(ds)
	if _, err := n.CreateChild(nodeDimensions); err != nil {
		return nil, err
	}
	b.touch()
	return newDataArray(n, b.file), nil
}

// DataArray returns the array with the given name or id
func (b *Block) DataArray(nameOrID string) (*DataArray, bool) {
	n, ok := b.dataArrays().lookup(nameOrID)
	if !ok {
		return nil, false
	}
	return newDataArray(n, b.file), true
}

// HasDataArray reports whether an array with the given name or id exists
func (b *Block) HasDataArray(nameOrID string) bool {
	_, ok := b.dataArrays().lookup(nameOrID)
	return ok
}

// DataArrays returns all arrays of the block
func (b *Block) DataArrays() []*DataArray {
	return wrapAll(b.dataArrays(), newDataArray)
}

// DataArrayCount returns the number of arrays
func (b *Block) DataArrayCount() int {
	return b.dataArrays().count()
}

// DeleteDataArray removes an array and detaches it from every tag, multi tag,
// feature and group of this block.
func (b *Block) DeleteDataArray(nameOrID string) bool {
	n, ok := b.dataArrays().remove(nameOrID)
	if !ok {
		return false
	}
	id := n.Name()
	for _, t := range b.Tags() {
		t.References().drop(id)
		t.pruneFeatures()
	}
	for _, m := range b.MultiTags() {
		m.References().drop(id)
		m.pruneFeatures()
	}
	for _, g := range b.Groups() {
		g.DataArrays().drop(id)
	}
	b.touch()
	b.file.logger.Debug("deleted data array", "block", b.ID(), "id", id)
	return true
}

// CreateTag adds a tag at the given position
func (b *Block) CreateTag(name, typ string, position []float64) (*Tag, error) {
	if err := b.checkAlive(); err != nil {
		return nil, err
	}
	n, err := b.tags().createNamed(name, typ)
	if err != nil {
		return nil, fmt.Errorf("failed to create tag: %w", err)
	}
	if err := initTagNode(n); err != nil {
		return nil, err
	}
	t := newTag(n, b.file)
	if err := t.SetPosition(position); err != nil {
		b.tags().remove(n.Name())
		return nil, err
	}
	b.touch()
	return t, nil
}

// Tag returns the tag with the given name or id
func (b *Block) Tag(nameOrID string) (*Tag, bool) {
	n, ok := b.tags().lookup(nameOrID)
	if !ok {
		return nil, false
	}
	return newTag(n, b.file), true
}

// HasTag reports whether a tag with the given name or id exists
func (b *Block) HasTag(nameOrID string) bool {
	_, ok := b.tags().lookup(nameOrID)
	return ok
}

// Tags returns all tags of the block
func (b *Block) Tags() []*Tag {
	return wrapAll(b.tags(), newTag)
}

// TagCount returns the number of tags
func (b *Block) TagCount() int {
	return b.tags().count()
}

// DeleteTag removes a tag and detaches it from the groups of this block
func (b *Block) DeleteTag(nameOrID string) bool {
	n, ok := b.tags().remove(nameOrID)
	if !ok {
		return false
	}
	for _, g := range b.Groups() {
		g.Tags().drop(n.Name())
	}
	b.touch()
	return true
}

// CreateMultiTag adds a multi tag whose rows are the given positions array.
// The positions array must belong to this block.
func (b *Block) CreateMultiTag(name, typ string, positions *DataArray) (*MultiTag, error) {
	if err := b.checkAlive(); err != nil {
		return nil, err
	}
	if positions == nil || !b.dataArrays().owns(positions.node) {
		return nil, fmt.Errorf("%w: positions must be a data array of block %s", types.ErrNotFound, b.Name())
	}
	n, err := b.multiTags().createNamed(name, typ)
	if err != nil {
		return nil, fmt.Errorf("failed to create multi tag: %w", err)
	}
	if err := initTagNode(n); err != nil {
		return nil, err
	}
	if err := n.CreateLink(linkPositions, positions.node); err != nil {
		return nil, err
	}
	b.touch()
	return newMultiTag(n, b.file), nil
}

// MultiTag returns the multi tag with the given name or id
func (b *Block) MultiTag(nameOrID string) (*MultiTag, bool) {
	n, ok := b.multiTags().lookup(nameOrID)
	if !ok {
		return nil, false
	}
	return newMultiTag(n, b.file), true
}

// HasMultiTag reports whether a multi tag with the given name or id exists
func (b *Block) HasMultiTag(nameOrID string) bool {
	_, ok := b.multiTags().lookup(nameOrID)
	return ok
}

// MultiTags returns all multi tags of the block
func (b *Block) MultiTags() []*MultiTag {
	return wrapAll(b.multiTags(), newMultiTag)
}

// MultiTagCount returns the number of multi tags
func (b *Block) MultiTagCount() int {
	return b.multiTags().count()
}

// DeleteMultiTag removes a multi tag and detaches it from the groups of this block
func (b *Block) DeleteMultiTag(nameOrID string) bool {
	n, ok := b.multiTags().remove(nameOrID)
	if !ok {
		return false
	}
	for _, g := range b.Groups() {
		g.MultiTags().drop(n.Name())
	}
	b.touch()
	return true
}

// CreateGroup adds an empty group
func (b *Block) CreateGroup(name, typ string) (*Group, error) {
	if err := b.checkAlive(); err != nil {
		return nil, err
	}
	n, err := b.groups().createNamed(name, typ)
	if err != nil {
		return nil, fmt.Errorf("failed to create group: %w", err)
	}
	for _, sub := range []string{nodeDataArrays, nodeTags, nodeMultiTags} {
		if _, err := n.CreateChild(sub); err != nil {
			return nil, err
		}
	}
	b.touch()
	return newGroup(n, b.file), nil
}

// Group returns the group with the given name or id
func (b *Block) Group(nameOrID string) (*Group, bool) {
	n, ok := b.groups().lookup(nameOrID)
	if !ok {
		return nil, false
	}
	return newGroup(n, b.file), true
}

// HasGroup reports whether a group with the given name or id exists
func (b *Block) HasGroup(nameOrID string) bool {
	_, ok := b.groups().lookup(nameOrID)
	return ok
}

// Groups returns all groups of the block
func (b *Block) Groups() []*Group {
	return wrapAll(b.groups(), newGroup)
}

// GroupCount returns the number of groups
func (b *Block) GroupCount() int {
	return b.groups().count()
}

// DeleteGroup removes a group. Its members are not affected.
func (b *Block) DeleteGroup(nameOrID string) bool {
	_, ok := b.groups().remove(nameOrID)
	if ok {
		b.touch()
	}
	return ok
}

// blockOf returns the block owning an entity node stored under one of the
// block collections.
func blockOf(n *storage.Node, f *File) *Block {
	for cur := n; cur != nil; cur = cur.Parent() {
		if p := cur.Parent(); p != nil && p.Name() == nodeData && p.Parent() != nil && p.Parent().Parent() == nil {
			return newBlock(cur, f)
		}
	}
	return nil
}
