package nix

import (
	"fmt"
	"strings"
	"time"

	"github.com/G-Node/nix-sub001/nix/storage"
	"github.com/G-Node/nix-sub001/types"
	"github.com/google/uuid"
)

// persisted attribute names shared by all entities
const (
	attrID         = "entity_id"
	attrName       = "name"
	attrType       = "type"
	attrDefinition = "definition"
	attrCreatedAt  = "created_at"
	attrUpdatedAt  = "updated_at"
)

// entity is the state every stored object shares: its node and the file it
// belongs to.
type entity struct {
	node *storage.Node
	file *File
}

// ID returns the immutable identifier
func (e entity) ID() string {
	id, _ := e.node.String(attrID)
	return id
}

// CreatedAt returns the creation time
func (e entity) CreatedAt() time.Time {
	t, _ := e.node.Time(attrCreatedAt)
	return t
}

// UpdatedAt returns the time of the last modification
func (e entity) UpdatedAt() time.Time {
	t, _ := e.node.Time(attrUpdatedAt)
	return t
}

// SetCreatedAt overrides the creation time, e.g. when importing data
func (e entity) SetCreatedAt(t time.Time) {
	_ = e.node.SetAttr(attrCreatedAt, t)
}

// Alive reports whether the entity still exists in its file
func (e entity) Alive() bool {
	return e.node.Alive()
}

func (e entity) nodeRef() *storage.Node {
	return e.node
}

func (e entity) touch() {
	_ = e.node.SetAttr(attrUpdatedAt, e.file.now())
}

func (e entity) checkAlive() error {
	if !e.node.Alive() {
		return fmt.Errorf("%w: entity %s was deleted", types.ErrUninitializedEntity, e.ID())
	}
	return nil
}

// namedEntity adds name, type and definition
type namedEntity struct {
	entity
}

// Name returns the entity name, unique within its parent collection
func (e namedEntity) Name() string {
	name, _ := e.node.String(attrName)
	return name
}

// Type returns the semantic type of the entity
func (e namedEntity) Type() string {
	typ, _ := e.node.String(attrType)
	return typ
}

// SetType changes the semantic type
func (e namedEntity) SetType(typ string) error {
	if typ == "" {
		return fmt.Errorf("%w: type", types.ErrEmptyString)
	}
	_ = e.node.SetAttr(attrType, typ)
	e.touch()
	return nil
}

// Definition returns the optional free text definition
func (e namedEntity) Definition() (string, bool) {
	return e.node.String(attrDefinition)
}

// SetDefinition sets the definition; an empty string removes it
func (e namedEntity) SetDefinition(def string) {
	if def == "" {
		e.node.DeleteAttr(attrDefinition)
	} else {
		_ = e.node.SetAttr(attrDefinition, def)
	}
	e.touch()
}

// SetName renames the entity. The name must stay unique in the parent collection.
func (e namedEntity) SetName(name string) error {
	if err := checkEntityName(name); err != nil {
		return err
	}
	if name == e.Name() {
		return nil
	}
	parent := collection{node: e.node.Parent(), file: e.file}
	if parent.hasName(name) {
		return fmt.Errorf("%w: %s", types.ErrDuplicateName, name)
	}
	_ = e.node.SetAttr(attrName, name)
	e.touch()
	return nil
}

func checkEntityName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: name", types.ErrEmptyString)
	}
	if strings.Contains(name, "/") {
		return fmt.Errorf("%w: %q contains '/'", types.ErrInvalidName, name)
	}
	return nil
}

// metadataEntity is a named entity that can point at a metadata section
type metadataEntity struct {
	namedEntity
}

const linkMetadata = "metadata"

// Metadata returns the linked section, if any
func (m metadataEntity) Metadata() (*Section, bool) {
	n, ok := m.node.Link(linkMetadata)
	if !ok {
		return nil, false
	}
	return newSection(n, m.file), true
}

// SetMetadata links a section of the same file, replacing a previous link
func (m metadataEntity) SetMetadata(s *Section) error {
	if s == nil || !s.Alive() || s.file != m.file {
		return fmt.Errorf("%w: section is not part of this file", types.ErrNotFound)
	}
	m.node.RemoveLink(linkMetadata)
	if err := m.node.CreateLink(linkMetadata, s.node); err != nil {
		return err
	}
	m.touch()
	return nil
}

// RemoveMetadata drops the metadata link
func (m metadataEntity) RemoveMetadata() {
	if m.node.RemoveLink(linkMetadata) {
		m.touch()
	}
}

// collection is a node whose children are entities keyed by id
type collection struct {
	node *storage.Node
	file *File
}

func (c collection) lookup(nameOrID string) (*storage.Node, bool) {
	if c.node == nil {
		return nil, false
	}
	if n, ok := c.node.Child(nameOrID); ok {
		return n, true
	}
	for _, n := range c.node.Children() {
		if name, _ := n.String(attrName); name == nameOrID {
			return n, true
		}
	}
	return nil, false
}

// owns reports whether n is a live child of the collection
func (c collection) owns(n *storage.Node) bool {
	if c.node == nil || n == nil {
		return false
	}
	child, ok := c.node.Child(n.Name())
	return ok && child == n && n.Alive()
}

func (c collection) hasName(name string) bool {
	if c.node == nil {
		return false
	}
	for _, n := range c.node.Children() {
		if existing, _ := n.String(attrName); existing == name {
			return true
		}
	}
	return false
}

func (c collection) count() int {
	if c.node == nil {
		return 0
	}
	return c.node.ChildCount()
}

func (c collection) all() []*storage.Node {
	if c.node == nil {
		return nil
	}
	return c.node.Children()
}

func (c collection) remove(nameOrID string) (*storage.Node, bool) {
	n, ok := c.lookup(nameOrID)
	if !ok {
		return nil, false
	}
	c.node.DeleteChild(n.Name())
	return n, true
}

// createNamed adds a named entity node with a fresh id
func (c collection) createNamed(name, typ string) (*storage.Node, error) {
	if err := checkEntityName(name); err != nil {
		return nil, err
	}
	if typ == "" {
		return nil, fmt.Errorf("%w: type", types.ErrEmptyString)
	}
	if c.hasName(name) {
		return nil, fmt.Errorf("%w: %s", types.ErrDuplicateName, name)
	}
	n, err := c.create()
	if err != nil {
		return nil, err
	}
	_ = n.SetAttr(attrName, name)
	_ = n.SetAttr(attrType, typ)
	return n, nil
}

// create adds an unnamed entity node with a fresh id
func (c collection) create() (*storage.Node, error) {
	id := uuid.NewString()
	n, err := c.node.CreateChild(id)
	if err != nil {
		return nil, err
	}
	now := c.file.now()
	_ = n.SetAttr(attrID, id)
	_ = n.SetAttr(attrCreatedAt, now)
	_ = n.SetAttr(attrUpdatedAt, now)
	return n, nil
}

// wrapAll converts the children of c with wrap
func wrapAll[T any](c collection, wrap func(*storage.Node, *File) T) []T {
	nodes := c.all()
	out := make([]T, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, wrap(n, c.file))
	}
	return out
}
