// Package storage is the hierarchical container the entity model is built on.
// A tree of named nodes carries attributes, owned children, hard links to other
// nodes and at most one typed n-dimensional dataset per node.
//
// Children and links share one namespace per node and are kept ordered by name.
// Deleting a child detaches its whole subtree; links pointing into a detached
// subtree resolve as absent instead of failing.
//
// The tree is not safe for concurrent mutation. Callers that share a tree
// between goroutines guard it with a LockManager.
package storage

import (
	"fmt"
	"strings"

	"github.com/G-Node/nix-sub001/types"
	"github.com/google/btree"
)

const btreeDegree = 16

// entry is one name in a node's namespace: an owned child or a hard link
type entry struct {
	name string
	node *Node
	link bool
}

func entryLess(a, b *entry) bool {
	return a.name < b.name
}

// Node is a named group in the container tree
type Node struct {
	name     string
	parent   *Node
	attrs    map[string]any
	entries  *btree.BTreeG[*entry]
	dataset  *Dataset
	detached bool
}

// Link describes a live hard link
type Link struct {
	Name   string
	Target *Node
}

// NewRoot creates an empty tree and returns its root node
func NewRoot() *Node {
	return newNode("", nil)
}

func newNode(name string, parent *Node) *Node {
	return &Node{
		name:    name,
		parent:  parent,
		attrs:   make(map[string]any),
		entries: btree.NewG(btreeDegree, entryLess),
	}
}

// Name returns the node's name within its parent
func (n *Node) Name() string {
	return n.name
}

// Parent returns the owning node, nil for the root
func (n *Node) Parent() *Node {
	return n.parent
}

// Root returns the top of the tree this node belongs to
func (n *Node) Root() *Node {
	for n.parent != nil {
		n = n.parent
	}
	return n
}

// Path returns the absolute slash separated path of the node
func (n *Node) Path() string {
	if n.parent == nil {
		return "/"
	}
	var parts []string
	for cur := n; cur.parent != nil; cur = cur.parent {
		parts = append(parts, cur.name)
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return "/" + strings.Join(parts, "/")
}

// Alive reports whether the node is still attached to its tree
func (n *Node) Alive() bool {
	return n != nil && !n.detached
}

func checkName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: node name", types.ErrEmptyString)
	}
	if strings.Contains(name, "/") {
		return fmt.Errorf("%w: %q contains '/'", types.ErrInvalidName, name)
	}
	return nil
}

func (n *Node) lookup(name string) (*entry, bool) {
	return n.entries.Get(&entry{name: name})
}

// CreateChild adds a new owned child node
func (n *Node) CreateChild(name string) (*Node, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	if !n.Alive() {
		return nil, fmt.Errorf("%w: %s is detached", types.ErrUninitializedEntity, n.name)
	}
	if _, exists := n.lookup(name); exists {
		return nil, fmt.Errorf("%w: %s already exists in %s", types.ErrDuplicateName, name, n.Path())
	}
	child := newNode(name, n)
	n.entries.ReplaceOrInsert(&entry{name: name, node: child})
	return child, nil
}

// RequireChild returns the named child, creating it when missing
func (n *Node) RequireChild(name string) (*Node, error) {
	if child, ok := n.Child(name); ok {
		return child, nil
	}
	return n.CreateChild(name)
}

// Child returns the owned child with the given name
func (n *Node) Child(name string) (*Node, bool) {
	e, ok := n.lookup(name)
	if !ok || e.link {
		return nil, false
	}
	return e.node, true
}

// HasChild reports whether an owned child with the given name exists
func (n *Node) HasChild(name string) bool {
	_, ok := n.Child(name)
	return ok
}

// DeleteChild removes an owned child and detaches its subtree
func (n *Node) DeleteChild(name string) bool {
	e, ok := n.lookup(name)
	if !ok || e.link {
		return false
	}
	n.entries.Delete(e)
	e.node.detach()
	return true
}

func (n *Node) detach() {
	n.detached = true
	n.entries.Ascend(func(e *entry) bool {
		if !e.link {
			e.node.detach()
		}
		return true
	})
}

// RenameChild moves an owned child to a new name within the same node
func (n *Node) RenameChild(oldName, newName string) error {
	if err := checkName(newName); err != nil {
		return err
	}
	e, ok := n.lookup(oldName)
	if !ok || e.link {
		return fmt.Errorf("%w: %s in %s", types.ErrNotFound, oldName, n.Path())
	}
	if oldName == newName {
		return nil
	}
	if _, exists := n.lookup(newName); exists {
		return fmt.Errorf("%w: %s already exists in %s", types.ErrDuplicateName, newName, n.Path())
	}
	n.entries.Delete(e)
	e.name = newName
	e.node.name = newName
	n.entries.ReplaceOrInsert(e)
	return nil
}

// Children returns the owned children ordered by name
func (n *Node) Children() []*Node {
	var out []*Node
	n.entries.Ascend(func(e *entry) bool {
		if !e.link {
			out = append(out, e.node)
		}
		return true
	})
	return out
}

// ChildCount returns the number of owned children
func (n *Node) ChildCount() int {
	count := 0
	n.entries.Ascend(func(e *entry) bool {
		if !e.link {
			count++
		}
		return true
	})
	return count
}

// CreateLink adds a hard link to target under the given name
func (n *Node) CreateLink(name string, target *Node) error {
	if err := checkName(name); err != nil {
		return err
	}
	if !target.Alive() {
		return fmt.Errorf("%w: link target is detached", types.ErrUninitializedEntity)
	}
	if _, exists := n.lookup(name); exists {
		return fmt.Errorf("%w: %s already exists in %s", types.ErrDuplicateName, name, n.Path())
	}
	n.entries.ReplaceOrInsert(&entry{name: name, node: target, link: true})
	return nil
}

// RemoveLink drops a hard link, leaving its target untouched
func (n *Node) RemoveLink(name string) bool {
	e, ok := n.lookup(name)
	if !ok || !e.link {
		return false
	}
	n.entries.Delete(e)
	return true
}

// Link resolves a hard link. Links whose target was deleted resolve as absent.
func (n *Node) Link(name string) (*Node, bool) {
	e, ok := n.lookup(name)
	if !ok || !e.link || !e.node.Alive() {
		return nil, false
	}
	return e.node, true
}

// HasLink reports whether a live link with the given name exists
func (n *Node) HasLink(name string) bool {
	_, ok := n.Link(name)
	return ok
}

// Links returns all live links ordered by name
func (n *Node) Links() []Link {
	var out []Link
	n.entries.Ascend(func(e *entry) bool {
		if e.link && e.node.Alive() {
			out = append(out, Link{Name: e.name, Target: e.node})
		}
		return true
	})
	return out
}

// PruneLinks removes dangling links in the subtree rooted at n and returns
// how many were removed.
func (n *Node) PruneLinks() int {
	var dangling []*entry
	removed := 0
	n.entries.Ascend(func(e *entry) bool {
		switch {
		case e.link && !e.node.Alive():
			dangling = append(dangling, e)
		case !e.link:
			removed += e.node.PruneLinks()
		}
		return true
	})
	for _, e := range dangling {
		n.entries.Delete(e)
	}
	return removed + len(dangling)
}

// Lookup resolves a slash separated path of owned children. Absolute paths
// are resolved from the root of the tree.
func (n *Node) Lookup(path string) (*Node, bool) {
	cur := n
	if strings.HasPrefix(path, "/") {
		cur = n.Root()
	}
	for _, part := range strings.Split(strings.Trim(path, "/"), "/") {
		if part == "" {
			continue
		}
		next, ok := cur.Child(part)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

// Walk visits n and all owned descendants depth first in name order
func (n *Node) Walk(fn func(*Node) error) error {
	if err := fn(n); err != nil {
		return err
	}
	var err error
	n.entries.Ascend(func(e *entry) bool {
		if e.link {
			return true
		}
		err = e.node.Walk(fn)
		return err == nil
	})
	return err
}

// CreateDataset allocates a zero filled dataset on this node
func (n *Node) CreateDataset(dt types.DataType, shape types.NDSize) (*Dataset, error) {
	if n.dataset != nil {
		return nil, fmt.Errorf("%w: %s already holds a dataset", types.ErrDuplicateName, n.Path())
	}
	ds, err := NewDataset(dt, shape)
	if err != nil {
		return nil, err
	}
	n.dataset = ds
	return ds, nil
}

// AttachDataset sets an existing dataset on this node, replacing any previous one
func (n *Node) AttachDataset(ds *Dataset) {
	n.dataset = ds
}

// Dataset returns the node's dataset if it has one
func (n *Node) Dataset() (*Dataset, bool) {
	return n.dataset, n.dataset != nil
}

// DeleteDataset drops the node's dataset
func (n *Node) DeleteDataset() bool {
	had := n.dataset != nil
	n.dataset = nil
	return had
}
