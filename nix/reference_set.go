package nix

import (
	"fmt"

	"github.com/G-Node/nix-sub001/internal/refset"
	"github.com/G-Node/nix-sub001/nix/storage"
	"github.com/G-Node/nix-sub001/types"
)

// member is an entity that can be the target of a reference set
type member interface {
	ID() string
	Name() string
	nodeRef() *storage.Node
}

// ReferenceSet is a many-to-many relation from one entity to members of an
// owning collection. Links are stored under the member id. A link whose
// target no longer exists in the owning collection is invisible.
type ReferenceSet[T member] struct {
	links *storage.Node
	owner collection
	wrap  func(*storage.Node, *File) T
	touch func()
}

func newReferenceSet[T member](links *storage.Node, owner collection, wrap func(*storage.Node, *File) T, touch func()) *ReferenceSet[T] {
	return &ReferenceSet[T]{links: links, owner: owner, wrap: wrap, touch: touch}
}

// live returns the targets of all links that still resolve to members of
// the owning collection, ordered by id.
func (r *ReferenceSet[T]) live() []*storage.Node {
	if r.links == nil {
		return nil
	}
	var out []*storage.Node
	for _, l := range r.links.Links() {
		if r.owner.owns(l.Target) {
			out = append(out, l.Target)
		}
	}
	return out
}

func (r *ReferenceSet[T]) find(nameOrID string) (*storage.Node, bool) {
	if r.links == nil {
		return nil, false
	}
	if n, ok := r.links.Link(nameOrID); ok && r.owner.owns(n) {
		return n, true
	}
	for _, n := range r.live() {
		if name, _ := n.String(attrName); name == nameOrID {
			return n, true
		}
	}
	return nil, false
}

// Count returns the number of live references
func (r *ReferenceSet[T]) Count() int {
	return len(r.live())
}

// Has reports whether a live reference to the given name or id exists
func (r *ReferenceSet[T]) Has(nameOrID string) bool {
	_, ok := r.find(nameOrID)
	return ok
}

// Get returns the referenced member with the given name or id
func (r *ReferenceSet[T]) Get(nameOrID string) (T, bool) {
	n, ok := r.find(nameOrID)
	if !ok {
		var zero T
		return zero, false
	}
	return r.wrap(n, r.owner.file), true
}

// At returns the i-th live reference in id order
func (r *ReferenceSet[T]) At(i int) (T, error) {
	nodes := r.live()
	if i < 0 || i >= len(nodes) {
		var zero T
		return zero, fmt.Errorf("%w: reference %d of %d", types.ErrOutOfBounds, i, len(nodes))
	}
	return r.wrap(nodes[i], r.owner.file), nil
}

// All returns every live reference in id order
func (r *ReferenceSet[T]) All() []T {
	nodes := r.live()
	out := make([]T, len(nodes))
	for i, n := range nodes {
		out[i] = r.wrap(n, r.owner.file)
	}
	return out
}

// Add links the member with the given name or id of the owning collection
func (r *ReferenceSet[T]) Add(nameOrID string) error {
	n, ok := r.owner.lookup(nameOrID)
	if !ok {
		return fmt.Errorf("%w: member %s", types.ErrNotFound, nameOrID)
	}
	return r.link(n)
}

// AddMember links m, which must belong to the owning collection
func (r *ReferenceSet[T]) AddMember(m T) error {
	n := m.nodeRef()
	if !r.owner.owns(n) {
		return fmt.Errorf("%w: member %s is not part of the owning collection", types.ErrNotFound, m.Name())
	}
	return r.link(n)
}

func (r *ReferenceSet[T]) link(n *storage.Node) error {
	if r.links == nil {
		return fmt.Errorf("%w: reference set is not initialized", types.ErrUninitializedEntity)
	}
	if r.links.HasLink(n.Name()) {
		return nil
	}
	r.links.RemoveLink(n.Name())
	if err := r.links.CreateLink(n.Name(), n); err != nil {
		return err
	}
	r.touch()
	return nil
}

// Remove drops the reference to the given name or id. The member itself is
// not affected.
func (r *ReferenceSet[T]) Remove(nameOrID string) bool {
	n, ok := r.find(nameOrID)
	if !ok {
		return false
	}
	return r.drop(n.Name())
}

// drop removes the link stored under id, live or not
func (r *ReferenceSet[T]) drop(id string) bool {
	if r.links == nil || !r.links.RemoveLink(id) {
		return false
	}
	r.touch()
	return true
}

// Set makes the references equal to members. Members already referenced are
// left untouched. Every member must belong to the owning collection; if one
// does not, nothing is changed.
func (r *ReferenceSet[T]) Set(members []T) error {
	if r.links == nil {
		return fmt.Errorf("%w: reference set is not initialized", types.ErrUninitializedEntity)
	}
	byName := make(map[string]*storage.Node, len(members))
	target := make([]string, 0, len(members))
	for _, m := range members {
		target = append(target, m.Name())
		byName[m.Name()] = m.nodeRef()
	}
	current := make([]string, 0)
	currentByName := map[string]*storage.Node{}
	for _, n := range r.live() {
		name, _ := n.String(attrName)
		current = append(current, name)
		currentByName[name] = n
	}

	toAdd, toRemove := refset.Reconcile(current, target)

	adds := make([]*storage.Node, 0, len(toAdd))
	for _, name := range toAdd {
		n, ok := r.owner.lookup(name)
		if !ok || n != byName[name] {
			return fmt.Errorf("%w: member %s", types.ErrNotFound, name)
		}
		adds = append(adds, n)
	}

	for _, name := range toRemove {
		r.links.RemoveLink(currentByName[name].Name())
	}
	r.links.PruneLinks()
	for _, n := range adds {
		if err := r.links.CreateLink(n.Name(), n); err != nil {
			return err
		}
	}
	if len(toAdd) > 0 || len(toRemove) > 0 {
		r.touch()
	}
	return nil
}
