package nix

import (
	"fmt"

	"github.com/G-Node/nix-sub001/nix/storage"
)

// section layout
const (
	nodeSections   = "sections"
	nodeProperties = "properties"
)

// Section is a node of the metadata tree. It holds properties and nested
// sections.
type Section struct {
	namedEntity
}

func newSection(n *storage.Node, f *File) *Section {
	return &Section{namedEntity{entity{node: n, file: f}}}
}

func createSection(c collection, name, typ string) (*Section, error) {
	if c.node == nil {
		return nil, fmt.Errorf("failed to create section %s: no metadata tree", name)
	}
	n, err := c.createNamed(name, typ)
	if err != nil {
		return nil, fmt.Errorf("failed to create section: %w", err)
	}
	for _, sub := range []string{nodeSections, nodeProperties} {
		if _, err := n.CreateChild(sub); err != nil {
			return nil, err
		}
	}
	return newSection(n, c.file), nil
}

func (s *Section) sections() collection {
	n, _ := s.node.Child(nodeSections)
	return collection{node: n, file: s.file}
}

func (s *Section) properties() collection {
	n, _ := s.node.Child(nodeProperties)
	return collection{node: n, file: s.file}
}

// Parent returns the enclosing section, false for root sections
func (s *Section) Parent() (*Section, bool) {
	p := s.node.Parent()
	if p == nil || p.Name() != nodeSections || p.Parent() == nil {
		return nil, false
	}
	return newSection(p.Parent(), s.file), true
}

// CreateSection adds a nested section
func (s *Section) CreateSection(name, typ string) (*Section, error) {
	if err := s.checkAlive(); err != nil {
		return nil, err
	}
	sub, err := createSection(s.sections(), name, typ)
	if err != nil {
		return nil, err
	}
	s.touch()
	return sub, nil
}

// Section returns the nested section with the given name or id
func (s *Section) Section(nameOrID string) (*Section, bool) {
	n, ok := s.sections().lookup(nameOrID)
	if !ok {
		return nil, false
	}
	return newSection(n, s.file), true
}

// HasSection reports whether a nested section with the given name or id exists
func (s *Section) HasSection(nameOrID string) bool {
	_, ok := s.sections().lookup(nameOrID)
	return ok
}

// Sections returns the nested sections
func (s *Section) Sections() []*Section {
	return wrapAll(s.sections(), newSection)
}

// SectionCount returns the number of nested sections
func (s *Section) SectionCount() int {
	return s.sections().count()
}

// DeleteSection removes a nested section with everything below it
func (s *Section) DeleteSection(nameOrID string) bool {
	_, ok := s.sections().remove(nameOrID)
	if ok {
		s.touch()
	}
	return ok
}

// FindSections returns this section and all sections below it, up to
// maxDepth levels deep, for which filter holds. A negative maxDepth means
// no limit; a nil filter accepts everything.
func (s *Section) FindSections(filter func(*Section) bool, maxDepth int) []*Section {
	var out []*Section
	var walk func(*Section, int)
	walk = func(cur *Section, depth int) {
		if filter == nil || filter(cur) {
			out = append(out, cur)
		}
		if maxDepth >= 0 && depth >= maxDepth {
			return
		}
		for _, sub := range cur.Sections() {
			walk(sub, depth+1)
		}
	}
	walk(s, 0)
	return out
}

// CreateProperty adds a property holding values, a slice of any supported
// element type. nil creates a property without values.
func (s *Section) CreateProperty(name string, values any) (*Property, error) {
	if err := s.checkAlive(); err != nil {
		return nil, err
	}
	n, err := s.properties().createNamed(name, "property")
	if err != nil {
		return nil, fmt.Errorf("failed to create property: %w", err)
	}
	p := newProperty(n, s.file)
	if values != nil {
		if err := p.SetValues(values); err != nil {
			s.properties().remove(n.Name())
			return nil, err
		}
	}
	s.touch()
	return p, nil
}

// Property returns the property with the given name or id
func (s *Section) Property(nameOrID string) (*Property, bool) {
	n, ok := s.properties().lookup(nameOrID)
	if !ok {
		return nil, false
	}
	return newProperty(n, s.file), true
}

// HasProperty reports whether a property with the given name or id exists
func (s *Section) HasProperty(nameOrID string) bool {
	_, ok := s.properties().lookup(nameOrID)
	return ok
}

// Properties returns the properties of the section
func (s *Section) Properties() []*Property {
	return wrapAll(s.properties(), newProperty)
}

// PropertyCount returns the number of properties
func (s *Section) PropertyCount() int {
	return s.properties().count()
}

// DeleteProperty removes a property
func (s *Section) DeleteProperty(nameOrID string) bool {
	_, ok := s.properties().remove(nameOrID)
	if ok {
		s.touch()
	}
	return ok
}
