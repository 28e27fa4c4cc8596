package store

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/G-Node/nix-sub001/nix/storage"
	"github.com/G-Node/nix-sub001/types"
	"gopkg.in/yaml.v3"
)

// Format selects the document encoding of a container file
type Format int

const (
	// FormatJSON encodes the tree with encoding/json
	FormatJSON Format = iota
	// FormatYAML encodes the tree with gopkg.in/yaml.v3
	FormatYAML
)

// String returns the lower case name of the format
func (f Format) String() string {
	if f == FormatYAML {
		return "yaml"
	}
	return "json"
}

// FormatFor derives the format from a file name: .yaml and .yml select YAML,
// everything else JSON.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

const documentVersion = "1.0"

// document is the on-disk representation of a container tree
type document struct {
	Version string    `json:"version" yaml:"version"`
	SavedAt time.Time `json:"saved_at" yaml:"saved_at"`
	Root    nodeDoc   `json:"root" yaml:"root"`
}

type nodeDoc struct {
	Name     string             `json:"name,omitempty" yaml:"name,omitempty"`
	Attrs    map[string]attrDoc `json:"attrs,omitempty" yaml:"attrs,omitempty"`
	Dataset  *datasetDoc        `json:"dataset,omitempty" yaml:"dataset,omitempty"`
	Links    []linkDoc          `json:"links,omitempty" yaml:"links,omitempty"`
	Children []nodeDoc          `json:"children,omitempty" yaml:"children,omitempty"`
}

type attrDoc struct {
	Type  string `json:"type" yaml:"type"`
	Value any    `json:"value" yaml:"value"`
}

type linkDoc struct {
	Name   string `json:"name" yaml:"name"`
	Target string `json:"target" yaml:"target"`
}

type datasetDoc struct {
	DataType string   `json:"data_type" yaml:"data_type"`
	Shape    []uint64 `json:"shape" yaml:"shape,flow"`
	Data     any      `json:"data" yaml:"data,flow"`
}

// attribute type tags
const (
	attrString  = "string"
	attrStrings = "strings"
	attrBool    = "bool"
	attrInt     = "int"
	attrFloat   = "float"
	attrFloats  = "floats"
	attrSize    = "size"
	attrTime    = "time"
)

func marshal(format Format, doc *document) ([]byte, error) {
	if format == FormatYAML {
		return yaml.Marshal(doc)
	}
	return json.MarshalIndent(doc, "", "  ")
}

func unmarshal(format Format, data []byte, doc *document) error {
	if format == FormatYAML {
		return yaml.Unmarshal(data, doc)
	}
	return json.Unmarshal(data, doc)
}

// encodeNode converts a subtree into its document form
func encodeNode(n *storage.Node) (nodeDoc, error) {
	doc := nodeDoc{Name: n.Name()}

	if names := n.AttrNames(); len(names) > 0 {
		doc.Attrs = make(map[string]attrDoc, len(names))
		for _, name := range names {
			v, _ := n.Attr(name)
			a, err := encodeAttr(v)
			if err != nil {
				return nodeDoc{}, fmt.Errorf("attribute %s of %s: %w", name, n.Path(), err)
			}
			doc.Attrs[name] = a
		}
	}

	if ds, ok := n.Dataset(); ok {
		doc.Dataset = &datasetDoc{
			DataType: ds.DataType().String(),
			Shape:    ds.Shape(),
			Data:     encodeData(ds),
		}
	}

	for _, l := range n.Links() {
		doc.Links = append(doc.Links, linkDoc{Name: l.Name, Target: l.Target.Path()})
	}

	for _, child := range n.Children() {
		c, err := encodeNode(child)
		if err != nil {
			return nodeDoc{}, err
		}
		doc.Children = append(doc.Children, c)
	}
	return doc, nil
}

// encodeData returns the dataset elements in a form both encoders write as a
// plain list. Byte slices would otherwise be encoded as base64 or binary.
func encodeData(ds *storage.Dataset) any {
	data := ds.Data()
	if b, ok := data.([]uint8); ok {
		wide := make([]uint16, len(b))
		for i, v := range b {
			wide[i] = uint16(v)
		}
		return wide
	}
	return data
}

func encodeAttr(v any) (attrDoc, error) {
	switch x := v.(type) {
	case string:
		return attrDoc{Type: attrString, Value: x}, nil
	case []string:
		return attrDoc{Type: attrStrings, Value: x}, nil
	case bool:
		return attrDoc{Type: attrBool, Value: x}, nil
	case int64:
		return attrDoc{Type: attrInt, Value: x}, nil
	case float64:
		return attrDoc{Type: attrFloat, Value: x}, nil
	case []float64:
		return attrDoc{Type: attrFloats, Value: x}, nil
	case []uint64:
		return attrDoc{Type: attrSize, Value: x}, nil
	case time.Time:
		return attrDoc{Type: attrTime, Value: x.UTC().Format(time.RFC3339Nano)}, nil
	}
	return attrDoc{}, fmt.Errorf("%w: %T", types.ErrInvalidDataType, v)
}

type pendingLink struct {
	owner *storage.Node
	link  linkDoc
}

// decodeNode rebuilds the attributes, dataset and children of n from doc.
// Links are collected and resolved once the whole tree exists.
func decodeNode(n *storage.Node, doc nodeDoc, links *[]pendingLink) error {
	for name, a := range doc.Attrs {
		v, err := decodeAttr(a)
		if err != nil {
			return fmt.Errorf("attribute %s of %s: %w", name, n.Path(), err)
		}
		if err := n.SetAttr(name, v); err != nil {
			return err
		}
	}

	if doc.Dataset != nil {
		ds, err := decodeDataset(doc.Dataset)
		if err != nil {
			return fmt.Errorf("dataset of %s: %w", n.Path(), err)
		}
		n.AttachDataset(ds)
	}

	for _, l := range doc.Links {
		*links = append(*links, pendingLink{owner: n, link: l})
	}

	for _, c := range doc.Children {
		child, err := n.CreateChild(c.Name)
		if err != nil {
			return err
		}
		if err := decodeNode(child, c, links); err != nil {
			return err
		}
	}
	return nil
}

func decodeAttr(a attrDoc) (any, error) {
	switch a.Type {
	case attrString:
		s, ok := a.Value.(string)
		if !ok {
			return nil, fmt.Errorf("%w: expected string, got %T", types.ErrInvalidDataType, a.Value)
		}
		return s, nil
	case attrStrings:
		return decodeList[string](a.Value)
	case attrBool:
		b, ok := a.Value.(bool)
		if !ok {
			return nil, fmt.Errorf("%w: expected bool, got %T", types.ErrInvalidDataType, a.Value)
		}
		return b, nil
	case attrInt:
		return decodeNumber[int64](a.Value)
	case attrFloat:
		return decodeNumber[float64](a.Value)
	case attrFloats:
		return decodeNumbers[float64](a.Value)
	case attrSize:
		return decodeNumbers[uint64](a.Value)
	case attrTime:
		switch t := a.Value.(type) {
		case time.Time:
			return t, nil
		case string:
			return time.Parse(time.RFC3339Nano, t)
		}
		return nil, fmt.Errorf("%w: expected timestamp, got %T", types.ErrInvalidDataType, a.Value)
	}
	return nil, fmt.Errorf("%w: unknown attribute type %q", types.ErrInvalidDataType, a.Type)
}

func decodeDataset(d *datasetDoc) (*storage.Dataset, error) {
	dt, err := types.ParseDataType(d.DataType)
	if err != nil {
		return nil, err
	}
	var values any
	switch dt {
	case types.Bool:
		values, err = decodeList[bool](d.Data)
	case types.String:
		values, err = decodeList[string](d.Data)
	case types.Int8:
		values, err = decodeNumbers[int8](d.Data)
	case types.Int16:
		values, err = decodeNumbers[int16](d.Data)
	case types.Int32:
		values, err = decodeNumbers[int32](d.Data)
	case types.Int64:
		values, err = decodeNumbers[int64](d.Data)
	case types.Uint8:
		values, err = decodeNumbers[uint8](d.Data)
	case types.Uint16:
		values, err = decodeNumbers[uint16](d.Data)
	case types.Uint32:
		values, err = decodeNumbers[uint32](d.Data)
	case types.Uint64:
		values, err = decodeNumbers[uint64](d.Data)
	case types.Float:
		values, err = decodeNumbers[float32](d.Data)
	case types.Double:
		values, err = decodeNumbers[float64](d.Data)
	default:
		return nil, fmt.Errorf("%w: %s", types.ErrInvalidDataType, dt)
	}
	if err != nil {
		return nil, err
	}
	return storage.NewDatasetFromData(dt, types.NDSize(d.Shape), values)
}

func decodeList[T string | bool](v any) ([]T, error) {
	raw, ok := v.([]any)
	if !ok && v != nil {
		return nil, fmt.Errorf("%w: expected list, got %T", types.ErrInvalidDataType, v)
	}
	out := make([]T, len(raw))
	for i, x := range raw {
		e, ok := x.(T)
		if !ok {
			return nil, fmt.Errorf("%w: element %d is %T", types.ErrInvalidDataType, i, x)
		}
		out[i] = e
	}
	return out, nil
}

func decodeNumbers[T types.Number](v any) ([]T, error) {
	raw, ok := v.([]any)
	if !ok && v != nil {
		return nil, fmt.Errorf("%w: expected list, got %T", types.ErrInvalidDataType, v)
	}
	out := make([]T, len(raw))
	for i, x := range raw {
		n, err := decodeNumber[T](x)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out[i] = n
	}
	return out, nil
}

// decodeNumber accepts the numeric representations produced by encoding/json
// (float64) and yaml.v3 (int, uint64, float64).
func decodeNumber[T types.Number](v any) (T, error) {
	switch x := v.(type) {
	case float64:
		return T(x), nil
	case int:
		return T(x), nil
	case int64:
		return T(x), nil
	case uint64:
		return T(x), nil
	}
	return 0, fmt.Errorf("%w: expected number, got %T", types.ErrInvalidDataType, v)
}
