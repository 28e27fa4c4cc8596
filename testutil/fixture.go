// Package testutil builds a populated in-memory file from the recording
// session described in testdata/universe.yaml and gives tests typed access
// to its entities.
package testutil

import (
	_ "embed"
	"fmt"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/G-Node/nix-sub001/nix"
	"github.com/G-Node/nix-sub001/types"
)

//go:embed testdata/universe.yaml
var universeYAML []byte

// Universe provides typed access to the fixture entities
type Universe struct {
	File  *nix.File
	Block *nix.Block

	// voltage [2,10,5]: set, sample(1 ms), sample(1 ms), values 0..99
	Voltage *nix.DataArray
	// stimulus has the layout of voltage and is a tagged feature of Event
	Stimulus *nix.DataArray
	// times [5]: range dimension with ticks 1.2, 2.3, 3.4, 4.5, 6.7 ms
	Times *nix.DataArray

	SpikePositions *nix.DataArray
	SpikeExtents   *nix.DataArray
	// spike_waveforms [3,4] is an indexed feature of Spikes
	SpikeWaveforms *nix.DataArray

	// Event is at [0,2,2] with extent [0,6,2] and references Voltage
	Event *nix.Tag
	// Spikes has three rows referencing Voltage
	Spikes *nix.MultiTag

	All *nix.Group

	Recording *nix.Section
	Amplifier *nix.Section
	Gain      *nix.Property
}

type fixtureDimension struct {
	Kind     string    `yaml:"kind"`
	Interval float64   `yaml:"interval"`
	Unit     string    `yaml:"unit"`
	Labels   []string  `yaml:"labels"`
	Ticks    []float64 `yaml:"ticks"`
}

type fixtureArray struct {
	Name       string             `yaml:"name"`
	Type       string             `yaml:"type"`
	Unit       string             `yaml:"unit"`
	Label      string             `yaml:"label"`
	Shape      []uint64           `yaml:"shape"`
	Fill       string             `yaml:"fill"`
	Values     []float64          `yaml:"values"`
	Dimensions []fixtureDimension `yaml:"dimensions"`
}

type fixtureFeature struct {
	Data string `yaml:"data"`
	Link string `yaml:"link"`
}

type fixtureTag struct {
	Name       string           `yaml:"name"`
	Type       string           `yaml:"type"`
	Position   []float64        `yaml:"position"`
	Extent     []float64        `yaml:"extent"`
	Positions  string           `yaml:"positions"`
	Extents    string           `yaml:"extents"`
	References []string         `yaml:"references"`
	Features   []fixtureFeature `yaml:"features"`
}

type fixtureGroup struct {
	Name      string   `yaml:"name"`
	Type      string   `yaml:"type"`
	Arrays    []string `yaml:"arrays"`
	Tags      []string `yaml:"tags"`
	MultiTags []string `yaml:"multi_tags"`
}

type fixtureProperty struct {
	Name   string `yaml:"name"`
	Values []any  `yaml:"values"`
	Unit   string `yaml:"unit"`
}

type fixtureSection struct {
	Name       string            `yaml:"name"`
	Type       string            `yaml:"type"`
	Properties []fixtureProperty `yaml:"properties"`
	Sections   []fixtureSection  `yaml:"sections"`
}

type fixtureData struct {
	Block struct {
		Name string `yaml:"name"`
		Type string `yaml:"type"`
	} `yaml:"block"`
	Arrays    []fixtureArray   `yaml:"arrays"`
	Tags      []fixtureTag     `yaml:"tags"`
	MultiTags []fixtureTag     `yaml:"multi_tags"`
	Groups    []fixtureGroup   `yaml:"groups"`
	Sections  []fixtureSection `yaml:"sections"`
}

// LoadUniverse returns a fresh in-memory file populated with the fixture
func LoadUniverse(t *testing.T, opts ...nix.FileOption) *Universe {
	t.Helper()

	u, err := BuildUniverse(nix.NewFile(opts...))
	if err != nil {
		t.Fatalf("failed to build fixture: %v", err)
	}
	return u
}

// BuildUniverse populates f with the fixture
func BuildUniverse(f *nix.File) (*Universe, error) {
	var data fixtureData
	if err := yaml.Unmarshal(universeYAML, &data); err != nil {
		return nil, fmt.Errorf("failed to parse fixture: %w", err)
	}

	b, err := f.CreateBlock(data.Block.Name, data.Block.Type)
	if err != nil {
		return nil, err
	}
	for _, fa := range data.Arrays {
		if err := buildArray(b, fa); err != nil {
			return nil, fmt.Errorf("array %s: %w", fa.Name, err)
		}
	}
	for _, ft := range data.Tags {
		if err := buildTag(b, ft); err != nil {
			return nil, fmt.Errorf("tag %s: %w", ft.Name, err)
		}
	}
	for _, ft := range data.MultiTags {
		if err := buildMultiTag(b, ft); err != nil {
			return nil, fmt.Errorf("multi tag %s: %w", ft.Name, err)
		}
	}
	for _, fg := range data.Groups {
		if err := buildGroup(b, fg); err != nil {
			return nil, fmt.Errorf("group %s: %w", fg.Name, err)
		}
	}
	for _, fs := range data.Sections {
		if err := buildSection(f.CreateSection, fs); err != nil {
			return nil, fmt.Errorf("section %s: %w", fs.Name, err)
		}
	}

	u := &Universe{File: f, Block: b}
	u.Voltage, _ = b.DataArray("voltage")
	u.Stimulus, _ = b.DataArray("stimulus")
	u.Times, _ = b.DataArray("times")
	u.SpikePositions, _ = b.DataArray("spike_positions")
	u.SpikeExtents, _ = b.DataArray("spike_extents")
	u.SpikeWaveforms, _ = b.DataArray("spike_waveforms")
	u.Event, _ = b.Tag("event")
	u.Spikes, _ = b.MultiTag("spikes")
	u.All, _ = b.Group("all")
	u.Recording, _ = f.Section("recording")
	if u.Recording != nil {
		u.Amplifier, _ = u.Recording.Section("amplifier")
		u.Gain, _ = u.Recording.Property("gain")
	}
	return u, nil
}

func buildArray(b *nix.Block, fa fixtureArray) error {
	shape := nix.NDSize(fa.Shape)
	values := fa.Values
	if fa.Fill == "ramp" {
		values = Ramp(int(shape.ElementCount()))
	}
	a, err := b.CreateDataArrayFromData(fa.Name, fa.Type, values, shape)
	if err != nil {
		return err
	}
	if fa.Unit != "" {
		if err := a.SetUnit(fa.Unit); err != nil {
			return err
		}
	}
	if fa.Label != "" {
		a.SetLabel(fa.Label)
	}
	for _, fd := range fa.Dimensions {
		if err := appendDimension(a, fd); err != nil {
			return err
		}
	}
	return nil
}

func appendDimension(a *nix.DataArray, fd fixtureDimension) error {
	kind, err := types.ParseDimensionType(fd.Kind)
	if err != nil {
		return err
	}
	switch kind {
	case types.Sample:
		d, err := a.AppendSampledDimension(fd.Interval)
		if err != nil {
			return err
		}
		return d.SetUnit(fd.Unit)
	case types.Range:
		d, err := a.AppendRangeDimension(fd.Ticks)
		if err != nil {
			return err
		}
		return d.SetUnit(fd.Unit)
	default:
		_, err := a.AppendSetDimension(fd.Labels)
		return err
	}
}

func buildTag(b *nix.Block, ft fixtureTag) error {
	t, err := b.CreateTag(ft.Name, ft.Type, ft.Position)
	if err != nil {
		return err
	}
	if ft.Extent != nil {
		if err := t.SetExtent(ft.Extent); err != nil {
			return err
		}
	}
	for _, ref := range ft.References {
		if err := t.References().Add(ref); err != nil {
			return err
		}
	}
	for _, ff := range ft.Features {
		if err := addFeature(b, ff, t.CreateFeature); err != nil {
			return err
		}
	}
	return nil
}

func buildMultiTag(b *nix.Block, ft fixtureTag) error {
	positions, ok := b.DataArray(ft.Positions)
	if !ok {
		return fmt.Errorf("%w: positions %s", types.ErrNotFound, ft.Positions)
	}
	m, err := b.CreateMultiTag(ft.Name, ft.Type, positions)
	if err != nil {
		return err
	}
	if ft.Extents != "" {
		extents, ok := b.DataArray(ft.Extents)
		if !ok {
			return fmt.Errorf("%w: extents %s", types.ErrNotFound, ft.Extents)
		}
		if err := m.SetExtents(extents); err != nil {
			return err
		}
	}
	for _, ref := range ft.References {
		if err := m.References().Add(ref); err != nil {
			return err
		}
	}
	for _, ff := range ft.Features {
		if err := addFeature(b, ff, m.CreateFeature); err != nil {
			return err
		}
	}
	return nil
}

func addFeature(b *nix.Block, ff fixtureFeature, create func(*nix.DataArray, nix.LinkType) (*nix.Feature, error)) error {
	data, ok := b.DataArray(ff.Data)
	if !ok {
		return fmt.Errorf("%w: feature data %s", types.ErrNotFound, ff.Data)
	}
	lt, err := types.ParseLinkType(ff.Link)
	if err != nil {
		return err
	}
	_, err = create(data, lt)
	return err
}

func buildGroup(b *nix.Block, fg fixtureGroup) error {
	g, err := b.CreateGroup(fg.Name, fg.Type)
	if err != nil {
		return err
	}
	for _, name := range fg.Arrays {
		if err := g.DataArrays().Add(name); err != nil {
			return err
		}
	}
	for _, name := range fg.Tags {
		if err := g.Tags().Add(name); err != nil {
			return err
		}
	}
	for _, name := range fg.MultiTags {
		if err := g.MultiTags().Add(name); err != nil {
			return err
		}
	}
	return nil
}

func buildSection(create func(name, typ string) (*nix.Section, error), fs fixtureSection) error {
	s, err := create(fs.Name, fs.Type)
	if err != nil {
		return err
	}
	for _, fp := range fs.Properties {
		p, err := s.CreateProperty(fp.Name, propertyValues(fp.Values))
		if err != nil {
			return fmt.Errorf("property %s: %w", fp.Name, err)
		}
		if fp.Unit != "" {
			if err := p.SetUnit(fp.Unit); err != nil {
				return err
			}
		}
	}
	for _, sub := range fs.Sections {
		if err := buildSection(s.CreateSection, sub); err != nil {
			return fmt.Errorf("section %s: %w", sub.Name, err)
		}
	}
	return nil
}

// propertyValues turns decoded YAML scalars into a typed slice. Mixed lists
// fall back to strings.
func propertyValues(raw []any) any {
	if len(raw) == 0 {
		return nil
	}
	switch raw[0].(type) {
	case int:
		out := make([]int64, 0, len(raw))
		for _, v := range raw {
			i, ok := v.(int)
			if !ok {
				return stringValues(raw)
			}
			out = append(out, int64(i))
		}
		return out
	case float64:
		out := make([]float64, 0, len(raw))
		for _, v := range raw {
			switch x := v.(type) {
			case float64:
				out = append(out, x)
			case int:
				out = append(out, float64(x))
			default:
				return stringValues(raw)
			}
		}
		return out
	case bool:
		out := make([]bool, 0, len(raw))
		for _, v := range raw {
			b, ok := v.(bool)
			if !ok {
				return stringValues(raw)
			}
			out = append(out, b)
		}
		return out
	}
	return stringValues(raw)
}

func stringValues(raw []any) []string {
	out := make([]string, len(raw))
	for i, v := range raw {
		out[i] = fmt.Sprint(v)
	}
	return out
}

// Ramp returns 0, 1, ..., n-1
func Ramp(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i)
	}
	return out
}
