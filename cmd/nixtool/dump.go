package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/G-Node/nix-sub001/nix"
)

type fileSummary struct {
	Path      string           `yaml:"path" json:"path"`
	ID        string           `yaml:"id" json:"id"`
	Version   string           `yaml:"version" json:"version"`
	CreatedAt time.Time        `yaml:"created_at" json:"created_at"`
	UpdatedAt time.Time        `yaml:"updated_at" json:"updated_at"`
	Blocks    []blockSummary   `yaml:"blocks,omitempty" json:"blocks,omitempty"`
	Sections  []sectionSummary `yaml:"sections,omitempty" json:"sections,omitempty"`
}

type blockSummary struct {
	Name       string            `yaml:"name" json:"name"`
	Type       string            `yaml:"type" json:"type"`
	Metadata   string            `yaml:"metadata,omitempty" json:"metadata,omitempty"`
	DataArrays []arraySummary    `yaml:"data_arrays,omitempty" json:"data_arrays,omitempty"`
	Tags       []tagSummary      `yaml:"tags,omitempty" json:"tags,omitempty"`
	MultiTags  []multiTagSummary `yaml:"multi_tags,omitempty" json:"multi_tags,omitempty"`
	Groups     []groupSummary    `yaml:"groups,omitempty" json:"groups,omitempty"`
}

type arraySummary struct {
	Name       string             `yaml:"name" json:"name"`
	Type       string             `yaml:"type" json:"type"`
	DataType   string             `yaml:"data_type" json:"data_type"`
	Shape      []uint64           `yaml:"shape,flow" json:"shape"`
	Unit       string             `yaml:"unit,omitempty" json:"unit,omitempty"`
	Label      string             `yaml:"label,omitempty" json:"label,omitempty"`
	Dimensions []dimensionSummary `yaml:"dimensions,omitempty" json:"dimensions,omitempty"`
}

type dimensionSummary struct {
	Index            int       `yaml:"index" json:"index"`
	Kind             string    `yaml:"kind" json:"kind"`
	Unit             string    `yaml:"unit,omitempty" json:"unit,omitempty"`
	Label            string    `yaml:"label,omitempty" json:"label,omitempty"`
	SamplingInterval float64   `yaml:"sampling_interval,omitempty" json:"sampling_interval,omitempty"`
	Offset           float64   `yaml:"offset,omitempty" json:"offset,omitempty"`
	Alias            bool      `yaml:"alias,omitempty" json:"alias,omitempty"`
	Ticks            []float64 `yaml:"ticks,omitempty,flow" json:"ticks,omitempty"`
	Labels           []string  `yaml:"labels,omitempty,flow" json:"labels,omitempty"`
}

type featureSummary struct {
	Data     string `yaml:"data" json:"data"`
	LinkType string `yaml:"link_type" json:"link_type"`
}

type tagSummary struct {
	Name       string           `yaml:"name" json:"name"`
	Type       string           `yaml:"type" json:"type"`
	Position   []float64        `yaml:"position,flow" json:"position"`
	Extent     []float64        `yaml:"extent,omitempty,flow" json:"extent,omitempty"`
	Units      []string         `yaml:"units,omitempty,flow" json:"units,omitempty"`
	References []string         `yaml:"references,omitempty,flow" json:"references,omitempty"`
	Features   []featureSummary `yaml:"features,omitempty" json:"features,omitempty"`
}

type multiTagSummary struct {
	Name       string           `yaml:"name" json:"name"`
	Type       string           `yaml:"type" json:"type"`
	Positions  string           `yaml:"positions,omitempty" json:"positions,omitempty"`
	Extents    string           `yaml:"extents,omitempty" json:"extents,omitempty"`
	Rows       uint64           `yaml:"rows" json:"rows"`
	Units      []string         `yaml:"units,omitempty,flow" json:"units,omitempty"`
	References []string         `yaml:"references,omitempty,flow" json:"references,omitempty"`
	Features   []featureSummary `yaml:"features,omitempty" json:"features,omitempty"`
}

type groupSummary struct {
	Name       string   `yaml:"name" json:"name"`
	Type       string   `yaml:"type" json:"type"`
	DataArrays []string `yaml:"data_arrays,omitempty,flow" json:"data_arrays,omitempty"`
	Tags       []string `yaml:"tags,omitempty,flow" json:"tags,omitempty"`
	MultiTags  []string `yaml:"multi_tags,omitempty,flow" json:"multi_tags,omitempty"`
}

type sectionSummary struct {
	Name       string            `yaml:"name" json:"name"`
	Type       string            `yaml:"type" json:"type"`
	Properties []propertySummary `yaml:"properties,omitempty" json:"properties,omitempty"`
	Sections   []sectionSummary  `yaml:"sections,omitempty" json:"sections,omitempty"`
}

type propertySummary struct {
	Name   string `yaml:"name" json:"name"`
	Values any    `yaml:"values,flow" json:"values"`
	Unit   string `yaml:"unit,omitempty" json:"unit,omitempty"`
}

func memberNames[T interface{ Name() string }](members []T) []string {
	if len(members) == 0 {
		return nil
	}
	out := make([]string, len(members))
	for i, m := range members {
		out[i] = m.Name()
	}
	return out
}

func summarizeFile(f *nix.File) fileSummary {
	s := fileSummary{
		Path:      f.Path(),
		ID:        f.ID(),
		Version:   formatVersion(f.Version()),
		CreatedAt: f.CreatedAt(),
		UpdatedAt: f.UpdatedAt(),
	}
	for _, b := range f.Blocks() {
		s.Blocks = append(s.Blocks, summarizeBlock(b))
	}
	for _, sec := range f.Sections() {
		s.Sections = append(s.Sections, summarizeSection(sec))
	}
	return s
}

func summarizeBlock(b *nix.Block) blockSummary {
	s := blockSummary{Name: b.Name(), Type: b.Type()}
	if md, ok := b.Metadata(); ok {
		s.Metadata = md.Name()
	}
	for _, a := range b.DataArrays() {
		s.DataArrays = append(s.DataArrays, summarizeArray(a))
	}
	for _, t := range b.Tags() {
		s.Tags = append(s.Tags, tagSummary{
			Name:       t.Name(),
			Type:       t.Type(),
			Position:   t.Position(),
			Extent:     t.Extent(),
			Units:      t.Units(),
			References: memberNames(t.References().All()),
			Features:   summarizeFeatures(t.Features()),
		})
	}
	for _, m := range b.MultiTags() {
		ms := multiTagSummary{
			Name:       m.Name(),
			Type:       m.Type(),
			Rows:       m.RowCount(),
			Units:      m.Units(),
			References: memberNames(m.References().All()),
			Features:   summarizeFeatures(m.Features()),
		}
		if p, ok := m.Positions(); ok {
			ms.Positions = p.Name()
		}
		if e, ok := m.Extents(); ok {
			ms.Extents = e.Name()
		}
		s.MultiTags = append(s.MultiTags, ms)
	}
	for _, g := range b.Groups() {
		s.Groups = append(s.Groups, groupSummary{
			Name:       g.Name(),
			Type:       g.Type(),
			DataArrays: memberNames(g.DataArrays().All()),
			Tags:       memberNames(g.Tags().All()),
			MultiTags:  memberNames(g.MultiTags().All()),
		})
	}
	return s
}

func summarizeArray(a *nix.DataArray) arraySummary {
	s := arraySummary{
		Name:     a.Name(),
		Type:     a.Type(),
		DataType: a.DataType().String(),
		Shape:    a.DataExtent(),
		Unit:     a.Unit(),
		Label:    a.Label(),
	}
	for _, d := range a.Dimensions() {
		s.Dimensions = append(s.Dimensions, summarizeDimension(d))
	}
	return s
}

func summarizeDimension(d nix.Dimension) dimensionSummary {
	s := dimensionSummary{Index: d.Index(), Kind: d.DimensionType().String()}
	switch dim := d.(type) {
	case *nix.SampledDimension:
		s.Unit = dim.Unit()
		s.Label = dim.Label()
		s.SamplingInterval = dim.SamplingInterval()
		s.Offset = dim.Offset()
	case *nix.RangeDimension:
		s.Unit = dim.Unit()
		s.Label = dim.Label()
		s.Alias = dim.IsAlias()
		s.Ticks = dim.Ticks()
	case *nix.SetDimension:
		s.Labels = dim.Labels()
	}
	return s
}

func summarizeFeatures(features []*nix.Feature) []featureSummary {
	var out []featureSummary
	for _, f := range features {
		fs := featureSummary{LinkType: f.LinkType().String()}
		if data, ok := f.Data(); ok {
			fs.Data = data.Name()
		}
		out = append(out, fs)
	}
	return out
}

func summarizeSection(sec *nix.Section) sectionSummary {
	s := sectionSummary{Name: sec.Name(), Type: sec.Type()}
	for _, p := range sec.Properties() {
		s.Properties = append(s.Properties, propertySummary{Name: p.Name(), Values: p.Values(), Unit: p.Unit()})
	}
	for _, child := range sec.Sections() {
		s.Sections = append(s.Sections, summarizeSection(child))
	}
	return s
}

func writeSummary(w io.Writer, format string, s fileSummary) error {
	switch format {
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(s); err != nil {
			return err
		}
		return enc.Close()
	case "json":
		data, err := json.MarshalIndent(s, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case "text":
		return writeOutline(w, s)
	default:
		return NewConfigError("dump", fmt.Sprintf("unknown output format %q", format), "Use --format yaml, json or text", CommonSuggestions.RunHelp)
	}
}

func newDumpCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump FILE",
		Short: "Print a structured summary of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := a.openFile(args[0])
			if err != nil {
				return NewFileError("dump", args[0], err, CommonSuggestions.CheckPath)
			}
			defer func() { _ = f.Close() }()

			summary := summarizeFile(f)
			a.logger.Debug("summarized file", "path", args[0], "blocks", len(summary.Blocks), "sections", len(summary.Sections))
			return WrapError("dump", writeSummary(cmd.OutOrStdout(), a.v.GetString("format"), summary))
		},
	}

	cmd.Flags().StringP("format", "f", "yaml", "Output format: yaml|json|text")
	return cmd
}
