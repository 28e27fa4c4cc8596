package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

func title(s string) string {
	return cases.Title(language.Und).String(s)
}

// heading turns a summary key such as "data_arrays" into "Data Arrays"
func heading(key string) string {
	return title(strings.ReplaceAll(key, "_", " "))
}

// outline renders a summary as an indented plain text tree
type outline struct {
	w   io.Writer
	err error
}

func (o *outline) line(depth int, format string, args ...any) {
	if o.err != nil {
		return
	}
	_, o.err = fmt.Fprintf(o.w, "%s%s\n", strings.Repeat("  ", depth), fmt.Sprintf(format, args...))
}

func withUnit(value, unit string) string {
	if unit == "" {
		return value
	}
	return value + " " + unit
}

func floats(values []float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func writeOutline(w io.Writer, s fileSummary) error {
	o := &outline{w: w}
	o.line(0, "%s %s (version %s)", s.Path, s.ID, s.Version)

	for _, b := range s.Blocks {
		o.line(0, "Block %s [%s]", b.Name, b.Type)
		if b.Metadata != "" {
			o.line(1, "%s: %s", heading("metadata"), b.Metadata)
		}
		if len(b.DataArrays) > 0 {
			o.line(1, "%s", heading("data_arrays"))
		}
		for _, a := range b.DataArrays {
			o.line(2, "%s: %s", a.Name, withUnit(fmt.Sprintf("%s %v", title(a.DataType), a.Shape), a.Unit))
			for _, d := range a.Dimensions {
				o.line(3, "%d %s", d.Index, describeDimension(d))
			}
		}
		if len(b.Tags) > 0 {
			o.line(1, "%s", heading("tags"))
		}
		for _, t := range b.Tags {
			o.line(2, "%s: position %s extent %s -> %s", t.Name, floats(t.Position), floats(t.Extent), strings.Join(t.References, ", "))
			writeFeatures(o, t.Features)
		}
		if len(b.MultiTags) > 0 {
			o.line(1, "%s", heading("multi_tags"))
		}
		for _, m := range b.MultiTags {
			o.line(2, "%s: %d rows from %s -> %s", m.Name, m.Rows, m.Positions, strings.Join(m.References, ", "))
			writeFeatures(o, m.Features)
		}
		if len(b.Groups) > 0 {
			o.line(1, "%s", heading("groups"))
		}
		for _, g := range b.Groups {
			o.line(2, "%s: %d arrays, %d tags, %d multi tags", g.Name, len(g.DataArrays), len(g.Tags), len(g.MultiTags))
		}
	}

	for _, sec := range s.Sections {
		writeSection(o, sec, 0)
	}
	return o.err
}

func describeDimension(d dimensionSummary) string {
	kind := title(d.Kind)
	switch {
	case d.Kind == "sample":
		return fmt.Sprintf("%s: every %s from %g", kind, withUnit(strconv.FormatFloat(d.SamplingInterval, 'g', -1, 64), d.Unit), d.Offset)
	case d.Alias:
		return fmt.Sprintf("%s: alias %s", kind, d.Unit)
	case len(d.Ticks) > 0:
		return fmt.Sprintf("%s: %s", kind, withUnit(floats(d.Ticks), d.Unit))
	case len(d.Labels) > 0:
		return fmt.Sprintf("%s: %s", kind, strings.Join(d.Labels, ", "))
	}
	return kind
}

func writeFeatures(o *outline, features []featureSummary) {
	for _, f := range features {
		o.line(3, "feature %s (%s)", f.Data, f.LinkType)
	}
}

func writeSection(o *outline, sec sectionSummary, depth int) {
	o.line(depth, "Section %s [%s]", sec.Name, sec.Type)
	for _, p := range sec.Properties {
		o.line(depth+1, "%s = %s", p.Name, withUnit(fmt.Sprint(p.Values), p.Unit))
	}
	for _, child := range sec.Sections {
		writeSection(o, child, depth+1)
	}
}
