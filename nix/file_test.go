package nix_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/G-Node/nix-sub001/nix"
	"github.com/G-Node/nix-sub001/testutil"
	"github.com/G-Node/nix-sub001/types"
)

func fixedClock() func() time.Time {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		now = now.Add(time.Second)
		return now
	}
}

func TestFileRoundTrip(t *testing.T) {
	for _, ext := range []string{".json", ".yaml"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "session"+ext)

			f, err := nix.Open(path, nix.Overwrite, nix.WithTimeFunc(fixedClock()))
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			u, err := testutil.BuildUniverse(f)
			if err != nil {
				t.Fatalf("BuildUniverse: %v", err)
			}
			if err := u.Block.SetMetadata(u.Recording); err != nil {
				t.Fatalf("SetMetadata: %v", err)
			}
			fileID, created := f.ID(), f.CreatedAt()
			if err := f.Close(); err != nil {
				t.Fatalf("Close: %v", err)
			}

			g, err := nix.Open(path, nix.ReadOnly)
			if err != nil {
				t.Fatalf("reopen: %v", err)
			}
			defer func() { _ = g.Close() }()

			if g.ID() != fileID || !g.CreatedAt().Equal(created) {
				t.Errorf("header changed: id %s created %s", g.ID(), g.CreatedAt())
			}
			if diff := cmp.Diff(nix.FormatVersion, g.Version()); diff != "" {
				t.Errorf("version mismatch (-want +got):\n%s", diff)
			}

			b, ok := g.Block("session-1")
			if !ok {
				t.Fatal("block missing after reopen")
			}
			voltage, ok := b.DataArray("voltage")
			if !ok {
				t.Fatal("voltage missing after reopen")
			}
			if voltage.Unit() != "mV" || voltage.DimensionCount() != 3 {
				t.Errorf("voltage lost its description: unit %q, %d dimensions", voltage.Unit(), voltage.DimensionCount())
			}
			values := make([]float64, 100)
			if err := voltage.ReadAll(values); err != nil {
				t.Fatalf("ReadAll: %v", err)
			}
			if diff := cmp.Diff(testutil.Ramp(100), values); diff != "" {
				t.Errorf("voltage data mismatch (-want +got):\n%s", diff)
			}

			times, _ := b.DataArray("times")
			d, err := times.Dimension(1)
			if err != nil {
				t.Fatalf("Dimension: %v", err)
			}
			rd, ok := d.(*nix.RangeDimension)
			if !ok {
				t.Fatalf("expected range dimension, got %T", d)
			}
			if diff := cmp.Diff([]float64{1.2, 2.3, 3.4, 4.5, 6.7}, rd.Ticks()); diff != "" {
				t.Errorf("ticks mismatch (-want +got):\n%s", diff)
			}

			event, _ := b.Tag("event")
			if !event.References().Has("voltage") || event.FeatureCount() != 1 {
				t.Errorf("event lost references or features")
			}
			view, err := event.RetrieveData("voltage")
			if err != nil {
				t.Fatalf("RetrieveData: %v", err)
			}
			if diff := cmp.Diff(nix.NDSize{1, 7, 3}, view.DataExtent()); diff != "" {
				t.Errorf("region mismatch (-want +got):\n%s", diff)
			}

			spikes, _ := b.MultiTag("spikes")
			if spikes.RowCount() != 3 {
				t.Errorf("expected 3 rows, got %d", spikes.RowCount())
			}
			f0, err := spikes.FeatureAt(0)
			if err != nil || f0.LinkType() != nix.Indexed {
				t.Errorf("indexed feature lost: %v", err)
			}

			md, ok := b.Metadata()
			if !ok || md.Name() != "recording" {
				t.Errorf("metadata link lost")
			}
			gain, ok := md.Property("gain")
			if !ok || gain.Unit() != "mV" {
				t.Fatal("gain property lost")
			}
			if diff := cmp.Diff([]float64{2.5}, gain.Values()); diff != "" {
				t.Errorf("gain mismatch (-want +got):\n%s", diff)
			}

			if res := g.Validate(); res.HasErrors() {
				t.Errorf("reopened file should validate:\n%s", res)
			}

			if _, err := g.CreateBlock("late", "test"); err != nil {
				t.Fatalf("in-memory changes are allowed: %v", err)
			}
			if err := g.Flush(); !errors.Is(err, types.ErrReadOnly) {
				t.Errorf("Flush on read-only file: expected ErrReadOnly, got %v", err)
			}
		})
	}
}

func TestOpenModes(t *testing.T) {
	dir := t.TempDir()

	if _, err := nix.Open(filepath.Join(dir, "missing.json"), nix.ReadOnly); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("read-only missing file: expected ErrNotExist, got %v", err)
	}

	empty := filepath.Join(dir, "empty.json")
	if err := os.WriteFile(empty, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := nix.Open(empty, nix.ReadOnly); !errors.Is(err, types.ErrUninitializedEntity) {
		t.Errorf("read-only headerless file: expected ErrUninitializedEntity, got %v", err)
	}

	path := filepath.Join(dir, "fresh.json")
	f, err := nix.Open(path, nix.ReadWrite)
	if err != nil {
		t.Fatalf("Open ReadWrite: %v", err)
	}
	if _, err := f.CreateBlock("b", "test"); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	f, err = nix.Open(path, nix.Overwrite)
	if err != nil {
		t.Fatalf("Open Overwrite: %v", err)
	}
	if f.BlockCount() != 0 {
		t.Errorf("overwrite should start empty, found %d blocks", f.BlockCount())
	}
	if f.Format() != nix.FormatName || f.Path() != path {
		t.Errorf("unexpected header: format %q path %q", f.Format(), f.Path())
	}
	_ = f.Close()
}

func TestEntityNames(t *testing.T) {
	f := nix.NewFile()
	b, err := f.CreateBlock("b", "test")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		wantErr error
	}{
		{"", types.ErrEmptyString},
		{"a/b", types.ErrInvalidName},
		{"b", types.ErrDuplicateName},
	}
	for _, tt := range tests {
		if _, err := f.CreateBlock(tt.name, "test"); !errors.Is(err, tt.wantErr) {
			t.Errorf("CreateBlock(%q): expected %v, got %v", tt.name, tt.wantErr, err)
		}
	}

	other, err := f.CreateBlock("other", "test")
	if err != nil {
		t.Fatal(err)
	}
	if err := other.SetName("b"); !errors.Is(err, types.ErrDuplicateName) {
		t.Errorf("SetName duplicate: expected ErrDuplicateName, got %v", err)
	}
	if err := other.SetName("renamed"); err != nil {
		t.Fatalf("SetName: %v", err)
	}
	if !f.HasBlock("renamed") || !f.HasBlock(other.ID()) {
		t.Error("block should be found by new name and id")
	}
	if err := b.SetType(""); !errors.Is(err, types.ErrEmptyString) {
		t.Errorf("SetType empty: expected ErrEmptyString, got %v", err)
	}

	b.SetDefinition("a block")
	if def, ok := b.Definition(); !ok || def != "a block" {
		t.Errorf("definition = %q, %v", def, ok)
	}

	if !f.DeleteBlock("b") || b.Alive() {
		t.Error("deleted block should be dead")
	}
	if _, err := b.CreateGroup("g", "test"); !errors.Is(err, types.ErrUninitializedEntity) {
		t.Errorf("create on dead block: expected ErrUninitializedEntity, got %v", err)
	}
}

func TestUpdatedAtFollowsChanges(t *testing.T) {
	f := nix.NewFile(nix.WithTimeFunc(fixedClock()))
	b, err := f.CreateBlock("b", "test")
	if err != nil {
		t.Fatal(err)
	}
	before := b.UpdatedAt()

	if _, err := b.CreateDataArray("a", "test", types.Int32, nix.NDSize{2}); err != nil {
		t.Fatal(err)
	}
	if !b.UpdatedAt().After(before) {
		t.Errorf("updated_at should advance: %s -> %s", before, b.UpdatedAt())
	}
	if !b.CreatedAt().Equal(before) {
		t.Errorf("created_at should stay at creation time")
	}
}

func TestMetadataTree(t *testing.T) {
	u := testutil.LoadUniverse(t)

	parent, ok := u.Amplifier.Parent()
	if !ok || parent.ID() != u.Recording.ID() {
		t.Error("amplifier should be a child of recording")
	}
	if _, ok := u.Recording.Parent(); ok {
		t.Error("root sections have no parent")
	}

	hardware := u.Recording.FindSections(func(s *nix.Section) bool { return s.Type() == "odml.hardware" }, -1)
	if len(hardware) != 1 || hardware[0].Name() != "amplifier" {
		t.Errorf("expected to find amplifier, got %d sections", len(hardware))
	}
	if got := u.Recording.FindSections(nil, 0); len(got) != 1 {
		t.Errorf("depth 0 should only yield the start section, got %d", len(got))
	}

	if err := u.Voltage.SetMetadata(u.Amplifier); err != nil {
		t.Fatalf("SetMetadata: %v", err)
	}
	foreign, err := nix.NewFile().CreateSection("foreign", "test")
	if err != nil {
		t.Fatal(err)
	}
	if err := u.Voltage.SetMetadata(foreign); !errors.Is(err, types.ErrNotFound) {
		t.Errorf("foreign section: expected ErrNotFound, got %v", err)
	}
	if md, ok := u.Voltage.Metadata(); !ok || md.ID() != u.Amplifier.ID() {
		t.Error("failed SetMetadata must keep the previous link")
	}

	u.Gain.SetUncertainty(0.1)
	if v, ok := u.Gain.Uncertainty(); !ok || v != 0.1 {
		t.Errorf("uncertainty = %g, %v", v, ok)
	}

	if !u.File.DeleteSection("recording") {
		t.Fatal("DeleteSection should succeed")
	}
	if _, ok := u.Voltage.Metadata(); ok {
		t.Error("metadata link to a deleted section should not resolve")
	}
}
