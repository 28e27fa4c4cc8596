package nix_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/G-Node/nix-sub001/nix"
	"github.com/G-Node/nix-sub001/testutil"
	"github.com/G-Node/nix-sub001/types"
)

func TestTagOffsetAndCount(t *testing.T) {
	tests := []struct {
		name       string
		position   []float64
		extent     []float64
		units      []string
		wantOffset nix.NDSize
		wantCount  nix.NDSize
		wantErr    error
	}{
		{
			name:       "point",
			position:   []float64{0, 2, 2},
			wantOffset: nix.NDSize{0, 2, 2},
			wantCount:  nix.NDSize{1, 1, 1},
		},
		{
			name:       "region",
			position:   []float64{0, 2, 2},
			extent:     []float64{0, 6, 2},
			wantOffset: nix.NDSize{0, 2, 2},
			wantCount:  nix.NDSize{1, 7, 3},
		},
		{
			name:       "short position selects whole trailing axes",
			position:   []float64{1},
			wantOffset: nix.NDSize{1, 0, 0},
			wantCount:  nix.NDSize{1, 10, 5},
		},
		{
			name:       "units are scaled to the dimension",
			position:   []float64{0, 0.002, 0.001},
			extent:     []float64{0, 0.003, 0},
			units:      []string{"none", "s", "s"},
			wantOffset: nix.NDSize{0, 2, 1},
			wantCount:  nix.NDSize{1, 4, 1},
		},
		{
			name:     "position wider than the data",
			position: []float64{0, 0, 0, 0},
			wantErr:  types.ErrIncompatibleDimensions,
		},
		{
			name:     "units that cannot be scaled",
			position: []float64{0, 1, 1},
			units:    []string{"none", "mV", "ms"},
			wantErr:  types.ErrIncompatibleDimensions,
		},
		{
			name:     "unit on a set dimension",
			position: []float64{0, 1, 1},
			units:    []string{"ms", "ms", "ms"},
			wantErr:  types.ErrIncompatibleDimensions,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := testutil.LoadUniverse(t)
			tag, err := u.Block.CreateTag("probe", "test", tt.position)
			if err != nil {
				t.Fatalf("CreateTag: %v", err)
			}
			if err := tag.SetExtent(tt.extent); err != nil {
				t.Fatalf("SetExtent: %v", err)
			}
			if err := tag.SetUnits(tt.units); err != nil {
				t.Fatalf("SetUnits: %v", err)
			}

			offset, count, err := tag.OffsetAndCount(u.Voltage)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.wantOffset, offset); diff != "" {
				t.Errorf("offset mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantCount, count); diff != "" {
				t.Errorf("count mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTagRetrieveData(t *testing.T) {
	u := testutil.LoadUniverse(t)

	view, err := u.Event.RetrieveData("voltage")
	if err != nil {
		t.Fatalf("RetrieveData: %v", err)
	}
	if diff := cmp.Diff(nix.NDSize{1, 7, 3}, view.DataExtent()); diff != "" {
		t.Fatalf("extent mismatch (-want +got):\n%s", diff)
	}

	got := make([]float64, 21)
	if err := view.GetData(got, nil, nil); err != nil {
		t.Fatalf("GetData: %v", err)
	}
	var want []float64
	for j := 2; j <= 8; j++ {
		for k := 2; k <= 4; k++ {
			want = append(want, float64(j*5+k))
		}
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("data mismatch (-want +got):\n%s", diff)
	}

	byIndex, err := u.Event.RetrieveDataAt(0)
	if err != nil {
		t.Fatalf("RetrieveDataAt: %v", err)
	}
	if diff := cmp.Diff(view.Offset(), byIndex.Offset()); diff != "" {
		t.Errorf("RetrieveDataAt offset mismatch (-want +got):\n%s", diff)
	}
}

func TestTagRetrieveDataErrors(t *testing.T) {
	u := testutil.LoadUniverse(t)

	if _, err := u.Event.RetrieveData("times"); !errors.Is(err, types.ErrNotFound) {
		t.Errorf("unreferenced array: expected ErrNotFound, got %v", err)
	}
	if _, err := u.Event.RetrieveDataAt(3); !errors.Is(err, types.ErrOutOfBounds) {
		t.Errorf("reference index: expected ErrOutOfBounds, got %v", err)
	}

	lonely, err := u.Block.CreateTag("lonely", "test", []float64{0})
	if err != nil {
		t.Fatalf("CreateTag: %v", err)
	}
	if _, err := lonely.RetrieveDataAt(0); !errors.Is(err, types.ErrOutOfBounds) {
		t.Errorf("no references: expected ErrOutOfBounds, got %v", err)
	}

	outside, err := u.Block.CreateTag("outside", "test", []float64{0, 20, 0})
	if err != nil {
		t.Fatalf("CreateTag: %v", err)
	}
	if err := outside.References().Add("voltage"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := outside.RetrieveData("voltage"); !errors.Is(err, types.ErrOutOfBounds) {
		t.Errorf("region outside data: expected ErrOutOfBounds, got %v", err)
	}
}

func TestMultiTagOffsetAndCount(t *testing.T) {
	u := testutil.LoadUniverse(t)

	tests := []struct {
		row        uint64
		wantOffset nix.NDSize
		wantCount  nix.NDSize
	}{
		{0, nix.NDSize{0, 1, 1}, nix.NDSize{1, 3, 2}},
		{1, nix.NDSize{1, 3, 0}, nix.NDSize{1, 2, 2}},
		{2, nix.NDSize{1, 5, 2}, nix.NDSize{1, 4, 3}},
	}
	for _, tt := range tests {
		offset, count, err := u.Spikes.OffsetAndCount(tt.row, u.Voltage)
		if err != nil {
			t.Fatalf("row %d: %v", tt.row, err)
		}
		if diff := cmp.Diff(tt.wantOffset, offset); diff != "" {
			t.Errorf("row %d offset mismatch (-want +got):\n%s", tt.row, diff)
		}
		if diff := cmp.Diff(tt.wantCount, count); diff != "" {
			t.Errorf("row %d count mismatch (-want +got):\n%s", tt.row, diff)
		}
	}

	if _, _, err := u.Spikes.OffsetAndCount(3, u.Voltage); !errors.Is(err, types.ErrOutOfBounds) {
		t.Errorf("row 3: expected ErrOutOfBounds, got %v", err)
	}
}

func TestMultiTagRetrieveData(t *testing.T) {
	u := testutil.LoadUniverse(t)

	view, err := u.Spikes.RetrieveData(0, "voltage")
	if err != nil {
		t.Fatalf("RetrieveData: %v", err)
	}
	got := make([]float64, 6)
	if err := view.GetData(got, nil, nil); err != nil {
		t.Fatalf("GetData: %v", err)
	}
	if diff := cmp.Diff([]float64{6, 7, 11, 12, 16, 17}, got); diff != "" {
		t.Errorf("data mismatch (-want +got):\n%s", diff)
	}

	if _, err := u.Spikes.RetrieveDataAt(0, 1); !errors.Is(err, types.ErrOutOfBounds) {
		t.Errorf("reference index: expected ErrOutOfBounds, got %v", err)
	}
}

func TestMultiTagLinkedArrayDeleted(t *testing.T) {
	t.Run("positions", func(t *testing.T) {
		u := testutil.LoadUniverse(t)
		if !u.Block.DeleteDataArray("spike_positions") {
			t.Fatal("DeleteDataArray reported nothing removed")
		}
		if _, ok := u.Spikes.Positions(); ok {
			t.Error("positions of a deleted array should be absent")
		}
		if n := u.Spikes.RowCount(); n != 0 {
			t.Errorf("expected 0 rows, got %d", n)
		}
		if _, err := u.Spikes.RetrieveData(0, "voltage"); !errors.Is(err, types.ErrUninitializedEntity) {
			t.Errorf("expected ErrUninitializedEntity, got %v", err)
		}
	})

	t.Run("extents", func(t *testing.T) {
		u := testutil.LoadUniverse(t)
		if !u.Block.DeleteDataArray("spike_extents") {
			t.Fatal("DeleteDataArray reported nothing removed")
		}
		if _, ok := u.Spikes.Extents(); ok {
			t.Error("extents of a deleted array should be absent")
		}
		extent, err := u.Spikes.ExtentAt(0)
		if err != nil || extent != nil {
			t.Errorf("ExtentAt = %v, %v; want nil, nil", extent, err)
		}
		if _, err := u.Spikes.RetrieveData(0, "voltage"); err != nil {
			t.Errorf("point-shaped rows should still resolve: %v", err)
		}
	})
}

func TestMultiTagExtentShapeMismatch(t *testing.T) {
	u := testutil.LoadUniverse(t)

	short, err := u.Block.CreateDataArrayFromData("short_extents", "test", []float64{0, 1, 1}, nix.NDSize{1, 3})
	if err != nil {
		t.Fatalf("CreateDataArrayFromData: %v", err)
	}
	if err := u.Spikes.SetExtents(short); !errors.Is(err, types.ErrIncompatibleDimensions) {
		t.Errorf("expected ErrIncompatibleDimensions, got %v", err)
	}
}

func TestPositionInData(t *testing.T) {
	u := testutil.LoadUniverse(t)

	if !nix.PositionInData(u.Voltage, nix.NDSize{1, 9, 4}) {
		t.Error("last element should be inside")
	}
	if nix.PositionInData(u.Voltage, nix.NDSize{2, 0, 0}) {
		t.Error("first axis overflow should be outside")
	}
	if nix.PositionInData(u.Voltage, nix.NDSize{0, 0}) {
		t.Error("rank mismatch should be outside")
	}
	if !nix.PositionAndExtentInData(u.Voltage, nix.NDSize{0, 2, 2}, nix.NDSize{1, 7, 3}) {
		t.Error("event region should be inside")
	}
	if nix.PositionAndExtentInData(u.Voltage, nix.NDSize{0, 5, 2}, nix.NDSize{1, 7, 3}) {
		t.Error("region past the end should be outside")
	}
}
