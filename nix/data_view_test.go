package nix_test

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/G-Node/nix-sub001/nix"
	"github.com/G-Node/nix-sub001/testutil"
	"github.com/G-Node/nix-sub001/types"
)

func TestDataViewRoundTripIsNoOp(t *testing.T) {
	u := testutil.LoadUniverse(t)

	view, err := nix.NewDataView(u.Voltage, nix.NDSize{1, 2, 1}, nix.NDSize{1, 4, 3})
	if err != nil {
		t.Fatalf("NewDataView: %v", err)
	}

	before := make([]float64, 100)
	if err := u.Voltage.ReadAll(before); err != nil {
		t.Fatalf("ReadAll: %v", err)
	}

	buf := make([]float64, 12)
	if err := view.GetData(buf, nil, nil); err != nil {
		t.Fatalf("GetData: %v", err)
	}
	if err := view.SetData(buf, nil, nil); err != nil {
		t.Fatalf("SetData: %v", err)
	}

	after := make([]float64, 100)
	if err := u.Voltage.ReadAll(after); err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if diff := cmp.Diff(before, after); diff != "" {
		t.Errorf("round trip changed the data (-before +after):\n%s", diff)
	}
}

func TestDataViewCalibratedIntegerRoundTrip(t *testing.T) {
	u := testutil.LoadUniverse(t)

	u.Times.SetPolynomCoefficients([]float64{1, 2})
	u.Times.SetExpansionOrigin(10)

	view, err := nix.NewDataView(u.Times, nix.NDSize{1}, nix.NDSize{3})
	if err != nil {
		t.Fatalf("NewDataView: %v", err)
	}
	buf := make([]int64, 3)
	if err := view.GetData(buf, nil, nil); err != nil {
		t.Fatalf("GetData: %v", err)
	}
	if diff := cmp.Diff([]int64{20, 30, 40}, buf); diff != "" {
		t.Errorf("integer view read should be raw (-want +got):\n%s", diff)
	}
	if err := view.SetData(buf, nil, nil); err != nil {
		t.Fatalf("SetData: %v", err)
	}

	raw := make([]int64, 5)
	if err := u.Times.ReadAll(raw); err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if diff := cmp.Diff([]int64{10, 20, 30, 40, 50}, raw); diff != "" {
		t.Errorf("round trip changed the data (-want +got):\n%s", diff)
	}
}

func TestDataViewRelativeAccess(t *testing.T) {
	u := testutil.LoadUniverse(t)

	view, err := nix.NewDataView(u.Voltage, nix.NDSize{0, 2, 2}, nix.NDSize{1, 7, 3})
	if err != nil {
		t.Fatalf("NewDataView: %v", err)
	}

	got := make([]float64, 2)
	if err := view.GetData(got, nix.NDSize{1, 1, 2}, nix.NDSize{0, 1, 0}); err != nil {
		t.Fatalf("GetData: %v", err)
	}
	if diff := cmp.Diff([]float64{17, 18}, got); diff != "" {
		t.Errorf("sub-window mismatch (-want +got):\n%s", diff)
	}

	if err := view.SetData([]float64{-1}, nix.NDSize{1, 1, 1}, nix.NDSize{0, 0, 0}); err != nil {
		t.Fatalf("SetData: %v", err)
	}
	raw := make([]float64, 1)
	if err := u.Voltage.Read(raw, nix.NDSize{1, 1, 1}, nix.NDSize{0, 2, 2}); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if raw[0] != -1 {
		t.Errorf("write through the view should land at the view origin, got %g", raw[0])
	}
}

func TestDataViewBounds(t *testing.T) {
	u := testutil.LoadUniverse(t)

	if _, err := nix.NewDataView(u.Voltage, nix.NDSize{0, 8, 0}, nix.NDSize{1, 3, 5}); !errors.Is(err, types.ErrOutOfBounds) {
		t.Errorf("view past the end: expected ErrOutOfBounds, got %v", err)
	}
	if _, err := nix.NewDataView(u.Voltage, nix.NDSize{0, 0}, nix.NDSize{1, 1}); !errors.Is(err, types.ErrIncompatibleDimensions) {
		t.Errorf("rank mismatch: expected ErrIncompatibleDimensions, got %v", err)
	}
	if _, err := nix.NewDataView(nil, nil, nil); !errors.Is(err, types.ErrUninitializedEntity) {
		t.Errorf("nil array: expected ErrUninitializedEntity, got %v", err)
	}

	view, err := nix.NewDataView(u.Voltage, nix.NDSize{0, 0, 0}, nix.NDSize{1, 2, 2})
	if err != nil {
		t.Fatalf("NewDataView: %v", err)
	}
	buf := make([]float64, 4)
	if err := view.GetData(buf, nix.NDSize{1, 2, 2}, nix.NDSize{0, 1, 0}); !errors.Is(err, types.ErrOutOfBounds) {
		t.Errorf("sub-window past the view: expected ErrOutOfBounds, got %v", err)
	}
	if err := view.GetData(make([]float64, 2), nix.NDSize{1, 2, 1}, nix.NDSize{0, math.MaxUint64, 0}); !errors.Is(err, types.ErrOutOfBounds) {
		t.Errorf("wrapping offset: expected ErrOutOfBounds, got %v", err)
	}
	if err := view.SetDataExtent(nix.NDSize{1, 1, 1}); !errors.Is(err, types.ErrNotResizable) {
		t.Errorf("SetDataExtent: expected ErrNotResizable, got %v", err)
	}
	if diff := cmp.Diff(nix.NDSize{1, 2, 2}, view.DataExtent()); diff != "" {
		t.Errorf("extent changed (-want +got):\n%s", diff)
	}
	if view.DataType() != types.Double {
		t.Errorf("expected double, got %s", view.DataType())
	}
}

func TestDataViewScalar(t *testing.T) {
	u := testutil.LoadUniverse(t)

	view, err := nix.NewDataView(u.Voltage, nix.NDSize{1, 0, 3}, nix.NDSize{1, 1, 1})
	if err != nil {
		t.Fatalf("NewDataView: %v", err)
	}
	var v float64
	if err := view.GetValue(&v); err != nil {
		t.Fatalf("GetValue: %v", err)
	}
	if v != 53 {
		t.Errorf("expected 53, got %g", v)
	}
	if err := view.SetValue(42.0); err != nil {
		t.Fatalf("SetValue: %v", err)
	}
	if err := view.GetValue(&v); err != nil || v != 42 {
		t.Errorf("expected 42 after SetValue, got %g (%v)", v, err)
	}

	wide, err := nix.NewDataView(u.Voltage, nix.NDSize{0, 0, 0}, nix.NDSize{1, 1, 2})
	if err != nil {
		t.Fatalf("NewDataView: %v", err)
	}
	if err := wide.GetValue(&v); !errors.Is(err, types.ErrIncompatibleDimensions) {
		t.Errorf("scalar access on two elements: expected ErrIncompatibleDimensions, got %v", err)
	}
	if err := view.GetValue(v); !errors.Is(err, types.ErrInvalidDataType) {
		t.Errorf("non-pointer: expected ErrInvalidDataType, got %v", err)
	}
}

func TestDataArrayCalibration(t *testing.T) {
	u := testutil.LoadUniverse(t)

	u.Times.SetPolynomCoefficients([]float64{1, 2})
	u.Times.SetExpansionOrigin(10)

	got := make([]float64, 5)
	if err := u.Times.ReadAll(got); err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	// 1 + 2*(x-10)
	if diff := cmp.Diff([]float64{1, 21, 41, 61, 81}, got); diff != "" {
		t.Errorf("calibrated data mismatch (-want +got):\n%s", diff)
	}

	raw := make([]int64, 5)
	if err := u.Times.ReadAll(raw); err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if diff := cmp.Diff([]int64{10, 20, 30, 40, 50}, raw); diff != "" {
		t.Errorf("integer reads should be raw (-want +got):\n%s", diff)
	}
}

func TestDataArrayAppendData(t *testing.T) {
	u := testutil.LoadUniverse(t)

	if err := u.Times.AppendData([]float64{60, 70}, 0); err != nil {
		t.Fatalf("AppendData: %v", err)
	}
	if diff := cmp.Diff(nix.NDSize{7}, u.Times.DataExtent()); diff != "" {
		t.Errorf("extent mismatch (-want +got):\n%s", diff)
	}

	if err := u.SpikeWaveforms.AppendData([]float64{1, 2, 3}, 0); !errors.Is(err, types.ErrIncompatibleDimensions) {
		t.Errorf("partial hyperslab: expected ErrIncompatibleDimensions, got %v", err)
	}
	if err := u.SpikeWaveforms.AppendData([]float64{1, 2, 3}, 1); err != nil {
		t.Fatalf("AppendData along axis 1: %v", err)
	}
	if diff := cmp.Diff(nix.NDSize{3, 5}, u.SpikeWaveforms.DataExtent()); diff != "" {
		t.Errorf("extent mismatch (-want +got):\n%s", diff)
	}
	if err := u.SpikeWaveforms.AppendData([]float64{1}, 2); !errors.Is(err, types.ErrOutOfBounds) {
		t.Errorf("bad axis: expected ErrOutOfBounds, got %v", err)
	}
}
