package dataset

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/matzehuels/viewsplit/pkg/core/interval"
)

func mustInterval(t *testing.T, min, max []int64) interval.Interval {
	t.Helper()
	iv, err := interval.New(min, max)
	if err != nil {
		t.Fatal(err)
	}
	return iv
}

func TestTranslation(t *testing.T) {
	a := Translation("Image Splitting", []int64{200, 0, 64})
	want := []float64{
		1, 0, 0, 200,
		0, 1, 0, 0,
		0, 0, 1, 64,
	}
	if diff := cmp.Diff(want, a.Matrix); diff != "" {
		t.Errorf("matrix mismatch (-want +got):\n%s", diff)
	}
	if a.Dims() != 3 {
		t.Errorf("Dims() = %d, want 3", a.Dims())
	}
}

func TestDims(t *testing.T) {
	tests := []struct {
		n    int
		want int
	}{
		{2, 1}, {6, 2}, {12, 3}, {20, 4}, {0, -1}, {7, -1},
	}
	for _, tt := range tests {
		if got := (Affine{Matrix: make([]float64, tt.n)}).Dims(); got != tt.want {
			t.Errorf("Dims() with %d entries = %d, want %d", tt.n, got, tt.want)
		}
	}
}

func TestModel(t *testing.T) {
	scale := Affine{Name: "calibration", Matrix: []float64{
		2, 0, 10,
		0, 2, 20,
	}}
	shift := Translation("Image Splitting", []int64{5, 5})

	m, err := Model(2, []Affine{scale, shift})
	if err != nil {
		t.Fatal(err)
	}
	// The last transform applies first: (1,1) -> (6,6) -> (22,32).
	got := Apply(m, []float64{1, 1})
	if diff := cmp.Diff([]float64{22, 32}, got, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("Apply() mismatch (-want +got):\n%s", diff)
	}
}

func TestModelEmptyIsIdentity(t *testing.T) {
	m, err := Model(3, nil)
	if err != nil {
		t.Fatal(err)
	}
	got := Apply(m, []float64{1.5, -2, 3})
	for d, v := range []float64{1.5, -2, 3} {
		if math.Abs(got[d]-v) > 1e-12 {
			t.Errorf("axis %d = %v, want %v", d, got[d], v)
		}
	}
}

func TestModelRejectsWrongDimensions(t *testing.T) {
	if _, err := Model(3, []Affine{Identity("x", 2)}); err == nil {
		t.Error("Model() = nil error for 2-d transform in 3-d model")
	}
}

func TestCloneTransforms(t *testing.T) {
	in := []Affine{Translation("a", []int64{1, 2})}
	out := CloneTransforms(in)
	out[0].Matrix[2] = 99
	if in[0].Matrix[2] != 1 {
		t.Error("CloneTransforms shares matrix storage")
	}
}
