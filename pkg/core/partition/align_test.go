package partition

import (
	"slices"
	"testing"
)

func TestSnapNearest(t *testing.T) {
	tests := []struct{ v, step, want int64 }{
		{250, 64, 256},
		{6000, 64, 6016},
		{200, 64, 192},
		{96, 64, 128}, // tie rounds up
		{10, 64, 64},  // never below one step
		{512, 64, 512},
		{37, 1, 37},
	}
	for _, tt := range tests {
		if got := SnapNearest(tt.v, tt.step); got != tt.want {
			t.Errorf("SnapNearest(%d, %d) = %d, want %d", tt.v, tt.step, got, tt.want)
		}
	}
}

func TestSnapUp(t *testing.T) {
	tests := []struct{ v, step, want int64 }{
		{128, 64, 128},
		{100, 64, 128},
		{1, 64, 64},
		{0, 64, 0},
		{50, 1, 50},
	}
	for _, tt := range tests {
		if got := SnapUp(tt.v, tt.step); got != tt.want {
			t.Errorf("SnapUp(%d, %d) = %d, want %d", tt.v, tt.step, got, tt.want)
		}
	}
}

func TestSnapParams(t *testing.T) {
	p := Params{
		TargetSize: []int64{250, 6000},
		Overlap:    []int64{50, 128},
		StepSize:   []int64{64, 64},
	}
	snapped := SnapParams(p)

	if !slices.Equal(snapped.TargetSize, []int64{256, 6016}) {
		t.Errorf("TargetSize = %v", snapped.TargetSize)
	}
	if !slices.Equal(snapped.Overlap, []int64{64, 128}) {
		t.Errorf("Overlap = %v", snapped.Overlap)
	}
	if p.TargetSize[0] != 250 {
		t.Error("SnapParams should not modify its input")
	}
	if err := snapped.Validate(2); err != nil {
		t.Errorf("snapped params should validate: %v", err)
	}
}
