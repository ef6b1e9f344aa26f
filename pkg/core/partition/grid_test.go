package partition

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/viewsplit/pkg/core/interval"
	"github.com/matzehuels/viewsplit/pkg/errors"
)

func TestCompose_AxisZeroFastest(t *testing.T) {
	a0 := []interval.Range{{Min: 0, Max: 249}, {Min: 200, Max: 449}, {Min: 400, Max: 649}, {Min: 600, Max: 849}, {Min: 800, Max: 999}}
	a1 := []interval.Range{{Min: 0, Max: 99}, {Min: 80, Max: 179}, {Min: 160, Max: 199}}

	tiles := Compose([][]interval.Range{a0, a1})
	if len(tiles) != 15 {
		t.Fatalf("got %d tiles, want 15", len(tiles))
	}

	if tiles[0].Axis(0) != a0[0] || tiles[0].Axis(1) != a1[0] {
		t.Errorf("tile 0 = %v", tiles[0])
	}
	if tiles[1].Axis(0) != a0[1] || tiles[1].Axis(1) != a1[0] {
		t.Errorf("tile 1 = %v, want axis-0 window 1 with axis-1 window 0", tiles[1])
	}
	if tiles[5].Axis(0) != a0[0] || tiles[5].Axis(1) != a1[1] {
		t.Errorf("tile 5 = %v", tiles[5])
	}

	// every tile sits at the index TileIndex reports
	counts := []int{len(a0), len(a1)}
	for j := range a1 {
		for i := range a0 {
			tile := tiles[TileIndex([]int{i, j}, counts)]
			if tile.Axis(0) != a0[i] || tile.Axis(1) != a1[j] {
				t.Errorf("TileIndex(%d,%d) -> %v", i, j, tile)
			}
		}
	}
}

func TestCompose_Cardinality(t *testing.T) {
	tests := []struct {
		name   string
		counts []int
		want   int
	}{
		{"single axis", []int{4}, 4},
		{"three axes", []int{2, 3, 4}, 24},
		{"all single", []int{1, 1, 1}, 1},
		{"empty axis", []int{3, 0}, 0},
		{"no axes", nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			axes := make([][]interval.Range, len(tt.counts))
			for d, n := range tt.counts {
				for i := 0; i < n; i++ {
					axes[d] = append(axes[d], interval.Range{Min: int64(i * 10), Max: int64(i*10 + 9)})
				}
			}
			if got := len(Compose(axes)); got != tt.want {
				t.Errorf("len(Compose()) = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDistribute(t *testing.T) {
	p := Params{
		TargetSize: []int64{250, 600, 64},
		Overlap:    []int64{50, 0, 0},
		StepSize:   []int64{1, 1, 1},
	}
	tiles, err := Distribute([]int64{1000, 500, 64}, p)
	if err != nil {
		t.Fatalf("Distribute() error: %v", err)
	}
	if len(tiles) != 5 {
		t.Fatalf("got %d tiles, want 5", len(tiles))
	}

	want := interval.Interval{Min: []int64{200, 0, 0}, Max: []int64{449, 499, 63}}
	if diff := cmp.Diff(want, tiles[1]); diff != "" {
		t.Errorf("tile 1 mismatch (-want +got):\n%s", diff)
	}
}

func TestDistribute_AllOrNothing(t *testing.T) {
	tests := []struct {
		name string
		p    Params
		code errors.Code
	}{
		{
			name: "second axis misaligned",
			p:    Params{TargetSize: []int64{256, 250}, Overlap: []int64{64, 64}, StepSize: []int64{64, 64}},
			code: errors.ErrCodeAlignment,
		},
		{
			name: "overlap too large",
			p:    Params{TargetSize: []int64{256, 256}, Overlap: []int64{64, 320}, StepSize: []int64{64, 64}},
			code: errors.ErrCodeOverlapExceedsSize,
		},
		{
			name: "missing axis",
			p:    Params{TargetSize: []int64{256}, Overlap: []int64{64, 64}, StepSize: []int64{64, 64}},
			code: errors.ErrCodeInvalidInput,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tiles, err := Distribute([]int64{1000, 1000}, tt.p)
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want %s", err, tt.code)
			}
			if tiles != nil {
				t.Errorf("expected no tiles on error, got %d", len(tiles))
			}
		})
	}
}

func TestDistribute_InvalidSize(t *testing.T) {
	p := Params{TargetSize: []int64{10}, Overlap: []int64{0}, StepSize: []int64{1}}
	if _, err := Distribute([]int64{0}, p); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("error = %v, want INVALID_INPUT", err)
	}
}

func TestDistribute_Deterministic(t *testing.T) {
	p := Params{
		TargetSize: []int64{512, 512, 128},
		Overlap:    []int64{64, 64, 16},
		StepSize:   []int64{16, 16, 16},
		Optimize:   true,
	}
	first, err := Distribute([]int64{2048, 1800, 300}, p)
	if err != nil {
		t.Fatal(err)
	}
	second, _ := Distribute([]int64{2048, 1800, 300}, p)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("Distribute not deterministic:\n%s", diff)
	}
}
