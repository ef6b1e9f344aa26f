package render

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/viewsplit/pkg/core/dataset"
	"github.com/matzehuels/viewsplit/pkg/core/split"
)

func testResult(t *testing.T) *split.Result {
	t.Helper()
	ds := &dataset.Dataset{
		Timepoints: []int{0},
		Entities: []dataset.Entity{
			{ID: 0, Size: []int64{1000}, Tile: dataset.Tile{ID: 1}},
			{ID: 4, Size: []int64{300}, Tile: dataset.Tile{ID: 2}},
		},
		Registrations: map[dataset.ViewID][]dataset.Affine{
			{Timepoint: 0, Entity: 0}: {},
			{Timepoint: 0, Entity: 4}: {},
		},
	}
	res, err := split.Split(context.Background(), ds, split.Spec{
		TargetSize:  []int64{600},
		Overlap:     []int64{100},
		MinStepSize: []int64{100},
	})
	if err != nil {
		t.Fatal(err)
	}
	return res
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(testResult(t), Options{})

	for _, want := range []string{
		"digraph G {",
		"subgraph cluster_0 {",
		"subgraph cluster_4 {",
		`"o0" -> "n0";`,
		`"o0" -> "n1";`,
		`"o4" -> "n2";`,
		`"n2" [label="2"];`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() missing %q", want)
		}
	}
	if strings.Contains(dot, "tile ") {
		t.Error("ToDOT() without Detailed should not show tiles")
	}
}

func TestToDOT_Detailed(t *testing.T) {
	dot := ToDOT(testResult(t), Options{Detailed: true})
	if !strings.Contains(dot, `label="1\ntile 3\n[500] -> [999]"`) {
		t.Errorf("ToDOT() detailed label missing:\n%s", dot)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	tests := []struct {
		name string
		svg  string
		want string
	}{
		{
			name: "with viewBox",
			svg:  `<svg viewBox="10 20 800 600" xmlns="http://www.w3.org/2000/svg">content</svg>`,
			want: `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 800.00 600.00" width="800" height="600">content</svg>`,
		},
		{
			name: "no viewBox",
			svg:  `<svg xmlns="http://www.w3.org/2000/svg">content</svg>`,
			want: `<svg xmlns="http://www.w3.org/2000/svg">content</svg>`,
		},
		{
			name: "zero dimensions",
			svg:  `<svg viewBox="0 0 0 0">content</svg>`,
			want: `<svg viewBox="0 0 0 0">content</svg>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeViewBox([]byte(tt.svg))
			if string(got) != tt.want {
				t.Errorf("normalizeViewBox() = %q, want %q", string(got), tt.want)
			}
		})
	}
}

func TestRender(t *testing.T) {
	ctx := context.Background()
	res := testResult(t)

	svg, err := Render(ctx, res, FormatSVG, Options{Detailed: true})
	if err != nil {
		t.Fatalf("Render(svg) error: %v", err)
	}
	if !strings.Contains(string(svg), "<svg") {
		t.Error("Render(svg) output missing <svg> tag")
	}

	dot, err := Render(ctx, res, FormatDOT, Options{})
	if err != nil || !strings.HasPrefix(string(dot), "digraph") {
		t.Errorf("Render(dot) = %q, %v", dot, err)
	}

	if _, err := Render(ctx, res, "pdf", Options{}); err == nil {
		t.Error("Render(pdf) should fail")
	}
}

func TestRenderSVG_InvalidDOT(t *testing.T) {
	if _, err := RenderSVG(context.Background(), `not valid DOT {{{`); err == nil {
		t.Error("RenderSVG() should return error for invalid DOT")
	}
}
