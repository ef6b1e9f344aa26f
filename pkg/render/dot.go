package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/viewsplit/pkg/core/split"
)

// Output formats.
const (
	FormatDOT = "dot"
	FormatSVG = "svg"
)

// Options configures the diagram.
type Options struct {
	// Detailed adds tile IDs and regions to node labels.
	// When false, only entity IDs are shown.
	Detailed bool
}

// ToDOT converts the identifier map of res to Graphviz DOT.
func ToDOT(res *split.Result, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontname=\"SF Mono, Menlo, monospace\", fontsize=12];\n")
	buf.WriteString("  nodesep=0.2;\n")
	buf.WriteString("\n")

	byID := make(map[int]split.Entity, len(res.Entities))
	for _, e := range res.Entities {
		byID[e.ID] = e
	}

	for _, orig := range res.Map.Originals() {
		fmt.Fprintf(&buf, "  subgraph cluster_%d {\n", orig)
		fmt.Fprintf(&buf, "    label=%q;\n", fmt.Sprintf("entity %d", orig))
		buf.WriteString("    style=\"rounded,dashed\";\n")
		fmt.Fprintf(&buf, "    \"o%d\" [label=%q, fillcolor=lightgrey];\n", orig, strconv.Itoa(orig))
		for _, id := range res.Map.Tiles(orig) {
			fmt.Fprintf(&buf, "    \"n%d\" [label=%q];\n", id, nodeLabel(byID[id], opts.Detailed))
		}
		buf.WriteString("  }\n")
	}

	buf.WriteString("\n")
	for _, orig := range res.Map.Originals() {
		for _, id := range res.Map.Tiles(orig) {
			fmt.Fprintf(&buf, "  \"o%d\" -> \"n%d\";\n", orig, id)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeLabel(e split.Entity, detailed bool) string {
	label := strconv.Itoa(e.ID)
	if !detailed {
		return label
	}
	parts := []string{
		label,
		fmt.Sprintf("tile %d", e.Tile.ID),
		fmt.Sprintf("%v -> %v", e.Region.Min, e.Region.Max),
	}
	return strings.Join(parts, "\n")
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

// Render produces the diagram of res in the given format.
func Render(ctx context.Context, res *split.Result, format string, opts Options) ([]byte, error) {
	dot := ToDOT(res, opts)
	switch format {
	case FormatDOT:
		return []byte(dot), nil
	case FormatSVG:
		return RenderSVG(ctx, dot)
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root tag to a zero-origin viewBox so the
// SVG scales cleanly when embedded.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
