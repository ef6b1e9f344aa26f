// Package render draws the identifier map of a split result as a node-link
// diagram.
//
// Every original entity becomes a cluster holding the split entities cut
// from it, in tile order. Nodes show the new entity ID, the new tile ID and
// the covered region of the original:
//
//	dot := render.ToDOT(res, render.Options{Detailed: true})
//	svg, err := render.RenderSVG(ctx, dot)
//
// SVG output uses [github.com/goccy/go-graphviz], which runs Graphviz
// in-process, so no external binaries are needed.
package render
