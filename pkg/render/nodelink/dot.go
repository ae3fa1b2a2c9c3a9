package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	flowerr "github.com/matzehuels/flowmap/pkg/errors"
	"github.com/matzehuels/flowmap/pkg/graph"
)

// Output formats.
const (
	FormatDOT = "dot"
	FormatSVG = "svg"
)

// pointsPerInch converts layout units to Graphviz inches.
const pointsPerInch = 72.0

// Options configures debug rendering.
type Options struct {
	// Detailed adds node values and link widths to labels.
	Detailed bool

	// Midpoints labels midpoint nodes; otherwise they are drawn as dots.
	Midpoints bool
}

// ToDOT converts a layout to Graphviz DOT. Nodes are pinned at their
// anchors (y flipped, since Graphviz y grows upward) and drawn as bars as
// tall as their breadth; links are drawn with a pen as wide as their band.
func ToDOT(l graph.Layout, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  inputscale=72;\n")
	buf.WriteString("  outputorder=edgesfirst;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=filled, fillcolor=white, fontsize=10, fixedsize=true, width=0.08];\n")
	buf.WriteString("  edge [arrowsize=0.5, color=\"#4a6fa580\"];\n")
	buf.WriteString("\n")

	for _, n := range l.Nodes {
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(nodeAttrs(n.ID, n.X, -n.Y, n.Breadth(), n.Value, n.Synthetic, opts), ", "))
	}

	buf.WriteString("\n")
	for _, link := range l.Links {
		attrs := []string{"penwidth=" + fmtFloat(link.Width)}
		if opts.Detailed {
			attrs = append(attrs, fmt.Sprintf("label=%q", fmtFloat(link.Value)))
		}
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", link.Source, link.Target, strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(id string, x, y, breadth, value float64, synthetic bool, opts Options) []string {
	attrs := []string{fmt.Sprintf("pos=\"%s,%s!\"", fmtFloat(x), fmtFloat(y))}
	if synthetic && !opts.Midpoints {
		return append(attrs, "shape=point", "width=0.05", "label=\"\"")
	}

	label := id
	if opts.Detailed {
		label = fmt.Sprintf("%s\n%s", id, fmtFloat(value))
	}
	attrs = append(attrs,
		fmt.Sprintf("label=%q", label),
		"height="+fmtFloat(max(breadth, 1)/pointsPerInch),
	)
	if synthetic {
		attrs = append(attrs, "style=\"filled,dashed\"", "fillcolor=lightgrey")
	}
	return attrs
}

func fmtFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Render produces the given format from a layout.
func Render(ctx context.Context, l graph.Layout, format string, opts Options) ([]byte, error) {
	dot := ToDOT(l, opts)
	switch format {
	case FormatDOT:
		return []byte(dot), nil
	case FormatSVG:
		return RenderSVG(ctx, dot)
	}
	return nil, flowerr.New(flowerr.ErrCodeUnsupported, "unsupported render format %q (must be one of: svg, dot)", format)
}

// RenderSVG renders DOT source to SVG with the neato engine, which honors
// the pinned node positions. Graphviz failures are INTERNAL_ERROR.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, flowerr.Wrap(flowerr.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, flowerr.Wrap(flowerr.ErrCodeInternal, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, flowerr.Wrap(flowerr.ErrCodeInternal, err, "render svg")
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's fixed-size svg tag with one that
// scales to its container.
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
	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
