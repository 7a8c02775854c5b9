package io

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/propgraph/pkg/graph"
)

// DOTOptions configures [ToDOT].
type DOTOptions struct {
	// Detailed adds every property to vertex and edge labels.
	Detailed bool

	// Caption names a vertex property shown instead of the vertex label,
	// for example "name". Vertices without it fall back to the label.
	Caption string
}

// ToDOT converts g to Graphviz DOT. Vertices are boxes captioned with their
// label (or the Caption property) and id; edges carry their label.
func ToDOT(g *graph.Graph, opts DOTOptions) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14];\n")
	buf.WriteString("  edge [fontsize=10];\n")
	buf.WriteString("\n")

	for _, v := range g.V() {
		caption := v.Label()
		if opts.Caption != "" {
			if p := v.Property(opts.Caption); p.IsPresent() {
				caption = p.Value().String()
			}
		}
		label := fmt.Sprintf("%s\nv[%s]", caption, v.ID())
		if opts.Detailed {
			label += propertyLines(v.Keys(), v.Property)
		}
		fmt.Fprintf(&buf, "  %q [label=%q];\n", v.ID(), label)
	}

	buf.WriteString("\n")
	for _, e := range g.E() {
		label := e.Label()
		if opts.Detailed {
			label += propertyLines(e.Keys(), e.Property)
		}
		fmt.Fprintf(&buf, "  %q -> %q [label=%q];\n", e.OutVertex().ID(), e.InVertex().ID(), label)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func propertyLines(keys []string, get func(string) graph.Property) string {
	var parts []string
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, get(k).Value()))
	}
	if len(parts) == 0 {
		return ""
	}
	return "\n" + strings.Join(parts, "\n")
}

// RenderSVG renders a DOT graph to SVG using the embedded Graphviz.
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

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element so the drawing scales from a
// zero origin regardless of the Graphviz page offset.
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
	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
