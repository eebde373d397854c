// Package visualization renders invocation graphs as Graphviz DOT or JSON,
// optionally annotated with how often each link was traversed.
package visualization

import (
	"fmt"
	"math"
	"strings"

	"github.com/nvandessel/sflsim/internal/spectrum"
	"github.com/nvandessel/sflsim/internal/topology"
)

// Format specifies the output format for graph rendering.
type Format string

const (
	FormatDOT  Format = "dot"
	FormatJSON Format = "json"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatDOT, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q (valid: dot, json)", s)
	}
}

// nodeColor picks a component's outline: red shades for faulty components,
// green for healthy ones, darker when errors may stay silent.
func nodeColor(c *topology.Component) string {
	if c.Health < 1.0 {
		if c.FailureProbability < 1.0 {
			return "#880000"
		}
		return "#ee0000"
	}
	if c.FailureProbability < 1.0 {
		return "#005000"
	}
	return "#00ee00"
}

// penWidth scales an edge by the traversal frequency of its link.
func penWidth(freq int) float64 {
	return math.Sqrt(float64(freq)+1) + 1
}

// RenderDOT produces a Graphviz DOT representation of the topology. When s is
// non-nil, link nodes show their invocation frequency and edges touching a
// link are drawn with a width proportional to it.
func RenderDOT(topo *topology.Topology, s *spectrum.Spectrum) string {
	var freq []int
	if s != nil {
		freq = make([]int, topo.Len())
		for i := range freq {
			freq[i] = s.Frequency(i)
		}
	}

	var b strings.Builder
	b.WriteString("digraph topology {\n")
	b.WriteString("  rankdir=LR;\n")
	b.WriteString("  node [fontname=\"Helvetica\"];\n")
	b.WriteString("  edge [color=lightgrey];\n\n")

	for i, c := range topo.Components() {
		if c.IsLink() {
			label := fmt.Sprintf("%s = %g", c.Name, c.Health)
			if freq != nil {
				label += fmt.Sprintf(`\n%d`, freq[i])
			}
			b.WriteString(fmt.Sprintf("  %s [label=%s, shape=circle, fixedsize=true, width=0.8, fontsize=10, color=lightgrey];\n",
				quote(c.Name), quote(label)))
			continue
		}
		label := fmt.Sprintf("<f0> %s | <f1> h=%g | <f2> f=%g | <f3> %s",
			recordEscape(c.Name), c.Health, c.FailureProbability, c.Options)
		b.WriteString(fmt.Sprintf("  %s [label=%s, shape=record, color=%s];\n", quote(c.Name), quote(label), quote(nodeColor(c))))
	}
	b.WriteString("\n")

	for i, c := range topo.Components() {
		for _, p := range topo.Peers(i) {
			peer := topo.Component(p.Index)
			var attrs []string
			if !c.IsLink() {
				attrs = append(attrs, "dir=none")
			}
			if freq != nil {
				// Width follows whichever end of the edge is the link.
				w := freq[i]
				if !c.IsLink() && peer.IsLink() {
					w = freq[p.Index]
				}
				attrs = append(attrs, fmt.Sprintf("penwidth=%.2f", penWidth(w)))
			}
			b.WriteString(fmt.Sprintf("  %s -> %s", quote(c.Name), quote(peer.Name)))
			if len(attrs) > 0 {
				b.WriteString(" [" + strings.Join(attrs, ", ") + "]")
			}
			b.WriteString(";\n")
		}
	}

	b.WriteString("}\n")
	return b.String()
}

// quote produces a DOT quoted string. Only double quotes need escaping.
func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}

// recordEscape escapes the characters that delimit fields in a record label.
func recordEscape(s string) string {
	r := strings.NewReplacer("|", `\|`, "{", `\{`, "}", `\}`, "<", `\<`, ">", `\>`)
	return r.Replace(s)
}

// RenderJSON produces a JSON graph representation with nodes and edges
// arrays. Frequencies are included when s is non-nil.
func RenderJSON(topo *topology.Topology, s *spectrum.Spectrum) map[string]interface{} {
	nodes := make([]map[string]interface{}, 0, topo.Len())
	for i, c := range topo.Components() {
		node := map[string]interface{}{
			"id":      c.Name,
			"health":  c.Health,
			"failure": c.FailureProbability,
			"options": c.Options.Names(),
			"link":    c.IsLink(),
		}
		if s != nil {
			node["frequency"] = s.Frequency(i)
		}
		nodes = append(nodes, node)
	}

	edges := make([]map[string]interface{}, 0)
	for i, c := range topo.Components() {
		for _, p := range topo.Peers(i) {
			edges = append(edges, map[string]interface{}{
				"source": c.Name,
				"target": topo.Component(p.Index).Name,
				"weight": p.Weight,
			})
		}
	}

	out := map[string]interface{}{
		"nodes": nodes,
		"edges": edges,
	}
	if s != nil {
		out["traces"] = s.Traces()
	}
	return out
}
