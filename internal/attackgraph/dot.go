package attackgraph

import (
	"fmt"
	"strings"
)

// ToDOT renders the graph in Graphviz format.
func ToDOT(g *Graph, title string) string {
	var b strings.Builder
	b.WriteString("digraph G {\n  rankdir=TB;\n  node [shape=box, style=rounded];\n")
	if title != "" {
		b.WriteString(fmt.Sprintf(`  labelloc="t"; label="%s"; fontname="Helvetica";`, escape(title)))
		b.WriteString("\n")
	}

	for _, n := range g.Nodes {
		style := `shape=box,style="rounded,filled",fillcolor="#eef6ff"`
		switch n.Type {
		case NodeStart:
			style = `shape=circle,style="filled",fillcolor="#d1e7dd"`
		case NodeEnd:
			style = `shape=doublecircle,style="filled",fillcolor="#f8d7da"`
		case NodeVulnerability:
			style = `shape=box,style="rounded,filled",fillcolor="#fff3cd"`
		case NodeExploit:
			style = `shape=hexagon,style="filled",fillcolor="#f5c2c7"`
		}
		b.WriteString(fmt.Sprintf(`  "%s" [label="%s", %s];`+"\n", n.ID, escape(n.Label), style))
	}

	for _, e := range g.Edges {
		attrs := fmt.Sprintf(`label="%s", tooltip="%s"`, escape(e.Label), e.ID)
		switch e.Type {
		case EdgeVulnerable:
			attrs += `, color="#fd7e14"`
		case EdgeExploit:
			attrs += `, color="#dc3545", style=bold`
		}
		b.WriteString(fmt.Sprintf(`  "%s" -> "%s" [%s];`+"\n", e.Source, e.Target, attrs))
	}

	b.WriteString("}\n")
	return b.String()
}

func escape(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}
