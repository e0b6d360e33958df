package navflow

import (
	"fmt"
	"strings"
)

// PrettyPrintPath renders an edge sequence as
// "home -[push]-> detail -[modal]-> edit". An empty path renders as "".
func PrettyPrintPath(path []*Edge) string {
	if len(path) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(path[0].From())
	for _, e := range path {
		fmt.Fprintf(&sb, " -[%s]-> %s", e.Transition(), e.To())
	}
	return sb.String()
}

// PrettyPrintOutline renders g as an indented outline: one line per node
// with its kind, one line per outgoing edge, and nested graphs indented
// under their subgraph node.
//
//	graph root
//	  home (screen)
//	    -> detail [push]
//	  checkout (subgraph entry=cart exit=done)
//	    graph checkout
//	      cart (screen)
func (g *Graph) PrettyPrintOutline() string {
	var sb strings.Builder
	g.writeOutline(&sb, 0)
	return sb.String()
}

func (g *Graph) writeOutline(sb *strings.Builder, depth int) {
	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(sb, "%sgraph %s\n", indent, g.name)

	for _, id := range g.order {
		n := g.nodes[id]
		erased := Wrap(n)
		if erased.Subgraph != nil {
			fmt.Fprintf(sb, "%s  %s (subgraph entry=%s exit=%s)\n", indent, id, erased.Subgraph.EntryID, erased.Subgraph.ExitID)
		} else {
			fmt.Fprintf(sb, "%s  %s (%s)\n", indent, id, erased.Kind)
		}

		for _, e := range g.edges[id] {
			line := fmt.Sprintf("%s    -> %s [%s]", indent, e.To(), e.Transition())
			if e.ID() != defaultEdgeID(e.From(), e.To()) {
				line += " " + e.ID()
			}
			if e.HasPredicate() {
				line += " (conditional)"
			}
			sb.WriteString(line + "\n")
		}

		if erased.Subgraph != nil {
			erased.Subgraph.Graph.writeOutline(sb, depth+2)
		}
	}
}

// Mermaid renders g as a Mermaid flowchart. Screens are rectangles, headless
// nodes are subroutines, and subgraph nodes become Mermaid subgraph blocks
// containing their nested graph. Backward transitions are dotted; edges with
// a predicate are labelled with a trailing "?".
func (g *Graph) Mermaid() string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")
	g.writeMermaid(&sb, "", 1)
	return sb.String()
}

func (g *Graph) writeMermaid(sb *strings.Builder, prefix string, depth int) {
	indent := strings.Repeat("    ", depth)

	for _, id := range g.order {
		n := g.nodes[id]
		safeID := sanitizeMermaidID(prefix + id)

		switch KindOf(n) {
		case KindSubgraph:
			v := n.(subgraphNode).view()
			fmt.Fprintf(sb, "%ssubgraph %s[\"%s\"]\n", indent, safeID, id)
			v.Graph.writeMermaid(sb, prefix+id+"/", depth+1)
			fmt.Fprintf(sb, "%send\n", indent)
		case KindHeadless:
			fmt.Fprintf(sb, "%s%s[[\"%s\"]]\n", indent, safeID, id)
		default:
			fmt.Fprintf(sb, "%s%s[\"%s\"]\n", indent, safeID, id)
		}
	}

	for _, e := range g.AllEdges() {
		label := e.Transition().String()
		if e.HasPredicate() {
			label += "?"
		}
		arrow := fmt.Sprintf("-- \"%s\" -->", label)
		if e.Transition().IsBackward() {
			arrow = fmt.Sprintf("-. \"%s\" .->", label)
		}
		fmt.Fprintf(sb, "%s%s %s %s\n", indent, sanitizeMermaidID(prefix+e.From()), arrow, sanitizeMermaidID(prefix+e.To()))
	}
}

func sanitizeMermaidID(id string) string {
	return strings.NewReplacer(".", "_", "-", "_", "/", "__", "\\", "_", " ", "_").Replace(id)
}
