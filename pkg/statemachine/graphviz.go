package statemachine

import "github.com/enetx/g"

// ToDOT renders the transition table as a Graphviz digraph. The current
// state is highlighted and guarded transitions are drawn dashed.
func (m *Machine) ToDOT() string {
	b := g.NewBuilder()

	b.WriteString(g.Format("digraph \"{}\" {\n", g.String(m.name)))
	b.WriteString("  rankdir=LR;\n")
	b.WriteString("  node [shape=box, style=rounded, fontname=\"Helvetica\"];\n")
	b.WriteString("  edge [fontname=\"Helvetica\", fontsize=10];\n\n")

	current := m.CurrentState()
	outgoing := make(map[State]bool, len(m.order))
	for _, key := range m.order {
		outgoing[key.from] = true
	}

	for _, state := range m.States() {
		var attrs g.Slice[g.String]
		attrs.Push(g.Format("label=\"{}\"", g.String(state)))

		switch {
		case state == current:
			attrs.Push("style=\"rounded,filled\"", "fillcolor=\"#90ee90\"")
		case !outgoing[state]:
			attrs.Push("style=\"rounded,filled\"", "fillcolor=\"#d3d3d3\"")
		}

		b.WriteString(g.Format("  \"{}\" [{}];\n", g.String(state), attrs.Join(", ")))
	}

	b.WriteByte('\n')

	for _, key := range m.order {
		def := m.transitions[key]

		var lines g.Slice[g.String]
		lines.Push(g.String(def.Name))
		if def.Permission != "" {
			lines.Push(g.Format("perm: {}", g.String(def.Permission)))
		}
		if def.Role != "" {
			lines.Push(g.Format("role: {}", g.String(def.Role)))
		}

		var edge g.Slice[g.String]
		edge.Push(g.Format("label=\" {} \"", lines.Join("\\n")))
		if def.Guarded() {
			edge.Push("style=dashed")
		}

		b.WriteString(g.Format("  \"{}\" -> \"{}\" [{}];\n", g.String(key.from), g.String(key.to), edge.Join(", ")))
	}

	b.WriteString("}\n")

	return string(b.String())
}
