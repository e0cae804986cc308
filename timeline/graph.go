package timeline

import (
	"strconv"
	"strings"
)

// The filter graph is modeled as typed nodes and serialized to the engine's
// textual syntax only at assembly time, keeping escaping and formatting
// rules in one place.

// input is one registered engine input: the exact argument slice that
// declares it, e.g. {"-i", "/tmp/job/clip.mp4"} or a lavfi source.
type input struct {
	args []string
}

// filter is one node of the graph: the labels it consumes, the filter chain
// text, and the labels it produces.
type filter struct {
	inputs  []string
	chain   string
	outputs []string
}

func (f filter) serialize() string {
	var b strings.Builder
	for _, in := range f.inputs {
		b.WriteString("[")
		b.WriteString(in)
		b.WriteString("]")
	}
	b.WriteString(f.chain)
	for _, out := range f.outputs {
		b.WriteString("[")
		b.WriteString(out)
		b.WriteString("]")
	}
	return b.String()
}

// graph accumulates inputs and filter nodes during compilation. Labels come
// from a single monotonic counter so they are unique across the graph.
type graph struct {
	inputs  []input
	filters []filter
	counter int
}

// addInput registers an engine input and returns its index.
func (g *graph) addInput(args ...string) int {
	g.inputs = append(g.inputs, input{args: args})
	return len(g.inputs) - 1
}

// label returns a fresh stream label with the given prefix ("v" or "a").
func (g *graph) label(prefix string) string {
	l := prefix + strconv.Itoa(g.counter)
	g.counter++
	return l
}

func (g *graph) add(inputs []string, chain string, outputs ...string) {
	g.filters = append(g.filters, filter{inputs: inputs, chain: chain, outputs: outputs})
}

// filterComplex serializes every node into one -filter_complex expression.
func (g *graph) filterComplex() string {
	parts := make([]string, 0, len(g.filters))
	for _, f := range g.filters {
		parts = append(parts, f.serialize())
	}
	return strings.Join(parts, ";")
}

// inputDescriptions returns a human-readable form of each registered input
// for the debug trace.
func (g *graph) inputDescriptions() []string {
	descs := make([]string, 0, len(g.inputs))
	for _, in := range g.inputs {
		descs = append(descs, strings.Join(in.args, " "))
	}
	return descs
}

// formatSeconds renders a time value as fixed-point seconds with exactly
// three fractional digits, so identical timelines always serialize to
// identical graphs.
func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

// hexColor converts "#rrggbb" to the engine's "0xrrggbb" form. Values
// without a leading # pass through unchanged.
func hexColor(c string) string {
	if strings.HasPrefix(c, "#") {
		return "0x" + c[1:]
	}
	return c
}

// escapeText escapes characters that collide with the engine's
// field-separator syntax inside drawtext values.
func escapeText(s string) string {
	return strings.ReplaceAll(s, ":", "\\:")
}
