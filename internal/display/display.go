package display

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nvandessel/sflsim/internal/ranking"
	"github.com/nvandessel/sflsim/internal/spectrum"
	"github.com/nvandessel/sflsim/internal/topology"
	"github.com/nvandessel/sflsim/internal/trace"
)

// Printer writes colored dumps to w.
type Printer struct {
	w      io.Writer
	styles Styles
}

// NewPrinter creates a printer whose colors match w's capabilities.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w, styles: NewStyles(lipgloss.NewRenderer(w))}
}

// componentStyle colors links yellow, faulty components red and the rest blue.
func (p *Printer) componentStyle(c *topology.Component) lipgloss.Style {
	switch {
	case c.IsLink():
		return p.styles.Link
	case c.Health < 1.0:
		return p.styles.Faulty
	default:
		return p.styles.Healthy
	}
}

// Components prints one line per component with its parameters and peers:
//
//	C0 [h=1,f=1,o=[]] {[1, L0]}
func (p *Printer) Components(topo *topology.Topology) {
	for i, c := range topo.Components() {
		var b strings.Builder
		b.WriteString(p.componentStyle(c).Render(c.Name))
		fmt.Fprintf(&b, " [h=%g,f=%g,o=%s] {", c.Health, c.FailureProbability, c.Options)
		for _, peer := range topo.Peers(i) {
			pc := topo.Component(peer.Index)
			fmt.Fprintf(&b, "[%s, %s]",
				p.styles.Weight.Render(strconv.FormatFloat(peer.Weight, 'g', -1, 64)),
				p.componentStyle(pc).Render(pc.Name))
		}
		b.WriteString("}")
		fmt.Fprintln(p.w, b.String())
	}
}

// FormatTrace renders a trace without color, each node as
// name[fault,error,failure] followed by its children in braces, and the
// verdict last:
//
//	C0[0,0,0]{L0[0,0,0]{C1[0,0,0]}}[pass]
func FormatTrace(tr *trace.Trace) string {
	return formatTrace(tr, plain)
}

var plain = NewStyles(lipgloss.NewRenderer(io.Discard))

// Trace prints a single trace.
func (p *Printer) Trace(tr *trace.Trace) {
	fmt.Fprintln(p.w, formatTrace(tr, p.styles))
}

// Traces prints the topology's history, one trace per line with its index.
func (p *Printer) Traces(topo *topology.Topology) {
	width := len(strconv.Itoa(topo.TraceCount()))
	for i, tr := range topo.Traces() {
		fmt.Fprintf(p.w, "%s %s\n",
			p.styles.Muted.Render(fmt.Sprintf("%*d", width, i)),
			formatTrace(tr, p.styles))
	}
}

func formatTrace(tr *trace.Trace, s Styles) string {
	bit := func(v bool) string {
		if v {
			return s.Fail.Render("1")
		}
		return s.Pass.Render("0")
	}

	type item struct {
		node    *trace.Node
		wrapped bool
	}
	var b strings.Builder
	roots := tr.Roots()
	stack := make([]item, 0, len(roots))
	for i := len(roots) - 1; i >= 0; i-- {
		stack = append(stack, item{node: roots[i]})
	}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if it.node == nil {
			b.WriteString("}")
			continue
		}
		n := it.node
		if it.wrapped {
			b.WriteString("{")
			// A nil node closes the brace after the subtree.
			stack = append(stack, item{})
		}
		fmt.Fprintf(&b, "%s[%s,%s,%s]", s.Healthy.Render(n.Component), bit(n.Fault), bit(n.Error), bit(n.Failure))
		for i := len(n.Children) - 1; i >= 0; i-- {
			stack = append(stack, item{node: n.Children[i], wrapped: true})
		}
	}

	if tr.Passing() {
		b.WriteString(s.Pass.Render("[pass]"))
	} else {
		b.WriteString(s.Fail.Render("[fail]"))
	}
	return b.String()
}

// Spectrum prints the activity matrix, one row per component, each cell
// colored by the strongest state it carries (fault, failure, error), and
// the error vector on a final row labelled E.
func (p *Printer) Spectrum(s *spectrum.Spectrum) {
	comps := s.Components()
	width := 1
	for _, c := range comps {
		width = max(width, lipgloss.Width(c.Name))
	}

	for r, c := range comps {
		var b strings.Builder
		b.WriteString(p.componentStyle(c).Render(pad(c.Name, width)))
		b.WriteString(" ")
		for col := 0; col < s.Activity.Cols(); col++ {
			b.WriteString(p.cell(s, r, col))
		}
		fmt.Fprintln(p.w, b.String())
	}

	var b strings.Builder
	b.WriteString(pad("E", width))
	b.WriteString(" ")
	for _, e := range s.ErrorVector() {
		if e {
			b.WriteString(p.styles.Fail.Render("1"))
		} else {
			b.WriteString(p.styles.Pass.Render("0"))
		}
	}
	fmt.Fprintln(p.w, b.String())
}

func (p *Printer) cell(s *spectrum.Spectrum, r, c int) string {
	if !s.Activity.At(r, c) {
		return p.styles.Inactive.Render("0")
	}
	switch {
	case s.Fault.At(r, c):
		return p.styles.Fault.Render("1")
	case s.Failure.At(r, c):
		return p.styles.Failure.Render("1")
	case s.Error.At(r, c):
		return p.styles.Error.Render("1")
	default:
		return p.styles.Inactive.Render("1")
	}
}

const columnWidth = 12

// Table prints a diagnosis table with one column per coefficient. The
// column named sortBy, if any, is highlighted.
func (p *Printer) Table(t *ranking.Table, sortBy string) {
	width := 1
	for _, r := range t.Rows {
		width = max(width, lipgloss.Width(r.Component.Name))
	}
	highlight := t.Column(sortBy)
	sep := p.styles.Muted.Render(" | ")

	var head strings.Builder
	head.WriteString(pad("", width))
	head.WriteString(sep)
	for i, name := range t.Coefficients {
		style := p.styles.Title
		if i == highlight {
			style = p.styles.Highlight
		}
		head.WriteString(style.Render(pad(name, columnWidth)))
		head.WriteString(sep)
	}
	fmt.Fprintln(p.w, head.String())

	for _, r := range t.Rows {
		style := p.componentStyle(r.Component)
		var b strings.Builder
		b.WriteString(style.Render(pad(r.Component.Name, width)))
		b.WriteString(sep)
		for _, v := range r.Scores {
			b.WriteString(style.Render(pad(strconv.FormatFloat(v, 'f', 3, 64), columnWidth)))
			b.WriteString(sep)
		}
		fmt.Fprintln(p.w, b.String())
	}
}

// Evaluation prints a one-line summary of a ranking evaluation.
func (p *Printer) Evaluation(coefficient string, ev ranking.Evaluation) {
	if !ev.Found {
		fmt.Fprintf(p.w, "%s: %s\n", coefficient, p.styles.Muted.Render("no faulty component ranked"))
		return
	}
	fmt.Fprintf(p.w, "%s: best fault %s at rank %d, exam %.3f\n",
		p.styles.Title.Render(coefficient), p.styles.Faulty.Render(ev.Best), ev.BestRank, ev.Exam)
}

func pad(s string, width int) string {
	if n := width - lipgloss.Width(s); n > 0 {
		return s + strings.Repeat(" ", n)
	}
	return s
}
