// Package tracer provides a function to dump the current layout tree,
// which may be used in debug mode.
package tracer

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/benoitkugler/cssbox/html/boxes"
	"github.com/benoitkugler/cssbox/utils"
)

type Tracer struct {
	out io.Writer
}

// NewTracer panics if an error occurs.
func NewTracer(outFile string) Tracer {
	f, err := os.Create(outFile)
	if err != nil {
		panic(err)
	}

	return Tracer{out: f}
}

// NewTracerWriter writes to `out`.
func NewTracerWriter(out io.Writer) Tracer { return Tracer{out: out} }

// FormatFloat rounds `v` to one decimal.
func FormatFloat(v utils.Fl) string {
	return strconv.FormatFloat(float64(utils.RoundPrec(v, 1)), 'g', -1, 32)
}

func (t Tracer) Dump(line string) {
	fmt.Fprintln(t.out, line)
}

// DumpTree writes the laid out boxes reachable from `id`, following
// the working children (so that split boxes are included).
func (t Tracer) DumpTree(tree *boxes.Tree, id boxes.BoxID, context string) {
	fmt.Fprintln(t.out, context)

	var printer func(id boxes.BoxID, indent int)
	printer = func(id boxes.BoxID, indent int) {
		box := tree.Box(id)
		fmt.Fprint(t.out, strings.Repeat(" ", indent))
		fmt.Fprintf(t.out, "%s: %s %s %s %s\n", box,
			FormatFloat(box.Bounds.X),
			FormatFloat(box.Bounds.Y),
			FormatFloat(box.Bounds.Width),
			FormatFloat(box.Bounds.Height),
		)
		for _, child := range box.Flow {
			printer(child, indent+1)
		}
	}

	printer(id, 0)

	fmt.Fprintln(t.out)
}
