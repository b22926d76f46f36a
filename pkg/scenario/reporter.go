package scenario

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// Reporter prints the "label... ok" progress lines of a run.
type Reporter struct {
	out    io.Writer
	ok     *color.Color
	failed *color.Color
}

func NewReporter(out io.Writer) *Reporter {
	return &Reporter{
		out:    out,
		ok:     color.New(color.FgGreen),
		failed: color.New(color.FgRed, color.Bold),
	}
}

func (r *Reporter) Step(label string) {
	fmt.Fprintf(r.out, "%s... ", label)
}

func (r *Reporter) Ok() {
	r.ok.Fprintln(r.out, "ok")
}

func (r *Reporter) Failed() {
	r.failed.Fprintln(r.out, "failed!")
}

// Output is where child output that is echoed verbatim goes.
func (r *Reporter) Output() io.Writer {
	return r.out
}
