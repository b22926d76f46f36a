package readiness

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/downfa11-org/pubsub-harness/pkg/types"
	"github.com/downfa11-org/pubsub-harness/util"
)

// MarkerSource scans a process's output lines for a readiness marker.
// With an empty marker any non-blank line counts. When WithPID is set the
// first line is taken as the process identifier the child reports about
// itself and is not matched against the marker.
type MarkerSource struct {
	name    string
	marker  string
	withPID bool
	lines   <-chan string

	pid  int
	seen int
	hit  string
}

func NewMarkerSource(name string, lines <-chan string, marker string) *MarkerSource {
	return &MarkerSource{name: name, lines: lines, marker: marker}
}

// WithPID makes the first line a reported PID.
func (m *MarkerSource) WithPID() *MarkerSource {
	m.withPID = true
	return m
}

func (m *MarkerSource) AwaitReady(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return types.NewError(types.ReadinessTimeout, "await-ready", m.name, ctx.Err())
		case line, ok := <-m.lines:
			if !ok {
				return types.NewError(types.ReadinessTimeout, "await-ready", m.name,
					fmt.Errorf("output closed after %d line(s) without %s", m.seen, m.want()))
			}
			m.seen++
			if m.withPID && m.seen == 1 {
				if pid, err := strconv.Atoi(strings.TrimSpace(line)); err == nil {
					m.pid = pid
					continue
				}
				util.Warn("%s: first output line %q is not a process id", m.name, line)
			}
			if m.matches(line) {
				m.hit = line
				return nil
			}
			util.Debug("%s: %s", m.name, line)
		}
	}
}

func (m *MarkerSource) matches(line string) bool {
	if m.marker == "" {
		return strings.TrimSpace(line) != ""
	}
	return strings.Contains(line, m.marker)
}

func (m *MarkerSource) want() string {
	if m.marker == "" {
		return "any output"
	}
	return fmt.Sprintf("%q", m.marker)
}

func (m *MarkerSource) Describe() string {
	return fmt.Sprintf("%s output containing %s", m.name, m.want())
}

// PID is the reported process identifier, 0 when none was parsed.
func (m *MarkerSource) PID() int { return m.pid }

// Line is the line that satisfied the marker.
func (m *MarkerSource) Line() string { return m.hit }
