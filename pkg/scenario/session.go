package scenario

import (
	"io"

	"github.com/downfa11-org/pubsub-harness/pkg/admin"
	"github.com/downfa11-org/pubsub-harness/pkg/config"
	"github.com/downfa11-org/pubsub-harness/pkg/process"
	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// Session carries everything one scenario run needs. It is built per run
// and handed to every step; nothing about a run lives in package state.
type Session struct {
	RunID    string
	Config   *config.Config
	Fs       afero.Fs
	Launcher *process.Launcher
	Admin    *admin.Runner
	Reporter *Reporter

	broker     *process.Handle
	subscriber *process.Handle
	publisher  *process.Handle

	result *Result
}

// NewSession wires a session for cfg, which must already be normalized.
// Progress and the publisher's echoed output go to out.
func NewSession(cfg *config.Config, fs afero.Fs, out io.Writer) *Session {
	l := process.NewLauncher(cfg.Env, nil)
	return &Session{
		RunID:    uuid.NewString(),
		Config:   cfg,
		Fs:       fs,
		Launcher: l,
		Admin:    admin.NewRunner(l, cfg),
		Reporter: NewReporter(out),
	}
}

// handles returns the long-lived components that were started, by name.
func (s *Session) handles() map[string]*process.Handle {
	out := map[string]*process.Handle{}
	for name, h := range map[string]*process.Handle{
		"broker":     s.broker,
		"subscriber": s.subscriber,
		"publisher":  s.publisher,
	} {
		if h != nil {
			out[name] = h
		}
	}
	return out
}
