package e2e

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/downfa11-org/pubsub-harness/pkg/scenario"
	"github.com/spf13/afero"
)

func (a *Actions) RunScenario() *Actions {
	c := a.ctx
	c.cfg.Env = c.env
	c.env[envTopic] = c.cfg.Topic
	c.cfg.Normalize()

	c.session = scenario.NewSession(c.cfg, afero.NewOsFs(), &c.output)

	start := time.Now()
	c.result = scenario.NewDriver(c.session).Run(context.Background())
	c.elapsed = time.Since(start)

	c.t.Logf("Scenario %s finished in %v with state %s\n%s", c.result.RunID, c.elapsed, c.result.State, c.output.String())
	return a
}

func (a *Actions) Then() *Consequences {
	return &Consequences{ctx: a.ctx}
}

func (c *Context) journal() []string {
	data, err := os.ReadFile(filepath.Join(c.stateDir, journalFile))
	if err != nil {
		return nil
	}
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}
