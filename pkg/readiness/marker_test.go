package readiness

import (
	"context"
	"testing"
	"time"

	"github.com/downfa11-org/pubsub-harness/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func feed(lines ...string) chan string {
	ch := make(chan string, len(lines))
	for _, l := range lines {
		ch <- l
	}
	return ch
}

func TestMarkerSourceFindsMarkerAmongDiagnostics(t *testing.T) {
	ch := feed("4242", "loading plugin", "warning: slow disk", "services ready: IceStorm", "after")
	src := NewMarkerSource("broker", ch, "services ready: IceStorm").WithPID()

	require.NoError(t, src.AwaitReady(context.Background()))
	assert.Equal(t, 4242, src.PID())
	assert.Equal(t, "services ready: IceStorm", src.Line())
	assert.Equal(t, "after", <-ch, "lines after the marker stay unread")
}

func TestMarkerSourceStreamClosed(t *testing.T) {
	ch := feed("4242", "starting")
	close(ch)

	err := NewMarkerSource("broker", ch, "services ready").WithPID().AwaitReady(context.Background())
	require.Error(t, err)
	assert.Equal(t, types.ReadinessTimeout, types.KindOf(err))
	assert.Contains(t, err.Error(), "services ready")
}

func TestMarkerSourceEmptyMarkerAcceptsAnyLine(t *testing.T) {
	ch := feed("77", "", "  ", "adapter ready")
	src := NewMarkerSource("subscriber", ch, "").WithPID()

	require.NoError(t, src.AwaitReady(context.Background()))
	assert.Equal(t, 77, src.PID())
	assert.Equal(t, "adapter ready", src.Line())
}

func TestMarkerSourcePIDLineIsNotReadiness(t *testing.T) {
	ch := feed("77")
	close(ch)

	err := NewMarkerSource("subscriber", ch, "").WithPID().AwaitReady(context.Background())
	assert.Equal(t, types.ReadinessTimeout, types.KindOf(err))
}

func TestMarkerSourceNonNumericFirstLine(t *testing.T) {
	src := NewMarkerSource("broker", feed("services ready: IceStorm"), "services ready").WithPID()

	require.NoError(t, src.AwaitReady(context.Background()))
	assert.Equal(t, 0, src.PID())
}

func TestAwaitTimeout(t *testing.T) {
	src := NewMarkerSource("broker", make(chan string), "never")

	err := Await(context.Background(), src, 20*time.Millisecond)
	require.Error(t, err)
	assert.Equal(t, types.ReadinessTimeout, types.KindOf(err))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
