package readiness

import (
	"context"
	"testing"
	"time"

	"github.com/downfa11-org/pubsub-harness/pkg/types"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const lockPath = "/scenario/subscriber.lock"

func newFsWithLock(t *testing.T) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, lockPath, []byte("1234"), 0o644))
	return fs
}

func TestCheckPresence(t *testing.T) {
	fs := newFsWithLock(t)
	assert.NoError(t, NewLockFile(fs, lockPath, AwaitPresence, 10, time.Second).CheckPresence())

	err := NewLockFile(afero.NewMemMapFs(), lockPath, AwaitPresence, 10, time.Second).CheckPresence()
	require.Error(t, err)
	assert.Equal(t, types.WatchTimeout, types.KindOf(err))
}

func TestAwaitAbsenceAlreadyGone(t *testing.T) {
	w := NewLockFile(afero.NewMemMapFs(), lockPath, AwaitAbsence, 10, time.Hour)

	require.NoError(t, w.AwaitAbsence(context.Background()))
	assert.Equal(t, 1, w.Checks())
}

func TestAwaitAbsenceObservesRemoval(t *testing.T) {
	fs := newFsWithLock(t)
	w := NewLockFile(fs, lockPath, AwaitAbsence, 100, 5*time.Millisecond)

	go func() {
		time.Sleep(30 * time.Millisecond)
		_ = fs.Remove(lockPath)
	}()

	require.NoError(t, Await(context.Background(), w, 0))
	assert.Greater(t, w.Checks(), 1)
}

func TestAwaitAbsenceExhaustsAttempts(t *testing.T) {
	fs := newFsWithLock(t)
	w := NewLockFile(fs, lockPath, AwaitAbsence, 10, time.Millisecond)

	err := w.AwaitAbsence(context.Background())
	require.Error(t, err)
	assert.Equal(t, types.WatchTimeout, types.KindOf(err))
	// counter runs 0..11; failure is declared once it exceeds 10
	assert.Equal(t, 12, w.Checks())

	exists, _ := afero.Exists(fs, lockPath)
	assert.True(t, exists, "watcher must not delete the lock")
}

func TestAwaitAbsenceCancelled(t *testing.T) {
	w := NewLockFile(newFsWithLock(t), lockPath, AwaitAbsence, 10, time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := w.AwaitReady(ctx)
	assert.Equal(t, types.WatchTimeout, types.KindOf(err))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
