package types_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/downfa11-org/pubsub-harness/pkg/types"
)

func TestErrorKindRoundTrip(t *testing.T) {
	base := errors.New("exit status 2")
	err := &types.Error{Kind: types.AdminCommandFailed, Op: "create", Name: "single", Status: 2, Err: base}
	wrapped := fmt.Errorf("creating topic: %w", err)

	if got := types.KindOf(wrapped); got != types.AdminCommandFailed {
		t.Fatalf("KindOf = %v, want %v", got, types.AdminCommandFailed)
	}
	if !errors.Is(wrapped, &types.Error{Kind: types.AdminCommandFailed}) {
		t.Errorf("errors.Is should match on kind")
	}
	if errors.Is(wrapped, &types.Error{Kind: types.WatchTimeout}) {
		t.Errorf("errors.Is should not match a different kind")
	}
	if !errors.Is(wrapped, base) {
		t.Errorf("wrapped cause should be reachable")
	}
	if msg := err.Error(); !strings.Contains(msg, "status 2") || !strings.Contains(msg, "create") {
		t.Errorf("unexpected message: %s", msg)
	}
}

func TestKindOfPlainError(t *testing.T) {
	if got := types.KindOf(errors.New("boom")); got != types.KindUnknown {
		t.Errorf("KindOf plain error = %v", got)
	}
	if got := types.KindOf(nil); got != types.KindUnknown {
		t.Errorf("KindOf nil = %v", got)
	}
}

func TestStateNames(t *testing.T) {
	if types.StateSubscriberDone.String() != "SubscriberDone" {
		t.Errorf("unexpected name %s", types.StateSubscriberDone)
	}
	if !types.StateFailed.Terminal() || !types.StateDone.Terminal() || types.StateShutdown.Terminal() {
		t.Errorf("terminal states misreported")
	}
	if types.State(99).String() != "Unknown" {
		t.Errorf("out of range state should be Unknown")
	}
}
