package runtime

import (
	"sync"
	"testing"

	"github.com/pkg/errors"
)

func TestSignalChannelStartsEmpty(t *testing.T) {
	ch := NewSignalChannel()
	if ch.HasPending() {
		t.Fatalf("expected empty channel")
	}
	if got := ch.CheckAndConsume("L"); got != ActionNone {
		t.Fatalf("expected ActionNone on empty channel, got %v", got)
	}
	if _, ok := ch.Peek(); ok {
		t.Fatalf("expected Peek to report nothing pending")
	}
}

func TestSignalChannelConsumesMatchingLabel(t *testing.T) {
	cases := []struct {
		kind MarkerKind
		want DispatchAction
	}{
		{MarkerExit, ActionExit},
		{MarkerContinue, ActionContinue},
		{MarkerRestart, ActionRestart},
		{MarkerJump, ActionJump},
	}
	for _, tc := range cases {
		ch := NewSignalChannel()
		if err := ch.Register(ControlFlowMarker{Kind: tc.kind, Target: "OUTER"}); err != nil {
			t.Fatalf("register %v: %v", tc.kind, err)
		}
		if got := ch.CheckAndConsume("OUTER"); got != tc.want {
			t.Fatalf("%v: expected %v, got %v", tc.kind, tc.want, got)
		}
		if ch.HasPending() {
			t.Fatalf("%v: expected channel cleared after consumption", tc.kind)
		}
	}
}

func TestSignalChannelLeavesOtherLabelsUntouched(t *testing.T) {
	ch := NewSignalChannel()
	marker := ControlFlowMarker{Kind: MarkerExit, Target: "OUTER", Origin: "a.kst"}
	if err := ch.Register(marker); err != nil {
		t.Fatalf("register: %v", err)
	}
	if got := ch.CheckAndConsume("INNER"); got != ActionPendingOther {
		t.Fatalf("expected ActionPendingOther, got %v", got)
	}
	if got := ch.CheckAndConsume(""); got != ActionPendingOther {
		t.Fatalf("unlabeled scope must not consume, got %v", got)
	}
	peeked, ok := ch.Peek()
	if !ok || peeked != marker {
		t.Fatalf("expected marker preserved, got %#v (ok=%v)", peeked, ok)
	}
}

func TestSignalChannelRejectsSecondRegistration(t *testing.T) {
	ch := NewSignalChannel()
	if err := ch.Register(ControlFlowMarker{Kind: MarkerExit, Target: "A"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	err := ch.Register(ControlFlowMarker{Kind: MarkerRestart, Target: "B"})
	if !errors.Is(err, ErrChannelOccupied) {
		t.Fatalf("expected ErrChannelOccupied, got %v", err)
	}
	peeked, _ := ch.Peek()
	if peeked.Target != "A" {
		t.Fatalf("first marker must survive a rejected registration, got %q", peeked.Target)
	}
}

func TestSignalChannelClear(t *testing.T) {
	ch := NewSignalChannel()
	_ = ch.Register(ControlFlowMarker{Kind: MarkerJump, Target: "Z"})
	marker, ok := ch.Clear()
	if !ok || marker.Target != "Z" {
		t.Fatalf("expected cleared marker Z, got %#v", marker)
	}
	if ch.HasPending() {
		t.Fatalf("expected empty channel after Clear")
	}
	if _, ok := ch.Clear(); ok {
		t.Fatalf("second Clear should report nothing")
	}
}

func TestSignalChannelsAreIndependent(t *testing.T) {
	const workers = 8
	var wg sync.WaitGroup
	failures := make(chan string, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			ch := NewSignalChannel()
			label := string(rune('A' + id))
			for n := 0; n < 1000; n++ {
				if err := ch.Register(ControlFlowMarker{Kind: MarkerContinue, Target: label}); err != nil {
					failures <- err.Error()
					return
				}
				if got := ch.CheckAndConsume(label); got != ActionContinue {
					failures <- got.String()
					return
				}
			}
		}(i)
	}
	wg.Wait()
	close(failures)
	for msg := range failures {
		t.Fatalf("independent channel observed interference: %s", msg)
	}
}

func TestSignalChannelHasPendingFromMonitor(t *testing.T) {
	ch := NewSignalChannel()
	stop := make(chan struct{})
	var seen sync.WaitGroup
	seen.Add(1)
	go func() {
		defer seen.Done()
		for {
			select {
			case <-stop:
				return
			default:
				_ = ch.HasPending()
			}
		}
	}()

	for n := 0; n < 1000; n++ {
		if err := ch.Register(ControlFlowMarker{Kind: MarkerExit, Target: "L"}); err != nil {
			t.Fatalf("register: %v", err)
		}
		if marker, ok := ch.Peek(); !ok || marker.Target != "L" {
			t.Fatalf("owner Peek = %v, %v", marker, ok)
		}
		if got := ch.CheckAndConsume("L"); got != ActionExit {
			t.Fatalf("consume: got %s", got)
		}
	}
	close(stop)
	seen.Wait()
	if ch.HasPending() {
		t.Fatalf("channel should be empty")
	}
}
