package maintenance

import (
	"context"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"
)

type countingPruner struct {
	calls  atomic.Int32
	maxAge atomic.Int64
}

func (p *countingPruner) Prune(maxAge time.Duration) int {
	p.calls.Add(1)
	p.maxAge.Store(int64(maxAge))
	return 1
}

func TestStartRunsConfiguredTasks(t *testing.T) {
	subs, clips := &countingPruner{}, &countingPruner{}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		Start(ctx, Tasks{Subscriptions: subs, Clips: clips}, Config{
			SubscriptionInterval: 5 * time.Millisecond,
			SubscriptionIdle:     time.Hour,
		}, slog.Default())
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for subs.calls.Load() < 2 {
		if time.Now().After(deadline) {
			t.Fatal("subscription sweep never ran")
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	<-done

	if clips.calls.Load() != 0 {
		t.Error("disabled clip sweep ran")
	}
	if got := time.Duration(subs.maxAge.Load()); got != time.Hour {
		t.Errorf("idle = %v, want 1h", got)
	}
}
