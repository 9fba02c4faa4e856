package aggregator

import (
	"context"
	"testing"
	"time"

	"github.com/arengifoc/logsort/internal/model"
)

func TestOutcomeCounts(t *testing.T) {
	ch := make(chan model.Event, 100)
	agg := New(ch, func() int64 { return 0 })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go agg.Start(ctx)

	ch <- model.Event{Stage: model.StageRouting, Outcome: model.OutcomeMoved}
	ch <- model.Event{Stage: model.StageRouting, Outcome: model.OutcomeMoved}
	ch <- model.Event{Stage: model.StageRouting, Outcome: model.OutcomeSkipped}
	ch <- model.Event{Stage: model.StageAuditing, Outcome: model.OutcomeAudited, Count: 3}
	ch <- model.Event{Stage: model.StageAuditing, Outcome: model.OutcomeFailed}

	time.Sleep(200 * time.Millisecond)

	stats := agg.Snapshot()
	if stats.TotalEvents != 5 {
		t.Errorf("expected 5 total events, got %d", stats.TotalEvents)
	}
	if stats.OutcomeCounts["moved"] != 2 {
		t.Errorf("expected 2 moved, got %d", stats.OutcomeCounts["moved"])
	}
	if stats.OutcomeCounts["skipped"] != 1 {
		t.Errorf("expected 1 skipped, got %d", stats.OutcomeCounts["skipped"])
	}
	if stats.OutcomeCounts["failed"] != 1 {
		t.Errorf("expected 1 failed, got %d", stats.OutcomeCounts["failed"])
	}
	if stats.ErrorMatches != 3 {
		t.Errorf("expected 3 error matches, got %d", stats.ErrorMatches)
	}
	if stats.EPS <= 0 {
		t.Errorf("expected positive EPS, got %f", stats.EPS)
	}
}

func TestDroppedPassthrough(t *testing.T) {
	ch := make(chan model.Event)
	agg := New(ch, func() int64 { return 7 })

	if got := agg.Snapshot().DroppedEvents; got != 7 {
		t.Errorf("expected 7 dropped, got %d", got)
	}
}

func TestStopsOnClosedChannel(t *testing.T) {
	ch := make(chan model.Event)
	agg := New(ch, func() int64 { return 0 })

	done := make(chan struct{})
	go func() {
		agg.Start(context.Background())
		close(done)
	}()

	close(ch)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("aggregator did not stop when event channel closed")
	}
}
