package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func TestAdd_InvalidSpec(t *testing.T) {
	s := New(logrus.New(), time.Second)
	if err := s.Add("bad", "not a cron spec", func(context.Context) error { return nil }); err == nil {
		t.Fatalf("expected error for invalid spec")
	}
}

func TestScheduler_RunsJob(t *testing.T) {
	log, hook := test.NewNullLogger()
	s := New(log, time.Second)

	var runs atomic.Int32
	done := make(chan struct{}, 1)
	if err := s.Add("tick", "@every 1s", func(ctx context.Context) error {
		if _, ok := ctx.Deadline(); !ok {
			t.Errorf("job context has no deadline")
		}
		runs.Add(1)
		select {
		case done <- struct{}{}:
		default:
		}
		return errors.New("boom")
	}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	s.Start()
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatalf("job did not run")
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)

	if runs.Load() == 0 {
		t.Fatalf("job never ran")
	}
	// the failing run is logged after the job returns
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		for _, e := range hook.AllEntries() {
			if e.Message == "scheduled job failed" && e.Data["job"] == "tick" {
				return
			}
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("failure was not logged")
}
