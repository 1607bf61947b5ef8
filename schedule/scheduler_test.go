package schedule

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestSchedulerRunsCronJob(t *testing.T) {
	s := NewScheduler(quietLogger())
	ran := make(chan struct{}, 4)
	if _, err := s.AddJob("tick", "* * * * * *", func(ctx context.Context) error {
		if ctx == nil {
			t.Errorf("job fired without a context")
		}
		select {
		case ran <- struct{}{}:
		default:
		}
		return nil
	}); err != nil {
		t.Fatalf("add job: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)
	defer s.Stop()

	select {
	case <-ran:
	case <-time.After(3 * time.Second):
		t.Fatalf("cron job never fired")
	}
}

func TestSchedulerRejectsBadSpec(t *testing.T) {
	s := NewScheduler(quietLogger())
	if _, err := s.AddJob("broken", "not a cron line", func(context.Context) error { return nil }); err == nil {
		t.Fatalf("expected a spec error")
	}
}

func TestRunOnceExecutesImmediately(t *testing.T) {
	s := NewScheduler(quietLogger())
	done := make(chan error, 1)
	s.RunOnce(context.Background(), "bootstrap", func(ctx context.Context) error {
		done <- ctx.Err()
		return nil
	})
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("one-shot job got a dead context: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("one-shot job never ran")
	}
}

func TestRunOnceSurvivesJobError(t *testing.T) {
	s := NewScheduler(quietLogger())
	done := make(chan struct{})
	s.RunOnce(context.Background(), "doomed", func(ctx context.Context) error {
		defer close(done)
		return errors.New("upstream 500")
	})
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatalf("failing one-shot job never ran")
	}
}
