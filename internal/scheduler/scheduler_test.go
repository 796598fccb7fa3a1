package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type mockJob struct {
	name     string
	runCount int32
	err      error
}

func (j *mockJob) Name() string {
	return j.name
}

func (j *mockJob) Run(ctx context.Context) error {
	atomic.AddInt32(&j.runCount, 1)
	return j.err
}

func TestScheduler(t *testing.T) {
	s := New()
	job := &mockJob{name: "test_job"}

	if err := s.AddJob("@every 1s", job); err != nil {
		t.Fatalf("failed to add job: %v", err)
	}

	s.Start()
	time.Sleep(1500 * time.Millisecond)
	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("failed to stop: %v", err)
	}

	if atomic.LoadInt32(&job.runCount) == 0 {
		t.Error("job did not run")
	}
}

func TestAddJob_Errors(t *testing.T) {
	s := New()
	job := &mockJob{name: "dup"}

	if err := s.AddJob("@every 1h", job); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.AddJob("@every 1h", job); err == nil {
		t.Error("expected error for duplicate job name")
	}
	if err := s.AddJob("not a spec", &mockJob{name: "bad"}); err == nil {
		t.Error("expected error for invalid spec")
	}
}

func TestRunJobNow(t *testing.T) {
	s := New()
	failing := &mockJob{name: "failing", err: errors.New("boom")}
	if err := s.AddJob("@every 1h", failing); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := s.RunJobNow("failing"); err == nil {
		t.Error("expected job error to be returned")
	}
	if failing.runCount != 1 {
		t.Errorf("expected 1 run, got %d", failing.runCount)
	}
	if err := s.RunJobNow("missing"); err == nil {
		t.Error("expected error for unregistered job")
	}
}

func TestStop_NotRunning(t *testing.T) {
	if err := New().Stop(context.Background()); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
}
