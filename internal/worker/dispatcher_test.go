package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestDispatcher_SameKeyRunsInOrder(t *testing.T) {
	d := NewDispatcher(4, 100)

	var mu sync.Mutex
	var got []int
	for i := 0; i < 50; i++ {
		i := i
		d.Submit("user-1", func(context.Context) {
			mu.Lock()
			got = append(got, i)
			mu.Unlock()
		})
	}

	if err := d.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if len(got) != 50 {
		t.Fatalf("ran %d jobs, want 50", len(got))
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("job %d ran at position %d", v, i)
		}
	}
}

func TestDispatcher_SameKeyNeverOverlaps(t *testing.T) {
	d := NewDispatcher(4, 100)

	var running, maxRunning atomic.Int32
	for i := 0; i < 20; i++ {
		d.Submit("user-1", func(context.Context) {
			n := running.Add(1)
			if n > maxRunning.Load() {
				maxRunning.Store(n)
			}
			time.Sleep(time.Millisecond)
			running.Add(-1)
		})
	}
	_ = d.Close(context.Background())

	if maxRunning.Load() != 1 {
		t.Errorf("max concurrent jobs for one key = %d, want 1", maxRunning.Load())
	}
}

func TestDispatcher_RecoversFromPanic(t *testing.T) {
	d := NewDispatcher(1, 10)

	var ran atomic.Bool
	d.Submit("k", func(context.Context) { panic("boom") })
	d.Submit("k", func(context.Context) { ran.Store(true) })
	_ = d.Close(context.Background())

	if !ran.Load() {
		t.Error("worker should keep running after a panicking job")
	}
}

func TestDispatcher_SubmitAfterClose(t *testing.T) {
	d := NewDispatcher(2, 10)
	_ = d.Close(context.Background())

	if d.Submit("k", func(context.Context) {}) {
		t.Error("Submit after Close should report false")
	}
	if err := d.Close(context.Background()); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

func TestDispatcher_FullQueueDrops(t *testing.T) {
	d := NewDispatcher(1, 1)
	release := make(chan struct{})
	started := make(chan struct{})

	d.Submit("k", func(context.Context) {
		close(started)
		<-release
	})
	<-started

	if !d.Submit("k", func(context.Context) {}) {
		t.Fatal("second job should fit in the queue")
	}
	if d.Submit("k", func(context.Context) {}) {
		t.Error("third job should be dropped")
	}

	close(release)
	_ = d.Close(context.Background())
}
