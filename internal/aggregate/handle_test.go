package aggregate

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestHandle_ResolveOnce(t *testing.T) {
	h := NewHandle()
	h.Resolve("first")
	h.Resolve("second")
	h.Reject(errors.New("too late"))

	if v := h.Value(); v != "first" {
		t.Errorf("Value() = %v, want first", v)
	}
	if err := h.Err(); err != nil {
		t.Errorf("Err() = %v, want nil", err)
	}
}

func TestHandle_RejectOnce(t *testing.T) {
	h := NewHandle()
	want := errors.New("boom")
	h.Reject(want)
	h.Resolve("too late")

	if err := h.Err(); !errors.Is(err, want) {
		t.Errorf("Err() = %v, want %v", err, want)
	}
	if v := h.Value(); v != nil {
		t.Errorf("Value() = %v, want nil", v)
	}
}

func TestHandle_ConcurrentSettleExactlyOnce(t *testing.T) {
	h := NewHandle()

	const racers = 16
	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				h.Resolve(i)
			} else {
				h.Reject(errors.New("lost the race"))
			}
		}(i)
	}
	wg.Wait()

	if !h.Settled() {
		t.Fatal("handle not settled after concurrent settles")
	}
	// Either a value or an error, never both.
	if h.Err() != nil && h.Value() != nil {
		t.Errorf("handle has both value %v and err %v", h.Value(), h.Err())
	}
}

func TestHandle_Await(t *testing.T) {
	h := NewHandle()
	go func() {
		time.Sleep(10 * time.Millisecond)
		h.Resolve(uint64(42))
	}()

	v, err := h.Await(context.Background())
	if err != nil {
		t.Fatalf("Await: %v", err)
	}
	if v != uint64(42) {
		t.Errorf("Await value = %v, want 42", v)
	}
}

func TestHandle_AwaitContextCancelled(t *testing.T) {
	h := NewHandle()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := h.Await(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Await err = %v, want context.DeadlineExceeded", err)
	}
	// Cancelling the wait does not settle the handle.
	if h.Settled() {
		t.Error("handle settled by context cancellation")
	}
}

func TestHandle_CompleteIgnoresPending(t *testing.T) {
	h := NewHandle()
	h.Complete(Pending())
	if h.Settled() {
		t.Fatal("pending verdict settled the handle")
	}
	h.Complete(Succeeded("done"))
	if v := h.Value(); v != "done" {
		t.Errorf("Value() = %v, want done", v)
	}
}
