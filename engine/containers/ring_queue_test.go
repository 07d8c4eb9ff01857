package containers

import (
	"errors"
	"testing"
)

func TestRingQueue(t *testing.T) {
	rq := NewRingQueue[int](3)
	if _, err := rq.Dequeue(); !errors.Is(err, ErrQueueEmpty) {
		t.Errorf("Dequeue on empty queue = %v", err)
	}

	for i := 1; i <= 3; i++ {
		if err := rq.Enqueue(i); err != nil {
			t.Fatalf("Enqueue(%d): %v", i, err)
		}
	}
	if err := rq.Enqueue(4); !errors.Is(err, ErrQueueFull) {
		t.Errorf("Enqueue on full queue = %v", err)
	}
	if v, _ := rq.Peek(); v != 1 {
		t.Errorf("Peek() = %d, want 1", v)
	}

	rq.Push(4)
	rq.Push(5)
	got := rq.Items()
	want := []int{3, 4, 5}
	if len(got) != len(want) {
		t.Fatalf("Items() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Items() = %v, want %v", got, want)
		}
	}

	for _, w := range want {
		v, err := rq.Dequeue()
		if err != nil || v != w {
			t.Errorf("Dequeue() = %d, %v, want %d", v, err, w)
		}
	}
	if !rq.IsEmpty() || rq.Len() != 0 {
		t.Error("queue should be empty")
	}
}
