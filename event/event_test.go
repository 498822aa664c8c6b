package event

import "testing"

func TestScheduleFiresAtCountdown(t *testing.T) {
	var q Queue
	fired := false
	q.Schedule("dev", func(iarg int) { fired = true }, 5, 0)
	q.Advance(4)
	if fired {
		t.Fatalf("fired too early")
	}
	q.Advance(1)
	if !fired {
		t.Fatalf("did not fire at countdown")
	}
}

func TestScheduleImmediate(t *testing.T) {
	var q Queue
	fired := false
	q.Schedule("dev", func(iarg int) { fired = true }, 0, 0)
	if !fired {
		t.Fatalf("delay=0 should fire synchronously")
	}
}

func TestCancelIdempotent(t *testing.T) {
	var q Queue
	fired := false
	q.Schedule("dev", func(iarg int) { fired = true }, 5, 1)
	q.Cancel("dev", 1)
	q.Cancel("dev", 1) // idempotent, must not panic
	q.Advance(10)
	if fired {
		t.Fatalf("cancelled timer should not fire")
	}
}

func TestMultipleTimersOrdering(t *testing.T) {
	var q Queue
	var order []int
	q.Schedule("a", func(iarg int) { order = append(order, iarg) }, 10, 1)
	q.Schedule("b", func(iarg int) { order = append(order, iarg) }, 3, 2)
	q.Schedule("c", func(iarg int) { order = append(order, iarg) }, 7, 3)
	q.Advance(3)
	q.Advance(4)
	q.Advance(3)
	if len(order) != 3 || order[0] != 2 || order[1] != 3 || order[2] != 1 {
		t.Errorf("fire order got %v want [2 3 1]", order)
	}
}

func TestAutoRepeat(t *testing.T) {
	var q Queue
	count := 0
	var cb Callback
	cb = func(iarg int) {
		count++
		if count < 3 {
			q.Schedule("dev", cb, 2, 0)
		}
	}
	q.Schedule("dev", cb, 2, 0)
	q.Advance(2)
	q.Advance(2)
	q.Advance(2)
	if count != 3 {
		t.Errorf("auto-repeat count got %d want 3", count)
	}
}

func TestAny(t *testing.T) {
	var q Queue
	if q.Any() {
		t.Errorf("empty queue should report Any()==false")
	}
	q.Schedule("dev", func(int) {}, 5, 0)
	if !q.Any() {
		t.Errorf("non-empty queue should report Any()==true")
	}
}
