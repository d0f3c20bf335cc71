package repeater

import (
	"errors"
	"testing"
	"time"
)

func TestAwaitDeliversResult(t *testing.T) {
	ch := make(chan int, 1)
	ch <- 42

	v, err := await(ch, time.Second)
	if err != nil {
		t.Fatalf("await() error = %v", err)
	}
	if v != 42 {
		t.Errorf("await() = %d, want 42", v)
	}
}

func TestAwaitTimeout(t *testing.T) {
	ch := make(chan int, 1)

	start := time.Now()
	_, err := await(ch, 20*time.Millisecond)
	if !errors.Is(err, ErrAwaitTimeout) {
		t.Fatalf("await() error = %v, want ErrAwaitTimeout", err)
	}
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Errorf("await() returned after %v, before the timeout elapsed", elapsed)
	}
}

func TestAwaitClosedChannelIsNoResult(t *testing.T) {
	ch := make(chan int, 1)
	close(ch)

	_, err := await(ch, time.Second)
	if !errors.Is(err, ErrNoResult) {
		t.Errorf("await() error = %v, want ErrNoResult", err)
	}
}

func TestAwaitLateDeposit(t *testing.T) {
	ch := make(chan string, 1)
	go func() {
		time.Sleep(10 * time.Millisecond)
		ch <- "late but in time"
		close(ch)
	}()

	v, err := await(ch, time.Second)
	if err != nil {
		t.Fatalf("await() error = %v", err)
	}
	if v != "late but in time" {
		t.Errorf("await() = %q", v)
	}
}
