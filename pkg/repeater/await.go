package repeater

import (
	"errors"
	"time"
)

// Bridge errors, distinguishing "nothing happened in time" from "the
// operation finished without producing anything".
var (
	// ErrAwaitTimeout indicates no result arrived within the wait.
	ErrAwaitTimeout = errors.New("timed out waiting for result")

	// ErrNoResult indicates the operation completed without depositing a
	// result.
	ErrNoResult = errors.New("operation completed without a result")
)

// await bridges one asynchronous operation into a synchronous call with a
// bounded wait. It blocks until ch delivers a value, ch is closed, or the
// timeout elapses. Producers deposit at most one value into a single-slot
// (capacity 1) channel, so a late completion never blocks and cannot be
// confused with another operation's result.
func await[T any](ch <-chan T, timeout time.Duration) (T, error) {
	var zero T

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case v, ok := <-ch:
		if !ok {
			return zero, ErrNoResult
		}
		return v, nil
	case <-timer.C:
		return zero, ErrAwaitTimeout
	}
}
