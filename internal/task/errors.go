package task

import "errors"

var (
	// ErrAlreadyRunning is returned when Start is called on a running pool.
	ErrAlreadyRunning = errors.New("task pool is already running")

	// ErrNotRunning is returned when operations are attempted on a stopped pool.
	ErrNotRunning = errors.New("task pool is not running")

	// ErrQueueFull is returned when the submission queue cannot accept more tasks.
	ErrQueueFull = errors.New("task queue is full")
)
