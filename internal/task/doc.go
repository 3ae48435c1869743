// Package task runs work in two phases: Execute on a worker pool,
// then OnDone on the owner goroutine. Workers publish completions to
// a channel the owner drains from its event loop, so completion
// callbacks are serialized with input handling and never race the
// editor state.
package task
