package resource

import "context"

// Loader is a startup task that builds one resource off the owner
// goroutine and installs it into a provider slot on completion.
type Loader[T any] struct {
	// Name identifies the resource in errors and logs.
	Name string

	// Build creates the resource. Runs on a worker goroutine.
	Build func(ctx context.Context) (T, error)

	// Install provides the resource. Runs on the owner goroutine via
	// the task completion phase.
	Install func(v T)

	// OnError is invoked instead of Install when Build failed.
	OnError func(name string, err error)

	value T
}

// Execute builds the resource.
func (l *Loader[T]) Execute(ctx context.Context) error {
	v, err := l.Build(ctx)
	if err != nil {
		return err
	}
	l.value = v
	return nil
}

// OnDone installs the built resource or reports the failure.
func (l *Loader[T]) OnDone(err error) {
	if err != nil {
		if l.OnError != nil {
			l.OnError(l.Name, err)
		}
		return
	}
	l.Install(l.value)
}
