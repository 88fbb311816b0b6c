package core

import "context"

// JobDispatcher queues webhook events for background review. Dispatch returns
// an error when the event cannot be queued so callers can apply backpressure.
type JobDispatcher interface {
	Dispatch(ctx context.Context, event *GitHubEvent) error
}

// Job processes a single queued event.
type Job interface {
	Run(ctx context.Context, event *GitHubEvent) error
}
