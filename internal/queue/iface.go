package queue

import "context"

// Enqueuer publishes jobs to the queue.
type Enqueuer interface {
	Enqueue(ctx context.Context, msg *Message) (string, error)
}

// Dequeuer consumes jobs. Start launches background workers; Stop drains them.
type Dequeuer interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// DeadLetterQueue holds jobs that will not be retried automatically.
type DeadLetterQueue interface {
	MoveToDLQ(ctx context.Context, msg *Message, reason string) error
	Reprocess(ctx context.Context, entryIDs []string) (int, error)
}

// MessageHandler runs a single job. Returning an error wrapped with Permanent
// sends the job straight to the DLQ; any other error schedules a retry.
type MessageHandler interface {
	HandleMessage(ctx context.Context, msg *Message) error
}

// MessageHandlerFunc adapts a function to MessageHandler.
type MessageHandlerFunc func(ctx context.Context, msg *Message) error

// HandleMessage calls f(ctx, msg).
func (f MessageHandlerFunc) HandleMessage(ctx context.Context, msg *Message) error {
	return f(ctx, msg)
}
