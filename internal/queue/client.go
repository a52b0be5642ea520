package queue

import "context"

// Client hands messages to a queue backend for background processing.
type Client interface {
	Send(ctx context.Context, msg Message) error
}
