package push

import "context"

// Message is one push notification addressed to a device token.
type Message struct {
	To    string            `json:"to"`
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}

// Ticket is the per-message delivery receipt.
type Ticket struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Dispatcher delivers a batch of messages. Failures are reported through
// tickets and logged by the caller, never retried here.
type Dispatcher interface {
	Send(ctx context.Context, messages []Message) ([]Ticket, error)
}
