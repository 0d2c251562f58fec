package mailgw

import "context"

// Sender delivers one message to a list of recipients through the mail
// gateway. Delivery is fire-and-forget from the caller's point of view:
// a failure is returned but never retried here.
type Sender interface {
	Send(ctx context.Context, message string, recipients []string) error
}
