package notify

import (
	"context"
	"log"

	"github.com/avoronov/fitbook/internal/kafka"
)

// Notifier is the delivery collaborator fed by the class events topic.
// Actual push/email delivery lives outside this service; this logs the
// handoff.
type Notifier struct{}

func NewNotifier() *Notifier {
	return &Notifier{}
}

func (n *Notifier) Send(ctx context.Context, event kafka.ClassEvent) error {
	log.Printf("notify member %s: %s for class %d (booking %s)", event.MemberID, event.Type, event.InstanceID, event.BookingID)
	return nil
}
