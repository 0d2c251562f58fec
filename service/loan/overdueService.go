package loansvc

import (
	"context"

	"github.com/NirsoItu/api-biblioteca/repository/mailgw"
)

// Notifier runs the daily overdue sweep: collect late loans, project the
// borrower emails and hand them to the mail gateway.
type Notifier interface {
	Sweep(ctx context.Context) (int, error)
}

type notifier struct {
	loans   Service
	sender  mailgw.Sender
	message string
}

func NewNotifier(loans Service, sender mailgw.Sender, message string) Notifier {
	return &notifier{loans: loans, sender: sender, message: message}
}

func (n *notifier) Sweep(ctx context.Context) (int, error) {
	late, err := n.loans.AllLateLoans(ctx)
	if err != nil {
		return 0, err
	}
	if len(late) == 0 {
		return 0, nil
	}
	emails := make([]string, 0, len(late))
	for _, l := range late {
		emails = append(emails, l.CustomerEmail)
	}
	if err := n.sender.Send(ctx, n.message, emails); err != nil {
		return 0, err
	}
	return len(emails), nil
}
