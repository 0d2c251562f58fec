package loansvc_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/NirsoItu/api-biblioteca/model"
	loansvc "github.com/NirsoItu/api-biblioteca/service/loan"
)

type senderMock struct {
	sendFn func(ctx context.Context, message string, recipients []string) error
	calls  int
}

func (m *senderMock) Send(ctx context.Context, message string, recipients []string) error {
	m.calls++
	if m.sendFn == nil {
		return nil
	}
	return m.sendFn(ctx, message, recipients)
}

func lateLoanService(loans []model.Loan, err error) loansvc.Service {
	return loansvc.New(&repoMock{
		listLateBeforeFn: func(ctx context.Context, cutoff time.Time) ([]model.Loan, error) {
			return loans, err
		},
	})
}

func TestSweep_SendsReminderEmails(t *testing.T) {
	loans := []model.Loan{
		{ID: 1, CustomerEmail: "ana@mail.com"},
		{ID: 2, CustomerEmail: "rogerio@mail.com"},
	}
	var gotMessage string
	var gotRecipients []string
	sender := &senderMock{
		sendFn: func(ctx context.Context, message string, recipients []string) error {
			gotMessage = message
			gotRecipients = recipients
			return nil
		},
	}

	n := loansvc.NewNotifier(lateLoanService(loans, nil), sender, "return your book")

	sent, err := n.Sweep(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, sent)
	require.Equal(t, "return your book", gotMessage)
	require.Equal(t, []string{"ana@mail.com", "rogerio@mail.com"}, gotRecipients)
}

func TestSweep_NothingLate(t *testing.T) {
	sender := &senderMock{}
	n := loansvc.NewNotifier(lateLoanService(nil, nil), sender, "msg")

	sent, err := n.Sweep(context.Background())
	require.NoError(t, err)
	require.Zero(t, sent)
	require.Zero(t, sender.calls, "no send for an empty late set")
}

func TestSweep_SenderFailure(t *testing.T) {
	loans := []model.Loan{{ID: 1, CustomerEmail: "ana@mail.com"}}
	sender := &senderMock{
		sendFn: func(ctx context.Context, message string, recipients []string) error {
			return errors.New("gateway down")
		},
	}
	n := loansvc.NewNotifier(lateLoanService(loans, nil), sender, "msg")

	_, err := n.Sweep(context.Background())
	require.Error(t, err)
}

func TestSweep_QueryFailure(t *testing.T) {
	sender := &senderMock{}
	n := loansvc.NewNotifier(lateLoanService(nil, errors.New("db down")), sender, "msg")

	_, err := n.Sweep(context.Background())
	require.Error(t, err)
	require.Zero(t, sender.calls)
}
