package schedule_test

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/astorskii/library-api/library/internal/model"
	"github.com/astorskii/library-api/library/internal/schedule"
)

type ledgerStub struct {
	loans []model.Loan
	err   error
	calls []int
}

func (l *ledgerStub) ListOverdue(_ context.Context, thresholdDays int) ([]model.Loan, error) {
	l.calls = append(l.calls, thresholdDays)
	return l.loans, l.err
}

type senderStub struct {
	err     error
	sent    int
	subject string
	message string
	lastTo  []string
}

func (s *senderStub) SendMails(subject, message string, to []string) error {
	s.sent++
	s.subject = subject
	s.message = message
	s.lastTo = to
	return s.err
}

func newScanner(t *testing.T, ledger *ledgerStub, sender *senderStub) *schedule.Scanner {
	t.Helper()
	cfg := schedule.Config{
		Cron:          "0 0 * * *",
		ThresholdDays: 4,
		Message:       "devolva o livro",
	}
	return schedule.NewScanner(cfg, ledger, sender, zap.NewExample())
}

func TestScanner_Run(t *testing.T) {
	t.Parallel()
	overdue := model.Loan{
		ID:            1,
		BookID:        7,
		Customer:      "Fulano",
		CustomerEmail: "fulano@mail.com",
		LoanDate:      time.Now().AddDate(0, 0, -5),
	}

	t.Run("one overdue loan, one recipient", func(t *testing.T) {
		ledger := &ledgerStub{loans: []model.Loan{overdue}}
		sender := &senderStub{}
		s := newScanner(t, ledger, sender)

		s.Run(context.Background())

		require.Equal(t, []int{4}, ledger.calls)
		require.Equal(t, 1, sender.sent)
		require.Equal(t, []string{"fulano@mail.com"}, sender.lastTo)
		require.Equal(t, "Livro com emprestimo atrasado", sender.subject)
		require.Equal(t, "devolva o livro", sender.message)
	})

	t.Run("no overdue loans, no dispatch", func(t *testing.T) {
		ledger := &ledgerStub{}
		sender := &senderStub{}
		s := newScanner(t, ledger, sender)

		s.Run(context.Background())

		require.Zero(t, sender.sent)
	})

	t.Run("ledger failure, no dispatch", func(t *testing.T) {
		ledger := &ledgerStub{err: errors.New("db down")}
		sender := &senderStub{}
		s := newScanner(t, ledger, sender)

		s.Run(context.Background())

		require.Zero(t, sender.sent)
	})

	t.Run("dispatch failure is absorbed, next cycle retries", func(t *testing.T) {
		ledger := &ledgerStub{loans: []model.Loan{overdue}}
		sender := &senderStub{err: errors.New("smtp down")}
		s := newScanner(t, ledger, sender)

		s.Run(context.Background())
		s.Run(context.Background())

		// the overdue set is recomputed each run, nothing suppresses the
		// second attempt
		require.Equal(t, []int{4, 4}, ledger.calls)
		require.Equal(t, 2, sender.sent)
	})

	t.Run("empty addresses pass through", func(t *testing.T) {
		noMail := overdue
		noMail.CustomerEmail = ""
		ledger := &ledgerStub{loans: []model.Loan{overdue, noMail}}
		sender := &senderStub{}
		s := newScanner(t, ledger, sender)

		s.Run(context.Background())

		require.Equal(t, []string{"fulano@mail.com", ""}, sender.lastTo)
	})
}
