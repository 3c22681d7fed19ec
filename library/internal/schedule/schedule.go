package schedule

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/astorskii/library-api/library/internal/model"
	"github.com/astorskii/library-api/pkg/circuit_breaker"
	"github.com/astorskii/library-api/pkg/email"
)

const mailSubject = "Livro com emprestimo atrasado"

type Config struct {
	// five-field cron spec; the default fires once a day at midnight
	Cron          string `envconfig:"OVERDUE_CRON" default:"0 0 * * *"`
	ThresholdDays int    `envconfig:"OVERDUE_THRESHOLD_DAYS" default:"4"`
	Message       string `envconfig:"OVERDUE_MAIL_MESSAGE" default:"Você tem um livro com empréstimo atrasado. Por favor, devolva o quanto antes."`
}

type LoanLedger interface {
	ListOverdue(ctx context.Context, thresholdDays int) ([]model.Loan, error)
}

// Scanner periodically sweeps the ledger for overdue loans and mails the
// affected customers in one batch. A failed cycle is logged and dropped:
// the next run recomputes the overdue set, so nothing is lost beyond a
// possible duplicate notice later.
type Scanner struct {
	cfg    Config
	loans  LoanLedger
	sender email.Sender
	cb     circuit_breaker.CircuitBreaker
	cron   *cron.Cron
	log    *zap.Logger
}

func NewScanner(cfg Config, loans LoanLedger, sender email.Sender, log *zap.Logger) *Scanner {
	return &Scanner{
		cfg:    cfg,
		loans:  loans,
		sender: sender,
		cb:     circuit_breaker.New(10, 30*time.Minute, 0.5, 2),
		cron:   cron.New(),
		log:    log.Named("overdue"),
	}
}

func (s *Scanner) Start() error {
	if _, err := s.cron.AddFunc(s.cfg.Cron, func() {
		s.Run(context.Background())
	}); err != nil {
		return err
	}
	s.cron.Start()
	s.log.Info("overdue scan scheduled", zap.String("cron", s.cfg.Cron), zap.Int("thresholdDays", s.cfg.ThresholdDays))
	return nil
}

func (s *Scanner) Stop() {
	<-s.cron.Stop().Done()
}

// Run executes one scan cycle.
func (s *Scanner) Run(ctx context.Context) {
	loans, err := s.loans.ListOverdue(ctx, s.cfg.ThresholdDays)
	if err != nil {
		s.log.Error("overdue scan", zap.Error(err))
		return
	}
	if len(loans) == 0 {
		s.log.Debug("no overdue loans")
		return
	}

	// every overdue loan contributes its address as-is, even an empty one
	emails := make([]string, 0, len(loans))
	for _, loan := range loans {
		emails = append(emails, loan.CustomerEmail)
	}

	if err := s.cb.Call(func() error {
		return s.sender.SendMails(mailSubject, s.cfg.Message, emails)
	}); err != nil {
		s.log.Error("late loan mail dispatch", zap.Error(err), zap.Int("recipients", len(emails)))
		return
	}
	s.log.Info("late loan notices sent", zap.Int("recipients", len(emails)))
}
