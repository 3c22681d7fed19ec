package service

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/astorskii/library-api/library/internal/errs"
	"github.com/astorskii/library-api/library/internal/model"
	"github.com/astorskii/library-api/pkg/kafka"
)

// CreateLoan resolves the book by isbn and opens a loan for it unless
// one is already open. The application-level check produces the business
// error in the common case; under a race the partial unique index in the
// store rejects the second insert with the same error.
func (s *Service) CreateLoan(ctx context.Context, req model.CreateLoanRequest) (model.Loan, error) {
	book, err := s.books.GetBookByISBN(ctx, req.ISBN)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return model.Loan{}, errs.ErrBookNotFound
		}
		return model.Loan{}, err
	}

	loaned, err := s.loans.HasActiveLoan(ctx, book.ID)
	if err != nil {
		return model.Loan{}, err
	}
	if loaned {
		return model.Loan{}, errs.ErrBookAlreadyLoaned
	}

	loan, err := s.loans.CreateLoan(ctx, book.ID, req.Customer, req.CustomerEmail)
	if err != nil {
		return model.Loan{}, err
	}
	loan.Book = book

	s.publish(model.LoanEvent{
		Type:     model.LoanCreated,
		LoanID:   loan.ID,
		BookID:   loan.BookID,
		Customer: loan.Customer,
		At:       time.Now().UTC(),
	})
	return loan, nil
}

// ReturnLoan sets the flag to whatever the caller passed. There is no
// prior-state validation: double returns and un-returns go through.
func (s *Service) ReturnLoan(ctx context.Context, id int, returned bool) (model.Loan, error) {
	loan, err := s.loans.SetReturned(ctx, id, returned)
	if err != nil {
		return model.Loan{}, err
	}

	if returned {
		s.publish(model.LoanEvent{
			Type:     model.LoanReturned,
			LoanID:   loan.ID,
			BookID:   loan.BookID,
			Customer: loan.Customer,
			At:       time.Now().UTC(),
		})
	}
	return loan, nil
}

func (s *Service) FindLoans(ctx context.Context, filter model.LoanFilter, page, size int) (model.ListLoans, error) {
	return s.loans.FindLoans(ctx, filter, page, size)
}

// LoansByBook lists every loan of one book, open and closed alike.
func (s *Service) LoansByBook(ctx context.Context, bookID, page, size int) (model.ListLoans, error) {
	if _, err := s.books.GetBook(ctx, bookID); err != nil {
		return model.ListLoans{}, err
	}
	return s.loans.ListLoansByBook(ctx, bookID, page, size)
}

func (s *Service) ListOverdue(ctx context.Context, thresholdDays int) ([]model.Loan, error) {
	return s.loans.ListOverdue(ctx, thresholdDays)
}

func (s *Service) publish(ev model.LoanEvent) {
	if s.queue == nil {
		return
	}
	if err := s.queue.Enqueue(kafka.LoanEventsTopic, ev); err != nil {
		s.log.Error("loan event enqueue", zap.Error(err), zap.Any("event", ev))
	}
}
