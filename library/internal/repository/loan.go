package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/astorskii/library-api/library/internal/errs"
	"github.com/astorskii/library-api/library/internal/model"
)

var loanColumns = []string{
	"l.id", "l.book_id", "l.customer", "l.customer_email", "l.loan_date", "l.returned",
	`b.id as "book.id"`, `b.title as "book.title"`, `b.author as "book.author"`, `b.isbn as "book.isbn"`,
}

// CreateLoan always stamps loan_date server-side; a client-supplied date
// is never accepted. The partial unique index loans_active_book_uniq
// backs the one-active-loan-per-book invariant, so two racing inserts
// cannot both land.
func (r *repository) CreateLoan(ctx context.Context, bookID int, customer, customerEmail string) (model.Loan, error) {
	query, args, err := qb.Insert(loansTableName).
		Columns("book_id", "customer", "customer_email", "loan_date").
		Values(bookID, customer, customerEmail, time.Now().UTC().Format(time.DateOnly)).
		Suffix("returning id, book_id, customer, customer_email, loan_date, returned").
		ToSql()
	if err != nil {
		return model.Loan{}, err
	}

	var loan model.Loan
	if err := r.db.GetContext(ctx, &loan, query, args...); err != nil {
		if isUniqueViolation(err, "loans_active_book_uniq") {
			return model.Loan{}, errs.ErrBookAlreadyLoaned
		}
		r.log.Error("CreateLoan", zap.String("q", query), zap.Any("args", args))
		return model.Loan{}, err
	}
	return loan, nil
}

func (r *repository) GetLoan(ctx context.Context, id int) (model.Loan, error) {
	query, args, err := qb.Select(loanColumns...).
		From(loansTableName + " l").
		Join(fmt.Sprintf("%s b on b.id = l.book_id", booksTableName)).
		Where(sq.Eq{"l.id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return model.Loan{}, err
	}

	var loan model.Loan
	if err := r.db.GetContext(ctx, &loan, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Loan{}, errs.ErrNotFound
		}
		return model.Loan{}, err
	}
	return loan, nil
}

// SetReturned overwrites the flag as-is: returning an already returned
// loan, or flipping one back to active, is accepted.
func (r *repository) SetReturned(ctx context.Context, id int, returned bool) (model.Loan, error) {
	q := fmt.Sprintf(`update %s set returned = $2 where id = $1
	returning id, book_id, customer, customer_email, loan_date, returned`, loansTableName)

	var loan model.Loan
	if err := r.db.GetContext(ctx, &loan, q, id, returned); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Loan{}, errs.ErrNotFound
		}
		return model.Loan{}, err
	}
	return loan, nil
}

func (r *repository) HasActiveLoan(ctx context.Context, bookID int) (bool, error) {
	q := fmt.Sprintf(`select exists(select 1 from %s where book_id = $1 and returned is not true)`, loansTableName)
	var exists bool
	if err := r.db.QueryRowContext(ctx, q, bookID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// FindLoans is an OR match, not an intersection: a loan qualifies when
// its book's isbn equals filter.ISBN or its customer equals
// filter.Customer. With an empty filter every loan matches.
func (r *repository) FindLoans(ctx context.Context, filter model.LoanFilter, page, size int) (model.ListLoans, error) {
	q := qb.Select(loanColumns...).
		From(loansTableName + " l").
		Join(fmt.Sprintf("%s b on b.id = l.book_id", booksTableName)).
		OrderBy("l.id")

	var or sq.Or
	if filter.ISBN != "" {
		or = append(or, sq.Eq{"b.isbn": filter.ISBN})
	}
	if filter.Customer != "" {
		or = append(or, sq.Eq{"l.customer": filter.Customer})
	}
	if len(or) > 0 {
		q = q.Where(or)
	}
	if page != 0 && size != 0 {
		q = q.Limit(uint64(size)).Offset(uint64((page - 1) * size))
	}

	query, args, err := q.ToSql()
	if err != nil {
		return model.ListLoans{}, err
	}
	r.log.Debug("FindLoans", zap.String("query", query), zap.Any("args", args))

	var loans []model.Loan
	if err := r.db.SelectContext(ctx, &loans, query, args...); err != nil {
		return model.ListLoans{}, err
	}

	return model.ListLoans{
		Paging: model.Paging{
			Page:          page,
			PageSize:      size,
			TotalElements: len(loans),
		},
		Items: loans,
	}, nil
}

func (r *repository) ListLoansByBook(ctx context.Context, bookID, page, size int) (model.ListLoans, error) {
	q := qb.Select(loanColumns...).
		From(loansTableName + " l").
		Join(fmt.Sprintf("%s b on b.id = l.book_id", booksTableName)).
		Where(sq.Eq{"l.book_id": bookID}).
		OrderBy("l.id")

	if page != 0 && size != 0 {
		q = q.Limit(uint64(size)).Offset(uint64((page - 1) * size))
	}

	query, args, err := q.ToSql()
	if err != nil {
		return model.ListLoans{}, err
	}

	var loans []model.Loan
	if err := r.db.SelectContext(ctx, &loans, query, args...); err != nil {
		return model.ListLoans{}, err
	}

	return model.ListLoans{
		Paging: model.Paging{
			Page:          page,
			PageSize:      size,
			TotalElements: len(loans),
		},
		Items: loans,
	}, nil
}

// ListOverdue returns open loans taken out at least thresholdDays ago.
// No paging: the result feeds the notification batch, it is not exposed
// over the request boundary.
func (r *repository) ListOverdue(ctx context.Context, thresholdDays int) ([]model.Loan, error) {
	q := qb.Select(loanColumns...).
		From(loansTableName + " l").
		Join(fmt.Sprintf("%s b on b.id = l.book_id", booksTableName)).
		Where("l.returned is not true").
		Where(sq.Expr("l.loan_date <= current_date - ?::int", thresholdDays)).
		OrderBy("l.id")

	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}

	var loans []model.Loan
	if err := r.db.SelectContext(ctx, &loans, query, args...); err != nil {
		return nil, err
	}
	return loans, nil
}
