package repository

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/astorskii/library-api/library/internal/model"
)

//go:generate go run github.com/golang/mock/mockgen -source=repository.go -destination=mocks/mock.go

type BookRepository interface {
	CreateBook(ctx context.Context, book model.Book) (model.Book, error)
	GetBook(ctx context.Context, id int) (model.Book, error)
	GetBookByISBN(ctx context.Context, isbn string) (model.Book, error)
	BookExistsByISBN(ctx context.Context, isbn string) (bool, error)
	UpdateBook(ctx context.Context, id int, title, author string) (model.Book, error)
	DeleteBook(ctx context.Context, id int) error
	ListBooks(ctx context.Context, filter model.BookFilter, page, size int) (model.ListBooks, error)
}

type LoanRepository interface {
	CreateLoan(ctx context.Context, bookID int, customer, customerEmail string) (model.Loan, error)
	GetLoan(ctx context.Context, id int) (model.Loan, error)
	SetReturned(ctx context.Context, id int, returned bool) (model.Loan, error)
	HasActiveLoan(ctx context.Context, bookID int) (bool, error)
	FindLoans(ctx context.Context, filter model.LoanFilter, page, size int) (model.ListLoans, error)
	ListLoansByBook(ctx context.Context, bookID, page, size int) (model.ListLoans, error)
	ListOverdue(ctx context.Context, thresholdDays int) ([]model.Loan, error)
}

type repository struct {
	db  *sqlx.DB
	log *zap.Logger
}

func NewRepository(db *sqlx.DB, log *zap.Logger) (*repository, error) {
	return &repository{
		db:  db,
		log: log.Named("repo"),
	}, nil
}

const (
	booksTableName = `books`
	loansTableName = `loans`
)

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return pgErr.ConstraintName == constraint
	}
	return false
}
