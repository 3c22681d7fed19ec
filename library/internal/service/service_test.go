package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/astorskii/library-api/library/internal/errs"
	"github.com/astorskii/library-api/library/internal/model"
	repo_mocks "github.com/astorskii/library-api/library/internal/repository/mocks"
	"github.com/astorskii/library-api/library/internal/service"
)

func newService(t *testing.T) (*service.Service, *repo_mocks.MockBookRepository, *repo_mocks.MockLoanRepository) {
	t.Helper()
	c := gomock.NewController(t)
	books := repo_mocks.NewMockBookRepository(c)
	loans := repo_mocks.NewMockLoanRepository(c)
	log := zap.NewExample().Named("test")
	return service.NewService(books, loans, nil, log), books, loans
}

func TestService_CreateBook(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	req := model.CreateBookRequest{Title: "As aventuras", Author: "Fulano", ISBN: "123"}

	t.Run("ok", func(t *testing.T) {
		svc, books, _ := newService(t)
		books.EXPECT().BookExistsByISBN(ctx, "123").Return(false, nil)
		books.EXPECT().
			CreateBook(ctx, model.Book{Title: "As aventuras", Author: "Fulano", ISBN: "123"}).
			Return(model.Book{ID: 1, Title: "As aventuras", Author: "Fulano", ISBN: "123"}, nil)

		book, err := svc.CreateBook(ctx, req)
		require.NoError(t, err)
		require.Equal(t, 1, book.ID)
	})

	t.Run("duplicate isbn, no write", func(t *testing.T) {
		svc, books, _ := newService(t)
		books.EXPECT().BookExistsByISBN(ctx, "123").Return(true, nil)

		_, err := svc.CreateBook(ctx, req)
		require.ErrorIs(t, err, errs.ErrDuplicateISBN)
		require.EqualError(t, err, "Isbn já cadastrado.")
	})

	t.Run("duplicate isbn lost race", func(t *testing.T) {
		svc, books, _ := newService(t)
		books.EXPECT().BookExistsByISBN(ctx, "123").Return(false, nil)
		books.EXPECT().CreateBook(ctx, gomock.Any()).Return(model.Book{}, errs.ErrDuplicateISBN)

		_, err := svc.CreateBook(ctx, req)
		require.ErrorIs(t, err, errs.ErrDuplicateISBN)
	})
}

func TestService_CreateLoan(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	req := model.CreateLoanRequest{ISBN: "123", Customer: "Fulano", CustomerEmail: "fulano@mail.com"}
	book := model.Book{ID: 7, Title: "As aventuras", Author: "Fulano", ISBN: "123"}

	t.Run("ok", func(t *testing.T) {
		svc, books, loans := newService(t)
		books.EXPECT().GetBookByISBN(ctx, "123").Return(book, nil)
		loans.EXPECT().HasActiveLoan(ctx, 7).Return(false, nil)
		loans.EXPECT().
			CreateLoan(ctx, 7, "Fulano", "fulano@mail.com").
			Return(model.Loan{ID: 3, BookID: 7, Customer: "Fulano", CustomerEmail: "fulano@mail.com", LoanDate: time.Now()}, nil)

		loan, err := svc.CreateLoan(ctx, req)
		require.NoError(t, err)
		require.Equal(t, 3, loan.ID)
		require.Equal(t, book, loan.Book)
	})

	t.Run("book not found by isbn", func(t *testing.T) {
		svc, books, _ := newService(t)
		books.EXPECT().GetBookByISBN(ctx, "123").Return(model.Book{}, errs.ErrNotFound)

		_, err := svc.CreateLoan(ctx, req)
		require.ErrorIs(t, err, errs.ErrBookNotFound)
	})

	t.Run("book already loaned, no write", func(t *testing.T) {
		svc, books, loans := newService(t)
		books.EXPECT().GetBookByISBN(ctx, "123").Return(book, nil)
		loans.EXPECT().HasActiveLoan(ctx, 7).Return(true, nil)

		_, err := svc.CreateLoan(ctx, req)
		require.ErrorIs(t, err, errs.ErrBookAlreadyLoaned)
		require.EqualError(t, err, "Book already Loaned")
	})

	t.Run("already loaned lost race at insert", func(t *testing.T) {
		svc, books, loans := newService(t)
		books.EXPECT().GetBookByISBN(ctx, "123").Return(book, nil)
		loans.EXPECT().HasActiveLoan(ctx, 7).Return(false, nil)
		loans.EXPECT().CreateLoan(ctx, 7, "Fulano", "fulano@mail.com").Return(model.Loan{}, errs.ErrBookAlreadyLoaned)

		_, err := svc.CreateLoan(ctx, req)
		require.ErrorIs(t, err, errs.ErrBookAlreadyLoaned)
	})

	t.Run("repo failure propagates", func(t *testing.T) {
		svc, books, loans := newService(t)
		books.EXPECT().GetBookByISBN(ctx, "123").Return(book, nil)
		loans.EXPECT().HasActiveLoan(ctx, 7).Return(false, errors.New("db down"))

		_, err := svc.CreateLoan(ctx, req)
		require.EqualError(t, err, "db down")
	})
}

// A loan can be opened again for a book once the previous loan is
// returned.
func TestService_LoanLifecycle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	req := model.CreateLoanRequest{ISBN: "123", Customer: "Fulano", CustomerEmail: "fulano@mail.com"}
	book := model.Book{ID: 7, ISBN: "123"}
	returned := true

	svc, books, loans := newService(t)

	gomock.InOrder(
		books.EXPECT().GetBookByISBN(ctx, "123").Return(book, nil),
		loans.EXPECT().HasActiveLoan(ctx, 7).Return(false, nil),
		loans.EXPECT().CreateLoan(ctx, 7, "Fulano", "fulano@mail.com").
			Return(model.Loan{ID: 1, BookID: 7, Customer: "Fulano"}, nil),

		books.EXPECT().GetBookByISBN(ctx, "123").Return(book, nil),
		loans.EXPECT().HasActiveLoan(ctx, 7).Return(true, nil),

		loans.EXPECT().SetReturned(ctx, 1, returned).
			Return(model.Loan{ID: 1, BookID: 7, Customer: "Fulano", Returned: &returned}, nil),

		books.EXPECT().GetBookByISBN(ctx, "123").Return(book, nil),
		loans.EXPECT().HasActiveLoan(ctx, 7).Return(false, nil),
		loans.EXPECT().CreateLoan(ctx, 7, "Fulano", "fulano@mail.com").
			Return(model.Loan{ID: 2, BookID: 7, Customer: "Fulano"}, nil),
	)

	first, err := svc.CreateLoan(ctx, req)
	require.NoError(t, err)
	require.Equal(t, 1, first.ID)

	_, err = svc.CreateLoan(ctx, req)
	require.ErrorIs(t, err, errs.ErrBookAlreadyLoaned)

	loan, err := svc.ReturnLoan(ctx, first.ID, true)
	require.NoError(t, err)
	require.False(t, loan.Active())

	second, err := svc.CreateLoan(ctx, req)
	require.NoError(t, err)
	require.Equal(t, 2, second.ID)
}

func TestService_ReturnLoan_NotFound(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _, loans := newService(t)
	loans.EXPECT().SetReturned(ctx, 42, true).Return(model.Loan{}, errs.ErrNotFound)

	_, err := svc.ReturnLoan(ctx, 42, true)
	require.ErrorIs(t, err, errs.ErrNotFound)
}

// Un-returning is accepted: the flag is overwritten as given.
func TestService_ReturnLoan_Unreturn(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _, loans := newService(t)
	unreturned := false
	loans.EXPECT().SetReturned(ctx, 1, false).
		Return(model.Loan{ID: 1, Returned: &unreturned}, nil)

	loan, err := svc.ReturnLoan(ctx, 1, false)
	require.NoError(t, err)
	require.True(t, loan.Active())
}

func TestService_LoansByBook_BookNotFound(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, books, _ := newService(t)
	books.EXPECT().GetBook(ctx, 99).Return(model.Book{}, errs.ErrNotFound)

	_, err := svc.LoansByBook(ctx, 99, 0, 0)
	require.ErrorIs(t, err, errs.ErrNotFound)
}
