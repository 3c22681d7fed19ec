package handler

import (
	"context"

	"github.com/astorskii/library-api/library/internal/model"
	"github.com/astorskii/library-api/library/internal/service"
)

//go:generate go run github.com/golang/mock/mockgen -source=service.go -destination=mocks/mock.go

type BookService interface {
	CreateBook(ctx context.Context, req model.CreateBookRequest) (model.Book, error)
	GetBook(ctx context.Context, id int) (model.Book, error)
	UpdateBook(ctx context.Context, id int, req model.UpdateBookRequest) (model.Book, error)
	DeleteBook(ctx context.Context, id int) error
	FindBooks(ctx context.Context, filter model.BookFilter, page, size int) (model.ListBooks, error)
}

type LoanService interface {
	CreateLoan(ctx context.Context, req model.CreateLoanRequest) (model.Loan, error)
	ReturnLoan(ctx context.Context, id int, returned bool) (model.Loan, error)
	FindLoans(ctx context.Context, filter model.LoanFilter, page, size int) (model.ListLoans, error)
	LoansByBook(ctx context.Context, bookID, page, size int) (model.ListLoans, error)
}

var _ BookService = (*service.Service)(nil)
var _ LoanService = (*service.Service)(nil)
