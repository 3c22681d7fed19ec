package service

import (
	"context"

	"github.com/astorskii/library-api/library/internal/errs"
	"github.com/astorskii/library-api/library/internal/model"
)

// CreateBook registers a book in the catalog. The isbn must not be
// taken: the exists check gives the stable business error up front, and
// the unique constraint in the store closes the race between two
// concurrent registrations (the loser surfaces the same error).
func (s *Service) CreateBook(ctx context.Context, req model.CreateBookRequest) (model.Book, error) {
	exists, err := s.books.BookExistsByISBN(ctx, req.ISBN)
	if err != nil {
		return model.Book{}, err
	}
	if exists {
		return model.Book{}, errs.ErrDuplicateISBN
	}
	return s.books.CreateBook(ctx, model.Book{
		Title:  req.Title,
		Author: req.Author,
		ISBN:   req.ISBN,
	})
}

func (s *Service) GetBook(ctx context.Context, id int) (model.Book, error) {
	return s.books.GetBook(ctx, id)
}

func (s *Service) UpdateBook(ctx context.Context, id int, req model.UpdateBookRequest) (model.Book, error) {
	return s.books.UpdateBook(ctx, id, req.Title, req.Author)
}

// DeleteBook does not check for loans referencing the book: a deletion
// with loan history fails on the foreign key, one without history goes
// through.
func (s *Service) DeleteBook(ctx context.Context, id int) error {
	return s.books.DeleteBook(ctx, id)
}

func (s *Service) FindBooks(ctx context.Context, filter model.BookFilter, page, size int) (model.ListBooks, error) {
	return s.books.ListBooks(ctx, filter, page, size)
}
