package repository

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/astorskii/library-api/library/internal/errs"
	"github.com/astorskii/library-api/library/internal/model"
)

func (r *repository) CreateBook(ctx context.Context, book model.Book) (model.Book, error) {
	query, args, err := qb.Insert(booksTableName).
		Columns("title", "author", "isbn").
		Values(book.Title, book.Author, book.ISBN).
		Suffix("returning id, title, author, isbn").
		ToSql()
	if err != nil {
		return model.Book{}, err
	}

	var created model.Book
	if err := r.db.GetContext(ctx, &created, query, args...); err != nil {
		if isUniqueViolation(err, "books_isbn_key") {
			return model.Book{}, errs.ErrDuplicateISBN
		}
		r.log.Error("CreateBook", zap.String("q", query), zap.Any("args", args))
		return model.Book{}, err
	}
	return created, nil
}

func (r *repository) GetBook(ctx context.Context, id int) (model.Book, error) {
	query, args, err := qb.Select("id", "title", "author", "isbn").
		From(booksTableName).
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return model.Book{}, err
	}

	var book model.Book
	if err := r.db.GetContext(ctx, &book, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Book{}, errs.ErrNotFound
		}
		return model.Book{}, err
	}
	return book, nil
}

func (r *repository) GetBookByISBN(ctx context.Context, isbn string) (model.Book, error) {
	query, args, err := qb.Select("id", "title", "author", "isbn").
		From(booksTableName).
		Where(sq.Eq{"isbn": isbn}).
		Limit(1).
		ToSql()
	if err != nil {
		return model.Book{}, err
	}

	var book model.Book
	if err := r.db.GetContext(ctx, &book, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Book{}, errs.ErrNotFound
		}
		return model.Book{}, err
	}
	return book, nil
}

func (r *repository) BookExistsByISBN(ctx context.Context, isbn string) (bool, error) {
	q := fmt.Sprintf(`select exists(select 1 from %s where isbn = $1)`, booksTableName)
	var exists bool
	if err := r.db.QueryRowContext(ctx, q, isbn).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *repository) UpdateBook(ctx context.Context, id int, title, author string) (model.Book, error) {
	query, args, err := qb.Update(booksTableName).
		Set("title", title).
		Set("author", author).
		Where(sq.Eq{"id": id}).
		Suffix("returning id, title, author, isbn").
		ToSql()
	if err != nil {
		return model.Book{}, err
	}

	var book model.Book
	if err := r.db.GetContext(ctx, &book, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Book{}, errs.ErrNotFound
		}
		return model.Book{}, err
	}
	return book, nil
}

func (r *repository) DeleteBook(ctx context.Context, id int) error {
	query, args, err := qb.Delete(booksTableName).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func (r *repository) ListBooks(ctx context.Context, filter model.BookFilter, page, size int) (model.ListBooks, error) {
	q := qb.Select("id", "title", "author", "isbn").
		From(booksTableName).
		OrderBy("id")

	if filter.Title != "" {
		q = q.Where(sq.ILike{"title": "%" + filter.Title + "%"})
	}
	if filter.Author != "" {
		q = q.Where(sq.ILike{"author": "%" + filter.Author + "%"})
	}
	if filter.ISBN != "" {
		q = q.Where(sq.Eq{"isbn": filter.ISBN})
	}
	if page != 0 && size != 0 {
		q = q.Limit(uint64(size)).Offset(uint64((page - 1) * size))
	}

	query, args, err := q.ToSql()
	if err != nil {
		return model.ListBooks{}, err
	}
	r.log.Debug("ListBooks", zap.String("query", query), zap.Any("args", args))

	var books []model.Book
	if err := r.db.SelectContext(ctx, &books, query, args...); err != nil {
		return model.ListBooks{}, err
	}

	return model.ListBooks{
		Paging: model.Paging{
			Page:          page,
			PageSize:      size,
			TotalElements: len(books),
		},
		Items: books,
	}, nil
}
