package errs

import (
	"errors"
)

// Business-rule messages are part of the API contract: clients and the
// test suite match them verbatim.
var (
	ErrNotFound          = errors.New("not found")
	ErrDuplicateISBN     = errors.New("Isbn já cadastrado.")
	ErrBookAlreadyLoaned = errors.New("Book already Loaned")
	ErrBookNotFound      = errors.New("Book not found for passed isbn")
)

type ApiErrors struct {
	Errors []string `json:"errors"`
}

func NewApiErrors(err error) ApiErrors {
	return ApiErrors{Errors: []string{err.Error()}}
}
