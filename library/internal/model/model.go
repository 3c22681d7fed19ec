package model

import (
	"time"
)

type ListBooks struct {
	Paging `json:",inline"`
	Items  []Book `json:"items"`
}

type ListLoans struct {
	Paging `json:",inline"`
	Items  []Loan `json:"items"`
}

type Paging struct {
	Page          int `json:"page"`
	PageSize      int `json:"pageSize"`
	TotalElements int `json:"totalElements"`
}

type Book struct {
	ID     int    `json:"id" db:"id"`
	Title  string `json:"title" db:"title"`
	Author string `json:"author" db:"author"`
	ISBN   string `json:"isbn" db:"isbn"`
}

type CreateBookRequest struct {
	Title  string `json:"title" validate:"required"`
	Author string `json:"author" validate:"required"`
	ISBN   string `json:"isbn" validate:"required"`
}

// UpdateBookRequest deliberately has no isbn: the update path never
// revises it.
type UpdateBookRequest struct {
	Title  string `json:"title" validate:"required"`
	Author string `json:"author" validate:"required"`
}

// BookFilter matches by example: empty fields are wildcards.
type BookFilter struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	ISBN   string `json:"isbn"`
}

type Loan struct {
	ID            int       `json:"id" db:"id"`
	BookID        int       `json:"-" db:"book_id"`
	Customer      string    `json:"customer" db:"customer"`
	CustomerEmail string    `json:"customerEmail" db:"customer_email"`
	LoanDate      time.Time `json:"loanDate" db:"loan_date"`
	// nil and false both mean the loan is still open; only true closes it.
	Returned *bool `json:"returned" db:"returned"`
	Book     Book  `json:"book" db:"book"`
}

func (l Loan) Active() bool {
	return l.Returned == nil || !*l.Returned
}

type CreateLoanRequest struct {
	ISBN          string `json:"isbn" validate:"required"`
	Customer      string `json:"customer" validate:"required"`
	CustomerEmail string `json:"email" validate:"required,email"`
}

type ReturnLoanRequest struct {
	Returned *bool `json:"returned" validate:"required"`
}

// LoanFilter is an OR filter: a loan matches if its book's isbn equals
// ISBN or its customer equals Customer.
type LoanFilter struct {
	ISBN     string `json:"isbn"`
	Customer string `json:"customer"`
}

type LoanEventType string

const (
	LoanCreated  LoanEventType = "LOAN_CREATED"
	LoanReturned LoanEventType = "LOAN_RETURNED"
)

type LoanEvent struct {
	Type     LoanEventType `json:"type"`
	LoanID   int           `json:"loanId"`
	BookID   int           `json:"bookId"`
	Customer string        `json:"customer"`
	At       time.Time     `json:"at"`
}
