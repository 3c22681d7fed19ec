package service

import (
	"go.uber.org/zap"

	"github.com/astorskii/library-api/library/internal/repository"
)

// Enqueuer publishes loan lifecycle events; dispatch is best-effort.
type Enqueuer interface {
	Enqueue(topic string, v any) error
}

type Service struct {
	log   *zap.Logger
	books repository.BookRepository
	loans repository.LoanRepository
	queue Enqueuer
}

func NewService(books repository.BookRepository, loans repository.LoanRepository, queue Enqueuer, log *zap.Logger) *Service {
	return &Service{
		log:   log,
		books: books,
		loans: loans,
		queue: queue,
	}
}
