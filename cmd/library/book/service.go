package book

//go:generate mockgen -source=service.go -destination=mocks/mock_service.go -package=mocks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

type ServiceAPI interface {
	AddBook(ctx context.Context, req CreateBookRequest) (Book, error)
	BorrowBook(ctx context.Context, isbn string) (Book, Outcome, error)
	ReturnBook(ctx context.Context, isbn string) (Book, Outcome, error)
	ListBooks(ctx context.Context) ([]Book, error)
	SaveBooks(ctx context.Context, path string) error
	LoadBooks(ctx context.Context, path string) error
}

// Repository holds the collection for the lifetime of the process. Lookups by
// ISBN always resolve to the first matching book in insertion order.
type Repository interface {
	CreateBook(ctx context.Context, bookEntry Book) (Book, error)
	GetBookByISBN(ctx context.Context, isbn string) (Book, error)
	SetBookAvailability(ctx context.Context, isbn string, available bool) (Book, error)
	ListBooks(ctx context.Context) ([]Book, error)
	ReplaceBooks(ctx context.Context, books []Book) error
}

type FileStore interface {
	Save(path string, books []Book) error
	Load(path string) ([]Book, error)
}

type CreateBookRequest struct {
	Title  string
	Author string
	ISBN   string
}

type Service struct {
	repo  Repository
	files FileStore
}

func NewService(repo Repository, files FileStore) *Service {
	return &Service{repo: repo, files: files}
}

func (s *Service) AddBook(ctx context.Context, req CreateBookRequest) (Book, error) {
	newBook := NewBook(req.Title, req.Author, req.ISBN)
	created, err := s.repo.CreateBook(ctx, newBook)
	if err != nil {
		return Book{}, fmt.Errorf("adding book: %w", err)
	}
	slog.DebugContext(ctx, "book added", "isbn", created.ISBN)
	return created, nil
}

func (s *Service) BorrowBook(ctx context.Context, isbn string) (Book, Outcome, error) {
	return s.changeAvailability(ctx, isbn, (*Book).Borrow)
}

func (s *Service) ReturnBook(ctx context.Context, isbn string) (Book, Outcome, error) {
	return s.changeAvailability(ctx, isbn, (*Book).Return)
}

/* Applies a borrow or return rule to the first book with the given ISBN and stores the new state when it changed. */
func (s *Service) changeAvailability(ctx context.Context, isbn string, apply func(*Book) Outcome) (Book, Outcome, error) {
	b, err := s.repo.GetBookByISBN(ctx, isbn)
	if err != nil {
		if errors.Is(err, ErrResponseBookNotFound) {
			return Book{}, OutcomeNotFound, nil
		}
		return Book{}, OutcomeNotFound, fmt.Errorf("changing availability: %w", err)
	}

	before := b.Available
	outcome := apply(&b)
	if b.Available != before {
		if b, err = s.repo.SetBookAvailability(ctx, isbn, b.Available); err != nil {
			return Book{}, OutcomeNotFound, fmt.Errorf("changing availability: %w", err)
		}
	}

	slog.DebugContext(ctx, "availability checked", "isbn", isbn, "outcome", outcome)
	return b, outcome, nil
}

func (s *Service) ListBooks(ctx context.Context) ([]Book, error) {
	return s.repo.ListBooks(ctx)
}

func (s *Service) SaveBooks(ctx context.Context, path string) error {
	books, err := s.repo.ListBooks(ctx)
	if err != nil {
		return fmt.Errorf("saving books: %w", err)
	}
	if err := s.files.Save(path, books); err != nil {
		return fmt.Errorf("saving books: %w", err)
	}
	slog.InfoContext(ctx, "books saved", "file", path, "count", len(books))
	return nil
}

// LoadBooks replaces the whole collection with the file content. On failure
// the collection is left as it was.
func (s *Service) LoadBooks(ctx context.Context, path string) error {
	books, err := s.files.Load(path)
	if err != nil {
		return fmt.Errorf("loading books: %w", err)
	}
	if err := s.repo.ReplaceBooks(ctx, books); err != nil {
		return fmt.Errorf("loading books: %w", err)
	}
	slog.InfoContext(ctx, "books loaded", "file", path, "count", len(books))
	return nil
}
