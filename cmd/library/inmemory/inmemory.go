package inmemory

import (
	"context"
	"fmt"

	"github.com/books-inventory/cmd/library/book"
	"github.com/hashicorp/go-memdb"
)

type InMemoryStore struct {
	db *memdb.MemDB
}

func NewInMemoryStore() (*InMemoryStore, error) {
	// Seq is encoded big-endian by UintFieldIndex, so walking the "id" index
	// yields books in insertion order.
	schema := &memdb.DBSchema{
		Tables: map[string]*memdb.TableSchema{
			"book": {
				Name: "book",
				Indexes: map[string]*memdb.IndexSchema{
					"id": {
						Name:    "id",
						Unique:  true,
						Indexer: &memdb.UintFieldIndex{Field: "Seq"},
					},
				},
			},
		},
	}

	if err := schema.Validate(); err != nil {
		return nil, fmt.Errorf("validating in-memory schema: %w", err)
	}

	db, err := memdb.NewMemDB(schema)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize in-memory database: %w", err)
	}
	return &InMemoryStore{db: db}, nil
}

type AdaptedBook struct {
	Seq       uint64
	Title     string
	Author    string
	ISBN      string
	Available bool
}

func adaptBook(seq uint64, b book.Book) AdaptedBook {
	return AdaptedBook{
		Seq:       seq,
		Title:     b.Title,
		Author:    b.Author,
		ISBN:      b.ISBN,
		Available: b.Available,
	}
}

func (a AdaptedBook) toBook() book.Book {
	return book.Book{
		Title:     a.Title,
		Author:    a.Author,
		ISBN:      a.ISBN,
		Available: a.Available,
	}
}

func (store *InMemoryStore) CreateBook(ctx context.Context, bookEntry book.Book) (book.Book, error) {
	txn := store.db.Txn(true)
	defer txn.Abort()

	seq, err := nextSeq(txn)
	if err != nil {
		return book.Book{}, fmt.Errorf("storing book on db: %w", err)
	}
	if err := txn.Insert("book", adaptBook(seq, bookEntry)); err != nil {
		return book.Book{}, fmt.Errorf("storing book on db: %w", err)
	}

	txn.Commit()
	return bookEntry, nil
}

func (store *InMemoryStore) GetBookByISBN(ctx context.Context, isbn string) (book.Book, error) {
	txn := store.db.Txn(false)
	defer txn.Abort()

	found, ok, err := firstByISBN(txn, isbn)
	if err != nil {
		return book.Book{}, fmt.Errorf("searching by ISBN: %w", err)
	}
	if !ok {
		return book.Book{}, fmt.Errorf("searching by ISBN: %w", book.ErrResponseBookNotFound)
	}
	return found.toBook(), nil
}

func (store *InMemoryStore) SetBookAvailability(ctx context.Context, isbn string, available bool) (book.Book, error) {
	txn := store.db.Txn(true)
	defer txn.Abort()

	found, ok, err := firstByISBN(txn, isbn)
	if err != nil {
		return book.Book{}, fmt.Errorf("updating availability on db: %w", err)
	}
	if !ok {
		return book.Book{}, fmt.Errorf("updating availability on db: %w", book.ErrResponseBookNotFound)
	}

	found.Available = available
	if err := txn.Insert("book", found); err != nil { //Same Seq, so this replaces the row in place.
		return book.Book{}, fmt.Errorf("updating availability on db: %w", err)
	}

	txn.Commit()
	return found.toBook(), nil
}

func (store *InMemoryStore) ListBooks(ctx context.Context) ([]book.Book, error) {
	txn := store.db.Txn(false)
	defer txn.Abort()

	it, err := txn.Get("book", "id")
	if err != nil {
		return []book.Book{}, fmt.Errorf("listing books from db: %w", err)
	}

	books := []book.Book{}
	for obj := it.Next(); obj != nil; obj = it.Next() {
		books = append(books, obj.(AdaptedBook).toBook())
	}
	return books, nil
}

func (store *InMemoryStore) ReplaceBooks(ctx context.Context, books []book.Book) error {
	txn := store.db.Txn(true)
	defer txn.Abort()

	if _, err := txn.DeleteAll("book", "id"); err != nil {
		return fmt.Errorf("replacing books on db: %w", err)
	}
	for i, b := range books {
		if err := txn.Insert("book", adaptBook(uint64(i)+1, b)); err != nil {
			return fmt.Errorf("replacing books on db: %w", err)
		}
	}

	txn.Commit()
	return nil
}

/* Walks the books in insertion order and returns the first one with the given ISBN. */
func firstByISBN(txn *memdb.Txn, isbn string) (AdaptedBook, bool, error) {
	it, err := txn.Get("book", "id")
	if err != nil {
		return AdaptedBook{}, false, err
	}
	for obj := it.Next(); obj != nil; obj = it.Next() {
		b := obj.(AdaptedBook)
		if b.ISBN == isbn {
			return b, true, nil
		}
	}
	return AdaptedBook{}, false, nil
}

func nextSeq(txn *memdb.Txn) (uint64, error) {
	raw, err := txn.Last("book", "id")
	if err != nil {
		return 0, err
	}
	if raw == nil {
		return 1, nil
	}
	return raw.(AdaptedBook).Seq + 1, nil
}
