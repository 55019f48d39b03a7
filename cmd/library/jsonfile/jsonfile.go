// Package jsonfile keeps the book collection in a single JSON file.
//
// The file holds one array with an object per book, in collection order:
//
//	[{"title":"Dune","author":"Herbert","available":true,"isbn":"111"}]
//
// Writes overwrite the file in place.
package jsonfile

import (
	"fmt"
	"os"

	"github.com/books-inventory/cmd/library/book"
	jsoniter "github.com/json-iterator/go"
)

type record struct {
	Title     string `json:"title"`
	Author    string `json:"author"`
	Available bool   `json:"available"`
	ISBN      string `json:"isbn"`
}

// storedRecord is what a record looks like on the way in. Pointers tell a
// missing key apart from a zero value.
type storedRecord struct {
	Title     *string `json:"title"`
	Author    *string `json:"author"`
	Available *bool   `json:"available"`
	ISBN      *string `json:"isbn"`
}

type Store struct {
	json jsoniter.API
}

// Keys must match exactly; "Title" or "ISBN" count as missing.
var codec = jsoniter.Config{
	EscapeHTML:             true,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
	CaseSensitive:          true,
}.Froze()

func NewStore() *Store {
	return &Store{json: codec}
}

func (s *Store) Save(path string, books []book.Book) error {
	records := make([]record, 0, len(books))
	for _, b := range books {
		records = append(records, record{
			Title:     b.Title,
			Author:    b.Author,
			Available: b.Available,
			ISBN:      b.ISBN,
		})
	}

	data, err := s.json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encoding books: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func (s *Store) Load(path string) ([]book.Book, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	// Decoding into a pointer leaves it nil for "null". Empty input is invalid json.
	var stored *[]storedRecord
	if err := s.json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("decoding %s: %w: %v", path, book.ErrResponseInvalidJSON, err)
	}
	if stored == nil {
		return nil, fmt.Errorf("decoding %s: %w", path, book.ErrResponseMalformedFile)
	}

	books := make([]book.Book, 0, len(*stored))
	for i, r := range *stored {
		if r.Title == nil || r.Author == nil || r.Available == nil || r.ISBN == nil {
			return nil, fmt.Errorf("decoding %s: entry %d: %w", path, i, book.ErrResponseMalformedFile)
		}
		books = append(books, book.Book{
			Title:     *r.Title,
			Author:    *r.Author,
			ISBN:      *r.ISBN,
			Available: *r.Available,
		})
	}
	return books, nil
}
