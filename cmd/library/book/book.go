package book

type Book struct {
	Title     string
	Author    string
	ISBN      string
	Available bool
}

/* Creates a new book record. Every new book starts available for borrowing. */
func NewBook(title, author, isbn string) Book {
	return Book{
		Title:     title,
		Author:    author,
		ISBN:      isbn,
		Available: true,
	}
}

// Outcome reports what a borrow or return attempt did to a book.
type Outcome int

const (
	OutcomeNotFound Outcome = iota
	OutcomeBorrowed
	OutcomeUnavailable
	OutcomeReturned
	OutcomeNotBorrowed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNotFound:
		return "not_found"
	case OutcomeBorrowed:
		return "borrowed"
	case OutcomeUnavailable:
		return "unavailable"
	case OutcomeReturned:
		return "returned"
	case OutcomeNotBorrowed:
		return "not_borrowed"
	default:
		return "unknown"
	}
}

/* Marks the book as borrowed. A book that is already out stays out and reports OutcomeUnavailable. */
func (b *Book) Borrow() Outcome {
	if !b.Available {
		return OutcomeUnavailable
	}
	b.Available = false
	return OutcomeBorrowed
}

/* Marks the book as back on the shelf. A book that was never out reports OutcomeNotBorrowed. */
func (b *Book) Return() Outcome {
	if b.Available {
		return OutcomeNotBorrowed
	}
	b.Available = true
	return OutcomeReturned
}
