// Package console runs the interactive menu of the library.
//
// Every choice reads its input line by line, calls the book service and
// prints one line of feedback. Nothing that happens inside the loop stops it;
// only the Exit choice or the end of the input does.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/books-inventory/cmd/library/book"
)

const (
	choiceAdd = iota + 1
	choiceBorrow
	choiceReturn
	choiceReport
	choiceSave
	choiceLoad
	choiceExit
)

const menu = `
Library Management System
1. Add Book
2. Borrow Book
3. Return Book
4. Generate Report
5. Save Data
6. Load Data
7. Exit
Enter your choice:`

type Console struct {
	bookService book.ServiceAPI
	in          *bufio.Reader
	out         io.Writer
	path        string
}

func New(bookService book.ServiceAPI, in io.Reader, out io.Writer, path string) *Console {
	return &Console{
		bookService: bookService,
		in:          bufio.NewReader(in),
		out:         out,
		path:        path,
	}
}

// Run shows the menu until the operator picks Exit or the input ends.
func (c *Console) Run(ctx context.Context) error {
	for {
		c.println(menu)
		line, err := c.readLine()
		if err != nil {
			return ignoreEOF(err)
		}

		choice, err := strconv.Atoi(line)
		if err != nil {
			choice = 0
		}
		if choice == choiceExit {
			return nil
		}
		if err := c.dispatch(ctx, choice); err != nil {
			return ignoreEOF(err)
		}
	}
}

/* Handles one menu choice. Only input errors are returned; everything else is reported to the operator. */
func (c *Console) dispatch(ctx context.Context, choice int) error {
	switch choice {
	case choiceAdd:
		return c.addBook(ctx)
	case choiceBorrow:
		return c.borrowBook(ctx)
	case choiceReturn:
		return c.returnBook(ctx)
	case choiceReport:
		c.generateReport(ctx)
	case choiceSave:
		c.saveBooks(ctx)
	case choiceLoad:
		c.loadBooks(ctx)
	default:
		c.println("Invalid choice. Please try again.")
	}
	return nil
}

func (c *Console) addBook(ctx context.Context) error {
	title, err := c.prompt("Enter book title:")
	if err != nil {
		return err
	}
	author, err := c.prompt("Enter book author:")
	if err != nil {
		return err
	}
	isbn, err := c.prompt("Enter book ISBN:")
	if err != nil {
		return err
	}

	created, err := c.bookService.AddBook(ctx, book.CreateBookRequest{Title: title, Author: author, ISBN: isbn})
	if err != nil {
		c.reportFailure(ctx, err)
		return nil
	}
	c.printf("Book added: %s\n", created.Title)
	return nil
}

func (c *Console) borrowBook(ctx context.Context) error {
	isbn, err := c.prompt("Enter book ISBN:")
	if err != nil {
		return err
	}

	b, outcome, err := c.bookService.BorrowBook(ctx, isbn)
	if err != nil {
		c.reportFailure(ctx, err)
		return nil
	}
	c.printOutcome(b, outcome)
	return nil
}

func (c *Console) returnBook(ctx context.Context) error {
	isbn, err := c.prompt("Enter book ISBN:")
	if err != nil {
		return err
	}

	b, outcome, err := c.bookService.ReturnBook(ctx, isbn)
	if err != nil {
		c.reportFailure(ctx, err)
		return nil
	}
	c.printOutcome(b, outcome)
	return nil
}

func (c *Console) printOutcome(b book.Book, outcome book.Outcome) {
	switch outcome {
	case book.OutcomeBorrowed:
		c.printf("You have borrowed the book: %s\n", b.Title)
	case book.OutcomeUnavailable:
		c.printf("The book %s is currently unavailable\n", b.Title)
	case book.OutcomeReturned:
		c.printf("You've returned the book: %s\n", b.Title)
	case book.OutcomeNotBorrowed:
		c.printf("The book %s was not borrowed.\n", b.Title)
	default:
		c.println("Book not found.")
	}
}

func (c *Console) generateReport(ctx context.Context) {
	books, err := c.bookService.ListBooks(ctx)
	if err != nil {
		c.reportFailure(ctx, err)
		return
	}
	for _, b := range books {
		c.printf("Title: %s, Author: %s, ISBN: %s, Available: %t\n", b.Title, b.Author, b.ISBN, b.Available)
	}
}

func (c *Console) saveBooks(ctx context.Context) {
	if err := c.bookService.SaveBooks(ctx, c.path); err != nil {
		slog.WarnContext(ctx, "save failed", "file", c.path, "err", err)
		c.println("Failed to save data.")
		return
	}
	c.println("Data saved successfully.")
}

// loadBooks keeps the current collection when the file cannot be loaded.
func (c *Console) loadBooks(ctx context.Context) {
	if err := c.bookService.LoadBooks(ctx, c.path); err != nil {
		slog.WarnContext(ctx, "load failed", "file", c.path, "err", err)
		c.println("Failed to load data.")
		return
	}
	c.println("Data loaded successfully.")
}

func (c *Console) reportFailure(ctx context.Context, err error) {
	slog.ErrorContext(ctx, "book service failed", "err", err)
	c.printf("Something went wrong: %v\n", err)
}

func (c *Console) prompt(question string) (string, error) {
	c.println(question)
	return c.readLine()
}

/*
Reads one line without its surrounding whitespace. A last line without a newline still counts.
Invalid UTF-8 is replaced with U+FFFD.
*/
func (c *Console) readLine() (string, error) {
	line, err := c.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.ToValidUTF8(strings.TrimSpace(line), "\uFFFD"), nil
}

func (c *Console) println(s string) {
	fmt.Fprintln(c.out, s)
}

func (c *Console) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

func ignoreEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return nil
	}
	return fmt.Errorf("reading input: %w", err)
}
