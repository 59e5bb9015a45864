package library

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Recorder receives catalogue activity for metrics.
type Recorder interface {
	RecordBookAdded()
	RecordMemberRegistered()
	RecordLibrarianAdded()
	RecordBorrow()
	RecordReturn(returned bool)
	RecordFailure(op string, err error)
}

type nopRecorder struct{}

func (nopRecorder) RecordBookAdded()            {}
func (nopRecorder) RecordMemberRegistered()     {}
func (nopRecorder) RecordLibrarianAdded()       {}
func (nopRecorder) RecordBorrow()               {}
func (nopRecorder) RecordReturn(bool)           {}
func (nopRecorder) RecordFailure(string, error) {}

// Catalogue owns the books, members and librarians and enforces the
// borrowing rules. It is not safe for concurrent use.
type Catalogue struct {
	store  Store
	logger *slog.Logger
	rec    Recorder
}

// Option configures a Catalogue.
type Option func(*Catalogue)

// WithLogger sets the logger used for mutation and warning messages.
func WithLogger(l *slog.Logger) Option {
	return func(c *Catalogue) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithRecorder sets the metrics sink.
func WithRecorder(r Recorder) Option {
	return func(c *Catalogue) {
		if r != nil {
			c.rec = r
		}
	}
}

// NewCatalogue wraps store. The catalogue takes ownership of it.
func NewCatalogue(store Store, opts ...Option) *Catalogue {
	c := &Catalogue{
		store:  store,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		rec:    nopRecorder{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewMemoryCatalogue returns an empty catalogue on the map-backed store.
func NewMemoryCatalogue(opts ...Option) *Catalogue {
	return NewCatalogue(NewMemStore(), opts...)
}

// OpenCatalogue returns an empty catalogue on the named store backend.
func OpenCatalogue(backend string, opts ...Option) (*Catalogue, error) {
	store, err := OpenStore(backend)
	if err != nil {
		return nil, err
	}
	return NewCatalogue(store, opts...), nil
}

// Close releases the underlying store.
func (c *Catalogue) Close() error { return c.store.Close() }

func (c *Catalogue) fail(op string, err error) error {
	c.rec.RecordFailure(op, err)
	return err
}

// ------------------ Books ------------------

// AddBook inserts b as an available book. Ids are unique ignoring case.
func (c *Catalogue) AddBook(b Book) error {
	b.MarkReturned()
	if err := c.store.InsertBook(b); err != nil {
		return c.fail("add_book", err)
	}
	c.rec.RecordBookAdded()
	c.logger.Info("book added", "book_id", b.ID, "title", b.Title)
	return nil
}

// AddBookDetails adds a book without an ISBN.
func (c *Catalogue) AddBookDetails(id, title, author, genre string) error {
	return c.AddBook(NewBook(id, title, author, genre, NoISBN))
}

// AddBookWithISBN adds a book with every field supplied.
func (c *Catalogue) AddBookWithISBN(id, title, author, genre, isbn string) error {
	return c.AddBook(NewBook(id, title, author, genre, isbn))
}

func (c *Catalogue) Book(id string) (Book, error) { return c.store.Book(id) }

// ListBooks returns every book in insertion order.
func (c *Catalogue) ListBooks() ([]Book, error) { return c.store.Books() }

// UpdateBook replaces the non-empty fields of upd. Id and loan state never change.
func (c *Catalogue) UpdateBook(id string, upd BookUpdate) error {
	b, err := c.store.Book(id)
	if err != nil {
		return c.fail("update_book", err)
	}
	if upd.Title != "" {
		b.Title = upd.Title
	}
	if upd.Author != "" {
		b.Author = upd.Author
	}
	if upd.Genre != "" {
		b.Genre = upd.Genre
	}
	if upd.ISBN != "" {
		b.ISBN = upd.ISBN
	}
	if err := c.store.UpdateBook(b); err != nil {
		return c.fail("update_book", err)
	}
	c.logger.Info("book updated", "book_id", b.ID)
	return nil
}

// ------------------ Search ------------------

// SearchByKeyword returns books whose title, author or genre contains keyword,
// ignoring case and surrounding whitespace.
func (c *Catalogue) SearchByKeyword(keyword string) ([]Book, error) {
	kw := normalise(keyword)
	return c.filterBooks(func(b Book) bool {
		return contains(b.Title, kw) || contains(b.Author, kw) || contains(b.Genre, kw)
	})
}

// SearchByTitleAndAuthor returns books matching both the title and the author substring.
func (c *Catalogue) SearchByTitleAndAuthor(title, author string) ([]Book, error) {
	t, a := normalise(title), normalise(author)
	return c.filterBooks(func(b Book) bool {
		return contains(b.Title, t) && contains(b.Author, a)
	})
}

func (c *Catalogue) filterBooks(match func(Book) bool) ([]Book, error) {
	books, err := c.store.Books()
	if err != nil {
		return nil, err
	}
	results := []Book{}
	for _, b := range books {
		if match(b) {
			results = append(results, b)
		}
	}
	return results, nil
}

func normalise(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func contains(field, needle string) bool {
	return strings.Contains(strings.ToLower(field), needle)
}

// ------------------ People ------------------

// RegisterMember adds m with no loans. Member ids are unique ignoring case.
func (c *Catalogue) RegisterMember(m Member) error {
	m.BorrowedBookIDs = nil
	m.TotalBooksBorrowed = 0
	if err := c.store.InsertMember(m); err != nil {
		return c.fail("register_member", err)
	}
	c.rec.RecordMemberRegistered()
	c.logger.Info("member registered", "member_id", m.ID, "name", m.Name)
	return nil
}

// AddLibrarian appends l to the staff list. Ids are not checked for duplicates.
func (c *Catalogue) AddLibrarian(l Librarian) error {
	if err := c.store.InsertLibrarian(l); err != nil {
		return c.fail("add_librarian", err)
	}
	c.rec.RecordLibrarianAdded()
	c.logger.Info("librarian added", "librarian_id", l.ID, "name", l.Name)
	return nil
}

func (c *Catalogue) Member(id string) (Member, error) { return c.store.Member(id) }

func (c *Catalogue) ListMembers() ([]Member, error) { return c.store.Members() }

func (c *Catalogue) ListLibrarians() ([]Librarian, error) { return c.store.Librarians() }

// Persons returns every member followed by every librarian.
func (c *Catalogue) Persons() ([]Person, error) {
	members, err := c.store.Members()
	if err != nil {
		return nil, err
	}
	librarians, err := c.store.Librarians()
	if err != nil {
		return nil, err
	}
	persons := make([]Person, 0, len(members)+len(librarians))
	for _, m := range members {
		persons = append(persons, m)
	}
	for _, l := range librarians {
		persons = append(persons, l)
	}
	return persons, nil
}

// DisplayAllPersons writes each member's and librarian's Display block to w.
func (c *Catalogue) DisplayAllPersons(w io.Writer) error {
	members, err := c.store.Members()
	if err != nil {
		return err
	}
	librarians, err := c.store.Librarians()
	if err != nil {
		return err
	}

	fmt.Fprintln(w, "\n  ── Members ──────────────────────────")
	for _, m := range members {
		m.Display(w)
	}
	fmt.Fprintln(w, "\n  ── Librarians ───────────────────────")
	for _, l := range librarians {
		l.Display(w)
	}
	if len(members) == 0 && len(librarians) == 0 {
		fmt.Fprintln(w, "  (no persons in the system yet)")
	}
	return nil
}

// ------------------ Circulation ------------------

// Borrow lends bookID to memberID. Checks run in order (member exists,
// book exists, book available, member under limit) and the first failure
// is returned with nothing changed.
func (c *Catalogue) Borrow(memberID, bookID string) error {
	m, err := c.store.Member(memberID)
	if err != nil {
		return c.fail("borrow", err)
	}
	b, err := c.store.Book(bookID)
	if err != nil {
		return c.fail("borrow", err)
	}
	if !b.Available {
		return c.fail("borrow", &BookNotAvailableError{BookID: bookID})
	}
	if !m.CanBorrow() {
		return c.fail("borrow", &BorrowLimitError{MemberName: m.Name, Limit: MaxBorrowLimit})
	}

	b.MarkBorrowed(m.ID)
	m.BorrowBook(b.ID)
	if err := c.store.SaveLoan(b, m); err != nil {
		return c.fail("borrow", err)
	}

	c.rec.RecordBorrow()
	c.logger.Info("book borrowed", "book_id", b.ID, "title", b.Title, "member_id", m.ID, "member", m.Name)
	return nil
}

// Return takes bookID back from memberID. It reports false, with no error and
// no change, when the member does not hold the book.
func (c *Catalogue) Return(memberID, bookID string) (bool, error) {
	m, err := c.store.Member(memberID)
	if err != nil {
		return false, c.fail("return", err)
	}
	b, err := c.store.Book(bookID)
	if err != nil {
		return false, c.fail("return", err)
	}

	if !m.HasBorrowed(b.ID) {
		c.rec.RecordReturn(false)
		c.logger.Warn("member did not borrow book", "member_id", m.ID, "member", m.Name, "book_id", bookID)
		return false, nil
	}

	b.MarkReturned()
	m.ReturnBook(b.ID)
	if err := c.store.SaveLoan(b, m); err != nil {
		return false, c.fail("return", err)
	}

	c.rec.RecordReturn(true)
	c.logger.Info("book returned", "book_id", b.ID, "title", b.Title, "member_id", m.ID, "member", m.Name)
	return true, nil
}

// BorrowedBooksFor resolves the member's held ids to books. Ids that no
// longer resolve are reported in Orphaned instead of failing the call.
func (c *Catalogue) BorrowedBooksFor(memberID string) (BorrowedBooks, error) {
	m, err := c.store.Member(memberID)
	if err != nil {
		return BorrowedBooks{}, c.fail("borrowed_books", err)
	}

	out := BorrowedBooks{Member: m, Books: []Book{}}
	for _, id := range m.BorrowedBookIDs {
		b, err := c.store.Book(id)
		if ErrorKind(err) == KindBookNotFound {
			c.logger.Warn("orphaned borrow record", "member_id", m.ID, "book_id", id)
			out.Orphaned = append(out.Orphaned, id)
			continue
		}
		if err != nil {
			return BorrowedBooks{}, err
		}
		out.Books = append(out.Books, b)
	}
	return out, nil
}
