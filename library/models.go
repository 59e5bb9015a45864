package library

import (
	"fmt"
	"io"
	"strings"
)

// MaxBorrowLimit is the number of books a member may hold at the same time.
const MaxBorrowLimit = 3

// NoISBN is stored when a book is added without an ISBN.
const NoISBN = "N/A"

const (
	roleMember    = "Member"
	roleLibrarian = "Librarian"
)

// Book represents catalogue metadata and the current loan state of a book.
// Available is false exactly when BorrowedBy holds a member id.
type Book struct {
	ID         string `json:"id" yaml:"id"`
	Title      string `json:"title" yaml:"title"`
	Author     string `json:"author" yaml:"author"`
	Genre      string `json:"genre" yaml:"genre"`
	ISBN       string `json:"isbn" yaml:"isbn"`
	Available  bool   `json:"available" yaml:"-"`
	BorrowedBy string `json:"borrowed_by,omitempty" yaml:"-"`
}

// NewBook returns an available book. An empty isbn is stored as NoISBN.
func NewBook(id, title, author, genre, isbn string) Book {
	if strings.TrimSpace(isbn) == "" {
		isbn = NoISBN
	}
	return Book{
		ID:        id,
		Title:     title,
		Author:    author,
		Genre:     genre,
		ISBN:      isbn,
		Available: true,
	}
}

func (b *Book) MarkBorrowed(memberID string) {
	b.Available = false
	b.BorrowedBy = memberID
}

func (b *Book) MarkReturned() {
	b.Available = true
	b.BorrowedBy = ""
}

// Status is the short availability label used in listings.
func (b Book) Status() string {
	if b.Available {
		return "Available"
	}
	return "Borrowed"
}

// Person is implemented by every kind of registered person.
type Person interface {
	PersonID() string
	DisplayName() string
	Role() string
	Display(w io.Writer)
	String() string
}

// Contact holds the fields shared by members and librarians.
type Contact struct {
	ID    string `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Email string `json:"email" yaml:"email"`
	Phone string `json:"phone" yaml:"phone"`
}

func (c Contact) PersonID() string    { return c.ID }
func (c Contact) DisplayName() string { return c.Name }

func (c Contact) display(w io.Writer, role string) {
	fmt.Fprintln(w, "  ┌─────────────────────────────────────")
	fmt.Fprintf(w, "  │  Role   : %s\n", role)
	fmt.Fprintf(w, "  │  ID     : %s\n", c.ID)
	fmt.Fprintf(w, "  │  Name   : %s\n", c.Name)
	fmt.Fprintf(w, "  │  Email  : %s\n", c.Email)
	fmt.Fprintf(w, "  │  Phone  : %s\n", c.Phone)
}

func personString(role, name, id string) string {
	return fmt.Sprintf("[%-10s] %-20s (ID: %s)", role, name, id)
}

// Member is a person who can borrow books.
type Member struct {
	Contact            `yaml:",inline"`
	BorrowedBookIDs    []string `json:"borrowed_book_ids" yaml:"-"`
	TotalBooksBorrowed int      `json:"total_books_borrowed" yaml:"-"`
}

// NewMember returns a member holding no books.
func NewMember(id, name, email, phone string) Member {
	return Member{Contact: Contact{ID: id, Name: name, Email: email, Phone: phone}}
}

func (m Member) Role() string { return roleMember }

func (m Member) Display(w io.Writer) {
	m.Contact.display(w, m.Role())
	fmt.Fprintf(w, "  │  Currently Borrowed : %d / %d\n", m.BorrowedCount(), MaxBorrowLimit)
	fmt.Fprintf(w, "  │  Total Ever Borrowed: %d\n", m.TotalBooksBorrowed)
	fmt.Fprintln(w, "  └─────────────────────────────────────")
}

func (m Member) String() string { return personString(m.Role(), m.Name, m.ID) }

func (m Member) BorrowedCount() int { return len(m.BorrowedBookIDs) }

func (m Member) CanBorrow() bool { return m.BorrowedCount() < MaxBorrowLimit }

// BorrowBook records a new loan and bumps the lifetime counter.
func (m *Member) BorrowBook(bookID string) {
	m.BorrowedBookIDs = append(m.BorrowedBookIDs, bookID)
	m.TotalBooksBorrowed++
}

// ReturnBook drops the first held id equal to bookID, ignoring case.
func (m *Member) ReturnBook(bookID string) {
	for i, id := range m.BorrowedBookIDs {
		if strings.EqualFold(id, bookID) {
			m.BorrowedBookIDs = append(m.BorrowedBookIDs[:i:i], m.BorrowedBookIDs[i+1:]...)
			return
		}
	}
}

func (m Member) HasBorrowed(bookID string) bool {
	for _, id := range m.BorrowedBookIDs {
		if strings.EqualFold(id, bookID) {
			return true
		}
	}
	return false
}

func (m Member) clone() Member {
	if m.BorrowedBookIDs != nil {
		m.BorrowedBookIDs = append([]string(nil), m.BorrowedBookIDs...)
	}
	return m
}

// Librarian is a staff record with no borrowing behaviour.
type Librarian struct {
	Contact    `yaml:",inline"`
	StaffID    string `json:"staff_id" yaml:"staff_id"`
	Department string `json:"department" yaml:"department"`
}

// NewLibrarian builds a librarian record.
func NewLibrarian(id, name, email, phone, staffID, department string) Librarian {
	return Librarian{
		Contact:    Contact{ID: id, Name: name, Email: email, Phone: phone},
		StaffID:    staffID,
		Department: department,
	}
}

func (l Librarian) Role() string { return roleLibrarian }

func (l Librarian) Display(w io.Writer) {
	l.Contact.display(w, l.Role())
	fmt.Fprintf(w, "  │  Staff ID  : %s\n", l.StaffID)
	fmt.Fprintf(w, "  │  Department: %s\n", l.Department)
	fmt.Fprintln(w, "  └─────────────────────────────────────")
}

func (l Librarian) String() string { return personString(l.Role(), l.Name, l.ID) }

// BorrowedBooks is the resolved view of a member's current loans.
// Orphaned lists held ids that no longer resolve to a catalogue book.
type BorrowedBooks struct {
	Member   Member   `json:"member"`
	Books    []Book   `json:"books"`
	Orphaned []string `json:"orphaned,omitempty"`
}

// BookUpdate carries replacement metadata. Empty fields are left unchanged.
type BookUpdate struct {
	Title  string
	Author string
	Genre  string
	ISBN   string
}

// key normalises an id for case-insensitive lookups.
func key(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}
