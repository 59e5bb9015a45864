package library

import "fmt"

// Store holds the catalogue's collections. Implementations hand out copies,
// so a caller mutating a returned value never changes stored state.
type Store interface {
	InsertBook(b Book) error
	Book(id string) (Book, error)
	Books() ([]Book, error)
	UpdateBook(b Book) error

	InsertMember(m Member) error
	Member(id string) (Member, error)
	Members() ([]Member, error)

	InsertLibrarian(l Librarian) error
	Librarians() ([]Librarian, error)

	// SaveLoan writes both sides of a borrow or return in one step.
	SaveLoan(b Book, m Member) error

	Close() error
}

const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// OpenStore creates an empty store for the named backend.
func OpenStore(backend string) (Store, error) {
	switch backend {
	case "", BackendMemory:
		return NewMemStore(), nil
	case BackendSQLite:
		db, err := NewDatabase()
		if err != nil {
			return nil, err
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", backend)
	}
}
