package library

import (
	"errors"
	"fmt"
)

const (
	EntityBook   = "Book"
	EntityMember = "Member"
)

// Sentinels matched by errors.Is on a *NotFoundError.
var (
	ErrBookNotFound   = errors.New("book not found")
	ErrMemberNotFound = errors.New("member not found")
)

// Error kinds returned by ErrorKind.
const (
	KindDuplicateEntry      = "duplicate_entry"
	KindBookNotFound        = "book_not_found"
	KindMemberNotFound      = "member_not_found"
	KindBookNotAvailable    = "book_not_available"
	KindBorrowLimitExceeded = "borrow_limit_exceeded"
	KindInternal            = "internal"
)

// DuplicateEntryError reports an insert whose id is already taken.
type DuplicateEntryError struct {
	EntityType string
	ID         string
}

func (e *DuplicateEntryError) Error() string {
	return fmt.Sprintf("%s with ID %q already exists in the system.", e.EntityType, e.ID)
}

// NotFoundError reports a lookup miss for a book or member id.
type NotFoundError struct {
	EntityType string
	ID         string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found with ID: %q", e.EntityType, e.ID)
}

func (e *NotFoundError) Unwrap() error {
	if e.EntityType == EntityMember {
		return ErrMemberNotFound
	}
	return ErrBookNotFound
}

// BookNotAvailableError reports a borrow of a book that is already out.
type BookNotAvailableError struct {
	BookID string
}

func (e *BookNotAvailableError) Error() string {
	return fmt.Sprintf("Book with ID %q is currently borrowed and not available.", e.BookID)
}

// BorrowLimitError reports a borrow by a member already holding Limit books.
type BorrowLimitError struct {
	MemberName string
	Limit      int
}

func (e *BorrowLimitError) Error() string {
	return fmt.Sprintf("Member %q has reached the maximum borrow limit of %d book(s). "+
		"Please return a book before borrowing another.", e.MemberName, e.Limit)
}

func bookNotFound(id string) error   { return &NotFoundError{EntityType: EntityBook, ID: id} }
func memberNotFound(id string) error { return &NotFoundError{EntityType: EntityMember, ID: id} }

// ErrorKind classifies err into one of the Kind constants.
// Anything outside the catalogue's own failures is KindInternal.
func ErrorKind(err error) string {
	var (
		dup   *DuplicateEntryError
		nf    *NotFoundError
		na    *BookNotAvailableError
		limit *BorrowLimitError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &dup):
		return KindDuplicateEntry
	case errors.As(err, &nf):
		if errors.Is(nf, ErrMemberNotFound) {
			return KindMemberNotFound
		}
		return KindBookNotFound
	case errors.As(err, &na):
		return KindBookNotAvailable
	case errors.As(err, &limit):
		return KindBorrowLimitExceeded
	default:
		return KindInternal
	}
}
