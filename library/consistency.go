package library

import (
	"errors"
	"fmt"
)

// CheckConsistency cross-checks every book against every member and returns
// all violations joined, or nil when books and loans agree.
func (c *Catalogue) CheckConsistency() error {
	books, err := c.store.Books()
	if err != nil {
		return err
	}
	members, err := c.store.Members()
	if err != nil {
		return err
	}

	holders := make(map[string]Member, len(members))
	for _, m := range members {
		holders[key(m.ID)] = m
	}
	byID := make(map[string]Book, len(books))
	for _, b := range books {
		byID[key(b.ID)] = b
	}

	var errs []error
	for _, b := range books {
		switch {
		case !b.Available && b.BorrowedBy == "":
			errs = append(errs, fmt.Errorf("book %s is unavailable but has no borrower", b.ID))
		case b.Available && b.BorrowedBy != "":
			errs = append(errs, fmt.Errorf("book %s is available but borrowed by %s", b.ID, b.BorrowedBy))
		case !b.Available:
			m, ok := holders[key(b.BorrowedBy)]
			if !ok {
				errs = append(errs, fmt.Errorf("book %s is borrowed by unknown member %s", b.ID, b.BorrowedBy))
			} else if !m.HasBorrowed(b.ID) {
				errs = append(errs, fmt.Errorf("book %s is borrowed by %s but not in their loans", b.ID, m.ID))
			}
		}
	}

	for _, m := range members {
		if m.BorrowedCount() > MaxBorrowLimit {
			errs = append(errs, fmt.Errorf("member %s holds %d books, over the limit of %d", m.ID, m.BorrowedCount(), MaxBorrowLimit))
		}
		for _, id := range m.BorrowedBookIDs {
			b, ok := byID[key(id)]
			switch {
			case !ok:
				errs = append(errs, fmt.Errorf("member %s holds orphaned book id %s", m.ID, id))
			case b.Available || key(b.BorrowedBy) != key(m.ID):
				errs = append(errs, fmt.Errorf("member %s holds book %s which is not borrowed by them", m.ID, b.ID))
			}
		}
	}
	return errors.Join(errs...)
}
