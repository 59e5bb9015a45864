package shell

import (
	"fmt"
	"strings"

	"library-catalogue/internal/metrics"
	"library-catalogue/library"
)

// ------------------ Books ------------------

func (s *Shell) handleAddBook() {
	id, ok := s.ask("Book ID: ")
	if !ok {
		return
	}
	if id == "" {
		fmt.Fprintln(s.out, "Error: Book ID cannot be empty")
		return
	}
	title, ok := s.ask("Title: ")
	if !ok {
		return
	}
	author, ok := s.ask("Author: ")
	if !ok {
		return
	}
	genre, ok := s.ask("Genre: ")
	if !ok {
		return
	}
	isbn, ok := s.ask("ISBN (press Enter to skip): ")
	if !ok {
		return
	}

	var err error
	if isbn == "" {
		err = s.cat.AddBookDetails(id, title, author, genre)
	} else {
		err = s.cat.AddBookWithISBN(id, title, author, genre, isbn)
	}
	if err != nil {
		s.printError(err)
		return
	}
	fmt.Fprintf(s.out, "Added book '%s' with ID %s\n", title, id)
}

func (s *Shell) handleListBooks() {
	books, err := s.cat.ListBooks()
	if err != nil {
		s.printError(err)
		return
	}
	if s.json {
		s.printJSON(books)
		return
	}
	if len(books) == 0 {
		fmt.Fprintln(s.out, "No books in the catalogue yet.")
		return
	}
	printBookTable(s.out, books)
	fmt.Fprintf(s.out, "Total: %d book(s)\n", len(books))
}

func (s *Shell) handleSearchBooks() {
	if s.interactive {
		fmt.Fprintln(s.out, "Search by:")
		fmt.Fprintln(s.out, "  1. Keyword (title / author / genre)")
		fmt.Fprintln(s.out, "  2. Title AND Author")
	}
	choice, ok := s.ask("Choice: ")
	if !ok {
		return
	}

	var (
		books []library.Book
		err   error
	)
	switch choice {
	case "1":
		kw, ok := s.ask("Keyword: ")
		if !ok {
			return
		}
		books, err = s.cat.SearchByKeyword(kw)
	case "2":
		title, ok := s.ask("Title keyword: ")
		if !ok {
			return
		}
		author, ok := s.ask("Author keyword: ")
		if !ok {
			return
		}
		books, err = s.cat.SearchByTitleAndAuthor(title, author)
	default:
		fmt.Fprintf(s.out, "Invalid choice: %s\n", choice)
		return
	}
	if err != nil {
		s.printError(err)
		return
	}

	if s.json {
		s.printJSON(books)
		return
	}
	if len(books) == 0 {
		fmt.Fprintln(s.out, "No books matched your search.")
		return
	}
	fmt.Fprintf(s.out, "Found %d result(s):\n", len(books))
	printBookTable(s.out, books)
}

func (s *Shell) handleEditBook() {
	id, ok := s.ask("Book ID: ")
	if !ok {
		return
	}
	if _, err := s.cat.Book(id); err != nil {
		s.printError(err)
		return
	}

	var upd library.BookUpdate
	for _, f := range []struct {
		label string
		dst   *string
	}{
		{"New title (Enter to keep): ", &upd.Title},
		{"New author (Enter to keep): ", &upd.Author},
		{"New genre (Enter to keep): ", &upd.Genre},
		{"New ISBN (Enter to keep): ", &upd.ISBN},
	} {
		v, ok := s.ask(f.label)
		if !ok {
			return
		}
		*f.dst = v
	}

	if err := s.cat.UpdateBook(id, upd); err != nil {
		s.printError(err)
		return
	}
	b, _ := s.cat.Book(id)
	fmt.Fprintf(s.out, "Updated book '%s' (ID %s)\n", b.Title, b.ID)
}

// ------------------ People ------------------

func (s *Shell) handleRegisterMember() {
	fields, ok := s.askAll("Member ID: ", "Full name: ", "Email: ", "Phone: ")
	if !ok {
		return
	}
	if fields[0] == "" {
		fmt.Fprintln(s.out, "Error: Member ID cannot be empty")
		return
	}

	m := library.NewMember(fields[0], fields[1], fields[2], fields[3])
	if err := s.cat.RegisterMember(m); err != nil {
		s.printError(err)
		return
	}
	fmt.Fprintf(s.out, "Registered member '%s' with ID %s\n", m.Name, m.ID)
}

func (s *Shell) handleAddLibrarian() {
	fields, ok := s.askAll("Librarian ID: ", "Full name: ", "Email: ", "Phone: ", "Staff ID: ", "Department: ")
	if !ok {
		return
	}

	l := library.NewLibrarian(fields[0], fields[1], fields[2], fields[3], fields[4], fields[5])
	if err := s.cat.AddLibrarian(l); err != nil {
		s.printError(err)
		return
	}
	fmt.Fprintf(s.out, "Added librarian '%s' (%s)\n", l.Name, l.Department)
}

func (s *Shell) handleListMembers() {
	members, err := s.cat.ListMembers()
	if err != nil {
		s.printError(err)
		return
	}
	if s.json {
		s.printJSON(members)
		return
	}
	if len(members) == 0 {
		fmt.Fprintln(s.out, "No members registered yet.")
		return
	}
	printMemberTable(s.out, members)
	fmt.Fprintf(s.out, "Total: %d member(s)\n", len(members))
}

func (s *Shell) handleListPersons() {
	if s.json {
		members, err := s.cat.ListMembers()
		if err != nil {
			s.printError(err)
			return
		}
		librarians, err := s.cat.ListLibrarians()
		if err != nil {
			s.printError(err)
			return
		}
		s.printJSON(map[string]any{"members": members, "librarians": librarians})
		return
	}
	if err := s.cat.DisplayAllPersons(s.out); err != nil {
		s.printError(err)
	}
}

// ------------------ Circulation ------------------

func (s *Shell) handleBorrow() {
	fields, ok := s.askAll("Member ID: ", "Book ID: ")
	if !ok {
		return
	}
	memberID, bookID := fields[0], fields[1]

	if err := s.cat.Borrow(memberID, bookID); err != nil {
		s.printError(err)
		return
	}
	m, _ := s.cat.Member(memberID)
	b, _ := s.cat.Book(bookID)
	fmt.Fprintf(s.out, "Book '%s' borrowed by %s\n", b.Title, m.Name)
}

func (s *Shell) handleReturn() {
	fields, ok := s.askAll("Member ID: ", "Book ID: ")
	if !ok {
		return
	}
	memberID, bookID := fields[0], fields[1]

	returned, err := s.cat.Return(memberID, bookID)
	if err != nil {
		s.printError(err)
		return
	}
	m, _ := s.cat.Member(memberID)
	if !returned {
		fmt.Fprintf(s.out, "Member '%s' has not borrowed book ID %s. Nothing to return.\n", m.Name, bookID)
		return
	}
	b, _ := s.cat.Book(bookID)
	fmt.Fprintf(s.out, "Book '%s' returned by %s\n", b.Title, m.Name)
}

func (s *Shell) handleBorrowedBooks() {
	memberID, ok := s.ask("Member ID: ")
	if !ok {
		return
	}
	bb, err := s.cat.BorrowedBooksFor(memberID)
	if err != nil {
		s.printError(err)
		return
	}
	if s.json {
		s.printJSON(bb)
		return
	}

	fmt.Fprintf(s.out, "Borrowed books for member: %s (%s)\n", bb.Member.Name, bb.Member.ID)
	if len(bb.Books) == 0 && len(bb.Orphaned) == 0 {
		fmt.Fprintln(s.out, "  (no books currently borrowed)")
		return
	}
	if len(bb.Books) > 0 {
		printBookTable(s.out, bb.Books)
	}
	for _, id := range bb.Orphaned {
		fmt.Fprintf(s.out, "Orphaned borrow record for book ID: %s\n", id)
	}
}

// ------------------ System ------------------

func (s *Shell) handleCheck() {
	err := s.cat.CheckConsistency()
	if err == nil {
		fmt.Fprintln(s.out, "Catalogue is consistent.")
		return
	}
	fmt.Fprintln(s.out, "Consistency problems:")
	for _, line := range strings.Split(err.Error(), "\n") {
		fmt.Fprintf(s.out, "  - %s\n", line)
	}
}

func (s *Shell) handleStats() {
	if s.metrics == nil {
		fmt.Fprintln(s.out, "Metrics are not enabled.")
		return
	}
	samples, err := metrics.Snapshot(s.metrics)
	if err != nil {
		s.printError(err)
		return
	}
	if s.json {
		s.printJSON(samples)
		return
	}
	printStatsTable(s.out, samples)
}

func (s *Shell) askAll(labels ...string) ([]string, bool) {
	values := make([]string, 0, len(labels))
	for _, label := range labels {
		v, ok := s.ask(label)
		if !ok {
			return nil, false
		}
		values = append(values, v)
	}
	return values, true
}

// printError prefixes err by failure kind. No failure ends the session.
func (s *Shell) printError(err error) {
	var prefix string
	switch library.ErrorKind(err) {
	case library.KindMemberNotFound:
		prefix = "Member Error"
	case library.KindBookNotFound:
		prefix = "Book Error"
	case library.KindBookNotAvailable:
		prefix = "Unavailable"
	case library.KindBorrowLimitExceeded:
		prefix = "Limit Reached"
	case library.KindDuplicateEntry:
		prefix = "Error"
	default:
		prefix = "Error"
		s.logger.Error("command failed", "error", err)
	}
	fmt.Fprintf(s.out, "%s: %v\n", prefix, err)
}
