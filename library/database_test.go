package library

import (
	"errors"
	"testing"
)

func tempDB(t *testing.T) *Database {
	t.Helper()
	db, err := NewDatabase()
	if err != nil {
		t.Fatalf("new db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestDatabasesAreIsolated(t *testing.T) {
	a := tempDB(t)
	b := tempDB(t)

	if err := a.InsertBook(NewBook("B1", "Book", "Author", "Genre", "")); err != nil {
		t.Fatalf("insert: %v", err)
	}
	books, err := b.Books()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(books) != 0 {
		t.Fatalf("want empty second database, got %d books", len(books))
	}
}

func TestMigrationsAreIdempotent(t *testing.T) {
	db := tempDB(t)
	if err := applyMigrations(db.db); err != nil {
		t.Fatalf("re-apply migrations: %v", err)
	}
	var version int
	if err := db.db.QueryRow(`SELECT value FROM meta WHERE key='schema_version'`).Scan(&version); err != nil {
		t.Fatalf("read version: %v", err)
	}
	if version != schemaVersion {
		t.Fatalf("want schema version %d, got %d", schemaVersion, version)
	}
}

func TestUniqueViolationMapsToDuplicate(t *testing.T) {
	db := tempDB(t)

	tests := []struct {
		name   string
		insert func(id string) error
		entity string
	}{
		{"book", func(id string) error { return db.InsertBook(NewBook(id, "t", "a", "g", "")) }, EntityBook},
		{"member", func(id string) error { return db.InsertMember(NewMember(id, "n", "e", "p")) }, EntityMember},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.insert("X1"); err != nil {
				t.Fatalf("first insert: %v", err)
			}
			err := tt.insert(" x1 ")
			var dup *DuplicateEntryError
			if !errors.As(err, &dup) {
				t.Fatalf("want DuplicateEntryError, got %v", err)
			}
			if dup.EntityType != tt.entity {
				t.Fatalf("want entity %s, got %s", tt.entity, dup.EntityType)
			}
		})
	}
}

func TestMemberLoansRoundTrip(t *testing.T) {
	db := tempDB(t)
	for _, id := range []string{"B1", "B2"} {
		if err := db.InsertBook(NewBook(id, "t", "a", "g", "")); err != nil {
			t.Fatalf("insert book: %v", err)
		}
	}
	if err := db.InsertMember(NewMember("M1", "Alice", "a@x", "1")); err != nil {
		t.Fatalf("insert member: %v", err)
	}

	m, err := db.Member("m1")
	if err != nil {
		t.Fatalf("get member: %v", err)
	}
	b, _ := db.Book("B2")
	b.MarkBorrowed(m.ID)
	m.BorrowBook(b.ID)
	if err := db.SaveLoan(b, m); err != nil {
		t.Fatalf("save loan: %v", err)
	}

	got, err := db.Member("M1")
	if err != nil {
		t.Fatalf("get member: %v", err)
	}
	if len(got.BorrowedBookIDs) != 1 || got.BorrowedBookIDs[0] != "B2" || got.TotalBooksBorrowed != 1 {
		t.Fatalf("unexpected member state: %+v", got)
	}
	book, _ := db.Book("b2")
	if book.Available || book.BorrowedBy != "M1" {
		t.Fatalf("unexpected book state: %+v", book)
	}
}

func TestSaveLoanRollsBackOnMissingMember(t *testing.T) {
	db := tempDB(t)
	if err := db.InsertBook(NewBook("B1", "t", "a", "g", "")); err != nil {
		t.Fatalf("insert book: %v", err)
	}
	b, _ := db.Book("B1")
	b.MarkBorrowed("M404")

	err := db.SaveLoan(b, NewMember("M404", "Ghost", "", ""))
	if !errors.Is(err, ErrMemberNotFound) {
		t.Fatalf("want member not found, got %v", err)
	}
	after, _ := db.Book("B1")
	if !after.Available || after.BorrowedBy != "" {
		t.Fatalf("book changed despite failed save: %+v", after)
	}
}

func TestUpdateMissingBook(t *testing.T) {
	db := tempDB(t)
	err := db.UpdateBook(NewBook("B404", "t", "a", "g", ""))
	if !errors.Is(err, ErrBookNotFound) {
		t.Fatalf("want book not found, got %v", err)
	}
}
