package library

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
)

// Database is a Store backed by a private in-memory SQLite database.
// Nothing is written to disk; the data disappears when Close is called.
type Database struct {
	db *sql.DB

	addBookStmt      *sql.Stmt
	addMemberStmt    *sql.Stmt
	addLibrarianStmt *sql.Stmt
}

// NewDatabase opens a fresh in-memory SQLite database, applies schema
// migrations, and prepares common statements.
func NewDatabase() (*Database, error) {
	// Each catalogue gets its own named shared-cache database; a single
	// pooled connection keeps it alive until Close.
	dsn := fmt.Sprintf("file:catalogue-%s?mode=memory&cache=shared&_busy_timeout=5000&_foreign_keys=1", uuid.NewString())
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	if err := applyMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	database := &Database{db: db}
	if err := database.prepareStatements(); err != nil {
		database.Close()
		return nil, err
	}
	return database, nil
}

// Close releases prepared statements and closes the DB.
func (d *Database) Close() error {
	for _, stmt := range []*sql.Stmt{d.addBookStmt, d.addMemberStmt, d.addLibrarianStmt} {
		if stmt != nil {
			stmt.Close()
		}
	}
	return d.db.Close()
}

// ---------------------------------------------------------------------------
// Schema migration
// ---------------------------------------------------------------------------

const schemaVersion = 1

func applyMigrations(db *sql.DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT);`); err != nil {
		return fmt.Errorf("create meta: %w", err)
	}

	var current int
	_ = db.QueryRow(`SELECT value FROM meta WHERE key='schema_version';`).Scan(&current)
	if current >= schemaVersion {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// key columns hold the case-folded id; lookups never compare raw ids.
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS books (
            seq INTEGER PRIMARY KEY AUTOINCREMENT,
            key TEXT NOT NULL UNIQUE,
            id TEXT NOT NULL,
            title TEXT NOT NULL,
            author TEXT NOT NULL,
            genre TEXT NOT NULL,
            isbn TEXT NOT NULL,
            available BOOLEAN NOT NULL DEFAULT 1,
            borrowed_by TEXT
        );`,
		`CREATE TABLE IF NOT EXISTS members (
            seq INTEGER PRIMARY KEY AUTOINCREMENT,
            key TEXT NOT NULL UNIQUE,
            id TEXT NOT NULL,
            name TEXT NOT NULL,
            email TEXT NOT NULL,
            phone TEXT NOT NULL,
            total_borrowed INTEGER NOT NULL DEFAULT 0
        );`,
		`CREATE TABLE IF NOT EXISTS loans (
            seq INTEGER PRIMARY KEY AUTOINCREMENT,
            member_key TEXT NOT NULL REFERENCES members(key),
            book_id TEXT NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS librarians (
            seq INTEGER PRIMARY KEY AUTOINCREMENT,
            id TEXT NOT NULL,
            name TEXT NOT NULL,
            email TEXT NOT NULL,
            phone TEXT NOT NULL,
            staff_id TEXT NOT NULL,
            department TEXT NOT NULL
        );`,
	}

	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("apply migration: %w", err)
		}
	}
	if _, err := tx.Exec(`INSERT INTO meta(key,value) VALUES('schema_version',?)
            ON CONFLICT(key) DO UPDATE SET value=excluded.value;`, schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}

	return tx.Commit()
}

// ---------------------------------------------------------------------------
// Prepared statements
// ---------------------------------------------------------------------------

func (d *Database) prepareStatements() error {
	var err error
	if d.addBookStmt, err = d.db.Prepare(`INSERT INTO books(key,id,title,author,genre,isbn,available,borrowed_by) VALUES(?,?,?,?,?,?,?,?)`); err != nil {
		return err
	}
	if d.addMemberStmt, err = d.db.Prepare(`INSERT INTO members(key,id,name,email,phone,total_borrowed) VALUES(?,?,?,?,?,?)`); err != nil {
		return err
	}
	if d.addLibrarianStmt, err = d.db.Prepare(`INSERT INTO librarians(id,name,email,phone,staff_id,department) VALUES(?,?,?,?,?,?)`); err != nil {
		return err
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	return errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintUnique
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// ---------------------------------------------------------------------------
// Books
// ---------------------------------------------------------------------------

func (d *Database) InsertBook(b Book) error {
	_, err := d.addBookStmt.Exec(key(b.ID), b.ID, b.Title, b.Author, b.Genre, b.ISBN, b.Available, nullable(b.BorrowedBy))
	if isUniqueViolation(err) {
		return &DuplicateEntryError{EntityType: EntityBook, ID: b.ID}
	}
	if err != nil {
		return fmt.Errorf("insert book %s: %w", b.ID, err)
	}
	return nil
}

const bookColumns = `id,title,author,genre,isbn,available,COALESCE(borrowed_by,'')`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBook(row rowScanner) (Book, error) {
	var b Book
	err := row.Scan(&b.ID, &b.Title, &b.Author, &b.Genre, &b.ISBN, &b.Available, &b.BorrowedBy)
	return b, err
}

func (d *Database) Book(id string) (Book, error) {
	b, err := scanBook(d.db.QueryRow(`SELECT `+bookColumns+` FROM books WHERE key=?`, key(id)))
	if errors.Is(err, sql.ErrNoRows) {
		return Book{}, bookNotFound(id)
	}
	if err != nil {
		return Book{}, fmt.Errorf("get book %s: %w", id, err)
	}
	return b, nil
}

func (d *Database) Books() ([]Book, error) {
	rows, err := d.db.Query(`SELECT ` + bookColumns + ` FROM books ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	books := []Book{}
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	return books, rows.Err()
}

func (d *Database) UpdateBook(b Book) error {
	res, err := d.db.Exec(`UPDATE books SET title=?, author=?, genre=?, isbn=?, available=?, borrowed_by=? WHERE key=?`,
		b.Title, b.Author, b.Genre, b.ISBN, b.Available, nullable(b.BorrowedBy), key(b.ID))
	if err != nil {
		return fmt.Errorf("update book %s: %w", b.ID, err)
	}
	return expectOneRow(res, bookNotFound(b.ID))
}

func expectOneRow(res sql.Result, missing error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return missing
	}
	return nil
}

// ---------------------------------------------------------------------------
// Members
// ---------------------------------------------------------------------------

func (d *Database) InsertMember(m Member) error {
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Stmt(d.addMemberStmt).Exec(key(m.ID), m.ID, m.Name, m.Email, m.Phone, m.TotalBooksBorrowed)
	if isUniqueViolation(err) {
		return &DuplicateEntryError{EntityType: EntityMember, ID: m.ID}
	}
	if err != nil {
		return fmt.Errorf("insert member %s: %w", m.ID, err)
	}
	if err := writeLoans(tx, m); err != nil {
		return err
	}
	return tx.Commit()
}

func (d *Database) Member(id string) (Member, error) {
	var m Member
	err := d.db.QueryRow(`SELECT id,name,email,phone,total_borrowed FROM members WHERE key=?`, key(id)).
		Scan(&m.ID, &m.Name, &m.Email, &m.Phone, &m.TotalBooksBorrowed)
	if errors.Is(err, sql.ErrNoRows) {
		return Member{}, memberNotFound(id)
	}
	if err != nil {
		return Member{}, fmt.Errorf("get member %s: %w", id, err)
	}

	loans, err := d.loansByMember(`WHERE member_key=?`, key(id))
	if err != nil {
		return Member{}, err
	}
	m.BorrowedBookIDs = loans[key(id)]
	return m, nil
}

// Members returns all members in registration order with their loans attached.
func (d *Database) Members() ([]Member, error) {
	rows, err := d.db.Query(`SELECT key,id,name,email,phone,total_borrowed FROM members ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var (
		members []Member
		keys    []string
	)
	for rows.Next() {
		var (
			m Member
			k string
		)
		if err := rows.Scan(&k, &m.ID, &m.Name, &m.Email, &m.Phone, &m.TotalBooksBorrowed); err != nil {
			return nil, err
		}
		members = append(members, m)
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// Release the only connection before the loans query.
	rows.Close()

	loans, err := d.loansByMember(``)
	if err != nil {
		return nil, err
	}
	out := make([]Member, 0, len(members))
	for i, m := range members {
		m.BorrowedBookIDs = loans[keys[i]]
		out = append(out, m)
	}
	return out, nil
}

func (d *Database) loansByMember(where string, args ...any) (map[string][]string, error) {
	rows, err := d.db.Query(`SELECT member_key, book_id FROM loans `+where+` ORDER BY seq`, args...)
	if err != nil {
		return nil, fmt.Errorf("list loans: %w", err)
	}
	defer rows.Close()

	loans := make(map[string][]string)
	for rows.Next() {
		var mk, bookID string
		if err := rows.Scan(&mk, &bookID); err != nil {
			return nil, err
		}
		loans[mk] = append(loans[mk], bookID)
	}
	return loans, rows.Err()
}

func writeLoans(tx *sql.Tx, m Member) error {
	if _, err := tx.Exec(`DELETE FROM loans WHERE member_key=?`, key(m.ID)); err != nil {
		return fmt.Errorf("clear loans for %s: %w", m.ID, err)
	}
	for _, bookID := range m.BorrowedBookIDs {
		if _, err := tx.Exec(`INSERT INTO loans(member_key,book_id) VALUES(?,?)`, key(m.ID), bookID); err != nil {
			return fmt.Errorf("record loan %s for %s: %w", bookID, m.ID, err)
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Librarians
// ---------------------------------------------------------------------------

func (d *Database) InsertLibrarian(l Librarian) error {
	if _, err := d.addLibrarianStmt.Exec(l.ID, l.Name, l.Email, l.Phone, l.StaffID, l.Department); err != nil {
		return fmt.Errorf("insert librarian %s: %w", l.ID, err)
	}
	return nil
}

func (d *Database) Librarians() ([]Librarian, error) {
	rows, err := d.db.Query(`SELECT id,name,email,phone,staff_id,department FROM librarians ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("list librarians: %w", err)
	}
	defer rows.Close()

	var librarians []Librarian
	for rows.Next() {
		var l Librarian
		if err := rows.Scan(&l.ID, &l.Name, &l.Email, &l.Phone, &l.StaffID, &l.Department); err != nil {
			return nil, err
		}
		librarians = append(librarians, l)
	}
	return librarians, rows.Err()
}

// ---------------------------------------------------------------------------
// Circulation
// ---------------------------------------------------------------------------

// SaveLoan updates the book row, the member counter and the member's loan
// rows in one transaction.
func (d *Database) SaveLoan(b Book, m Member) error {
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.Exec(`UPDATE books SET available=?, borrowed_by=? WHERE key=?`, b.Available, nullable(b.BorrowedBy), key(b.ID))
	if err != nil {
		return fmt.Errorf("update book %s: %w", b.ID, err)
	}
	if err := expectOneRow(res, bookNotFound(b.ID)); err != nil {
		return err
	}

	res, err = tx.Exec(`UPDATE members SET total_borrowed=? WHERE key=?`, m.TotalBooksBorrowed, key(m.ID))
	if err != nil {
		return fmt.Errorf("update member %s: %w", m.ID, err)
	}
	if err := expectOneRow(res, memberNotFound(m.ID)); err != nil {
		return err
	}

	if err := writeLoans(tx, m); err != nil {
		return err
	}
	return tx.Commit()
}
