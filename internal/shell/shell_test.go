package shell

import (
	"bytes"
	"strings"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-catalogue/internal/metrics"
	"library-catalogue/internal/sampledata"
	"library-catalogue/library"
)

func sampleCatalogue(t *testing.T, opts ...library.Option) *library.Catalogue {
	t.Helper()
	cat := library.NewMemoryCatalogue(opts...)
	if _, err := sampledata.Apply(cat, sampledata.Default()); err != nil {
		t.Fatalf("load sample data: %v", err)
	}
	return cat
}

// transcript feeds lines to a shell over cat and returns everything it printed.
func transcript(t *testing.T, cat *library.Catalogue, opts Options, lines ...string) string {
	t.Helper()
	var out bytes.Buffer
	opts.In = strings.NewReader(strings.Join(lines, "\n") + "\n")
	opts.Out = &out
	require.NoError(t, New(cat, opts).Run())
	return out.String()
}

func TestAddAndListBooks(t *testing.T) {
	cat := library.NewMemoryCatalogue()

	out := transcript(t, cat, Options{},
		"add book", "B1", "Clean Code", "Robert C. Martin", "Programming", "",
		"list books",
		"exit",
	)

	assert.Contains(t, out, "Added book 'Clean Code' with ID B1")
	assert.Contains(t, out, "| B1       | Clean Code")
	assert.Contains(t, out, "| Available |")
	assert.Contains(t, out, "Total: 1 book(s)")
	assert.True(t, strings.HasSuffix(out, "Goodbye!\n"))
	assert.NotContains(t, out, "Book ID: ", "no prompts without a terminal")

	b, err := cat.Book("B1")
	require.NoError(t, err)
	assert.Equal(t, library.NoISBN, b.ISBN)
}

func TestErrorPrefixes(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		want  string
	}{
		{"unknown member", []string{"borrow", "M404", "B001"}, `Member Error: Member not found with ID: "M404"`},
		{"unknown book", []string{"borrow", "M003", "B404"}, `Book Error: Book not found with ID: "B404"`},
		{"already out", []string{"checkout", "M003", "B001"}, `Unavailable: Book with ID "B001" is currently borrowed`},
		{"limit", []string{"borrow", "M001", "B002", "borrow", "M001", "B004"}, `Limit Reached: Member "Alice Johnson" has reached`},
		{"duplicate book", []string{"add book", "b001", "x", "y", "z", ""}, `Error: Book with ID "b001" already exists`},
		{"duplicate member", []string{"add member", "m002", "Bob", "", ""}, `Error: Member with ID "m002" already exists`},
		{"empty id", []string{"register member", "", "Nobody", "", ""}, "Error: Member ID cannot be empty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := transcript(t, sampleCatalogue(t), Options{}, tt.lines...)
			assert.Contains(t, out, tt.want)
		})
	}
}

func TestBorrowAndReturn(t *testing.T) {
	cat := sampleCatalogue(t)

	out := transcript(t, cat, Options{},
		"borrow", "m003", "b002",
		"return", "M003", "B002",
		"return", "M003", "B002",
		"check",
	)

	assert.Contains(t, out, "Book 'The Pragmatic Programmer' borrowed by Carol Davis")
	assert.Contains(t, out, "Book 'The Pragmatic Programmer' returned by Carol Davis")
	assert.Contains(t, out, "Member 'Carol Davis' has not borrowed book ID B002. Nothing to return.")
	assert.Contains(t, out, "Catalogue is consistent.")

	m, err := cat.Member("M003")
	require.NoError(t, err)
	assert.Equal(t, 1, m.TotalBooksBorrowed)
}

func TestSearchBook(t *testing.T) {
	cat := sampleCatalogue(t)

	out := transcript(t, cat, Options{},
		"search book", "1", "fiction",
		"search book", "2", "pragmatic", "orwell",
		"search book", "3",
	)

	assert.Contains(t, out, "Found 2 result(s):")
	assert.Contains(t, out, "The Great Gatsby")
	assert.Contains(t, out, "Dystopian F..")
	assert.Contains(t, out, "No books matched your search.")
	assert.Contains(t, out, "Invalid choice: 3")
}

func TestEditBook(t *testing.T) {
	cat := sampleCatalogue(t)

	out := transcript(t, cat, Options{},
		"edit book", "B006", "Nineteen Eighty-Four", "", "", "978-0451524935",
		"edit book", "B999",
	)

	assert.Contains(t, out, "Updated book 'Nineteen Eighty-Four' (ID B006)")
	assert.Contains(t, out, `Book Error: Book not found with ID: "B999"`)

	b, err := cat.Book("B006")
	require.NoError(t, err)
	assert.Equal(t, "George Orwell", b.Author)
	assert.Equal(t, "978-0451524935", b.ISBN)
}

func TestBorrowedBooksAndPersons(t *testing.T) {
	cat := sampleCatalogue(t)

	out := transcript(t, cat, Options{},
		"borrowed books", "M001",
		"borrowed books", "M003",
		"list members",
		"list persons",
	)

	assert.Contains(t, out, "Borrowed books for member: Alice Johnson (M001)")
	assert.Contains(t, out, "Clean Code")
	assert.Contains(t, out, "The Great Gatsby")
	assert.Contains(t, out, "(no books currently borrowed)")
	assert.Contains(t, out, "| M001     | Alice Johnson          | alice@email.com              | 2/3     |")
	assert.Contains(t, out, "Role   : Librarian")
	assert.Contains(t, out, "Department: Reference & Research")
}

func TestAddLibrarian(t *testing.T) {
	cat := library.NewMemoryCatalogue()

	out := transcript(t, cat, Options{},
		"add librarian", "L9", "Dana Reed", "d@lib", "555", "STF-9", "Archives",
	)

	assert.Contains(t, out, "Added librarian 'Dana Reed' (Archives)")
	librarians, err := cat.ListLibrarians()
	require.NoError(t, err)
	require.Len(t, librarians, 1)
	assert.Equal(t, "STF-9", librarians[0].StaffID)
}

func TestJSONOutput(t *testing.T) {
	cat := sampleCatalogue(t)

	out := transcript(t, cat, Options{Output: "json"}, "list books")

	var books []library.Book
	require.NoError(t, jsoniter.ConfigFastest.Unmarshal([]byte(out), &books))
	require.Len(t, books, 7)
	assert.Equal(t, "B001", books[0].ID)
	assert.Equal(t, "M001", books[0].BorrowedBy)
	assert.True(t, books[1].Available)
}

func TestStats(t *testing.T) {
	reg := prometheus.NewRegistry()
	cat := sampleCatalogue(t, library.WithRecorder(metrics.NewCollector(reg)))

	out := transcript(t, cat, Options{Metrics: reg}, "borrow", "M404", "B001", "stats")

	assert.Contains(t, out, "library_books_added_total")
	assert.Contains(t, out, "operation=borrow,reason=member_not_found")

	out = transcript(t, cat, Options{}, "stats")
	assert.Contains(t, out, "Metrics are not enabled.")
}

func TestInteractiveShowsBannerAndPrompts(t *testing.T) {
	out := transcript(t, library.NewMemoryCatalogue(), Options{Interactive: true},
		"register member", "M1", "Alice", "a@x", "1",
		"exit",
	)

	assert.Contains(t, out, "Welcome to the Library Catalogue!")
	assert.Contains(t, out, "\n> ")
	assert.Contains(t, out, "Member ID: Full name: Email: Phone: ")
	assert.Contains(t, out, "Registered member 'Alice' with ID M1")
}

func TestUnknownCommandAndEndOfInput(t *testing.T) {
	out := transcript(t, library.NewMemoryCatalogue(), Options{}, "  LIST   Books ", "dance")

	assert.Contains(t, out, "No books in the catalogue yet.")
	assert.Contains(t, out, "Unknown command.")
	assert.NotContains(t, out, "Goodbye!")
}

func TestTruncateString(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"Clean Code", 32, "Clean Code"},
		{"Introduction to Algorithms", 18, "Introduction to .."},
		{"exactly8", 8, "exactly8"},
		{"Ünïcödé titles", 6, "Ünïc.."},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, truncateString(tt.in, tt.max))
	}
}
