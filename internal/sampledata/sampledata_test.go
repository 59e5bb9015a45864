package sampledata

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-catalogue/library"
)

func TestDefaultDataset(t *testing.T) {
	ds := Default()

	assert.Len(t, ds.Books, 7)
	assert.Len(t, ds.Members, 3)
	assert.Len(t, ds.Librarians, 2)
	assert.Len(t, ds.Loans, 3)
	assert.Equal(t, "1984", ds.Books[5].Title)
	assert.Equal(t, "Reference & Research", ds.Librarians[0].Department)
}

func TestApplyDefault(t *testing.T) {
	cat := library.NewMemoryCatalogue()

	summary, err := Apply(cat, Default())
	require.NoError(t, err)
	assert.Equal(t, Summary{Books: 7, Members: 3, Librarians: 2, Loans: 3}, summary)

	alice, err := cat.Member("M001")
	require.NoError(t, err)
	assert.Equal(t, []string{"B001", "B005"}, alice.BorrowedBookIDs)

	gatsby, err := cat.Book("B005")
	require.NoError(t, err)
	assert.Equal(t, library.NoISBN, gatsby.ISBN)
	assert.Equal(t, "M001", gatsby.BorrowedBy)

	available, err := cat.Book("B002")
	require.NoError(t, err)
	assert.True(t, available.Available)

	assert.NoError(t, cat.CheckConsistency())
}

func TestApplyCollectsWarnings(t *testing.T) {
	ds, err := Load(strings.NewReader(`
books:
  - {id: B1, title: One, author: A, genre: G}
  - {id: b1, title: Dup, author: A, genre: G}
  - {title: No Id, author: A, genre: G}
members:
  - {id: M1, name: Alice}
loans:
  - {member: M1, book: B1}
  - {member: M2, book: B1}
  - {member: M1, book: B9}
`))
	require.NoError(t, err)

	summary, err := Apply(library.NewMemoryCatalogue(), ds)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Books)
	assert.Equal(t, 1, summary.Loans)
	require.Len(t, summary.Warnings, 4)
	assert.Contains(t, summary.Warnings[0], "already exists")
	assert.Equal(t, "book #3: missing id", summary.Warnings[1])
	assert.Contains(t, summary.Warnings[2], "Member not found")
	assert.Contains(t, summary.Warnings[3], "Book not found")
	assert.Equal(t, "1 books, 1 members, 0 librarians, 1 loans (4 warnings)", summary.String())
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	_, err := Load(strings.NewReader("books:\n  - {id: B1, pages: 300}\n"))
	assert.ErrorContains(t, err, "decode dataset")
}

func TestLoadEmpty(t *testing.T) {
	ds, err := Load(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, ds.Books)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte("members:\n  - {id: M7, name: Dana, email: d@x, phone: \"1\"}\n"), 0o600))

	ds, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, ds.Members, 1)
	assert.Equal(t, "Dana", ds.Members[0].Name)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
