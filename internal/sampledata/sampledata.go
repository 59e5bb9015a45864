// Package sampledata loads book, member and librarian datasets from YAML
// and applies them to a catalogue.
package sampledata

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"library-catalogue/library"
)

//go:embed sample.yaml
var sampleYAML []byte

// Loan pre-borrows a book when the dataset is applied.
type Loan struct {
	MemberID string `yaml:"member"`
	BookID   string `yaml:"book"`
}

// Dataset is the on-disk shape of a seed file.
type Dataset struct {
	Books      []library.Book      `yaml:"books"`
	Members    []library.Member    `yaml:"members"`
	Librarians []library.Librarian `yaml:"librarians"`
	Loans      []Loan              `yaml:"loans"`
}

// Summary counts what Apply loaded. Warnings holds one line per skipped record.
type Summary struct {
	Books      int      `json:"books"`
	Members    int      `json:"members"`
	Librarians int      `json:"librarians"`
	Loans      int      `json:"loans"`
	Warnings   []string `json:"warnings,omitempty"`
}

func (s Summary) String() string {
	return fmt.Sprintf("%d books, %d members, %d librarians, %d loans (%d warnings)",
		s.Books, s.Members, s.Librarians, s.Loans, len(s.Warnings))
}

// Load decodes a dataset, rejecting unknown keys.
func Load(r io.Reader) (Dataset, error) {
	var ds Dataset
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&ds); err != nil && err != io.EOF {
		return Dataset{}, fmt.Errorf("decode dataset: %w", err)
	}
	return ds, nil
}

// LoadFile reads a dataset from path.
func LoadFile(path string) (Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return Dataset{}, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Default returns the built-in demonstration dataset.
func Default() Dataset {
	ds, err := Load(bytes.NewReader(sampleYAML))
	if err != nil {
		panic(fmt.Sprintf("embedded sample data: %v", err))
	}
	return ds
}

// Apply adds every record of ds to cat in order: books, members,
// librarians, then loans. Records the catalogue rejects are reported as
// warnings; only a store failure stops the load.
func Apply(cat *library.Catalogue, ds Dataset) (Summary, error) {
	var s Summary

	warn := func(what string, err error) error {
		if library.ErrorKind(err) == library.KindInternal {
			return fmt.Errorf("%s: %w", what, err)
		}
		s.Warnings = append(s.Warnings, fmt.Sprintf("%s: %v", what, err))
		return nil
	}

	for i, b := range ds.Books {
		what := fmt.Sprintf("book #%d", i+1)
		if strings.TrimSpace(b.ID) == "" {
			s.Warnings = append(s.Warnings, what+": missing id")
			continue
		}
		if err := cat.AddBookWithISBN(b.ID, b.Title, b.Author, b.Genre, b.ISBN); err != nil {
			if err := warn(what, err); err != nil {
				return s, err
			}
			continue
		}
		s.Books++
	}

	for i, m := range ds.Members {
		what := fmt.Sprintf("member #%d", i+1)
		if strings.TrimSpace(m.ID) == "" {
			s.Warnings = append(s.Warnings, what+": missing id")
			continue
		}
		if err := cat.RegisterMember(library.NewMember(m.ID, m.Name, m.Email, m.Phone)); err != nil {
			if err := warn(what, err); err != nil {
				return s, err
			}
			continue
		}
		s.Members++
	}

	for _, l := range ds.Librarians {
		if err := cat.AddLibrarian(l); err != nil {
			return s, fmt.Errorf("librarian %s: %w", l.ID, err)
		}
		s.Librarians++
	}

	for _, ln := range ds.Loans {
		what := fmt.Sprintf("loan %s -> %s", ln.BookID, ln.MemberID)
		if err := cat.Borrow(ln.MemberID, ln.BookID); err != nil {
			if err := warn(what, err); err != nil {
				return s, err
			}
			continue
		}
		s.Loans++
	}

	return s, nil
}
