// Command import_books checks that YAML datasets load cleanly into a
// catalogue and prints what they contain.
//
//	import_books books.yaml [more.yaml ...]
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"library-catalogue/internal/sampledata"
	"library-catalogue/library"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: import_books <dataset.yaml> [more.yaml ...]")
		os.Exit(2)
	}
	os.Exit(run(os.Args[1:], os.Stdout))
}

// run imports every dataset into one fresh SQLite-backed catalogue so ids
// must be unique across files. It returns the process exit code.
func run(paths []string, out io.Writer) int {
	cat, err := library.OpenCatalogue(library.BackendSQLite)
	if err != nil {
		fmt.Fprintf(out, "Error creating catalogue: %v\n", err)
		return 1
	}
	defer cat.Close()

	errorCount := 0
	for _, path := range paths {
		fmt.Fprintf(out, "Importing %s... ", path)

		ds, err := sampledata.LoadFile(path)
		if err != nil {
			fmt.Fprintf(out, "ERROR - %v\n", err)
			errorCount++
			continue
		}
		summary, err := sampledata.Apply(cat, ds)
		if err != nil {
			fmt.Fprintf(out, "ERROR - %v\n", err)
			errorCount++
			continue
		}

		fmt.Fprintln(out, summary)
		for _, w := range summary.Warnings {
			fmt.Fprintf(out, "  Warning: %s\n", w)
		}
		errorCount += len(summary.Warnings)
	}

	fmt.Fprintf(out, "\nImport complete!\n")
	fmt.Fprintf(out, "Errors: %d\n", errorCount)

	books, err := cat.ListBooks()
	if err != nil {
		fmt.Fprintf(out, "Error retrieving books: %v\n", err)
		return 1
	}
	if len(books) > 0 {
		fmt.Fprintln(out, "\nImported books:")
		fmt.Fprintf(out, "%-8s %-50s %-30s %s\n", "ID", "Title", "Author", "Status")
		fmt.Fprintln(out, strings.Repeat("-", 100))
		for _, b := range books {
			fmt.Fprintf(out, "%-8s %-50s %-30s %s\n", b.ID, truncateString(b.Title, 50), truncateString(b.Author, 30), b.Status())
		}
	}
	if err := cat.CheckConsistency(); err != nil {
		fmt.Fprintf(out, "\nConsistency problems:\n%v\n", err)
		return 1
	}

	if errorCount > 0 {
		return 1
	}
	return 0
}

func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-2]) + ".."
}
