package shell

import (
	"fmt"
	"io"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"library-catalogue/internal/metrics"
	"library-catalogue/library"
)

const (
	bookRule   = "+----------+----------------------------------+--------------------+---------------+-----------+"
	memberRule = "+----------+------------------------+------------------------------+---------+"
)

func printBookTable(w io.Writer, books []library.Book) {
	fmt.Fprintln(w, bookRule)
	fmt.Fprintf(w, "| %-8s | %-32s | %-18s | %-13s | %-9s |\n", "ID", "Title", "Author", "Genre", "Status")
	fmt.Fprintln(w, bookRule)
	for _, b := range books {
		fmt.Fprintf(w, "| %-8s | %-32s | %-18s | %-13s | %-9s |\n",
			truncateString(b.ID, 8),
			truncateString(b.Title, 32),
			truncateString(b.Author, 18),
			truncateString(b.Genre, 13),
			b.Status())
	}
	fmt.Fprintln(w, bookRule)
}

func printMemberTable(w io.Writer, members []library.Member) {
	fmt.Fprintln(w, memberRule)
	fmt.Fprintf(w, "| %-8s | %-22s | %-28s | %-7s |\n", "ID", "Name", "Email", "Books")
	fmt.Fprintln(w, memberRule)
	for _, m := range members {
		fmt.Fprintf(w, "| %-8s | %-22s | %-28s | %-7s |\n",
			truncateString(m.ID, 8),
			truncateString(m.Name, 22),
			truncateString(m.Email, 28),
			fmt.Sprintf("%d/%d", m.BorrowedCount(), library.MaxBorrowLimit))
	}
	fmt.Fprintln(w, memberRule)
}

func printStatsTable(w io.Writer, samples []metrics.Sample) {
	fmt.Fprintf(w, "%-36s %-44s %s\n", "Metric", "Labels", "Value")
	fmt.Fprintln(w, strings.Repeat("-", 90))
	for _, s := range samples {
		fmt.Fprintf(w, "%-36s %-44s %g\n", s.Name, s.Labels, s.Value)
	}
}

func (s *Shell) printJSON(v any) {
	enc := jsoniter.ConfigFastest.NewEncoder(s.out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		s.printError(err)
	}
}

// truncateString shortens s to maxLength runes, marking the cut with "..".
func truncateString(s string, maxLength int) string {
	r := []rune(s)
	if len(r) <= maxLength {
		return s
	}
	return string(r[:maxLength-2]) + ".."
}
