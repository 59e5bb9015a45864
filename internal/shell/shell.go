// Package shell implements the line-oriented command interpreter over a
// library.Catalogue.
package shell

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"library-catalogue/library"
)

// Options configures a Shell.
type Options struct {
	In  io.Reader
	Out io.Writer

	// Interactive enables the banner and input prompts.
	Interactive bool
	// Output is "table" or "json" and applies to listings.
	Output string

	Logger *slog.Logger
	// Metrics is gathered by the stats command. Nil disables it.
	Metrics prometheus.Gatherer
}

// Shell reads one command per line and runs it against the catalogue.
type Shell struct {
	cat         *library.Catalogue
	sc          *bufio.Scanner
	out         io.Writer
	interactive bool
	json        bool
	logger      *slog.Logger
	metrics     prometheus.Gatherer
}

// New returns a shell over cat. The caller keeps ownership of cat.
func New(cat *library.Catalogue, opts Options) *Shell {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Shell{
		cat:         cat,
		sc:          bufio.NewScanner(opts.In),
		out:         opts.Out,
		interactive: opts.Interactive,
		json:        strings.EqualFold(opts.Output, "json"),
		logger:      logger,
		metrics:     opts.Metrics,
	}
}

// Run processes commands until "exit" or end of input. Command failures
// are printed and never stop the loop; only a read error is returned.
func (s *Shell) Run() error {
	s.logger.Debug("shell started", "interactive", s.interactive)
	if s.interactive {
		s.printBanner()
	}

	for {
		if s.interactive {
			fmt.Fprint(s.out, "\n> ")
		}
		if !s.sc.Scan() {
			break
		}
		cmd := normaliseCommand(s.sc.Text())
		if cmd == "" {
			continue
		}
		if cmd == "exit" || cmd == "quit" {
			fmt.Fprintln(s.out, "Goodbye!")
			s.logger.Debug("shell finished")
			return nil
		}
		s.dispatch(cmd)
	}

	s.logger.Debug("shell finished", "reason", "end of input")
	return s.sc.Err()
}

// RunCommand executes a single command line. Prompts read from the
// configured input.
func (s *Shell) RunCommand(line string) {
	if cmd := normaliseCommand(line); cmd != "" {
		s.dispatch(cmd)
	}
}

func normaliseCommand(line string) string {
	return strings.Join(strings.Fields(strings.ToLower(line)), " ")
}

func (s *Shell) dispatch(cmd string) {
	switch cmd {
	case "add book":
		s.handleAddBook()
	case "list books":
		s.handleListBooks()
	case "search book", "search":
		s.handleSearchBooks()
	case "edit book":
		s.handleEditBook()
	case "register member", "add member":
		s.handleRegisterMember()
	case "list members":
		s.handleListMembers()
	case "add librarian":
		s.handleAddLibrarian()
	case "borrow", "checkout":
		s.handleBorrow()
	case "return":
		s.handleReturn()
	case "borrowed books":
		s.handleBorrowedBooks()
	case "list persons":
		s.handleListPersons()
	case "check":
		s.handleCheck()
	case "stats":
		s.handleStats()
	case "help":
		s.printHelp()
	default:
		fmt.Fprintln(s.out, "Unknown command. Type 'help' to see the available commands.")
	}
}

// ask prints label when interactive and returns the next trimmed line.
// ok is false at end of input.
func (s *Shell) ask(label string) (string, bool) {
	if s.interactive {
		fmt.Fprint(s.out, label)
	}
	if !s.sc.Scan() {
		return "", false
	}
	return strings.TrimSpace(s.sc.Text()), true
}

func (s *Shell) printBanner() {
	fmt.Fprintln(s.out, "Welcome to the Library Catalogue!")
	s.printHelp()
}

func (s *Shell) printHelp() {
	fmt.Fprintln(s.out, "Available commands:")
	fmt.Fprintln(s.out, "  Books: add book, list books, search book, edit book")
	fmt.Fprintln(s.out, "  People: register member, list members, add librarian, list persons")
	fmt.Fprintln(s.out, "  Circulation: borrow, return, borrowed books")
	fmt.Fprintln(s.out, "  System: check, stats, help, exit")
}
