package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"library-catalogue/internal/config"
	"library-catalogue/internal/logging"
	"library-catalogue/internal/metrics"
	"library-catalogue/internal/sampledata"
	"library-catalogue/internal/shell"
	"library-catalogue/library"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// session is one loaded catalogue plus what the shell needs around it.
type session struct {
	cat      *library.Catalogue
	logger   *slog.Logger
	registry *prometheus.Registry
}

func newRootCmd() *cobra.Command {
	var (
		cfg        config.Config
		configPath string
		store      string
		noSample   bool
		seed       string
		output     string
		logLevel   string
		logFormat  string
		prompt     bool
	)

	rootCmd := &cobra.Command{
		Use:           "library",
		Short:         "Library catalogue manager",
		Long:          "Interactive catalogue of books, members and librarians with borrowing rules.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			loaded, err := config.Load(configPath)
			if err != nil {
				return err
			}

			// Apply precedence: flag > env > file > default
			flags := cmd.Flags()
			if flags.Changed("store") {
				loaded.Store = store
			}
			if flags.Changed("no-sample-data") {
				loaded.SampleData = !noSample
			}
			if flags.Changed("seed") {
				loaded.SeedFile = seed
			}
			if flags.Changed("output") {
				loaded.Output = output
			}
			if flags.Changed("log-level") {
				loaded.Logging.Level = logLevel
			}
			if flags.Changed("log-format") {
				loaded.Logging.Format = logFormat
			}

			if err := loaded.Validate(); err != nil {
				return err
			}
			cfg = loaded
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer s.cat.Close()

			in := cmd.InOrStdin()
			sh := shell.New(s.cat, shell.Options{
				In:          in,
				Out:         cmd.OutOrStdout(),
				Interactive: prompt || isTerminal(in),
				Output:      cfg.Output,
				Logger:      s.logger,
				Metrics:     s.registry,
			})
			return sh.Run()
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "Config file (default $XDG_CONFIG_HOME/library/config.yaml)")
	pf.StringVar(&store, "store", config.StoreMemory, "Store backend (memory, sqlite)")
	pf.BoolVar(&noSample, "no-sample-data", false, "Start with an empty catalogue")
	pf.StringVar(&seed, "seed", "", "YAML dataset to load instead of the built-in sample")
	pf.StringVarP(&output, "output", "o", config.OutputTable, "Output format (table, json)")
	pf.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	pf.StringVar(&logFormat, "log-format", "text", "Log format (text, json)")
	rootCmd.Flags().BoolVar(&prompt, "prompt", false, "Show the banner and prompts even when stdin is not a terminal")

	rootCmd.AddCommand(newListCmd(&cfg), newVersionCmd())
	return rootCmd
}

func newListCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:       "list {books|members|persons}",
		Short:     "Print one listing and exit",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"books", "members", "persons"},
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(*cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer s.cat.Close()

			shell.New(s.cat, shell.Options{
				In:     cmd.InOrStdin(),
				Out:    cmd.OutOrStdout(),
				Output: cfg.Output,
				Logger: s.logger,
			}).RunCommand("list " + args[0])
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "library %s\n", version)
			return nil
		},
	}
}

// openSession builds the catalogue for cfg and loads its starting dataset.
// Logs go to logOut so they never mix with shell output.
func openSession(cfg config.Config, logOut io.Writer) (*session, error) {
	logger := logging.New(cfg.Logging, logOut).With("session", uuid.NewString())
	reg := prometheus.NewRegistry()

	cat, err := library.OpenCatalogue(cfg.Store,
		library.WithLogger(logger),
		library.WithRecorder(metrics.NewCollector(reg)),
	)
	if err != nil {
		return nil, err
	}

	var (
		ds     sampledata.Dataset
		source string
	)
	switch {
	case cfg.SeedFile != "":
		ds, err = sampledata.LoadFile(cfg.SeedFile)
		if err != nil {
			cat.Close()
			return nil, err
		}
		source = cfg.SeedFile
	case cfg.SampleData:
		ds, source = sampledata.Default(), "built-in sample"
	}

	if source != "" {
		summary, err := sampledata.Apply(cat, ds)
		if err != nil {
			cat.Close()
			return nil, fmt.Errorf("load %s: %w", source, err)
		}
		for _, w := range summary.Warnings {
			logger.Warn("dataset record skipped", "source", source, "detail", w)
		}
		logger.Info("dataset loaded", "source", source, "summary", summary.String())
	}

	logger.Debug("catalogue ready", "store", cfg.Store)
	return &session{cat: cat, logger: logger, registry: reg}, nil
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
