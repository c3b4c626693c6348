package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"library-catalog/internal/config"
	"library-catalog/internal/logging"
	"library-catalog/library"
)

// app carries state shared by all commands once flags are parsed.
type app struct {
	v          *viper.Viper
	configFile string
	cfg        *config.Config
	log        zerolog.Logger
	logCloser  io.Closer
}

func main() {
	a := newApp()
	err := a.rootCmd().Execute()
	a.closeLog()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *app {
	return &app{v: viper.New(), log: logging.Nop}
}

// closeLog releases the log file, if one was opened.
func (a *app) closeLog() {
	if a.logCloser != nil {
		_ = a.logCloser.Close()
		a.logCloser = nil
	}
}

func newRootCmd() *cobra.Command { return newApp().rootCmd() }

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "library",
		Short:         "Manage a catalog of books, magazines and library users",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(a.v, a.configFile)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.closeLog()
			a.log, a.logCloser = logging.NewLoggerFromConfig(cfg.Logging())
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runMenu(cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "config file (default .library.yaml in . or $HOME)")
	flags.String("backend", "", "data format: csv or serial (asks when empty)")
	flags.String("data-dir", ".", "directory holding the catalog files")
	flags.String("log-level", "info", "log level: trace, debug, info, warn, error")
	flags.BoolP("verbose", "v", false, "debug logging")

	for key, flag := range map[string]string{
		config.KeyBackend:  "backend",
		config.KeyDataDir:  "data-dir",
		config.KeyLogLevel: "log-level",
		config.KeyVerbose:  "verbose",
	} {
		_ = a.v.BindPFlag(key, flags.Lookup(flag))
	}

	root.AddCommand(newShowCmd(a), newConvertCmd(a))
	return root
}

// backend resolves the configured backend. With no configured token it asks
// on a terminal and falls back to CSV otherwise.
func (a *app) backend(sc *bufio.Scanner, in io.Reader, out io.Writer) (library.Backend, library.Kind, error) {
	if a.cfg.Backend != "" {
		return library.SelectBackend(a.cfg.Backend, a.cfg.Storage)
	}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return library.PromptBackend(sc, out, a.cfg.Storage)
	}
	b, err := library.NewBackend(library.KindCSV, a.cfg.Storage)
	return b, library.KindCSV, err
}

func (a *app) runMenu(in io.Reader, out io.Writer) error {
	sc := bufio.NewScanner(in)

	backend, kind, err := a.backend(sc, in, out)
	if err != nil {
		return err
	}
	a.log.Debug().Str("backend", string(kind)).Msg("Selected backend")

	mgr := library.NewLibraryManager(backend, a.log)
	if err := mgr.LoadError(); err != nil {
		fmt.Fprintln(out, err)
		fmt.Fprintln(out, "Initialized a new catalog.")
	} else {
		fmt.Fprintln(out, "Imported data from storage.")
	}

	newMenu(sc, out, mgr).loop()

	if err := mgr.Close(); err != nil {
		fmt.Fprintln(out, err)
	} else {
		fmt.Fprintln(out, "Saved data to storage.")
	}
	fmt.Fprintln(out, "Goodbye!")
	return nil
}
