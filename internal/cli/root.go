// Package cli implements the basket command-line interface: a storefront
// driven from the terminal, with the cart, orders and preferences kept in
// the configured storage backend.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/basket/internal/paths"
)

// Version is the basket release, overridden at build time with -ldflags.
var Version = "v0.1.0-dev"

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// exitErr carries the process exit code for an error.
type exitErr struct {
	code int
	err  error
}

func (e *exitErr) Error() string { return e.err.Error() }
func (e *exitErr) Unwrap() error { return e.err }

// userError reports bad input: unknown keys, invalid quantities, invalid
// forms.
func userError(format string, args ...any) error {
	return &exitErr{code: exitUserError, err: fmt.Errorf(format, args...)}
}

// sysError reports an environment failure: storage, config or catalog.
func sysError(format string, args ...any) error {
	return &exitErr{code: exitSysError, err: fmt.Errorf(format, args...)}
}

// ExitCode maps an error returned by the root command to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var e *exitErr
	if errors.As(err, &e) {
		return e.code
	}
	return exitUserError
}

// app holds the state shared by every subcommand of one invocation.
type app struct {
	configDir string
	dataDir   string
	jsonMode  bool

	cfg    *viper.Viper
	logger *zap.Logger
}

// NewRootCmd creates the top-level "basket" command with global flags and
// all subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{logger: zap.NewNop()}

	root := &cobra.Command{
		Use:   "basket",
		Short: "A local-first storefront in your terminal",
		Long: `basket browses a product or restaurant catalog, keeps a shopping cart
that survives between runs, and places mock orders.

State lives in the data directory (default: $(CWD)/.basket-db).`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
	}

	root.PersistentFlags().StringVar(&a.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	root.PersistentFlags().StringVar(&a.dataDir, "data-dir", "", "data directory (default: $(CWD)/.basket-db)")
	root.PersistentFlags().BoolVar(&a.jsonMode, "json", false, "output in JSON format")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd(a))
	root.AddCommand(newProductsCmd(a))
	root.AddCommand(newRestaurantsCmd(a))
	root.AddCommand(newCartCmd(a))
	root.AddCommand(newCheckoutCmd(a))
	root.AddCommand(newOrdersCmd(a))
	root.AddCommand(newContactCmd(a))
	root.AddCommand(newQuizCmd(a))
	root.AddCommand(newThemeCmd(a))

	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "basket:", err)
		os.Exit(ExitCode(err))
	}
}

// setup loads config.yaml and builds the logger. Storage is opened per
// command by withStorage.
func (a *app) setup(cmd *cobra.Command) error {
	configDir, err := paths.ResolveConfigDir(a.configDir)
	if err != nil {
		return sysError("resolve config dir: %w", err)
	}
	a.configDir = configDir

	cfg, err := loadConfig(configDir)
	if err != nil {
		return sysError("%w", err)
	}
	a.cfg = cfg

	logger, err := newLogger(cfg.GetString(cfgKeyLogLevel), cmd.ErrOrStderr())
	if err != nil {
		return userError("%w", err)
	}
	a.logger = logger
	return nil
}

// out returns the command's stdout writer.
func out(cmd *cobra.Command) io.Writer { return cmd.OutOrStdout() }
