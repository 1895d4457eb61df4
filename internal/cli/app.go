// Package cli implements farmctl, the operator command line for a farm
// database: reconcile the schema, run the legacy migration, provision and
// inspect farms, reset plots.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dmitrijs2005/gophfarm/internal/config"
	"github.com/dmitrijs2005/gophfarm/internal/logging"
	"github.com/dmitrijs2005/gophfarm/internal/server"
	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	okMark   = color.New(color.FgGreen).SprintFunc()
	warnMark = color.New(color.FgYellow).SprintFunc()
	badMark  = color.New(color.FgRed).SprintFunc()
)

// App holds what every farmctl command shares: the global flags and the
// terminal it talks to.
type App struct {
	in         io.Reader
	isTerminal func() bool

	configPath string
	dsn        string
	catalog    string
	logLevel   string
}

func NewApp() *App {
	return &App{
		in:         os.Stdin,
		isTerminal: func() bool { return term.IsTerminal(int(os.Stdin.Fd())) },
	}
}

// Root builds the command tree.
func (a *App) Root() *cobra.Command {
	root := &cobra.Command{
		Use:   "farmctl",
		Short: "Operate a gophfarm database",
		Long: `farmctl opens the farm database directly. Every command brings the schema
up to date first, exactly as the daemon does on start.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&a.configPath, "config", "c", "", "JSON config file")
	pf.StringVarP(&a.dsn, "db", "d", "", "database path (overrides config)")
	pf.StringVar(&a.catalog, "catalog", "", "plant catalog JSON (overrides config)")
	pf.StringVar(&a.logLevel, "log-level", "", "log level (overrides config)")

	root.AddCommand(a.reconcileCmd())
	root.AddCommand(a.migrateLegacyCmd())
	root.AddCommand(a.provisionCmd())
	root.AddCommand(a.showCmd())
	root.AddCommand(a.resetCmd())
	root.AddCommand(a.signCmd())
	return root
}

// configArgs turns the global flags into the argument form config.LoadConfig
// understands, so the usual defaults, file and environment layering applies.
func (a *App) configArgs() []string {
	var args []string
	if a.configPath != "" {
		args = append(args, "-c", a.configPath)
	}
	if a.dsn != "" {
		args = append(args, "-d", a.dsn)
	}
	if a.catalog != "" {
		args = append(args, "-catalog", a.catalog)
	}
	if a.logLevel != "" {
		args = append(args, "-log-level", a.logLevel)
	}
	return args
}

// withEngine opens the database for one command and closes it afterwards.
func (a *App) withEngine(cmd *cobra.Command, fn func(ctx context.Context, e *server.Engine) error) error {
	cfg, err := config.LoadConfig(a.configArgs())
	if err != nil {
		return err
	}
	logger, err := logging.New(cmd.ErrOrStderr(), cfg.LogLevel, "text")
	if err != nil {
		return err
	}
	log := logger.With("run_id", uuid.NewString(), "command", cmd.Name())

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	e, err := server.OpenEngine(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := e.Close(); err != nil {
			log.Error(ctx, "failed to close store", "error", err)
		}
	}()
	return fn(ctx, e)
}

// confirm asks before a destructive step. Without a terminal there is no
// one to ask, so --yes is required.
func (a *App) confirm(cmd *cobra.Command, yes bool, prompt string) error {
	if yes {
		return nil
	}
	if !a.isTerminal() {
		return fmt.Errorf("refusing to %s without a terminal; pass --yes", prompt)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s? [y/N] ", prompt)
	answer, err := bufio.NewReader(a.in).ReadString('\n')
	if err != nil && err != io.EOF {
		return err
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return nil
	}
	return fmt.Errorf("aborted")
}
