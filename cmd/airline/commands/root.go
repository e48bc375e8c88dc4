// Package commands wires the airline operations to a cobra command tree.
package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/marshallshelly/airline/cmd/airline/output"
	"github.com/marshallshelly/airline/cmd/airline/tui"
	"github.com/marshallshelly/airline/pkg/airline"
	"github.com/marshallshelly/airline/pkg/config"
	"github.com/marshallshelly/airline/pkg/logging"
	"github.com/marshallshelly/airline/pkg/runtime"
)

var (
	// Global state resolved before any command runs
	cfg    *config.Config
	logger *zap.SugaredLogger

	jsonOutput bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "airline [<dbname> <port> <user>]",
	Short: "Airline management over a PostgreSQL database",
	Long: `airline registers planes, pilots, flights, technicians, customers and
repairs, books seats, and reports seat availability and repair counts.

Connection settings come from flags, AIRLINE_* environment variables and
airline.yaml, in that order. The three positional arguments are the
classic shorthand for --db-name, --db-port and --db-user and open the
interactive menu.

Examples:
  airline airline 5432 postgres          # interactive menu
  airline plane add --make Boeing --model 737 --age 4 --seats 180
  airline book --customer 3 --flight 12
  airline repairs per-plane --json`,
	Args:              cobra.RangeArgs(0, 3),
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}
		return runMenu(cmd.Context())
	},
}

// Execute runs the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		output.Error("%s", describe(err))
		os.Exit(1)
	}
}

func init() {
	config.RegisterFlags(rootCmd.PersistentFlags())
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
}

// setup resolves configuration and the logger for every command.
func setup(cmd *cobra.Command, args []string) error {
	v := config.New()

	if err := config.BindFlags(v, cmd.Flags()); err != nil {
		return err
	}

	path, _ := cmd.Flags().GetString("config")
	if err := config.ReadFile(v, path); err != nil {
		return err
	}

	if !cmd.HasParent() {
		if err := config.ApplyPositional(v, args); err != nil {
			return err
		}
	}

	return load(v)
}

func load(v *viper.Viper) error {
	c, err := config.Load(v)
	if err != nil {
		return err
	}

	l, err := logging.New(c.Log.Level, logging.Format(c.Log.Format))
	if err != nil {
		return err
	}

	cfg, logger = c, l
	return nil
}

// connect opens the database named by the resolved configuration.
func connect(ctx context.Context) (*runtime.DB, error) {
	var (
		db  *runtime.DB
		err error
	)
	if cfg.DB.URL != "" {
		db, err = runtime.ConnectWithURL(ctx, cfg.DB.URL, cfg.DB.Runtime())
	} else {
		db, err = runtime.Connect(ctx, cfg.DB.Runtime())
	}
	if err != nil {
		return nil, err
	}

	logger.Debugw("connected", "host", cfg.DB.Host, "database", cfg.DB.Name)
	return db, nil
}

// withService runs fn with a connected service and closes the connection
// afterwards.
func withService(ctx context.Context, fn func(svc *airline.Service) error) error {
	db, err := connect(ctx)
	if err != nil {
		return err
	}
	defer db.Close()
	return fn(airline.New(db, logger))
}

func runMenu(ctx context.Context) error {
	return withService(ctx, func(svc *airline.Service) error {
		return tui.Run(ctx, svc)
	})
}

// describe renders an error for the terminal, naming the category the
// user has to act on.
func describe(err error) string {
	var (
		connErr *runtime.ConnectionError
		valErr  *runtime.ValidationError
		consErr *runtime.ConsistencyError
		stmtErr *runtime.StatementError
	)
	switch {
	case errors.As(err, &connErr):
		return fmt.Sprintf("cannot reach the database: %v", err)
	case errors.As(err, &valErr):
		return fmt.Sprintf("invalid input: %v", err)
	case errors.Is(err, runtime.ErrNotFound):
		return "no matching record"
	case errors.As(err, &consErr):
		if consErr.RolledBack {
			return fmt.Sprintf("%v (no changes were saved)", err)
		}
		return fmt.Sprintf("%v (rollback failed; check the data)", err)
	case errors.As(err, &stmtErr):
		return fmt.Sprintf("database rejected the operation: %v", err)
	}
	return err.Error()
}

// emit prints v as JSON when --json is set and calls text otherwise.
func emit(v any, text func()) error {
	if jsonOutput {
		return output.JSON(output.Out, v)
	}
	text()
	return nil
}
