package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"paymonth/internal/calendar"
	"paymonth/internal/cli"
	"paymonth/internal/config"
	applog "paymonth/internal/log"
)

// app carries the per-invocation configuration so tests can build a fresh
// command tree.
type app struct {
	v       *viper.Viper
	cfgFile string
	now     func() time.Time
	logger  *applog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New(), now: time.Now}

	root := &cobra.Command{
		Use:   "paymonthctl",
		Short: "Pay-period and quick-entry tools for paymonth",
		Long: `paymonthctl answers pay-period questions, runs the quick-entry parser and
maintains the paymonth database from the command line.

Settings come from flags, PAYMONTH_* environment variables or a config file.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.initConfig,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default: ./paymonth.yaml)")
	flags.String("timezone", calendar.DefaultTimezone, "IANA timezone for day boundaries")
	flags.Int("salary-day", 25, "day of month the salary arrives (1-31)")
	flags.String("locale", "ko-KR", "locale for labels and parsing (ko-KR, en-US)")
	flags.String("db", "./data/paymonth.db", "SQLite database path")
	flags.String("log-level", "warn", "log level (debug, info, warn, error)")

	_ = a.v.BindPFlag("timezone", flags.Lookup("timezone"))
	_ = a.v.BindPFlag("salary_day", flags.Lookup("salary-day"))
	_ = a.v.BindPFlag("locale", flags.Lookup("locale"))
	_ = a.v.BindPFlag("db_path", flags.Lookup("db"))
	_ = a.v.BindPFlag("log_level", flags.Lookup("log-level"))

	root.AddCommand(a.periodCmd())
	root.AddCommand(a.rangeCmd())
	root.AddCommand(a.sameCmd())
	root.AddCommand(a.parseCmd())
	root.AddCommand(a.migrateCmd())
	root.AddCommand(a.syncCmd())
	return root
}

func main() {
	cli.LoadEnvFile()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (a *app) initConfig(cmd *cobra.Command, _ []string) error {
	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
	} else {
		a.v.AddConfigPath(".")
		a.v.SetConfigName("paymonth")
		a.v.SetConfigType("yaml")
	}

	a.v.SetEnvPrefix("PAYMONTH")
	a.v.AutomaticEnv()

	if err := a.v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("read config: %w", err)
		}
	}

	// stdout is reserved for command output
	a.logger = applog.New(applog.Config{
		Component: applog.ComponentCLI,
		Handler: slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
			Level: applog.ParseLevel(a.v.GetString("log_level")),
		}),
	})
	applog.SetDefault(a.logger)
	return nil
}

// config layers the viper settings over the environment configuration used
// by the servers.
func (a *app) config() *config.Config {
	cfg := config.Load()
	cfg.DefaultTimezone = a.v.GetString("timezone")
	cfg.DefaultSalaryDay = a.v.GetInt("salary_day")
	cfg.DefaultLocale = a.v.GetString("locale")
	cfg.SQLiteDBPath = a.v.GetString("db_path")
	return cfg
}

func (a *app) location() (*time.Location, error) {
	return calendar.LoadLocation(a.v.GetString("timezone"))
}

// parseDate reads an anchor such as 2025-10-16 or 10/16. Empty means now.
func (a *app) parseDate(raw string, loc *time.Location) (time.Time, error) {
	if raw == "" {
		return a.now(), nil
	}
	t, ok := calendar.ParseAbsoluteDate(raw, loc, a.now())
	if !ok {
		return time.Time{}, fmt.Errorf("invalid date %q", raw)
	}
	return t, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
