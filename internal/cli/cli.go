package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pfrederiksen/hospi-calendar/internal/config"
	"github.com/pfrederiksen/hospi-calendar/internal/logger"
	"github.com/pfrederiksen/hospi-calendar/internal/scraper"
	"github.com/pfrederiksen/hospi-calendar/internal/series"
)

// Version is reported by --version; set at build time.
var Version = "dev"

const (
	ExitSuccess     = 0
	ExitError       = 1
	ExitAcquisition = 2
)

// app carries the state shared by the commands of one invocation
type app struct {
	v      *viper.Viper
	cfg    *config.Config
	format OutputFormat
	now    func() time.Time

	flagFormat  string
	flagEnvFile string
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	return newRootCmd(&app{v: config.NewViper(), now: time.Now})
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hospi",
		Short: "Track daily non-ICU COVID hospital occupancy in Mexico",
		Long: `A CLI tool that scrapes the IRAG network dashboard for daily hospital
occupancy, keeps the full history in a CSV file, and projects any year onto a
week-by-weekday calendar grid for heat-map rendering.`,
		Version:           Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	flags := cmd.PersistentFlags()
	flags.String("data-file", "./data.csv", "CSV file holding the occupancy series")
	flags.String("log-level", "info", "Log level: debug, info, warn or error")
	flags.StringVar(&a.flagFormat, "format", "text", "Output format: text or json")
	flags.StringVar(&a.flagEnvFile, "env-file", ".env", "Optional .env file with HOSPI_* settings")

	a.bind(flags.Lookup("data-file"), config.KeyDataFile)
	a.bind(flags.Lookup("log-level"), config.KeyLogLevel)

	cmd.AddCommand(newScrapeCmd(a), newCalendarCmd(a), newWeeklyCmd(a))

	return cmd
}

// setup loads configuration and the logger before any subcommand runs
func (a *app) setup(cmd *cobra.Command, args []string) error {
	format := OutputFormat(strings.ToLower(a.flagFormat))
	if format != FormatText && format != FormatJSON {
		return fmt.Errorf("invalid format: %s (must be 'text' or 'json')", a.flagFormat)
	}
	a.format = format

	envFile, err := config.LoadDotEnv(a.flagEnvFile)
	if err != nil {
		return err
	}

	cfg, err := config.Load(a.v)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	a.cfg = cfg

	logger.SetDefault(logger.New(cfg.LogLevel, cmd.ErrOrStderr()))
	if envFile != "" {
		logger.Debug("Loaded env file", logger.Fields{"path": envFile})
	}

	return nil
}

// bind ties a flag to a config key; flags set on the command line win over
// the environment.
func (a *app) bind(flag *pflag.Flag, key string) {
	if err := a.v.BindPFlag(key, flag); err != nil {
		panic(fmt.Sprintf("binding --%s: %v", flag.Name, err))
	}
}

// today returns the current calendar date
func (a *app) today() time.Time {
	return series.Day(a.now())
}

// parseDateFlag parses an optional YYYY-MM-DD flag value
func parseDateFlag(name, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	d, err := series.ParseDate(value)
	if err != nil {
		return time.Time{}, fmt.Errorf("--%s: %w", name, err)
	}
	return d, nil
}

// Run executes the CLI with args and returns the process exit code
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	return run(ctx, NewRootCmd(), args, stdout, stderr)
}

func run(ctx context.Context, cmd *cobra.Command, args []string, stdout, stderr io.Writer) int {
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		if errors.Is(err, scraper.ErrAcquisition) {
			return ExitAcquisition
		}
		return ExitError
	}
	return ExitSuccess
}

// Execute runs the CLI
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
