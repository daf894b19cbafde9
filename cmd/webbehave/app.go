package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"webbehave/internal/logger"
	"webbehave/internal/orchestration"
	"webbehave/internal/output"
	"webbehave/internal/version"
	"webbehave/pkg/behavetypes"
)

// Exit codes returned by the CLI.
const (
	exitOK            = 0
	exitFailure       = 1
	exitConfiguration = 2
)

// exitError carries a process exit code out of a cobra RunE.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

// exitCode maps a command error onto the process exit status.
func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	if errors.Is(err, behavetypes.ErrConfiguration) {
		return exitConfiguration
	}
	return exitFailure
}

// App holds the CLI's collaborators. Tests replace the launcher and output.
type App struct {
	Launcher  behavetypes.Launcher
	Clipboard behavetypes.Clipboard
	Out       io.Writer
	v         *viper.Viper
}

// NewApp creates an App bound to its own viper instance.
func NewApp(launcher behavetypes.Launcher, out io.Writer) *App {
	return &App{Launcher: launcher, Out: out, v: viper.New()}
}

// CreateRootCommand creates and configures the root command.
func (app *App) CreateRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "webbehave <script> [test]",
		Short: "Run browser behaviour scripts",
		Long: `webbehave executes plain-text browser automation scripts. Each line is
matched against the command patterns and run against a Chrome session. With a
test name only that test runs, still wrapped by the script's hooks.`,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return app.initConfig()
		},
		RunE: app.runScript,
	}

	flags := rootCmd.PersistentFlags()
	defaults := behavetypes.DefaultRunConfig()
	flags.String("log-level", "", "Set log level (debug|info|warn|error) [default: info]")
	flags.String("log-file", "", "Write logs to file instead of stderr")
	flags.Bool("test-mode", false, "Run in deterministic test mode")
	flags.Bool("headless", defaults.Headless, "Launch browsers without a window")
	flags.Duration("wait-timeout", defaults.WaitTimeout, "Upper bound for every browser wait")
	flags.Bool("screenshots", defaults.ScreenshotOnFailure, "Capture a screenshot when a block fails")
	flags.String("screenshot-dir", defaults.ScreenshotDir, "Directory receiving screenshots")
	flags.Int("recursion-limit", defaults.RecursionLimit, "Maximum nesting of run test, require test and run action")
	flags.String("config", "", "Optional config file (yaml, toml or json)")
	flags.String("env-file", "", "Dotenv file supplying WEBBEHAVE_* settings not already in the environment")

	app.v.SetEnvPrefix("WEBBEHAVE")
	app.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	app.v.AutomaticEnv()
	if err := app.v.BindPFlags(flags); err != nil {
		panic(fmt.Sprintf("binding flags: %v", err))
	}

	rootCmd.AddCommand(app.listCommand(), app.versionCommand())
	return rootCmd
}

// initConfig loads the optional env and config files and configures logging.
func (app *App) initConfig() error {
	if path := app.v.GetString("env-file"); path != "" {
		if err := godotenv.Load(path); err != nil {
			return &exitError{code: exitConfiguration, err: fmt.Errorf("reading env file %s: %w", path, err)}
		}
	}
	if path := app.v.GetString("config"); path != "" {
		app.v.SetConfigFile(path)
		if err := app.v.ReadInConfig(); err != nil {
			return &exitError{code: exitConfiguration, err: fmt.Errorf("reading config %s: %w", path, err)}
		}
	}
	if err := logger.Configure(app.v.GetString("log-level"), app.v.GetString("log-file"), app.v.GetBool("test-mode")); err != nil {
		return &exitError{code: exitConfiguration, err: fmt.Errorf("configuring logger: %w", err)}
	}
	return nil
}

// runConfig assembles the run configuration from flags, environment and
// config file, in viper's precedence order.
func (app *App) runConfig() behavetypes.RunConfig {
	cfg := behavetypes.DefaultRunConfig()
	cfg.Headless = app.v.GetBool("headless")
	cfg.WaitTimeout = app.v.GetDuration("wait-timeout")
	cfg.ScreenshotOnFailure = app.v.GetBool("screenshots")
	cfg.ScreenshotDir = app.v.GetString("screenshot-dir")
	cfg.RecursionLimit = app.v.GetInt("recursion-limit")
	cfg.TestMode = app.v.GetBool("test-mode")
	return cfg
}

func (app *App) printer() *output.Printer {
	if f, ok := app.Out.(*os.File); ok {
		return output.NewPrinter(output.WithWriter(f), output.WithStyles(output.NewThemeStyleProvider(f)))
	}
	return output.NewPrinter(output.WithWriter(app.Out), output.PlainText())
}

func (app *App) newRunner() (*orchestration.Runner, error) {
	return orchestration.NewRunner(orchestration.Options{
		Config:    app.runConfig(),
		Launcher:  app.Launcher,
		Printer:   app.printer(),
		Clipboard: app.Clipboard,
	})
}

func (app *App) runScript(cmd *cobra.Command, args []string) error {
	scriptPath := args[0]
	testName := ""
	if len(args) > 1 {
		testName = args[1]
	}

	logger.Debug("Starting webbehave", "version", version.GetVersion(), "script", scriptPath, "test", testName)

	runner, err := app.newRunner()
	if err != nil {
		return err
	}
	defer runner.Shutdown()

	if _, err := runner.LoadFile(scriptPath); err != nil {
		return &exitError{code: exitFailure, err: err}
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if _, err := runner.Run(ctx, testName); err != nil {
		if errors.Is(err, behavetypes.ErrUnknownTest) {
			return &exitError{code: exitFailure}
		}
		return err
	}
	if runner.Failed() {
		return &exitError{code: exitFailure}
	}
	return nil
}

func (app *App) listCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list <script>",
		Short: "List the tests and actions declared by a script",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			runner, err := app.newRunner()
			if err != nil {
				return err
			}
			script, err := runner.LoadFile(args[0])
			if err != nil {
				return &exitError{code: exitFailure, err: err}
			}

			fmt.Fprintln(app.Out, "Tests:")
			for _, name := range script.TestNames() {
				fmt.Fprintf(app.Out, "  %s\n", name)
			}
			fmt.Fprintln(app.Out, "Actions:")
			for _, name := range script.ActionNames() {
				fmt.Fprintf(app.Out, "  %s\n", name)
			}
			return nil
		},
	}
}

func (app *App) versionCommand() *cobra.Command {
	var detailed bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(_ *cobra.Command, _ []string) {
			if detailed {
				fmt.Fprintln(app.Out, version.GetDetailedVersion())
				return
			}
			fmt.Fprintln(app.Out, version.GetFormattedVersion())
		},
	}
	cmd.Flags().BoolVar(&detailed, "detailed", false, "Include commit, build date, Go version and platform")
	return cmd
}
