// Package cli implements the productctl commands on top of the product
// store. Every command validates its input locally before it talks to the
// products API.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/utafrali/productconsole/internal/app"
	"github.com/utafrali/productconsole/internal/config"
	"github.com/utafrali/productconsole/pkg/logger"
	"github.com/utafrali/productconsole/pkg/validator"
)

// Exit codes returned by Run.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

// Output formats accepted by --output.
const (
	OutputTable = "table"
	OutputJSON  = "json"
)

const serviceName = "productctl"

// exitError carries the exit code for err.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func usageErrorf(format string, args ...any) error {
	return &exitError{code: ExitUsage, err: fmt.Errorf(format, args...)}
}

// console holds the state of one invocation.
type console struct {
	envFiles []string
	apiURL   string
	output   string
	verbose  bool

	app *app.App
}

// Run executes productctl with args and returns the process exit code.
func Run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	c := &console{}
	root := c.rootCommand()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)

	if c.app != nil {
		if cerr := c.app.Close(context.WithoutCancel(ctx)); cerr != nil {
			c.app.Logger().Warn("shutdown error", slog.String("error", cerr.Error()))
		}
	}

	if err == nil {
		return ExitOK
	}
	report(stderr, err)
	return exitCode(err)
}

func (c *console) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           serviceName,
		Short:         "Manage products in the catalog backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.CompletionOptions.DisableDefaultCmd = true

	pf := root.PersistentFlags()
	pf.StringSliceVar(&c.envFiles, "env-file", nil, "dotenv files to load (default .env)")
	pf.StringVar(&c.apiURL, "api-url", "", "products API base URL (overrides PUBLIC_API_URL)")
	pf.StringVarP(&c.output, "output", "o", OutputTable, "output format: table or json")
	pf.BoolVarP(&c.verbose, "verbose", "v", false, "log at debug level")

	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &exitError{code: ExitUsage, err: err}
	})

	root.AddCommand(
		c.listCommand(),
		c.getCommand(),
		c.createCommand(),
		c.updateCommand(),
		c.stockCommand(),
		c.deleteCommand(),
		c.loginCommand(),
		c.logoutCommand(),
		c.sessionCommand(),
		c.doctorCommand(),
		c.seedCommand(),
	)
	return root
}

// open loads configuration and builds the application for cmd.
func (c *console) open(cmd *cobra.Command) (*app.App, error) {
	if c.app != nil {
		return c.app, nil
	}
	if c.output != OutputTable && c.output != OutputJSON {
		return nil, usageErrorf("unsupported output format %q (use %s or %s)", c.output, OutputTable, OutputJSON)
	}

	cfg, err := config.Load(c.envFiles...)
	if err != nil {
		return nil, err
	}
	if c.apiURL != "" {
		cfg.APIURL = c.apiURL
	}

	level := cfg.LogLevel
	if c.verbose {
		level = "debug"
	}
	log := logger.New(logger.Options{
		Service: serviceName,
		Level:   level,
		Format:  cfg.LogFormat,
		Writer:  cmd.ErrOrStderr(),
	})

	a, err := app.NewApp(cmd.Context(), cfg, log, loginHint{w: cmd.ErrOrStderr(), loginURL: cfg.LoginURL})
	if err != nil {
		return nil, err
	}
	c.app = a
	return a, nil
}

// exactArgs is cobra.ExactArgs reported as a usage error.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return &exitError{code: ExitUsage, err: err}
		}
		return nil
	}
}

func report(w io.Writer, err error) {
	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		fmt.Fprintln(w, "Error: validation failed")
		for _, fe := range valErr.FieldErrors() {
			for _, msg := range fe.Messages {
				fmt.Fprintf(w, "  %s: %s\n", fe.Field, msg)
			}
		}
		return
	}
	fmt.Fprintf(w, "Error: %s\n", err)
}

func exitCode(err error) int {
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		return ExitUsage
	}
	return ExitFailure
}

// loginHint tells the user where to sign in after the API rejects the
// session.
type loginHint struct {
	w        io.Writer
	loginURL string
}

func (h loginHint) RedirectToLogin(context.Context) {
	fmt.Fprintf(h.w, "Session expired or missing. Sign in at %s, then run: %s login --token <token>\n",
		h.loginURL, serviceName)
}
