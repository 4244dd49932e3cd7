package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/patrickjm/apicap/internal/browser"
)

type exitError struct {
	code int
}

func (e exitError) Error() string {
	return fmt.Sprintf("exit %d", e.code)
}

var Version = "dev"

func Execute(args []string, out io.Writer, errOut io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	app := App{Out: out, Err: errOut, Engine: browser.PlaywrightEngine{}}
	return app.execute(ctx, args, nil)
}

// execute runs the command tree; probe replaces the doctor's driver check
// when non-nil.
func (app App) execute(ctx context.Context, args []string, probe func() error) int {
	out, errOut := app.Out, app.Err
	flags := GlobalFlags{}
	var showVersion bool

	root := &cobra.Command{
		Use:           "apicap",
		Short:         "Capture JSON API responses observed while a page loads",
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := app.prepare(flags)
			if err != nil {
				fmt.Fprintln(errOut, err)
				return exitError{code: exitUsage}
			}
			return exitOrNil(app.runCapture(cmd.Context(), cfg, flags))
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	root.PersistentFlags().BoolVarP(&showVersion, "version", "V", false, "version")
	root.PersistentFlags().StringVarP(&flags.Config, "config", "C", "", "config file")
	root.PersistentFlags().BoolVarP(&flags.JSON, "json", "j", false, "json output")
	root.PersistentFlags().BoolVarP(&flags.Quiet, "quiet", "q", false, "quiet output")
	root.PersistentFlags().StringVarP(&flags.Browser, "browser", "b", "", "browser type")
	root.PersistentFlags().StringVarP(&flags.Out, "out", "o", "", "output directory")
	root.PersistentFlags().StringVar(&flags.LogLevel, "log-level", "", "log level")
	root.PersistentFlags().StringVar(&flags.LogFile, "log-file", "", "also log to file")

	root.Flags().StringVarP(&flags.URL, "url", "u", "", "page url")
	root.Flags().StringVarP(&flags.Filter, "filter", "f", "", "api url substring")
	root.Flags().StringVarP(&flags.Expect, "expect", "e", "", "expected response content")
	root.Flags().StringVarP(&flags.Wait, "wait", "w", "", "capture wait after load")
	root.Flags().StringVarP(&flags.NavTimeout, "nav-timeout", "t", "", "navigation timeout")
	root.Flags().StringVarP(&flags.Channel, "channel", "c", "", "browser channel")
	root.Flags().BoolVarP(&flags.Headless, "headless", "H", false, "run headless")
	root.Flags().BoolVarP(&flags.Headed, "headed", "E", false, "run headed")
	root.Flags().BoolVarP(&flags.Strict, "strict", "s", false, "exit non-zero unless capture succeeded")

	root.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		if showVersion {
			fmt.Fprintln(out, Version)
			return exitError{code: exitSuccess}
		}
		return nil
	}

	root.AddCommand(&cobra.Command{
		Use:   "install",
		Short: "Install Playwright driver and browsers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return exitOrNil(app.runInstall(flags))
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "doctor",
		Short: "Check configuration and driver health",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := app.prepare(flags)
			if err != nil {
				fmt.Fprintln(errOut, err)
				return exitError{code: exitUsage}
			}
			return exitOrNil(app.runDoctor(cfg, flags, probe))
		},
	})

	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		var exit exitError
		if errors.As(err, &exit) {
			return exit.code
		}
		fmt.Fprintln(errOut, err)
		return exitUsage
	}
	return exitSuccess
}

func exitOrNil(code int) error {
	if code == exitSuccess {
		return nil
	}
	return exitError{code: code}
}
