package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/playwright-community/playwright-go"
	"github.com/rs/zerolog"

	"github.com/patrickjm/apicap/internal/artifact"
	"github.com/patrickjm/apicap/internal/browser"
	"github.com/patrickjm/apicap/internal/capture"
	"github.com/patrickjm/apicap/internal/config"
	"github.com/patrickjm/apicap/internal/logging"
)

type GlobalFlags struct {
	Config     string
	URL        string
	Filter     string
	Expect     string
	Wait       string
	NavTimeout string
	Out        string
	Browser    string
	Channel    string
	Headless   bool
	Headed     bool
	JSON       bool
	Quiet      bool
	Strict     bool
	LogLevel   string
	LogFile    string
}

type App struct {
	Out    io.Writer
	Err    io.Writer
	Engine browser.Engine
}

const (
	exitSuccess = 0
	exitFailure = 1
	exitUsage   = 2
)

func (a App) prepare(flags GlobalFlags) (config.Config, error) {
	cfg, err := config.Load(flags.Config)
	if err != nil {
		return config.Config{}, err
	}
	if err := applyFlags(&cfg, flags); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func (a App) logger(cfg config.Config, flags GlobalFlags) (zerolog.Logger, io.Closer, error) {
	return logging.New(logging.Options{
		Level: cfg.LogLevel,
		JSON:  flags.JSON,
		File:  cfg.LogFile,
		Out:   a.Err,
	})
}

func (a App) runCapture(ctx context.Context, cfg config.Config, flags GlobalFlags) int {
	log, closer, err := a.logger(cfg, flags)
	if err != nil {
		fmt.Fprintln(a.Err, err)
		return exitUsage
	}
	defer closer.Close()

	runner := capture.Runner{
		Engine: a.Engine,
		Store:  artifact.Store{Root: cfg.OutputDir},
		Log:    log,
	}
	res := runner.Run(ctx, capture.Options{
		PageURL:   cfg.PageURL,
		APIFilter: cfg.APIFilter,
		Expect:    cfg.Expect,
		Wait:      cfg.Wait,
		Browser:   startOptions(cfg),
	})

	if flags.JSON {
		b, _ := json.MarshalIndent(res, "", "  ")
		fmt.Fprintln(a.Out, string(b))
	} else if !flags.Quiet {
		fmt.Fprintf(a.Out, "%s status=%d responses=%d model_lists=%d dropped=%d\n",
			res.Outcome, res.Navigation.Status, res.Responses, res.ModelLists, res.Dropped)
		for _, path := range res.Files {
			fmt.Fprintf(a.Out, "wrote %s\n", path)
		}
	}
	if flags.Strict && res.Outcome != capture.OutcomeCaptured {
		return exitFailure
	}
	return exitSuccess
}

func (a App) runInstall(flags GlobalFlags) int {
	browsers := []string{}
	if flags.Browser != "" {
		browsers = append(browsers, flags.Browser)
	}
	opts := &playwright.RunOptions{}
	if len(browsers) > 0 {
		opts.Browsers = browsers
	}
	if err := playwright.Install(opts); err != nil {
		fmt.Fprintln(a.Err, err)
		return exitFailure
	}
	if !flags.Quiet {
		if len(browsers) == 0 {
			fmt.Fprintln(a.Out, "Playwright installed")
		} else {
			fmt.Fprintf(a.Out, "Playwright installed: %s\n", strings.Join(browsers, ", "))
		}
	}
	return exitSuccess
}

type doctorResult struct {
	ConfigSource      string `json:"config_source,omitempty"`
	PageURL           string `json:"page_url"`
	APIFilter         string `json:"api_filter"`
	Wait              string `json:"wait"`
	OutputDir         string `json:"output_dir"`
	OutputDirWritable bool   `json:"output_dir_writable"`
	Browser           string `json:"browser"`
	PlaywrightOK      bool   `json:"playwright_ok"`
	BrowsersPath      string `json:"browsers_path,omitempty"`
}

func (a App) runDoctor(cfg config.Config, flags GlobalFlags, probe func() error) int {
	res := doctorResult{
		ConfigSource: cfg.Source,
		PageURL:      cfg.PageURL,
		APIFilter:    cfg.APIFilter,
		Wait:         cfg.Wait.String(),
		OutputDir:    cfg.OutputDir,
		Browser:      cfg.Browser,
		BrowsersPath: os.Getenv("PLAYWRIGHT_BROWSERS_PATH"),
	}
	res.OutputDirWritable = artifact.Store{Root: cfg.OutputDir}.Writable()
	if probe == nil {
		probe = probePlaywright
	}
	if err := probe(); err == nil {
		res.PlaywrightOK = true
	}
	if flags.JSON {
		b, _ := json.MarshalIndent(res, "", "  ")
		fmt.Fprintln(a.Out, string(b))
		return exitSuccess
	}
	if res.ConfigSource != "" {
		fmt.Fprintf(a.Out, "config=%s\n", res.ConfigSource)
	}
	fmt.Fprintf(a.Out, "page_url=%s\n", res.PageURL)
	fmt.Fprintf(a.Out, "api_filter=%s\n", res.APIFilter)
	fmt.Fprintf(a.Out, "wait=%s\n", res.Wait)
	fmt.Fprintf(a.Out, "output_dir=%s\n", res.OutputDir)
	fmt.Fprintf(a.Out, "output_dir_writable=%t\n", res.OutputDirWritable)
	fmt.Fprintf(a.Out, "browser=%s\n", res.Browser)
	fmt.Fprintf(a.Out, "playwright_ok=%t\n", res.PlaywrightOK)
	if res.BrowsersPath != "" {
		fmt.Fprintf(a.Out, "browsers_path=%s\n", res.BrowsersPath)
	}
	return exitSuccess
}

func probePlaywright() error {
	pw, err := playwright.Run()
	if err != nil {
		return err
	}
	return pw.Stop()
}

func startOptions(cfg config.Config) browser.StartOptions {
	return browser.StartOptions{
		Browser:      cfg.Browser,
		Channel:      cfg.Channel,
		Headless:     cfg.Headless,
		NavTimeoutMs: int(cfg.NavTimeout.Milliseconds()),
	}
}

func applyFlags(cfg *config.Config, flags GlobalFlags) error {
	if flags.URL != "" {
		cfg.PageURL = flags.URL
	}
	if flags.Filter != "" {
		cfg.APIFilter = flags.Filter
	}
	if flags.Expect != "" {
		cfg.Expect = flags.Expect
	}
	if strings.TrimSpace(flags.Wait) != "" {
		d, err := config.ParseDuration("wait", flags.Wait)
		if err != nil {
			return err
		}
		cfg.Wait = d
	}
	if strings.TrimSpace(flags.NavTimeout) != "" {
		d, err := config.ParseDuration("nav timeout", flags.NavTimeout)
		if err != nil {
			return err
		}
		cfg.NavTimeout = d
	}
	if flags.Out != "" {
		cfg.OutputDir = flags.Out
	}
	if flags.Browser != "" {
		cfg.Browser = flags.Browser
	}
	if flags.Channel != "" {
		cfg.Channel = flags.Channel
	}
	if flags.Headless && flags.Headed {
		return errors.New("cannot set both --headless and --headed")
	}
	if flags.Headless {
		cfg.Headless = true
	}
	if flags.Headed {
		cfg.Headless = false
	}
	if flags.LogLevel != "" {
		cfg.LogLevel = flags.LogLevel
	}
	if flags.LogFile != "" {
		cfg.LogFile = flags.LogFile
	}
	if strings.TrimSpace(cfg.PageURL) == "" {
		return errors.New("page url required")
	}
	return nil
}
