// Package cli implements the apikit command line.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/kbukum/apikit/bootstrap"
	"github.com/kbukum/apikit/cache"
	"github.com/kbukum/apikit/config"
	"github.com/kbukum/apikit/errors"
	"github.com/kbukum/apikit/logger"
	"github.com/kbukum/apikit/version"
)

// ServiceName selects the config file, .env file and APIKIT_ environment prefix.
const ServiceName = "apikit"

// CLI holds the global flags and output streams of one invocation.
type CLI struct {
	out    io.Writer
	errOut io.Writer
	opts   []bootstrap.Option

	configFile   string
	baseURL      string
	cacheBackend string
	cacheDir     string
	timeout      time.Duration
	jsonErrors   bool
	verbose      bool
}

// New creates a CLI writing results to out and diagnostics to errOut.
// opts are passed to every bootstrap.App the commands create.
func New(out, errOut io.Writer, opts ...bootstrap.Option) *CLI {
	return &CLI{out: out, errOut: errOut, opts: opts}
}

// RootCommand builds the command tree.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "apikit",
		Short:         "Call the user API through the apikit dispatcher",
		Version:       version.Get().Short(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetVersionTemplate("apikit {{.Version}}\n")

	flags := root.PersistentFlags()
	flags.StringVarP(&c.configFile, "config", "c", "", "config file (default: searched)")
	flags.StringVar(&c.baseURL, "base-url", "", "override http.base_url")
	flags.StringVar(&c.cacheBackend, "cache", "", "override cache.backend (none, memory, file, redis; default file)")
	flags.StringVar(&c.cacheDir, "cache-dir", "", "override cache.dir")
	flags.DurationVar(&c.timeout, "timeout", 0, "override http.timeout")
	flags.BoolVar(&c.jsonErrors, "json", false, "print errors as JSON on stdout")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(c.userCommand())
	root.AddCommand(c.keywordsCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.versionCommand())
	return root
}

// Execute runs the command line args and reports a failure on the
// configured stream before returning it.
func (c *CLI) Execute(ctx context.Context, args []string) error {
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(c.out)
	root.SetErr(c.errOut)

	err := root.ExecuteContext(ctx)
	if err != nil {
		c.reportError(err)
	}
	return err
}

func (c *CLI) reportError(err error) {
	if !c.jsonErrors {
		fmt.Fprintf(c.errOut, "Error: %v\n", err)
		return
	}
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	_ = enc.Encode(errors.From(err).ToResponse())
}

func (c *CLI) newLogger() *logger.Logger {
	level := "warn"
	if c.verbose {
		level = "debug"
	}
	return logger.New(&logger.Config{
		Level:     level,
		Format:    logger.FormatConsole,
		Writer:    c.errOut,
		NoColor:   true,
		Timestamp: true,
	}, ServiceName)
}

// defaultConfig persists the cache across invocations: each command is its
// own process, so a memory cache would drop what "cache put" stores.
func defaultConfig() bootstrap.Config {
	return bootstrap.Config{Cache: cache.Config{Backend: cache.BackendFile}}
}

// loadConfig reads the config and applies flag overrides on top.
func (c *CLI) loadConfig() (*bootstrap.Config, error) {
	var opts []config.LoaderOption
	if c.configFile != "" {
		opts = append(opts, config.WithConfigFile(c.configFile))
	}
	cfg, err := bootstrap.LoadFrom(ServiceName, defaultConfig(), opts...)
	if err != nil {
		return nil, err
	}
	if c.baseURL != "" {
		cfg.HTTP.BaseURL = c.baseURL
	}
	if c.cacheBackend != "" {
		cfg.Cache.Backend = c.cacheBackend
	}
	if c.cacheDir != "" {
		cfg.Cache.Dir = c.cacheDir
	}
	if c.timeout > 0 {
		cfg.HTTP.Timeout = c.timeout
	}
	return cfg, nil
}

// run starts an App for the duration of task.
func (c *CLI) run(cmd *cobra.Command, task func(ctx context.Context, app *bootstrap.App) error) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	opts := append([]bootstrap.Option{bootstrap.WithLogger(c.newLogger())}, c.opts...)
	app, err := bootstrap.NewApp(cfg, opts...)
	if err != nil {
		return err
	}
	if c.verbose {
		app.OnReady(func(ctx context.Context) error {
			app.Summary.Write(ctx, c.errOut, app.Components)
			return nil
		})
	}
	return app.RunTask(cmd.Context(), func(ctx context.Context) error {
		return task(ctx, app)
	})
}

func (c *CLI) printJSON(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
