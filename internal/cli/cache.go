package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kbukum/apikit/bootstrap"
	"github.com/kbukum/apikit/errors"
)

// cacheCommand manages entries the dispatcher reads. The dispatcher never
// writes to the cache, so this is how entries get there.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage cached responses",
	}
	cmd.AddCommand(c.cachePutCommand())
	cmd.AddCommand(c.cacheGetCommand())
	cmd.AddCommand(c.cacheDeleteCommand())
	return cmd
}

func (c *CLI) cachePutCommand() *cobra.Command {
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "put <key> <json>",
		Short: "Store a JSON document under key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data := []byte(args[1])
			if !json.Valid(data) {
				return errors.InvalidRequest("value is not valid JSON").WithDetail("key", args[0])
			}
			return c.run(cmd, func(ctx context.Context, app *bootstrap.App) error {
				if ttl == 0 {
					ttl = app.Cfg.Cache.TTL
				}
				return app.Store().Set(ctx, args[0], data, ttl)
			})
		},
	}
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "entry lifetime (default: cache.ttl, 0 keeps it forever)")
	return cmd
}

func (c *CLI) cacheGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print the document stored under key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, func(ctx context.Context, app *bootstrap.App) error {
				data, ok, err := app.Store().Get(ctx, args[0])
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("cache: no entry for %q", args[0])
				}
				_, err = fmt.Fprintln(c.out, string(data))
				return err
			})
		},
	}
}

func (c *CLI) cacheDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <key>",
		Short: "Remove the entry stored under key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, func(ctx context.Context, app *bootstrap.App) error {
				return app.Store().Delete(ctx, args[0])
			})
		},
	}
}
