package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/kbukum/apikit/api"
	"github.com/kbukum/apikit/bootstrap"
)

func (c *CLI) userCommand() *cobra.Command {
	var fresh bool
	cmd := &cobra.Command{
		Use:   "user <id>",
		Short: "Fetch a user, answering from the cache when possible",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, func(ctx context.Context, app *bootstrap.App) error {
				client := api.NewClient(app.Dispatcher())
				fetch := client.User
				if fresh {
					fetch = client.FreshUser
				}
				user, err := fetch(ctx, args[0])
				if err != nil {
					return err
				}
				return c.printJSON(user)
			})
		},
	}
	cmd.Flags().BoolVar(&fresh, "fresh", false, "skip the cache")
	return cmd
}

func (c *CLI) keywordsCommand() *cobra.Command {
	var req api.GetKeywordListRequest
	cmd := &cobra.Command{
		Use:   "keywords",
		Short: "Fetch the keyword list, retrying transient failures",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, func(ctx context.Context, app *bootstrap.App) error {
				list, err := api.NewClient(app.Dispatcher()).Keywords(ctx, req)
				if err != nil {
					return err
				}
				return c.printJSON(list)
			})
		},
	}
	cmd.Flags().IntVar(&req.Limit, "limit", 0, "maximum number of keywords")
	cmd.Flags().BoolVar(&req.UseCache, "cached", false, "answer from the cache when possible")
	return cmd
}
