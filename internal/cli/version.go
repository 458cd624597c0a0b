package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kbukum/apikit/version"
)

func (c *CLI) versionCommand() *cobra.Command {
	var short bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := version.Get()
			if short {
				_, err := fmt.Fprintln(c.out, info.Short())
				return err
			}
			_, err := fmt.Fprintln(c.out, info.String())
			return err
		},
	}
	cmd.Flags().BoolVar(&short, "short", false, "print the version only")
	return cmd
}
