package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/user/barky/internal/app"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse bookmarks in a full-screen list",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			return a.Browse(ctx)
		})
	},
}

func init() {
	rootCmd.AddCommand(browseCmd)
}
