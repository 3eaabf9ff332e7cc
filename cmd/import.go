package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/user/barky/internal/app"
	"github.com/user/barky/internal/commands"
)

var noPreserveFlag bool

var importCmd = &cobra.Command{
	Use:   "import <username>",
	Short: "Import a user's GitHub stars",
	Long:  "Walk every page of the user's starred repositories and add one bookmark per repository.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			_, res, err := a.Commands().Import.Execute(ctx, commands.ImportStarsData{
				Username:          args[0],
				PreserveTimestamp: !noPreserveFlag,
			})
			n, _ := res.(int)
			if err != nil {
				if n > 0 {
					fmt.Fprintf(cmd.ErrOrStderr(), "%d bookmarks were imported before the failure.\n", n)
				}
				return fmt.Errorf("import failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d bookmarks from starred repos!\n", n)
			return nil
		})
	},
}

func init() {
	importCmd.Flags().BoolVar(&noPreserveFlag, "no-preserve", false, "Stamp bookmarks with the import time instead of the star time")
	rootCmd.AddCommand(importCmd)
}
