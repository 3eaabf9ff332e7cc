package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/user/barky/internal/app"
	"github.com/user/barky/internal/commands"
)

var (
	addTitleFlag string
	addNotesFlag string
)

var addCmd = &cobra.Command{
	Use:   "add <url>",
	Short: "Add a bookmark",
	Long: "Add a URL with a title and optional notes. The bookmark is stamped with the current time. " +
		"Without --title the page is scraped and its first line is used.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			title := addTitleFlag
			if title == "" {
				title = a.PageTitle(ctx, args[0])
			}
			_, _, err := a.Commands().Add.Execute(ctx, commands.AddBookmarkData{
				Title: title,
				URL:   args[0],
				Notes: addNotesFlag,
			})
			if err != nil {
				return fmt.Errorf("failed to add bookmark: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Bookmark added!")
			return nil
		})
	},
}

func init() {
	addCmd.Flags().StringVarP(&addTitleFlag, "title", "t", "", "Bookmark title (default: scraped from the page)")
	addCmd.Flags().StringVarP(&addNotesFlag, "notes", "n", "", "Free-form notes")
	rootCmd.AddCommand(addCmd)
}
