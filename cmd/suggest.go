package cmd

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/user/barky/internal/app"
	"github.com/user/barky/internal/commands"
	"github.com/user/barky/internal/db"
	"github.com/user/barky/internal/logger"
)

var (
	suggestMissingFlag bool
	suggestLimitFlag   int
)

var suggestCmd = &cobra.Command{
	Use:   "suggest [id]",
	Short: "Suggest notes for bookmarks",
	Long: "Scrape a bookmark's page and ask the configured LLM for a one-line summary and keywords, " +
		"stored as the bookmark's notes. With --missing, every bookmark without notes is processed.",
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if suggestMissingFlag == (len(args) == 1) {
			return errors.New("give either a bookmark id or --missing")
		}
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			if !suggestMissingFlag {
				id, err := strconv.ParseInt(args[0], 10, 64)
				if err != nil {
					return fmt.Errorf("invalid bookmark id %q", args[0])
				}
				_, res, err := a.Commands().Suggest.Execute(ctx, commands.SuggestNotesData{ID: id})
				if err != nil {
					return fmt.Errorf("suggest failed: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d: %s\n", id, res)
				return nil
			}
			return suggestMissing(ctx, cmd, a, suggestLimitFlag)
		})
	},
}

// suggestMissing fills notes for up to limit bookmarks that have none.
// Failures are logged and skipped; limit <= 0 means all of them.
func suggestMissing(ctx context.Context, cmd *cobra.Command, a *app.App, limit int) error {
	_, res, err := a.Commands().ListByDate.Execute(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to list bookmarks: %w", err)
	}

	var todo []db.Bookmark
	for _, b := range res.([]db.Bookmark) {
		if b.Notes == "" {
			todo = append(todo, b)
		}
	}
	if limit > 0 && len(todo) > limit {
		todo = todo[:limit]
	}
	if len(todo) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "Every bookmark already has notes.")
		return nil
	}

	log := a.Logger()
	done := 0
	for i, b := range todo {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "[%d/%d] %s\n", i+1, len(todo), b.Title)
		_, notes, err := a.Commands().Suggest.Execute(ctx, commands.SuggestNotesData{ID: b.ID})
		if err != nil {
			log.Warn("suggest failed", logger.Int64("id", b.ID), logger.Error(err))
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "   %s\n", notes)
		done++
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Suggested notes for %d of %d bookmarks.\n", done, len(todo))
	return nil
}

func init() {
	suggestCmd.Flags().BoolVarP(&suggestMissingFlag, "missing", "m", false, "Process every bookmark without notes")
	suggestCmd.Flags().IntVarP(&suggestLimitFlag, "limit", "l", 10, "With --missing, the most bookmarks to process (0 for all)")
	rootCmd.AddCommand(suggestCmd)
}
