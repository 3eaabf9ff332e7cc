package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/user/barky/internal/app"
	"github.com/user/barky/internal/db"
	"github.com/user/barky/internal/shell"
)

var (
	listByFlag      string
	jsonOutput      bool
	plaintextOutput bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List bookmarks",
	Long:  "Print every bookmark ordered by date added or by title.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			c := a.Commands().ListByDate
			switch listByFlag {
			case "date":
			case "title":
				c = a.Commands().ListByTitle
			default:
				return fmt.Errorf("unknown order %q (want date or title)", listByFlag)
			}

			_, res, err := c.Execute(ctx, nil)
			if err != nil {
				return fmt.Errorf("failed to list bookmarks: %w", err)
			}
			bookmarks := res.([]db.Bookmark)

			out := cmd.OutOrStdout()
			switch {
			case jsonOutput:
				return outputJSON(out, bookmarks)
			case plaintextOutput:
				return outputPlaintext(out, bookmarks)
			default:
				return outputDefault(out, bookmarks)
			}
		})
	},
}

func outputJSON(w io.Writer, bookmarks []db.Bookmark) error {
	data, err := json.MarshalIndent(bookmarks, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(w, string(data))
	return nil
}

func outputPlaintext(w io.Writer, bookmarks []db.Bookmark) error {
	for _, b := range bookmarks {
		fmt.Fprintf(w, "%d\t%s\t%s\n", b.ID, b.Title, b.URL)
	}
	return nil
}

func outputDefault(w io.Writer, bookmarks []db.Bookmark) error {
	if len(bookmarks) == 0 {
		fmt.Fprintln(w, "No bookmarks yet.")
		return nil
	}
	for _, b := range bookmarks {
		fmt.Fprintln(w, shell.FormatBookmark(b))
		fmt.Fprintln(w)
	}
	return nil
}

func init() {
	listCmd.Flags().StringVar(&listByFlag, "by", "date", "Order by date or title")
	listCmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")
	listCmd.Flags().BoolVarP(&plaintextOutput, "plaintext", "p", false, "Output as tab-separated text")
	listCmd.MarkFlagsMutuallyExclusive("json", "plaintext")
	rootCmd.AddCommand(listCmd)
}
