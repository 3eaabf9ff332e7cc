// Package shell is the interactive menu: a fixed set of single-letter
// options, each collecting its input, running a command and printing the
// outcome.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/user/barky/internal/commands"
	"github.com/user/barky/internal/db"
	"github.com/user/barky/internal/logger"
)

// Option is one menu entry. Prep gathers the command's payload and may be
// nil. SuccessMessage may contain {result}.
type Option struct {
	Shortcut       string
	Name           string
	Command        commands.Command
	Prep           func(ctx context.Context, p *Prompter) (any, error)
	SuccessMessage string
}

// Commands are the actions the default menu offers.
type Commands struct {
	Add         commands.Command
	ListByDate  commands.Command
	ListByTitle commands.Command
	Delete      commands.Command
	Import      commands.Command
	Edit        commands.Command
	Suggest     commands.Command
	Quit        commands.Command
}

// Menu lays out the default options in display order. A nil command
// leaves its option out.
func Menu(c Commands) []Option {
	all := []Option{
		{Shortcut: "A", Name: "Add a bookmark", Command: c.Add, Prep: newBookmarkData, SuccessMessage: "Bookmark added!"},
		{Shortcut: "B", Name: "List bookmarks by date", Command: c.ListByDate},
		{Shortcut: "T", Name: "List bookmarks by title", Command: c.ListByTitle},
		{Shortcut: "D", Name: "Delete a bookmark", Command: c.Delete, Prep: bookmarkIDForDeletion, SuccessMessage: "Bookmark deleted!"},
		{Shortcut: "G", Name: "Import GitHub stars", Command: c.Import, Prep: githubImportOptions, SuccessMessage: "Imported {result} bookmarks from starred repos!"},
		{Shortcut: "U", Name: "Update a bookmark", Command: c.Edit, Prep: updatedBookmarkInfo, SuccessMessage: "Bookmark updated!"},
		{Shortcut: "N", Name: "Suggest notes for a bookmark", Command: c.Suggest, Prep: bookmarkIDForSuggestion, SuccessMessage: "Notes set to: {result}"},
		{Shortcut: "Q", Name: "Quit", Command: c.Quit},
	}
	out := make([]Option, 0, len(all))
	for _, o := range all {
		if o.Command != nil {
			out = append(out, o)
		}
	}
	return out
}

var (
	shortcutStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

type Shell struct {
	options  []Option
	byKey    map[string]Option
	prompter *Prompter
	out      io.Writer
	clear    bool
	log      logger.Logger
}

// New builds a shell over in/out. Screen clearing only happens when
// clearScreen is set and out is a terminal.
func New(options []Option, in io.Reader, out io.Writer, clearScreen bool, log logger.Logger) *Shell {
	byKey := make(map[string]Option, len(options))
	for _, o := range options {
		byKey[strings.ToUpper(o.Shortcut)] = o
	}
	return &Shell{
		options:  options,
		byKey:    byKey,
		prompter: NewPrompter(in, out),
		out:      out,
		clear:    clearScreen && isTerminal(out),
		log:      log,
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Run shows the menu until the user quits or input ends. Command failures
// are printed and the menu comes back; they never end the loop. Cancelling
// ctx interrupts a waiting prompt and Run returns ctx.Err().
func (s *Shell) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		s.clearScreen()
		s.printOptions()

		opt, err := s.choose(ctx)
		if err != nil {
			return ignoreEOF(err)
		}

		s.clearScreen()
		if err := s.runOption(ctx, opt); err != nil {
			if errors.Is(err, commands.ErrQuit) {
				return nil
			}
			return ignoreEOF(err)
		}

		if err := s.prompter.Pause(ctx, "Press ENTER to return to menu"); err != nil {
			return ignoreEOF(err)
		}
	}
}

func ignoreEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func (s *Shell) clearScreen() {
	if s.clear {
		fmt.Fprint(s.out, "\033[H\033[2J")
	}
}

func (s *Shell) printOptions() {
	for _, o := range s.options {
		fmt.Fprintf(s.out, "%s %s\n", shortcutStyle.Render("("+o.Shortcut+")"), o.Name)
	}
	fmt.Fprintln(s.out)
}

func (s *Shell) choose(ctx context.Context) (Option, error) {
	for {
		choice, err := s.prompter.Ask(ctx, "Choose an option", false)
		if err != nil {
			return Option{}, err
		}
		if opt, ok := s.byKey[strings.ToUpper(choice)]; ok {
			return opt, nil
		}
		fmt.Fprintln(s.out, "Invalid choice")
	}
}

// runOption returns only errors that should end the loop: ErrQuit, input
// errors and cancellation. Everything else is reported to the user.
func (s *Shell) runOption(ctx context.Context, opt Option) error {
	var data any
	if opt.Prep != nil {
		d, err := opt.Prep(ctx, s.prompter)
		if err != nil {
			return err
		}
		data = d
	}

	ok, result, err := opt.Command.Execute(ctx, data)
	if errors.Is(err, commands.ErrQuit) {
		return err
	}
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		s.log.Warn("command failed", logger.String("option", opt.Name), logger.Error(err))
		if n, partial := result.(int); partial && n > 0 {
			fmt.Fprintf(s.out, "%d bookmarks were imported before the failure.\n", n)
		}
		fmt.Fprintln(s.out, errorStyle.Render("Error: "+describeError(err)))
		return nil
	}

	if ok {
		msg := opt.SuccessMessage
		if msg == "" {
			msg = "{result}"
		}
		fmt.Fprintln(s.out, strings.ReplaceAll(msg, "{result}", FormatResult(result)))
	}
	return nil
}

func describeError(err error) string {
	var se *db.StoreError
	switch {
	case errors.Is(err, commands.ErrNotFound):
		return "no bookmark with that ID"
	case errors.As(err, &se):
		return "the bookmark store rejected the operation: " + se.Err.Error()
	default:
		return err.Error()
	}
}

// FormatResult renders a command result for display.
func FormatResult(result any) string {
	switch r := result.(type) {
	case nil:
		return ""
	case []db.Bookmark:
		var b strings.Builder
		for _, bm := range r {
			b.WriteString("\n")
			b.WriteString(FormatBookmark(bm))
		}
		return b.String()
	case int:
		return strconv.Itoa(r)
	case string:
		return r
	default:
		return fmt.Sprint(r)
	}
}

// FormatBookmark puts each field on its own line, blank when absent.
func FormatBookmark(b db.Bookmark) string {
	fields := []string{"", b.Title, b.URL, b.Notes, ""}
	if b.ID != 0 {
		fields[0] = strconv.FormatInt(b.ID, 10)
	}
	if !b.DateAdded.IsZero() {
		fields[4] = db.FormatTime(b.DateAdded)
	}
	return strings.Join(fields, "\n")
}
