package shell

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/user/barky/internal/commands"
)

type readResult struct {
	text string
	err  error
}

// Prompter reads line-based answers. Lines are read by a background
// goroutine so a cancelled context interrupts a waiting prompt. Once the
// input fails (io.EOF included) every later read returns the same error.
type Prompter struct {
	in    *bufio.Reader
	out   io.Writer
	lines chan readResult
	start sync.Once
	err   error
}

func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{
		in:    bufio.NewReader(in),
		out:   out,
		lines: make(chan readResult),
	}
}

func (p *Prompter) readLines() {
	for {
		text, err := p.in.ReadString('\n')
		if text != "" {
			p.lines <- readResult{text: text}
		}
		if err != nil {
			p.lines <- readResult{err: err}
			return
		}
	}
}

func (p *Prompter) readLine(ctx context.Context, label string) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	p.start.Do(func() { go p.readLines() })

	fmt.Fprintf(p.out, "%s: ", label)
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-p.lines:
		if r.err != nil {
			p.err = r.err
			return "", r.err
		}
		return strings.TrimSpace(r.text), nil
	}
}

// Ask prompts for label. A required value is asked for again until the
// answer is non-empty.
func (p *Prompter) Ask(ctx context.Context, label string, required bool) (string, error) {
	for {
		v, err := p.readLine(ctx, label)
		if err != nil {
			return "", err
		}
		if v != "" || !required {
			return v, nil
		}
	}
}

// AskID re-prompts until the answer is an integer.
func (p *Prompter) AskID(ctx context.Context, label string) (int64, error) {
	for {
		v, err := p.Ask(ctx, label, true)
		if err != nil {
			return 0, err
		}
		id, err := strconv.ParseInt(v, 10, 64)
		if err == nil {
			return id, nil
		}
		fmt.Fprintln(p.out, "Please enter a numeric ID")
	}
}

// Pause waits for the user to press enter.
func (p *Prompter) Pause(ctx context.Context, label string) error {
	_, err := p.readLine(ctx, label)
	return err
}

func newBookmarkData(ctx context.Context, p *Prompter) (any, error) {
	title, err := p.Ask(ctx, "Title", true)
	if err != nil {
		return nil, err
	}
	url, err := p.Ask(ctx, "URL", true)
	if err != nil {
		return nil, err
	}
	notes, err := p.Ask(ctx, "Notes", false)
	if err != nil {
		return nil, err
	}
	return commands.AddBookmarkData{Title: title, URL: url, Notes: notes}, nil
}

func bookmarkIDForDeletion(ctx context.Context, p *Prompter) (any, error) {
	id, err := p.AskID(ctx, "Enter a bookmark ID to delete")
	if err != nil {
		return nil, err
	}
	return commands.DeleteBookmarkData{ID: id}, nil
}

func githubImportOptions(ctx context.Context, p *Prompter) (any, error) {
	user, err := p.Ask(ctx, "GitHub username", true)
	if err != nil {
		return nil, err
	}
	preserve, err := p.Ask(ctx, "Preserve timestamps [Y/n]", false)
	if err != nil {
		return nil, err
	}
	return commands.ImportStarsData{
		Username:          user,
		PreserveTimestamp: preserve == "" || strings.EqualFold(preserve, "y"),
	}, nil
}

func updatedBookmarkInfo(ctx context.Context, p *Prompter) (any, error) {
	id, err := p.AskID(ctx, "Enter a bookmark ID to edit")
	if err != nil {
		return nil, err
	}

	var field string
	for {
		raw, err := p.Ask(ctx, "Choose a value to edit (title, URL, notes)", true)
		if err != nil {
			return nil, err
		}
		if f, ok := commands.NormalizeField(raw); ok {
			field = f
			break
		}
		fmt.Fprintln(p.out, "Invalid field")
	}

	// notes may be cleared, the other fields are required
	value, err := p.Ask(ctx, fmt.Sprintf("Enter the new value for %s", field), field != "notes")
	if err != nil {
		return nil, err
	}
	return commands.EditBookmarkData{ID: id, Field: field, Value: value}, nil
}

func bookmarkIDForSuggestion(ctx context.Context, p *Prompter) (any, error) {
	id, err := p.AskID(ctx, "Enter a bookmark ID to describe")
	if err != nil {
		return nil, err
	}
	return commands.SuggestNotesData{ID: id}, nil
}
