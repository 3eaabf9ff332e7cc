package tui

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/user/barky/internal/commands"
	"github.com/user/barky/internal/db"
)

// Commands are the operations the browser drives. Delete may be nil for a
// read-only view.
type Commands struct {
	ListByDate  commands.Command
	ListByTitle commands.Command
	Delete      commands.Command
}

type model struct {
	ctx         context.Context
	cmds        Commands
	searchInput textinput.Model
	list        list.Model
	bookmarks   []db.Bookmark
	byTitle     bool
	width       int
	height      int
	searching   bool
	status      string
	err         error
}

type bookmarkItem struct {
	bookmark db.Bookmark
}

func (b bookmarkItem) Title() string {
	return fmt.Sprintf("%d. %s", b.bookmark.ID, b.bookmark.Title)
}

func (b bookmarkItem) Description() string {
	if b.bookmark.Notes != "" {
		notes := []rune(b.bookmark.Notes)
		if len(notes) > 80 {
			return string(notes[:80]) + "..."
		}
		return b.bookmark.Notes
	}
	return b.bookmark.URL
}

func (b bookmarkItem) FilterValue() string {
	return b.bookmark.Title + " " + b.bookmark.URL + " " + b.bookmark.Notes
}

func initialModel(ctx context.Context, cmds Commands) model {
	ti := textinput.New()
	ti.Placeholder = "Filter bookmarks..."
	ti.CharLimit = 256
	ti.Width = 50

	delegate := list.NewDefaultDelegate()
	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = "Barky"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)

	return model{
		ctx:         ctx,
		cmds:        cmds,
		searchInput: ti,
		list:        l,
	}
}

type loadMsg struct {
	bookmarks []db.Bookmark
	err       error
}

type deletedMsg struct {
	id  int64
	err error
}

type openedMsg struct {
	url string
	err error
}

func (m model) Init() tea.Cmd {
	return m.load
}

func (m model) load() tea.Msg {
	cmd := m.cmds.ListByDate
	if m.byTitle {
		cmd = m.cmds.ListByTitle
	}
	_, res, err := cmd.Execute(m.ctx, nil)
	if err != nil {
		return loadMsg{err: err}
	}
	bookmarks, ok := res.([]db.Bookmark)
	if !ok {
		return loadMsg{err: fmt.Errorf("list returned %T", res)}
	}
	return loadMsg{bookmarks: bookmarks}
}

func (m model) deleteSelected() tea.Cmd {
	item, ok := m.list.SelectedItem().(bookmarkItem)
	if !ok || m.cmds.Delete == nil {
		return nil
	}
	id := item.bookmark.ID
	return func() tea.Msg {
		_, _, err := m.cmds.Delete.Execute(m.ctx, commands.DeleteBookmarkData{ID: id})
		return deletedMsg{id: id, err: err}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "q":
			if !m.searching {
				return m, tea.Quit
			}
		case "esc":
			if m.searching {
				m.searching = false
				m.searchInput.Blur()
				return m, nil
			}
		case "/":
			if !m.searching {
				m.searching = true
				m.searchInput.Focus()
				return m, textinput.Blink
			}
		case "enter":
			if m.searching {
				m.searching = false
				m.searchInput.Blur()
				m.applyFilter()
				return m, nil
			}
		case "j", "down":
			if !m.searching {
				m.list.CursorDown()
				return m, nil
			}
		case "k", "up":
			if !m.searching {
				m.list.CursorUp()
				return m, nil
			}
		case "g":
			if !m.searching {
				m.list.Select(0)
				return m, nil
			}
		case "G":
			if !m.searching {
				if n := len(m.list.Items()); n > 0 {
					m.list.Select(n - 1)
				}
				return m, nil
			}
		case "b", "t":
			if !m.searching {
				m.byTitle = msg.String() == "t"
				return m, m.load
			}
		case "o":
			if !m.searching {
				if item, ok := m.list.SelectedItem().(bookmarkItem); ok {
					return m, openCmd(item.bookmark.URL)
				}
				return m, nil
			}
		case "d":
			if !m.searching {
				return m, m.deleteSelected()
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width, msg.Height-6)
		m.searchInput.Width = msg.Width - 20

	case loadMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.bookmarks = msg.bookmarks
		m.applyFilter()
		return m, nil

	case deletedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("delete %d failed: %v", msg.id, msg.err)
			return m, nil
		}
		m.status = fmt.Sprintf("Bookmark %d deleted", msg.id)
		return m, m.load

	case openedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("open %s: %v", msg.url, msg.err)
		}
		return m, nil
	}

	if m.searching {
		var cmd tea.Cmd
		m.searchInput, cmd = m.searchInput.Update(msg)
		cmds = append(cmds, cmd)
		m.applyFilter()
	} else {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// applyFilter shows the loaded bookmarks matching the filter text. Matching
// is a case-insensitive substring test on title, URL and notes.
func (m *model) applyFilter() {
	query := strings.ToLower(strings.TrimSpace(m.searchInput.Value()))
	items := make([]list.Item, 0, len(m.bookmarks))
	for _, b := range m.bookmarks {
		item := bookmarkItem{bookmark: b}
		if query == "" || strings.Contains(strings.ToLower(item.FilterValue()), query) {
			items = append(items, item)
		}
	}
	m.list.SetItems(items)
}

func (m model) View() string {
	if m.err != nil {
		return fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err)
	}

	var b strings.Builder

	searchStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("62")).
		Padding(0, 1)

	sortStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("86")).
		Bold(true)

	order := "by date"
	if m.byTitle {
		order = "by title"
	}

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Center,
		searchStyle.Render(m.searchInput.View()), "  ", sortStyle.Render(order)))
	b.WriteString("\n\n")

	b.WriteString(m.list.View())

	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		MarginTop(1)

	if m.status != "" {
		b.WriteString("\n" + m.status)
	}
	help := "[j/k]nav [g/G]top/end [/]filter [b]date [t]title [o]pen [d]elete [q]uit"
	b.WriteString(helpStyle.Render(help))

	return b.String()
}

// openURL is swapped in tests.
var openURL = openBrowser

func openCmd(url string) tea.Cmd {
	return func() tea.Msg {
		return openedMsg{url: url, err: openURL(url)}
	}
}

func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	default:
		return errors.New("no browser opener for " + runtime.GOOS)
	}
	return cmd.Start()
}

// Run starts the bookmark browser and blocks until the user quits.
func Run(ctx context.Context, cmds Commands) error {
	p := tea.NewProgram(initialModel(ctx, cmds), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
