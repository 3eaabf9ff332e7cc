package app

import (
	"context"
	"fmt"
	"io"

	"github.com/user/barky/internal/commands"
	"github.com/user/barky/internal/config"
	"github.com/user/barky/internal/db"
	"github.com/user/barky/internal/enrich"
	"github.com/user/barky/internal/logger"
	"github.com/user/barky/internal/shell"
	"github.com/user/barky/internal/sources"
	"github.com/user/barky/internal/tui"
)

// Commands is every operation the front ends can run, wired to one store.
type Commands struct {
	Add         *commands.AddBookmark
	ListByDate  *commands.ListBookmarks
	ListByTitle *commands.ListBookmarks
	Edit        *commands.EditBookmark
	Delete      *commands.DeleteBookmark
	Import      *commands.ImportGitHubStars
	Suggest     *commands.SuggestNotes
	Quit        commands.Quit
}

type App struct {
	cfg     *config.Config
	logger  logger.Logger
	store   *db.Store
	scraper *enrich.Scraper
	cmds    Commands
}

// Options are the command-line overrides applied on top of the loaded
// configuration.
type Options struct {
	DataDir  string
	LogLevel string
}

// New loads configuration, opens the bookmark database and makes sure the
// bookmarks table exists.
func New(ctx context.Context, opts Options) (*App, error) {
	cfg, err := config.Load(opts.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}

	log, err := logger.New(cfg.LogLevel, cfg.PrettyLog)
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	return Build(ctx, cfg, log)
}

// Build wires the application from an already resolved configuration.
func Build(ctx context.Context, cfg *config.Config, log logger.Logger) (*App, error) {
	log.Debug("opening bookmark database", logger.String("path", cfg.DBPath()))
	store, err := db.Open(cfg.DBPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, _, err := (&commands.CreateBookmarksTable{Store: store}).Execute(ctx, nil); err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to create bookmarks table: %w", err)
	}

	add := commands.NewAddBookmark(store)

	github := sources.NewGitHubSource(sources.GitHubOptions{
		APIURL:  cfg.GitHub.APIURL,
		Token:   cfg.GitHub.Token,
		Timeout: cfg.GitHub.Timeout,
		PerPage: cfg.GitHub.PerPage,
	}, log)

	suggest := &commands.SuggestNotes{
		Store:      store,
		Summarizer: enrich.NewSummarizer(cfg.LLM),
		Log:        log,
	}
	var scraper *enrich.Scraper
	if cfg.Scraper.Enabled {
		scraper = enrich.NewScraper(cfg.Scraper.BaseURL, cfg.Scraper.Timeout)
		suggest.Scraper = scraper
	} else {
		log.Debug("page scraping disabled, notes are suggested from stored fields")
	}

	return &App{
		cfg:     cfg,
		logger:  log,
		store:   store,
		scraper: scraper,
		cmds: Commands{
			Add:         add,
			ListByDate:  &commands.ListBookmarks{Store: store, OrderBy: "date_added"},
			ListByTitle: &commands.ListBookmarks{Store: store, OrderBy: "title"},
			Edit:        &commands.EditBookmark{Store: store},
			Delete:      &commands.DeleteBookmark{Store: store},
			Import:      &commands.ImportGitHubStars{Source: github, Add: add, Log: log},
			Suggest:     suggest,
		},
	}, nil
}

func (a *App) Commands() Commands {
	return a.cmds
}

func (a *App) Config() *config.Config {
	return a.cfg
}

func (a *App) Logger() logger.Logger {
	return a.logger
}

// PageTitle scrapes url and returns the first line of the page. It falls
// back to url when scraping is disabled or fails.
func (a *App) PageTitle(ctx context.Context, url string) string {
	if a.scraper == nil {
		return url
	}
	content, err := a.scraper.Scrape(ctx, url)
	if err != nil {
		a.logger.Warn("could not scrape page title", logger.String("url", url), logger.Error(err))
		return url
	}
	return enrich.TitleFromContent(content, url)
}

// RunShell runs the interactive menu until the user quits.
func (a *App) RunShell(ctx context.Context, in io.Reader, out io.Writer) error {
	c := a.cmds
	menu := shell.Menu(shell.Commands{
		Add:         c.Add,
		ListByDate:  c.ListByDate,
		ListByTitle: c.ListByTitle,
		Delete:      c.Delete,
		Import:      c.Import,
		Edit:        c.Edit,
		Suggest:     c.Suggest,
		Quit:        c.Quit,
	})
	a.logger.Debug("starting shell", logger.Int("options", len(menu)))
	return shell.New(menu, in, out, a.cfg.ClearScreen, a.logger).Run(ctx)
}

// Browse opens the full-screen bookmark browser.
func (a *App) Browse(ctx context.Context) error {
	return tui.Run(ctx, tui.Commands{
		ListByDate:  a.cmds.ListByDate,
		ListByTitle: a.cmds.ListByTitle,
		Delete:      a.cmds.Delete,
	})
}

// Close releases the database and flushes the logger.
func (a *App) Close() error {
	err := a.store.Close()
	_ = a.logger.Sync()
	return err
}
