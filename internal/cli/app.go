package cli

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/mlevkov/pagekeeper/internal/auth"
	"github.com/mlevkov/pagekeeper/internal/config"
	"github.com/mlevkov/pagekeeper/internal/githost"
	"github.com/mlevkov/pagekeeper/internal/keycache"
	"github.com/mlevkov/pagekeeper/internal/logging"
	"github.com/mlevkov/pagekeeper/internal/publish"
	"github.com/mlevkov/pagekeeper/internal/services"
	"github.com/mlevkov/pagekeeper/internal/state"
)

// App holds the wired services and the session state of one interactive run.
type App struct {
	config    *config.Config
	store     *state.Store
	auth      services.AuthService
	publisher services.PublishService
	site      services.SiteService
	loader    *services.ContentService
	content   *services.Content
	log       logging.Logger
	reader    *bufio.Reader

	loggedIn bool
	// advisory guard: publish commands refuse to start while one runs
	busy bool
}

func NewApp(c *config.Config) (*App, error) {
	ctx := context.Background()

	store, err := state.Open(ctx, c.StateDBPath)
	if err != nil {
		return nil, fmt.Errorf("opening state database: %w", err)
	}

	logger := logging.NewSlogLogger(slog.New(
		slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	client := githost.NewHTTPClient(c.APIBaseURL, c.Owner, c.Repo,
		&http.Client{Timeout: 30 * time.Second})
	tokens := auth.NewTokenCache(client)
	keys := keycache.New(store.Metadata)

	pipeline := publish.NewPipeline(client, tokens, c.Branch, logger)

	content := &services.Content{}
	content.Site.ApplyDefaults()

	return &App{
		config:    c,
		store:     store,
		auth:      services.NewAuthService(c.AppID, client, tokens, keys, logger),
		publisher: services.NewPublishService(client, pipeline, content, logger),
		site:      services.NewSiteService(pipeline, content, logger),
		loader:    services.NewContentService(client, tokens, c.Branch, logger),
		content:   content,
		log:       logger,
		reader:    bufio.NewReader(os.Stdin),
	}, nil
}

// Run starts the REPL and blocks until the user exits.
func (a *App) Run(ctx context.Context) {
	defer a.store.Close()
	a.Root(ctx)
}

func (a *App) isLoggedIn() bool {
	return a.loggedIn
}

// reload replaces the working copy in place so the services sharing the
// pointer observe the fresh content.
func (a *App) reload(ctx context.Context) error {
	c, err := a.loader.Load(ctx)
	if err != nil {
		return err
	}
	*a.content = *c
	return nil
}

// runPublish wraps one publish operation with the advisory in-flight guard
// and a progress renderer.
func (a *App) runPublish(op func(observe publish.Observer) (string, error)) error {
	if a.busy {
		fmt.Println("A publish is already running, try again when it finishes.")
		return nil
	}
	a.busy = true
	defer func() { a.busy = false }()

	sha, err := op(progressPrinter(os.Stdout))
	if err != nil {
		return err
	}
	fmt.Printf("Published as commit %s\n", sha)
	return nil
}
