// Package server wires the relay together: it resolves storage once,
// builds the services on top of it and runs the HTTP and WebSocket
// surfaces until the process is told to stop.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/chatrelay/internal/logging"
	"github.com/dmitrijs2005/chatrelay/internal/server/archive"
	"github.com/dmitrijs2005/chatrelay/internal/server/auth"
	"github.com/dmitrijs2005/chatrelay/internal/server/config"
	"github.com/dmitrijs2005/chatrelay/internal/server/httpapi"
	"github.com/dmitrijs2005/chatrelay/internal/server/llm"
	"github.com/dmitrijs2005/chatrelay/internal/server/messages"
	"github.com/dmitrijs2005/chatrelay/internal/server/metrics"
	"github.com/dmitrijs2005/chatrelay/internal/server/relay"
	"github.com/dmitrijs2005/chatrelay/internal/server/shared/db"
	"github.com/dmitrijs2005/chatrelay/internal/server/users"
	"github.com/dmitrijs2005/chatrelay/internal/server/ws"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	storage db.RepositoryManager
	http    *httpapi.Server
}

// NewApp builds every component in dependency order: storage, stores,
// reply collaborator, relay, transports.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	storage := db.Open(ctx, c.DatabaseDSN, c.DatabaseConnectTimeout, logger)

	m := metrics.New("chatrelay")
	issuer := auth.NewIssuer(c.SecretKey)

	us := users.NewService(storage.Users(), issuer)
	ms := messages.NewService(storage.Messages(), storage.MessageFallback(), logger, m)

	gen, err := llm.NewGenerator(c, logger)
	if err != nil {
		_ = storage.Close()
		return nil, fmt.Errorf("reply generator init error: %w", err)
	}

	rs := relay.NewService(ms, gen, logger, m)
	live := ws.NewServer(rs, issuer, m, logger, ws.DefaultOptions())

	deps := httpapi.Deps{
		Users:    us,
		Messages: ms,
		Relay:    rs,
		Issuer:   issuer,
		Metrics:  m.Handler(),
		Live:     live.Handle,
		Storage:  storage.Mode(),
		Logger:   logger,

		ReplyState: gen.State,
	}

	if c.ArchiveEnabled() {
		exp, err := archive.NewS3Exporter(ctx, c)
		if err != nil {
			_ = storage.Close()
			return nil, fmt.Errorf("archive init error: %w", err)
		}
		deps.Archive = exp
	}

	return &App{
		config:  c,
		logger:  logger,
		storage: storage,
		http:    httpapi.NewServer(deps),
	}, nil
}

// Mode reports which storage backend was selected at startup.
func (app *App) Mode() db.Mode {
	return app.storage.Mode()
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.http.Run(ctx, app.config.HTTPAddr); err != nil {
		app.logger.Error(ctx, "http server failed", "error", err)
		cancelFunc()
	}
}

// Run blocks until ctx is cancelled or a signal arrives, then releases
// the storage backend.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "addr", app.config.HTTPAddr, "storage", app.storage.Mode(), "llm", app.config.LLMMode)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.storage.Close(); err != nil {
		app.logger.Error(ctx, "failed to close storage", "error", err)
	}
	app.logger.Info(ctx, "app stopped")
}
