package cli

import (
	"bufio"
	"context"
	"io"
	"os"

	"github.com/dmitrijs2005/chatrelay/internal/client/client"
	"github.com/dmitrijs2005/chatrelay/internal/client/config"
)

// API is the part of the HTTP client the commands use.
type API interface {
	Register(ctx context.Context, username, email, password string) (*client.AuthResult, error)
	Login(ctx context.Context, email, password string) (*client.AuthResult, error)
	SendMessage(ctx context.Context, text string) (string, error)
	History(ctx context.Context, limit, skip int) ([]client.Message, error)
	DeleteAll(ctx context.Context) (int64, error)
	Ping(ctx context.Context) error
	SetToken(token string)
}

// liveSession is what chat needs from a live connection.
type liveSession interface {
	Send(text string) error
	Receive() (event string, text string, err error)
	Close() error
}

type App struct {
	config *config.Config
	api    API
	dial   func(ctx context.Context) (liveSession, error)
	user   *client.User
	reader *bufio.Reader
	out    io.Writer
}

func NewApp(c *config.Config) (*App, error) {
	httpClient := client.NewHTTPClient(c.ServerURL, c.RequestTimeout)

	return &App{
		config: c,
		api:    httpClient,
		dial: func(ctx context.Context) (liveSession, error) {
			return httpClient.DialLive(ctx)
		},
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}, nil
}

func (a *App) Run(ctx context.Context) {
	a.Root(ctx)
}

func (a *App) isLoggedIn() bool {
	return a.user != nil
}
