package cli

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/dmitrijs2005/chatrelay/internal/client/client"
	"github.com/dmitrijs2005/chatrelay/internal/client/config"
)

type fakeAPI struct {
	regArgs   []string
	loginArgs []string
	authErr   error
	token     string

	sent     []string
	reply    string
	sendErr  error
	history  []client.Message
	histArgs []int
	deleted  int64
	pingErr  error
}

func (f *fakeAPI) Register(_ context.Context, username, email, password string) (*client.AuthResult, error) {
	f.regArgs = []string{username, email, password}
	if f.authErr != nil {
		return nil, f.authErr
	}
	f.token = "tok"
	return &client.AuthResult{User: client.User{Username: username, Email: email}, Token: "tok"}, nil
}

func (f *fakeAPI) Login(_ context.Context, email, password string) (*client.AuthResult, error) {
	f.loginArgs = []string{email, password}
	if f.authErr != nil {
		return nil, f.authErr
	}
	f.token = "tok"
	return &client.AuthResult{User: client.User{Username: "alice", Email: email}, Token: "tok"}, nil
}

func (f *fakeAPI) SendMessage(_ context.Context, text string) (string, error) {
	f.sent = append(f.sent, text)
	return f.reply, f.sendErr
}

func (f *fakeAPI) History(_ context.Context, limit, skip int) ([]client.Message, error) {
	f.histArgs = []int{limit, skip}
	return f.history, nil
}

func (f *fakeAPI) DeleteAll(context.Context) (int64, error) { return f.deleted, nil }
func (f *fakeAPI) Ping(context.Context) error               { return f.pingErr }
func (f *fakeAPI) SetToken(token string)                    { f.token = token }

// fakeLive echoes every sent line back as a receiveMessage.
type fakeLive struct {
	mu     sync.Mutex
	sent   []string
	in     chan string
	closed chan struct{}
	once   sync.Once
}

func newFakeLive() *fakeLive {
	return &fakeLive{in: make(chan string, 16), closed: make(chan struct{})}
}

func (l *fakeLive) Send(text string) error {
	l.mu.Lock()
	l.sent = append(l.sent, text)
	l.mu.Unlock()
	l.in <- "echo: " + text
	return nil
}

func (l *fakeLive) Receive() (string, string, error) {
	select {
	case text := <-l.in:
		return "receiveMessage", text, nil
	case <-l.closed:
		return "", "", errors.New("closed")
	}
}

func (l *fakeLive) Close() error {
	l.once.Do(func() { close(l.closed) })
	return nil
}

func newTestApp(api *fakeAPI, input string) (*App, *bytes.Buffer) {
	var out bytes.Buffer
	return &App{
		config: &config.Config{ServerURL: "http://test"},
		api:    api,
		reader: bufio.NewReader(strings.NewReader(input)),
		out:    &out,
	}, &out
}

func stubInputs(texts []string, password []byte) func() {
	origST, origGP := getSimpleText, getPassword
	i := 0
	getSimpleText = func(_ *bufio.Reader, _ string, _ io.Writer) (string, error) {
		if i >= len(texts) {
			return "", io.EOF
		}
		i++
		return texts[i-1], nil
	}
	getPassword = func(_ io.Writer) ([]byte, error) { return append([]byte(nil), password...), nil }
	return func() {
		getSimpleText = origST
		getPassword = origGP
	}
}
