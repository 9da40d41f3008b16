package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const chatExit = "/exit"

// Chat opens the live connection and relays lines typed by the user until
// "/exit" or end of input. Replies are printed as they arrive, so several
// messages can be in flight at once.
func (a *App) Chat(ctx context.Context) error {
	live, err := a.dial(ctx)
	if err != nil {
		fmt.Fprintf(a.out, "Cannot open live connection: %v\n", err)
		return err
	}

	fmt.Fprintf(a.out, "Connected. Type %s to leave.\n", chatExit)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			event, text, err := live.Receive()
			if err != nil {
				return
			}
			switch event {
			case "receiveMessage":
				fmt.Fprintf(a.out, "bot> %s\n", text)
			case "error":
				fmt.Fprintf(a.out, "error> %s\n", text)
			}
		}
	}()

	var sendErr error
	for {
		line, err := a.reader.ReadString('\n')
		text := strings.TrimSpace(line)
		if text == chatExit {
			break
		}
		if text != "" {
			if sendErr = live.Send(text); sendErr != nil {
				fmt.Fprintf(a.out, "Connection lost: %v\n", sendErr)
				break
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				sendErr = err
			}
			break
		}
	}

	_ = live.Close()
	<-done
	return sendErr
}

// Send delivers a single message over HTTP and prints the reply.
func (a *App) Send(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		fmt.Fprintln(a.out, "Usage: send <message>")
		return nil
	}

	reply, err := a.api.SendMessage(ctx, text)
	if err != nil {
		fmt.Fprintf(a.out, "Failed: %v\n", err)
		return err
	}

	fmt.Fprintf(a.out, "bot> %s\n", reply)
	return nil
}

// History prints the last n messages (server default when n is empty).
func (a *App) History(ctx context.Context, n string) error {
	limit := 0
	if n != "" {
		v, err := strconv.Atoi(n)
		if err != nil || v < 0 {
			fmt.Fprintln(a.out, "Usage: history [count]")
			return nil
		}
		limit = v
	}

	msgs, err := a.api.History(ctx, limit, 0)
	if err != nil {
		fmt.Fprintf(a.out, "Failed: %v\n", err)
		return err
	}

	if len(msgs) == 0 {
		fmt.Fprintln(a.out, "No messages yet.")
		return nil
	}
	for _, m := range msgs {
		who := "you"
		if m.Role == "bot" {
			who = "bot"
		}
		fmt.Fprintf(a.out, "[%s] %s> %s\n", m.Timestamp.Local().Format("2006-01-02 15:04"), who, m.Content)
	}
	return nil
}

// Clear deletes the whole conversation.
func (a *App) Clear(ctx context.Context) error {
	n, err := a.api.DeleteAll(ctx)
	if err != nil {
		fmt.Fprintf(a.out, "Failed: %v\n", err)
		return err
	}
	fmt.Fprintf(a.out, "Deleted %d messages.\n", n)
	return nil
}
