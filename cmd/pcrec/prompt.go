package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/pribylovaa/pc-recommender/internal/session"
)

var errDismissed = errors.New("no choice made")

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}

	return strings.TrimSpace(line), nil
}

// prompter спрашивает в терминале, куда перейти после выхода.
type prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func (p *prompter) ChooseAfterLogout(ctx context.Context) (session.Destination, error) {
	if err := ctx.Err(); err != nil {
		return session.DestinationNone, err
	}

	fmt.Fprint(p.out, "Logged out. Go to [h]ome or [l]ogin? ")

	answer, err := readLine(p.in)
	if err != nil {
		return session.DestinationNone, err
	}

	switch strings.ToLower(answer) {
	case "h", "home":
		return session.DestinationHome, nil
	case "l", "login":
		return session.DestinationLogin, nil
	default:
		return session.DestinationNone, errDismissed
	}
}

// navigator — в CLI переход превращается в подсказку пользователю.
type navigator struct {
	out io.Writer
}

func (n *navigator) Navigate(_ context.Context, path string) {
	switch {
	case strings.HasPrefix(path, string(session.DestinationLogin)):
		fmt.Fprintln(n.out, "Session is not active. Log in with: pcrec login <username or email>")
	case path == string(session.DestinationHome):
		fmt.Fprintln(n.out, "Try: pcrec recommend --budget <amount>")
	default:
		fmt.Fprintf(n.out, "Next: %s\n", path)
	}
}
