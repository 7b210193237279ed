package tui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/aretw0/hostflow/pkg/domain"
)

// IsInteractive reports whether f is attached to a terminal.
func IsInteractive(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Console is a ports.Transport for rehearsing a flow in a terminal: the
// operator types the guest's lines and reads the host's replies.
// Typing /quit, or closing the input, makes the guest leave.
type Console struct {
	out    *termenv.Output
	host   string
	prompt bool

	lines chan string
	done  chan struct{}
	once  sync.Once
	mu    sync.Mutex
}

// ConsoleOption configures a Console.
type ConsoleOption func(*Console)

// WithHostName sets the label printed before host utterances.
func WithHostName(name string) ConsoleOption {
	return func(c *Console) {
		c.host = name
	}
}

// WithPrompt toggles the "you>" prompt, useful only for interactive input.
func WithPrompt(enabled bool) ConsoleOption {
	return func(c *Console) {
		c.prompt = enabled
	}
}

// NewConsole starts reading guest lines from in.
func NewConsole(in io.Reader, w io.Writer, opts ...ConsoleOption) *Console {
	c := &Console{
		out:   termenv.NewOutput(w),
		host:  "host",
		lines: make(chan string),
		done:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	go c.read(in)
	return c
}

func (c *Console) read(in io.Reader) {
	defer c.leave()
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case line == "/quit":
			return
		}
		select {
		case c.lines <- line:
		case <-c.done:
			return
		}
	}
}

func (c *Console) Receive(ctx context.Context) (string, error) {
	if c.prompt {
		c.mu.Lock()
		fmt.Fprint(c.out, c.out.String("you> ").Faint())
		c.mu.Unlock()
	}
	select {
	case line := <-c.lines:
		return line, nil
	case <-c.done:
		return "", domain.ErrDisconnected
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (c *Console) Speak(ctx context.Context, text string) error {
	select {
	case <-c.done:
		return domain.ErrDisconnected
	default:
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	label := c.out.String(c.host + ":").Bold().Foreground(c.out.Color("#c084fc"))
	_, err := fmt.Fprintf(c.out, "%s %s\n", label, text)
	return err
}

func (c *Console) Done() <-chan struct{} { return c.done }

func (c *Console) Close() error {
	c.leave()
	return nil
}

func (c *Console) leave() {
	c.once.Do(func() { close(c.done) })
}
