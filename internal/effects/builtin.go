package effects

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
)

// Built-in effect types.
const (
	// LogSummary logs the arguments collected so far.
	LogSummary = "log_summary"
	// Say queues a fixed utterance, given as the "text" parameter, for the driver to speak.
	Say = "tts_say"
)

// Speaker receives utterances queued by the Say effect.
type Speaker interface {
	Enqueue(sessionID, text string)
}

// RegisterBuiltins installs the built-in handlers.
func RegisterBuiltins(r *Registry, logger *slog.Logger, speaker Speaker) {
	r.Register(LogSummary, func(ctx context.Context, inv Invocation) error {
		names := make([]string, 0, len(inv.Session.CollectedArguments))
		for name := range inv.Session.CollectedArguments {
			names = append(names, name)
		}
		sort.Strings(names)

		attrs := []any{"session", inv.Session.ID, "node", inv.NodeID}
		for _, name := range names {
			attrs = append(attrs, slog.Any(name, inv.Session.CollectedArguments[name]))
		}
		logger.InfoContext(ctx, "Collected arguments", attrs...)
		return nil
	})

	r.Register(Say, func(ctx context.Context, inv Invocation) error {
		text, _ := inv.Effect.Params["text"].(string)
		if strings.TrimSpace(text) == "" {
			return fmt.Errorf("%s requires a non-empty text parameter", Say)
		}
		if speaker != nil {
			speaker.Enqueue(inv.Session.ID, text)
		}
		return nil
	})
}
