package ports

import (
	"context"

	"github.com/aretw0/hostflow/pkg/domain"
)

// CompletionRequest is one model turn: the system text for the current node,
// the conversation so far and the actions the model may invoke.
type CompletionRequest struct {
	System   string
	Messages []domain.Message
	Tools    []domain.ToolSpec
}

// Completion is the model's reply. Text and ToolCall may both be set.
type Completion struct {
	Text     string
	ToolCall *domain.ToolCall
}

// LanguageModel produces the host's next turn.
// Implementations must honour ctx cancellation.
type LanguageModel interface {
	Complete(ctx context.Context, req CompletionRequest) (Completion, error)
}
