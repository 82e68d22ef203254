package llm

import "context"

// Client is the minimal surface the rest of the backend needs from a chat
// completion provider: one system role, one user prompt, free text back.
type Client interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}
