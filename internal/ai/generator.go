// Package ai defines the generative collaborator consumed by the ranking
// engine's primary tier.
package ai

import "context"

// Generator produces one textual completion for one prompt. Implementations
// wrap a remote model; any transport or model failure is returned as an
// error and treated by callers as a recoverable tier failure.
type Generator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
	Model() string
}
