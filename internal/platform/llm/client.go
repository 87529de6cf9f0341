package llm

import "context"

// Client is the minimal surface the search service needs from a language
// model: one prompt in, one completion out.
type Client interface {
	Complete(ctx context.Context, system, user string) (string, error)
}
