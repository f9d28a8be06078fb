package scenario

import (
	"context"

	"github.com/toolgauge/toolgauge/internal/transport"
)

// ChatClient is the slice of the transport client a scenario needs.
// *transport.Client satisfies it.
type ChatClient interface {
	ChatCompletion(ctx context.Context, req transport.ChatRequest) (*transport.ChatResponse, error)
}
