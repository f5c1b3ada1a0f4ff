package generate

import (
	"context"

	chatdomain "github.com/mzotova/threadline/internal/chat/domain"
)

// Generator produces the assistant turn for a thread. The history is the
// full thread so far, oldest first, ending with the user message being
// answered.
type Generator interface {
	Reply(ctx context.Context, history []chatdomain.Message) (string, error)
}
