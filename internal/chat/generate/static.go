package generate

import (
	"context"
	"fmt"

	chatdomain "github.com/mzotova/threadline/internal/chat/domain"
)

// StaticGenerator echoes a canned acknowledgement. It backs deployments
// without an API key and keeps the submit path exercisable in development.
type StaticGenerator struct{}

func NewStaticGenerator() *StaticGenerator {
	return &StaticGenerator{}
}

func (g *StaticGenerator) Reply(_ context.Context, history []chatdomain.Message) (string, error) {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == chatdomain.RoleUser {
			return fmt.Sprintf("You said: %q. A generation backend is not configured.", history[i].Content), nil
		}
	}
	return "A generation backend is not configured.", nil
}
