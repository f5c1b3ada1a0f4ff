package chat

import (
	"context"
	"strings"
	"testing"

	chatdomain "github.com/mzotova/threadline/internal/chat/domain"
	"github.com/mzotova/threadline/internal/chat/generate"
)

func TestStaticGenerator_EchoesLastUserMessage(t *testing.T) {
	gen := generate.NewStaticGenerator()

	reply, err := gen.Reply(context.Background(), []chatdomain.Message{
		{Role: chatdomain.RoleUser, Content: "first question"},
		{Role: chatdomain.RoleAssistant, Content: "first answer"},
		{Role: chatdomain.RoleUser, Content: "second question"},
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.Contains(reply, "second question") {
		t.Errorf("expected the reply to reference the latest user message, got %q", reply)
	}
}

func TestStaticGenerator_EmptyHistory(t *testing.T) {
	gen := generate.NewStaticGenerator()

	reply, err := gen.Reply(context.Background(), nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if reply == "" {
		t.Error("expected a non-empty reply")
	}
}
