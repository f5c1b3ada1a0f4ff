package composer

import (
	"context"
	"strings"
	"sync"

	chatdomain "github.com/mzotova/threadline/internal/chat/domain"
	"github.com/mzotova/threadline/internal/chat/service"
)

// Submitter is the subset of the chat service the composer drives.
type Submitter interface {
	Submit(ctx context.Context, input service.SubmitInput) (service.SubmitResult, error)
}

// Composer models the message input box: it holds typed text and a single
// in-flight flag. Submitting while a prior submit is pending is a no-op, as
// is submitting empty or whitespace-only text. The text is cleared only on
// confirmed success so a failed send can be retried as-is.
type Composer struct {
	submitter Submitter
	userID    string

	mu           sync.Mutex
	text         string
	threadID     int64
	isSubmitting bool
}

func New(submitter Submitter, userID string) *Composer {
	return &Composer{submitter: submitter, userID: userID}
}

func (c *Composer) SetText(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.text = text
}

func (c *Composer) Text() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.text
}

// SelectThread switches the composer to an existing thread; zero targets a
// new thread on the next submit.
func (c *Composer) SelectThread(threadID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.threadID = threadID
}

func (c *Composer) IsSubmitting() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isSubmitting
}

// Submit sends the current text. It returns the messages produced, or
// (nil, nil) when the submit was a no-op.
func (c *Composer) Submit(ctx context.Context) ([]chatdomain.Message, error) {
	c.mu.Lock()
	if c.isSubmitting {
		c.mu.Unlock()
		return nil, nil
	}
	content := strings.TrimSpace(c.text)
	if content == "" {
		c.mu.Unlock()
		return nil, nil
	}
	c.isSubmitting = true
	threadID := c.threadID
	c.mu.Unlock()

	result, err := c.submitter.Submit(ctx, service.SubmitInput{
		UserID:   c.userID,
		ThreadID: threadID,
		Content:  content,
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	c.isSubmitting = false
	if err != nil {
		return nil, err
	}
	c.text = ""
	c.threadID = result.Thread.ID
	return result.Messages, nil
}
