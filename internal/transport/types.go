// Package transport defines the chat-delivery contract shared by the
// notifier and the log sink. Implementations live in subpackages.
package transport

import (
	"context"
	"strconv"
)

// ChatTarget addresses a chat and, for forum groups, a topic thread.
// A public channel or group may be addressed by Username ("@name")
// instead of ChatID.
type ChatTarget struct {
	ChatID   int64
	Username string
	ThreadID int // 0 if none
}

// IsZero reports whether the target addresses no chat at all.
func (t ChatTarget) IsZero() bool { return t.ChatID == 0 && t.Username == "" }

// Recipient is the chat_id value the Bot API expects: the numeric id, or
// the @username when no id is set.
func (t ChatTarget) Recipient() string {
	if t.ChatID == 0 && t.Username != "" {
		return t.Username
	}
	return strconv.FormatInt(t.ChatID, 10)
}

type MessageRef struct {
	ChatID    int64
	ThreadID  int
	MessageID int
}

type SendOptions struct {
	ParseMode      string
	DisablePreview bool
}

// Sender delivers plain text to a chat.
type Sender interface {
	SendText(ctx context.Context, to ChatTarget, text string, opt *SendOptions) (MessageRef, error)
}
