package service

import (
	"context"
	"fmt"
	"strings"
)

// ChatService answers pairing questions. Only an echo stub exists until a
// model backend is wired in.
type ChatService interface {
	Ask(ctx context.Context, message string) (string, error)
}

type echoChatService struct{}

func NewChatService() ChatService {
	return &echoChatService{}
}

func (echoChatService) Ask(ctx context.Context, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", ErrEmptyMessage
	}

	return fmt.Sprintf("AI: looking for a snack that pairs well with '%s'! (still in development)", message), nil
}
