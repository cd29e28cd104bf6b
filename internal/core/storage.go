package core

import "context"

// MessagesRepository is the append-only conversation log.
type MessagesRepository interface {
	AddMessage(ctx context.Context, sessionID string, msg Message) error
	GetMessages(ctx context.Context, sessionID string, limit int) ([]Message, error)
	ClearMessages(ctx context.Context, sessionID string) error
}

// Well-known selection keys.
const (
	SelectionModel    = "model"
	SelectionRole     = "role"
	SelectionPersona  = "persona"
	SelectionScenario = "scenario"
)

// SelectionsRepository persists the last chosen model and context names
// so they survive restarts.
type SelectionsRepository interface {
	// GetSelection returns the stored value, or "" when unset.
	GetSelection(ctx context.Context, key string) (string, error)
	SetSelection(ctx context.Context, key, value string) error
}
