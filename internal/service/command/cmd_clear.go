package command

import (
	"context"

	"github.com/sandevgo/vizchat/internal/service/chat"
)

type ClearCommand struct {
	chat      *chat.Service
	formatter *ResponseFormatter
}

func NewClearCommand(chatSvc *chat.Service) *ClearCommand {
	return &ClearCommand{
		chat:      chatSvc,
		formatter: NewResponseFormatter(),
	}
}

func (c *ClearCommand) Name() string {
	return "clear"
}

func (c *ClearCommand) Description() string {
	return "Clear the workspace and the stored conversation"
}

func (c *ClearCommand) Execute(ctx context.Context, sessionID string, args []string) (string, error) {
	c.chat.ClearWorkspace()
	if err := c.chat.ClearSession(ctx, sessionID); err != nil {
		return "", err
	}
	return c.formatter.Success("Workspace and conversation cleared"), nil
}
