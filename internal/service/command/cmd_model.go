package command

import (
	"context"
	"fmt"

	"github.com/sandevgo/vizchat/internal/service/chat"
)

type ModelCommand struct {
	chat      *chat.Service
	formatter *ResponseFormatter
}

func NewModelCommand(chatSvc *chat.Service) *ModelCommand {
	return &ModelCommand{
		chat:      chatSvc,
		formatter: NewResponseFormatter(),
	}
}

func (c *ModelCommand) Name() string {
	return "model"
}

func (c *ModelCommand) Description() string {
	return "Show or change the active model"
}

func (c *ModelCommand) Execute(ctx context.Context, sessionID string, args []string) (string, error) {
	ai := c.chat.AI()

	if len(args) == 0 {
		return c.formatter.Combine(
			c.formatter.Info("Current Model"),
			c.formatter.Label("Model", ai.SelectedModel()),
			c.formatter.Usage("/model [model-id]"),
			c.formatter.Tip("Run /models to list every available model."),
		), nil
	}

	before := ai.SelectedModel()
	c.chat.SelectModel(ctx, args[0])
	after := ai.SelectedModel()

	if after == before && args[0] != before {
		return "", fmt.Errorf("unknown model: %s", args[0])
	}
	return c.formatter.Success(fmt.Sprintf("Model changed to: `%s`", after)), nil
}
