package command

import (
	"context"
	"fmt"

	"github.com/sandevgo/vizchat/internal/service/chat"
)

type ModelsCommand struct {
	chat      *chat.Service
	formatter *ResponseFormatter
}

func NewModelsCommand(chatSvc *chat.Service) *ModelsCommand {
	return &ModelsCommand{
		chat:      chatSvc,
		formatter: NewResponseFormatter(),
	}
}

func (c *ModelsCommand) Name() string {
	return "models"
}

func (c *ModelsCommand) Description() string {
	return "List every available model"
}

func (c *ModelsCommand) Execute(ctx context.Context, sessionID string, args []string) (string, error) {
	ai := c.chat.AI()
	selected := ai.SelectedModel()

	var items []string
	for _, m := range ai.AvailableModels() {
		marker := ""
		if m.ID == selected {
			marker = "  (active)"
		}
		items = append(items, fmt.Sprintf("`%s` - %s%s", m.ID, m.Name, marker))
	}

	return c.formatter.Combine(
		c.formatter.Info("Available Models"),
		c.formatter.List(items),
	), nil
}
