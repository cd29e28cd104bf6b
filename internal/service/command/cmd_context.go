package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/sandevgo/vizchat/internal/service/chat"
)

type ContextCommand struct {
	chat      *chat.Service
	formatter *ResponseFormatter
}

func NewContextCommand(chatSvc *chat.Service) *ContextCommand {
	return &ContextCommand{
		chat:      chatSvc,
		formatter: NewResponseFormatter(),
	}
}

func (c *ContextCommand) Name() string {
	return "context"
}

func (c *ContextCommand) Description() string {
	return "Show or change the role, persona and scenario"
}

func (c *ContextCommand) Execute(ctx context.Context, sessionID string, args []string) (string, error) {
	ai := c.chat.AI()

	if len(args) == 0 {
		return c.formatter.Combine(
			c.formatter.Section("🎭", "Roles", c.formatter.List(ai.AvailableRoles())),
			c.formatter.Section("👤", "Personas", c.formatter.List(ai.AvailablePersonas())),
			c.formatter.Section("🗺", "Scenarios", c.formatter.List(ai.AvailableScenarios())),
			c.formatter.Usage("/context role|persona|scenario [name]"),
		), nil
	}
	if len(args) < 2 {
		return "", fmt.Errorf("usage: /context role|persona|scenario [name]")
	}

	category := strings.ToLower(args[0])
	name := args[1]

	var text string
	switch category {
	case "role":
		text = c.chat.SelectRole(ctx, name)
	case "persona":
		text = c.chat.SelectPersona(ctx, name)
	case "scenario":
		text = c.chat.SelectScenario(ctx, name)
	default:
		return "", fmt.Errorf("unknown context category: %s", category)
	}

	if text == "" {
		return "", fmt.Errorf("context %s %q could not be loaded", category, name)
	}
	return c.formatter.Success(fmt.Sprintf("Loaded %s: `%s`", category, name)), nil
}
