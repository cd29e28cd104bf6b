package command

import (
	"github.com/sandevgo/vizchat/internal/core"
	"github.com/sandevgo/vizchat/internal/service/chat"
)

func NewCommands(chatSvc *chat.Service) []core.Command {
	return []core.Command{
		NewModelCommand(chatSvc),
		NewModelsCommand(chatSvc),
		NewContextCommand(chatSvc),
		NewClearCommand(chatSvc),
	}
}
