// Package tui is the terminal chat surface: a conversation pane with
// streaming replies and a workspace side panel fed by the event bus.
package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandevgo/vizchat/internal/core"
	"github.com/sandevgo/vizchat/internal/service/chat"
	"github.com/sandevgo/vizchat/internal/service/workspace"
	"github.com/sandevgo/vizchat/pkg/log"
)

type Tui struct {
	chat      *chat.Service
	router    core.CmdRouter
	bus       *workspace.Bus
	streaming bool

	program     *tea.Program
	unsubscribe func()
}

func New(chatSvc *chat.Service, cmdRouter core.CmdRouter, bus *workspace.Bus, streaming bool) *Tui {
	return &Tui{
		chat:      chatSvc,
		router:    cmdRouter,
		bus:       bus,
		streaming: streaming,
	}
}

// Start blocks until the user quits or the context is cancelled.
func (t *Tui) Start(ctx context.Context) error {
	log.FromCtx(ctx).Info().Msg("starting terminal ui")

	events, cancel := t.bus.Subscribe()
	t.unsubscribe = cancel

	t.program = tea.NewProgram(
		newModel(ctx, t.chat, t.router, events, t.streaming),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	if _, err := t.program.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("terminal ui: %w", err)
	}
	return nil
}

func (t *Tui) Shutdown(ctx context.Context) error {
	if t.unsubscribe != nil {
		t.unsubscribe()
	}
	if t.program != nil {
		t.program.Quit()
	}
	return nil
}
