// Package chat orchestrates one conversation turn: persist the user
// message, window the history, call the provider, extract
// visualizations, publish them, persist the reply. It is the exception
// boundary: provider failures become a readable reply, never an error
// surfaced to a transport.
package chat

import (
	"context"
	"time"

	"github.com/sandevgo/vizchat/internal/core"
	"github.com/sandevgo/vizchat/internal/providers/ai"
	"github.com/sandevgo/vizchat/internal/service/workspace"
	"github.com/sandevgo/vizchat/internal/viz"
	"github.com/sandevgo/vizchat/pkg/log"
)

// historyFetchLimit bounds the raw history read, the token window trims
// it further.
const historyFetchLimit = 200

type Service struct {
	ai         core.AIService
	parser     *viz.Parser
	messages   core.MessagesRepository
	selections core.SelectionsRepository
	bus        *workspace.Bus
	window     *tokenWindow
}

func New(aiSvc core.AIService, parser *viz.Parser, messages core.MessagesRepository, selections core.SelectionsRepository, bus *workspace.Bus, tokenBudget int) *Service {
	return &Service{
		ai:         aiSvc,
		parser:     parser,
		messages:   messages,
		selections: selections,
		bus:        bus,
		window:     newTokenWindow(tokenBudget),
	}
}

// AI exposes the underlying service for commands that list models or
// contexts.
func (s *Service) AI() core.AIService { return s.ai }

// Reply is one finished assistant turn.
type Reply struct {
	Text           string
	Visualizations []viz.Visualization
}

// Send runs a blocking turn. The returned error is reserved for
// cancellation and storage failures, provider failures come back as
// reply text.
func (s *Service) Send(ctx context.Context, sessionID, input string) (Reply, error) {
	history, err := s.prepare(ctx, sessionID, input)
	if err != nil {
		return Reply{}, err
	}

	raw, err := s.ai.SendMessage(ctx, history)
	if err != nil {
		if ctx.Err() != nil {
			return Reply{}, ctx.Err()
		}
		log.FromCtx(ctx).Error().Err(err).Msg("provider send failed")
		raw = ai.UserMessage(err)
	}

	return s.finish(ctx, sessionID, raw)
}

// Stream runs a streaming turn, forwarding chunks to onChunk. On a
// provider failure the synthesized error text is delivered through
// onChunk so the transport renders it in place of the reply.
func (s *Service) Stream(ctx context.Context, sessionID, input string, onChunk core.ChunkFunc) (Reply, error) {
	history, err := s.prepare(ctx, sessionID, input)
	if err != nil {
		return Reply{}, err
	}

	var raw string
	err = s.ai.StreamMessage(ctx, history, onChunk, func(full string) { raw = full })
	if err != nil {
		if ctx.Err() != nil {
			return Reply{}, ctx.Err()
		}
		log.FromCtx(ctx).Error().Err(err).Msg("provider stream failed")
		raw = ai.UserMessage(err)
		onChunk(raw)
	}

	return s.finish(ctx, sessionID, raw)
}

func (s *Service) prepare(ctx context.Context, sessionID, input string) ([]core.Message, error) {
	userMsg := core.Message{Role: core.RoleUser, Content: input, Timestamp: time.Now()}
	if err := s.messages.AddMessage(ctx, sessionID, userMsg); err != nil {
		return nil, err
	}

	history, err := s.messages.GetMessages(ctx, sessionID, historyFetchLimit)
	if err != nil {
		return nil, err
	}
	return s.window.trim(ctx, history), nil
}

func (s *Service) finish(ctx context.Context, sessionID, raw string) (Reply, error) {
	res := s.parser.Parse(ctx, raw)

	for _, v := range res.Visualizations {
		s.bus.Add(v)
	}

	assistantMsg := core.Message{Role: core.RoleAssistant, Content: res.Text, Timestamp: time.Now()}
	if err := s.messages.AddMessage(ctx, sessionID, assistantMsg); err != nil {
		return Reply{}, err
	}

	return Reply{Text: res.Text, Visualizations: res.Visualizations}, nil
}

// ClearWorkspace broadcasts a workspace clear to every transport.
func (s *Service) ClearWorkspace() {
	s.bus.Clear()
}

// ClearSession drops the stored conversation.
func (s *Service) ClearSession(ctx context.Context, sessionID string) error {
	return s.messages.ClearMessages(ctx, sessionID)
}
