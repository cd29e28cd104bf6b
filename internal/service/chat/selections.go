package chat

import (
	"context"
	"slices"

	"github.com/sandevgo/vizchat/internal/core"
	"github.com/sandevgo/vizchat/pkg/log"
)

// SelectModel switches the active model and persists the choice.
func (s *Service) SelectModel(ctx context.Context, id string) {
	s.ai.SetModel(ctx, id)
	s.persistSelection(ctx, core.SelectionModel, s.ai.SelectedModel())
}

// SelectRole loads the role slot on the active adapter and persists the
// choice. Persona and scenario work the same way.
func (s *Service) SelectRole(ctx context.Context, name string) string {
	text := s.ai.LoadRoleContext(ctx, name)
	s.persistSelection(ctx, core.SelectionRole, name)
	return text
}

func (s *Service) SelectPersona(ctx context.Context, name string) string {
	text := s.ai.LoadPersonaContext(ctx, name)
	s.persistSelection(ctx, core.SelectionPersona, name)
	return text
}

func (s *Service) SelectScenario(ctx context.Context, name string) string {
	text := s.ai.LoadScenarioContext(ctx, name)
	s.persistSelection(ctx, core.SelectionScenario, name)
	return text
}

func (s *Service) persistSelection(ctx context.Context, key, value string) {
	if s.selections == nil || value == "" {
		return
	}
	if err := s.selections.SetSelection(ctx, key, value); err != nil {
		log.FromCtx(ctx).Warn().Err(err).Str("key", key).Msg("selection not persisted")
	}
}

// RestoreSelections reapplies the persisted model and context choices.
// A stored value that is no longer available falls back to the first
// available option. Contexts load across every adapter afterwards.
func (s *Service) RestoreSelections(ctx context.Context) error {
	sel := core.ContextSelection{}

	if s.selections != nil {
		if model, err := s.selections.GetSelection(ctx, core.SelectionModel); err == nil && model != "" {
			if s.modelAvailable(model) {
				s.ai.SetModel(ctx, model)
			} else {
				log.FromCtx(ctx).Warn().Str("model", model).Msg("stored model unavailable, using default")
			}
		}
		sel.Role = s.restoredName(ctx, core.SelectionRole)
		sel.Persona = s.restoredName(ctx, core.SelectionPersona)
		sel.Scenario = s.restoredName(ctx, core.SelectionScenario)
	}

	return s.ai.LoadContexts(ctx, sel)
}

func (s *Service) restoredName(ctx context.Context, key string) string {
	name, err := s.selections.GetSelection(ctx, key)
	if err != nil {
		log.FromCtx(ctx).Warn().Err(err).Str("key", key).Msg("selection not restored")
		return ""
	}
	return name
}

func (s *Service) modelAvailable(id string) bool {
	return slices.ContainsFunc(s.ai.AvailableModels(), func(m core.ModelOption) bool {
		return m.ID == id
	})
}
