package ai

import (
	"context"
	"slices"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/sandevgo/vizchat/internal/core"
	"github.com/sandevgo/vizchat/pkg/log"
)

// contextSet owns the role/persona/scenario slots for one adapter.
// Loads coalesce through singleflight, slot failures degrade to empty
// text, and a failed load leaves the set unloaded so a later call can
// retry. Each slot remembers the selected name so reloads keep the
// user's choice instead of reverting to the defaults.
type contextSet struct {
	provider string
	store    core.ContextStore
	group    singleflight.Group

	mu           sync.RWMutex
	options      core.ContextOptions
	instructions string
	role         string
	persona      string
	scenario     string
	roleName     string
	personaName  string
	scenarioName string
}

func newContextSet(provider string, store core.ContextStore) *contextSet {
	return &contextSet{provider: provider, store: store}
}

func (c *contextSet) availableRoles() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.options.Roles
}

func (c *contextSet) availablePersonas() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.options.Personas
}

func (c *contextSet) availableScenarios() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.options.Scenarios
}

// loadAll lists the store and fills every slot. Concurrent callers
// share one flight and one result. A selection name that is missing
// from the listing falls back to the first available option.
func (c *contextSet) loadAll(ctx context.Context, sel core.ContextSelection) error {
	_, err, _ := c.group.Do("load", func() (any, error) {
		options, err := c.store.List(ctx)
		if err != nil {
			log.FromCtx(ctx).Error().Err(err).Str("provider", c.provider).Msg("context listing failed")
			return nil, err
		}

		c.mu.Lock()
		c.options = options
		roleName := pick(sel.Role, c.roleName)
		personaName := pick(sel.Persona, c.personaName)
		scenarioName := pick(sel.Scenario, c.scenarioName)
		c.mu.Unlock()

		instructions, err := c.store.Instructions(ctx)
		if err != nil {
			log.FromCtx(ctx).Warn().Err(err).Str("provider", c.provider).Msg("general instructions unavailable")
			instructions = ""
		}
		c.mu.Lock()
		c.instructions = instructions
		c.mu.Unlock()

		c.loadSlot(ctx, core.CategoryRole, c.resolve(ctx, core.CategoryRole, roleName, options.Roles))
		c.loadSlot(ctx, core.CategoryPersona, c.resolve(ctx, core.CategoryPersona, personaName, options.Personas))
		c.loadSlot(ctx, core.CategoryScenario, c.resolve(ctx, core.CategoryScenario, scenarioName, options.Scenarios))
		return nil, nil
	})
	return err
}

// resolve validates a wanted name against the listing. An unknown name
// logs and falls back to the first available option.
func (c *contextSet) resolve(ctx context.Context, category core.ContextCategory, want string, available []string) string {
	if want != "" && slices.Contains(available, want) {
		return want
	}
	if want != "" {
		log.FromCtx(ctx).Warn().
			Str("provider", c.provider).
			Str("category", string(category)).
			Str("name", want).
			Msg("selected context unavailable, falling back to first option")
	}
	if len(available) > 0 {
		return available[0]
	}
	return ""
}

// loadSlot fetches one resource and stores its text. Failures log and
// store empty text, they never propagate.
func (c *contextSet) loadSlot(ctx context.Context, category core.ContextCategory, name string) string {
	var text string
	if name != "" {
		loaded, err := c.store.Load(ctx, category, name)
		if err != nil {
			log.FromCtx(ctx).Warn().Err(err).
				Str("provider", c.provider).
				Str("category", string(category)).
				Str("name", name).
				Msg("context load failed, continuing without it")
		} else {
			text = loaded
		}
	}

	c.mu.Lock()
	switch category {
	case core.CategoryRole:
		c.role = text
		c.roleName = name
	case core.CategoryPersona:
		c.persona = text
		c.personaName = name
	case core.CategoryScenario:
		c.scenario = text
		c.scenarioName = name
	}
	c.mu.Unlock()
	return text
}

// hasLoaded reports whether every slot holds text.
func (c *contextSet) hasLoaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.role != "" && c.persona != "" && c.scenario != ""
}

// systemPrompt renders the current slots into the provider system text.
func (c *contextSet) systemPrompt() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return buildSystemPrompt(c.instructions, c.role, c.persona, c.scenario)
}

// ensureLoaded lazily loads before a send, reusing the remembered
// selections so a reload cannot revert an explicit choice.
func (c *contextSet) ensureLoaded(ctx context.Context) {
	if c.hasLoaded() {
		return
	}
	if err := c.loadAll(ctx, core.ContextSelection{}); err != nil {
		log.FromCtx(ctx).Warn().Err(err).Str("provider", c.provider).Msg("sending without contexts")
	}
}

// pick prefers an explicit selection over the remembered one.
func pick(want, remembered string) string {
	if want != "" {
		return want
	}
	return remembered
}
