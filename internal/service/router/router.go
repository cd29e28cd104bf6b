// Package router multiplexes several provider adapters behind the
// single AIService contract. The union of the adapters' catalogs is
// the selectable model list, and every call lands on the adapter that
// owns the active model.
package router

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/sandevgo/vizchat/internal/core"
	"github.com/sandevgo/vizchat/pkg/log"
)

type Router struct {
	adapters []core.AIService
	byModel  map[string]core.AIService
	catalog  []core.ModelOption

	mu     sync.RWMutex
	active core.AIService
	model  string
}

// New builds the union catalog. Duplicate model ids keep the first
// adapter that claimed them. The first adapter's first model starts
// active.
func New(ctx context.Context, adapters ...core.AIService) *Router {
	r := &Router{
		adapters: adapters,
		byModel:  make(map[string]core.AIService),
	}
	for _, a := range adapters {
		for _, opt := range a.AvailableModels() {
			if _, taken := r.byModel[opt.ID]; taken {
				log.FromCtx(ctx).Warn().Str("model", opt.ID).Msg("duplicate model id, keeping first adapter")
				continue
			}
			r.byModel[opt.ID] = a
			r.catalog = append(r.catalog, opt)
		}
	}
	if len(r.catalog) > 0 {
		r.model = r.catalog[0].ID
		r.active = r.byModel[r.model]
	}
	return r
}

func (r *Router) AvailableModels() []core.ModelOption { return r.catalog }

func (r *Router) SelectedModel() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.model
}

// SetModel dispatches by catalog membership. Switching adapters kicks
// off a lazy context load on the new adapter when it has none yet.
func (r *Router) SetModel(ctx context.Context, id string) {
	next, ok := r.byModel[id]
	if !ok {
		log.FromCtx(ctx).Error().Str("model", id).Msg("model not in any adapter catalog, keeping current")
		return
	}

	r.mu.Lock()
	switched := next != r.active
	r.active = next
	r.model = id
	r.mu.Unlock()

	next.SetModel(ctx, id)

	if switched && !next.HasLoadedContexts() {
		go func() {
			lazyCtx := context.WithoutCancel(ctx)
			if err := next.LoadContexts(lazyCtx, core.ContextSelection{}); err != nil {
				log.FromCtx(lazyCtx).Warn().Err(err).Msg("lazy context load failed")
			}
		}()
	}
}

func (r *Router) current() core.AIService {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.active
}

func (r *Router) AvailableRoles() []string     { return r.current().AvailableRoles() }
func (r *Router) AvailablePersonas() []string  { return r.current().AvailablePersonas() }
func (r *Router) AvailableScenarios() []string { return r.current().AvailableScenarios() }

// LoadContexts fans out to every adapter concurrently so a later model
// switch finds its contexts warm.
func (r *Router) LoadContexts(ctx context.Context, sel core.ContextSelection) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, a := range r.adapters {
		g.Go(func() error { return a.LoadContexts(ctx, sel) })
	}
	return g.Wait()
}

// Per-slot loads also fan out, the active adapter's text is the result.
func (r *Router) LoadRoleContext(ctx context.Context, name string) string {
	return r.fanOutSlot(ctx, name, core.AIService.LoadRoleContext)
}

func (r *Router) LoadPersonaContext(ctx context.Context, name string) string {
	return r.fanOutSlot(ctx, name, core.AIService.LoadPersonaContext)
}

func (r *Router) LoadScenarioContext(ctx context.Context, name string) string {
	return r.fanOutSlot(ctx, name, core.AIService.LoadScenarioContext)
}

func (r *Router) fanOutSlot(ctx context.Context, name string, load func(core.AIService, context.Context, string) string) string {
	active := r.current()
	var result string
	var wg sync.WaitGroup
	for _, a := range r.adapters {
		wg.Add(1)
		go func() {
			defer wg.Done()
			text := load(a, ctx, name)
			if a == active {
				result = text
			}
		}()
	}
	wg.Wait()
	return result
}

func (r *Router) HasLoadedContexts() bool { return r.current().HasLoadedContexts() }

func (r *Router) SendMessage(ctx context.Context, history []core.Message) (string, error) {
	active := r.current()
	if active == nil {
		return "", errNoAdapters
	}
	return active.SendMessage(ctx, history)
}

func (r *Router) StreamMessage(ctx context.Context, history []core.Message, onChunk core.ChunkFunc, onComplete core.CompleteFunc) error {
	active := r.current()
	if active == nil {
		return errNoAdapters
	}
	return active.StreamMessage(ctx, history, onChunk, onComplete)
}

var errNoAdapters = errors.New("no provider adapters configured")
