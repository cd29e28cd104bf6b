package core

import "context"

// ChunkFunc receives one incremental fragment of a streamed reply.
type ChunkFunc func(chunk string)

// CompleteFunc receives the full accumulated reply once a stream ends.
type CompleteFunc func(full string)

// AIService is the provider-facing contract. Both the concrete adapters
// and the router that multiplexes them satisfy it.
type AIService interface {
	// AvailableModels returns the static model catalog.
	AvailableModels() []ModelOption
	// SelectedModel returns the id of the currently active model.
	SelectedModel() string
	// SetModel switches the active model. Unknown ids are logged and
	// ignored, the previous selection stays active.
	SetModel(ctx context.Context, id string)

	AvailableRoles() []string
	AvailablePersonas() []string
	AvailableScenarios() []string

	// LoadContexts resolves and loads every context slot. Concurrent
	// calls coalesce into one load. Individual slot failures degrade to
	// empty text and are logged, only a failed listing returns an error.
	LoadContexts(ctx context.Context, sel ContextSelection) error
	// LoadRoleContext loads a single slot by name and returns the text,
	// or empty text on failure. It never returns an error.
	LoadRoleContext(ctx context.Context, name string) string
	LoadPersonaContext(ctx context.Context, name string) string
	LoadScenarioContext(ctx context.Context, name string) string
	// HasLoadedContexts reports whether every slot holds non-empty text.
	HasLoadedContexts() bool

	// SendMessage sends the conversation and blocks for the full reply.
	SendMessage(ctx context.Context, history []Message) (string, error)
	// StreamMessage streams the reply through onChunk and calls
	// onComplete with the accumulated text once. On error or context
	// cancellation onComplete is not called.
	StreamMessage(ctx context.Context, history []Message, onChunk ChunkFunc, onComplete CompleteFunc) error
}

// ContextStore serves role/persona/scenario resources and the general
// instruction text that prefixes every system prompt.
type ContextStore interface {
	List(ctx context.Context) (ContextOptions, error)
	Load(ctx context.Context, category ContextCategory, name string) (string, error)
	Instructions(ctx context.Context) (string, error)
}
