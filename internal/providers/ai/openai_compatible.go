package ai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/sandevgo/vizchat/internal/core"
	"github.com/sandevgo/vizchat/pkg/log"
)

// OpenAICompatibleConfig describes one chat-completions deployment
// fronted by an OAuth2 client-credentials token endpoint.
type OpenAICompatibleConfig struct {
	Provider string
	BaseURL  string
	// PathFor returns the chat completions path for a model id,
	// including any query string the deployment needs (api-version and
	// the like). Azure embeds the deployment name in the path.
	PathFor func(model string) string
	// AppKey is forwarded in the request's user field as a JSON object.
	AppKey       string
	TokenURL     string
	ClientID     string
	ClientSecret string
	Models       []core.ModelOption
}

// OpenAICompatible speaks the chat-completions dialect. Azure and
// gateway deployments are both thin configurations of it.
type OpenAICompatible struct {
	baseClient
	pathFor  func(model string) string
	appKey   string
	tokens   *tokenSource
	models   *modelList
	contexts *contextSet
}

func NewOpenAICompatible(cfg OpenAICompatibleConfig, store core.ContextStore) *OpenAICompatible {
	return &OpenAICompatible{
		baseClient: newBaseClient(cfg.Provider, cfg.BaseURL),
		pathFor:    cfg.PathFor,
		appKey:     cfg.AppKey,
		tokens:     newTokenSource(cfg.TokenURL, cfg.ClientID, cfg.ClientSecret),
		models:     newModelList(cfg.Models),
		contexts:   newContextSet(cfg.Provider, store),
	}
}

func (o *OpenAICompatible) AvailableModels() []core.ModelOption { return o.models.available() }
func (o *OpenAICompatible) SelectedModel() string               { return o.models.current() }

func (o *OpenAICompatible) SetModel(ctx context.Context, id string) { o.models.set(ctx, id) }

func (o *OpenAICompatible) AvailableRoles() []string     { return o.contexts.availableRoles() }
func (o *OpenAICompatible) AvailablePersonas() []string  { return o.contexts.availablePersonas() }
func (o *OpenAICompatible) AvailableScenarios() []string { return o.contexts.availableScenarios() }

func (o *OpenAICompatible) LoadContexts(ctx context.Context, sel core.ContextSelection) error {
	return o.contexts.loadAll(ctx, sel)
}

func (o *OpenAICompatible) LoadRoleContext(ctx context.Context, name string) string {
	return o.contexts.loadSlot(ctx, core.CategoryRole, name)
}

func (o *OpenAICompatible) LoadPersonaContext(ctx context.Context, name string) string {
	return o.contexts.loadSlot(ctx, core.CategoryPersona, name)
}

func (o *OpenAICompatible) LoadScenarioContext(ctx context.Context, name string) string {
	return o.contexts.loadSlot(ctx, core.CategoryScenario, name)
}

func (o *OpenAICompatible) HasLoadedContexts() bool { return o.contexts.hasLoaded() }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func (o *OpenAICompatible) payload(history []core.Message, stream bool) map[string]any {
	messages := []chatMessage{{Role: core.RoleSystem, Content: o.contexts.systemPrompt()}}
	for _, m := range history {
		if m.Role == core.RoleSystem {
			continue
		}
		messages = append(messages, chatMessage{Role: m.Role, Content: m.Content})
	}

	p := map[string]any{
		"model":       o.models.current(),
		"messages":    messages,
		"temperature": 0.7,
		"max_tokens":  4096,
		"stream":      stream,
	}
	if o.appKey != "" {
		user, _ := json.Marshal(map[string]string{"appkey": o.appKey})
		p["user"] = string(user)
	}
	return p
}

func (o *OpenAICompatible) headers(token string) map[string]string {
	return map[string]string{
		"Authorization": "Bearer " + token,
	}
}

// SendMessage blocks for the full completion. An auth-classified
// failure invalidates the cached token and retries exactly once.
func (o *OpenAICompatible) SendMessage(ctx context.Context, history []core.Message) (string, error) {
	o.contexts.ensureLoaded(ctx)

	text, err := o.send(ctx, history)
	if IsAuth(err) {
		log.FromCtx(ctx).Warn().Err(err).Str("provider", o.provider).Msg("auth failure, refreshing token and retrying once")
		o.tokens.Invalidate()
		text, err = o.send(ctx, history)
	}
	return text, err
}

func (o *OpenAICompatible) send(ctx context.Context, history []core.Message) (string, error) {
	token, err := o.tokens.Token(ctx)
	if err != nil {
		return "", err
	}

	resp, err := o.doRequest(ctx, http.MethodPost, o.pathFor(o.models.current()), o.payload(history, false), o.headers(token), false)
	if err != nil {
		return "", err
	}
	if err := o.checkStatus(resp); err != nil {
		return "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", transportError(o.provider, err)
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return "", transportError(o.provider, err)
	}
	if len(result.Choices) == 0 {
		return "", &APIError{Provider: o.provider, Kind: KindUnknown, Message: "completion had no choices"}
	}
	return result.Choices[0].Message.Content, nil
}

func (o *OpenAICompatible) StreamMessage(ctx context.Context, history []core.Message, onChunk core.ChunkFunc, onComplete core.CompleteFunc) error {
	o.contexts.ensureLoaded(ctx)

	err := o.stream(ctx, history, onChunk, onComplete)
	if IsAuth(err) {
		log.FromCtx(ctx).Warn().Err(err).Str("provider", o.provider).Msg("auth failure, refreshing token and retrying once")
		o.tokens.Invalidate()
		err = o.stream(ctx, history, onChunk, onComplete)
	}
	return err
}

func (o *OpenAICompatible) stream(ctx context.Context, history []core.Message, onChunk core.ChunkFunc, onComplete core.CompleteFunc) error {
	token, err := o.tokens.Token(ctx)
	if err != nil {
		return err
	}

	resp, err := o.doRequest(ctx, http.MethodPost, o.pathFor(o.models.current()), o.payload(history, true), o.headers(token), true)
	if err != nil {
		return err
	}
	if err := o.checkStatus(resp); err != nil {
		return err
	}
	defer resp.Body.Close()

	var full string
	reader := newSSEReader(resp.Body)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		ev, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return transportError(o.provider, err)
		}
		if ev.Data == "[DONE]" {
			break
		}

		var chunk struct {
			Choices []struct {
				Delta struct {
					Content string `json:"content"`
				} `json:"delta"`
			} `json:"choices"`
		}
		if err := json.Unmarshal([]byte(ev.Data), &chunk); err != nil {
			log.FromCtx(ctx).Debug().Err(err).Msg("skipping malformed stream chunk")
			continue
		}
		if len(chunk.Choices) > 0 && chunk.Choices[0].Delta.Content != "" {
			full += chunk.Choices[0].Delta.Content
			onChunk(chunk.Choices[0].Delta.Content)
		}
	}

	onComplete(full)
	return nil
}
