package ai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/sandevgo/vizchat/internal/core"
	"github.com/sandevgo/vizchat/pkg/log"
)

const (
	anthropicBaseURL   = "https://api.anthropic.com"
	anthropicVersion   = "2023-06-01"
	anthropicMaxTokens = 4096
)

// Anthropic talks to the Anthropic messages API with a static API key.
type Anthropic struct {
	baseClient
	apiKey   string
	models   *modelList
	contexts *contextSet
}

func NewAnthropic(apiKey string, store core.ContextStore) *Anthropic {
	return &Anthropic{
		baseClient: newBaseClient("anthropic", anthropicBaseURL),
		apiKey:     apiKey,
		models: newModelList([]core.ModelOption{
			{ID: "claude-3-opus-20240229", Name: "Claude 3 Opus", Description: "Most capable, slower"},
			{ID: "claude-3-sonnet-20240229", Name: "Claude 3 Sonnet", Description: "Balanced speed and capability"},
			{ID: "claude-3-haiku-20240307", Name: "Claude 3 Haiku", Description: "Fastest, lightweight"},
		}),
		contexts: newContextSet("anthropic", store),
	}
}

func (a *Anthropic) AvailableModels() []core.ModelOption { return a.models.available() }
func (a *Anthropic) SelectedModel() string               { return a.models.current() }

func (a *Anthropic) SetModel(ctx context.Context, id string) { a.models.set(ctx, id) }

func (a *Anthropic) AvailableRoles() []string     { return a.contexts.availableRoles() }
func (a *Anthropic) AvailablePersonas() []string  { return a.contexts.availablePersonas() }
func (a *Anthropic) AvailableScenarios() []string { return a.contexts.availableScenarios() }

func (a *Anthropic) LoadContexts(ctx context.Context, sel core.ContextSelection) error {
	return a.contexts.loadAll(ctx, sel)
}

func (a *Anthropic) LoadRoleContext(ctx context.Context, name string) string {
	return a.contexts.loadSlot(ctx, core.CategoryRole, name)
}

func (a *Anthropic) LoadPersonaContext(ctx context.Context, name string) string {
	return a.contexts.loadSlot(ctx, core.CategoryPersona, name)
}

func (a *Anthropic) LoadScenarioContext(ctx context.Context, name string) string {
	return a.contexts.loadSlot(ctx, core.CategoryScenario, name)
}

func (a *Anthropic) HasLoadedContexts() bool { return a.contexts.hasLoaded() }

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func (a *Anthropic) payload(history []core.Message, stream bool) map[string]any {
	var messages []anthropicMessage
	for _, m := range history {
		if m.Role == core.RoleSystem {
			continue
		}
		messages = append(messages, anthropicMessage{Role: m.Role, Content: m.Content})
	}
	if len(messages) == 0 {
		messages = append(messages, anthropicMessage{Role: core.RoleUser, Content: "Hello"})
	}

	p := map[string]any{
		"model":      a.models.current(),
		"max_tokens": anthropicMaxTokens,
		"system":     a.contexts.systemPrompt(),
		"messages":   messages,
	}
	if stream {
		p["stream"] = true
	}
	return p
}

func (a *Anthropic) headers() map[string]string {
	return map[string]string{
		"x-api-key":         a.apiKey,
		"anthropic-version": anthropicVersion,
	}
}

func (a *Anthropic) SendMessage(ctx context.Context, history []core.Message) (string, error) {
	a.contexts.ensureLoaded(ctx)

	text, err := a.send(ctx, history)
	if IsAuth(err) {
		log.FromCtx(ctx).Warn().Err(err).Msg("auth failure, retrying once")
		text, err = a.send(ctx, history)
	}
	return text, err
}

func (a *Anthropic) send(ctx context.Context, history []core.Message) (string, error) {
	resp, err := a.doRequest(ctx, http.MethodPost, "/v1/messages", a.payload(history, false), a.headers(), false)
	if err != nil {
		return "", err
	}
	if err := a.checkStatus(resp); err != nil {
		return "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", transportError(a.provider, err)
	}

	var result struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return "", transportError(a.provider, err)
	}

	var text string
	for _, c := range result.Content {
		if c.Type == "text" {
			text += c.Text
		}
	}
	return text, nil
}

func (a *Anthropic) StreamMessage(ctx context.Context, history []core.Message, onChunk core.ChunkFunc, onComplete core.CompleteFunc) error {
	a.contexts.ensureLoaded(ctx)

	err := a.stream(ctx, history, onChunk, onComplete)
	if IsAuth(err) {
		log.FromCtx(ctx).Warn().Err(err).Msg("auth failure, retrying once")
		err = a.stream(ctx, history, onChunk, onComplete)
	}
	return err
}

func (a *Anthropic) stream(ctx context.Context, history []core.Message, onChunk core.ChunkFunc, onComplete core.CompleteFunc) error {
	resp, err := a.doRequest(ctx, http.MethodPost, "/v1/messages", a.payload(history, true), a.headers(), true)
	if err != nil {
		return err
	}
	if err := a.checkStatus(resp); err != nil {
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
			return transportError(a.provider, err)
		}

		switch ev.Name {
		case "content_block_delta":
			var delta struct {
				Delta struct {
					Type string `json:"type"`
					Text string `json:"text"`
				} `json:"delta"`
			}
			if err := json.Unmarshal([]byte(ev.Data), &delta); err != nil {
				log.FromCtx(ctx).Debug().Err(err).Msg("skipping malformed stream chunk")
				continue
			}
			if delta.Delta.Text != "" {
				full += delta.Delta.Text
				onChunk(delta.Delta.Text)
			}
		case "error":
			return newStatusError(a.provider, 0, []byte(ev.Data))
		case "message_stop":
			onComplete(full)
			return nil
		}
	}

	onComplete(full)
	return nil
}
