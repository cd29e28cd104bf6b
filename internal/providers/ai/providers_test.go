package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/vizchat/internal/core"
)

// fakeStore is an in-memory ContextStore for adapter tests.
type fakeStore struct {
	options      core.ContextOptions
	texts        map[string]string
	instructions string
	listErr      error
	loadErr      error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		options: core.ContextOptions{
			Roles:     []string{"analyst"},
			Personas:  []string{"manager"},
			Scenarios: []string{"quarterly-review"},
		},
		texts: map[string]string{
			"roles/analyst":              "You are a data analyst.",
			"personas/manager":           "A busy engineering manager.",
			"scenarios/quarterly-review": "Reviewing quarterly metrics.",
		},
		instructions: "Be concise.",
	}
}

func (f *fakeStore) List(ctx context.Context) (core.ContextOptions, error) {
	return f.options, f.listErr
}

func (f *fakeStore) Load(ctx context.Context, category core.ContextCategory, name string) (string, error) {
	if f.loadErr != nil {
		return "", f.loadErr
	}
	return f.texts[string(category)+"/"+name], nil
}

func (f *fakeStore) Instructions(ctx context.Context) (string, error) {
	return f.instructions, nil
}

func newTestCompatible(serverURL string, tokenURL string) *OpenAICompatible {
	return NewOpenAICompatible(OpenAICompatibleConfig{
		Provider:     "gateway",
		BaseURL:      serverURL,
		PathFor:      func(string) string { return "/v1/chat/completions" },
		AppKey:       "app-key-123",
		TokenURL:     tokenURL,
		ClientID:     "id",
		ClientSecret: "secret",
		Models: []core.ModelOption{
			{ID: "gpt-4o-mini", Name: "GPT-4o mini"},
		},
	}, newFakeStore())
}

func newTokenServer(t *testing.T, counter *int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*counter++
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": fmt.Sprintf("tok-%d", *counter),
			"expires_in":   3600,
		})
	}))
}

func TestCompatibleSendMessage(t *testing.T) {
	var tokenCalls int
	tokenServer := newTokenServer(t, &tokenCalls)
	defer tokenServer.Close()

	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "The answer is 42."}},
			},
		})
	}))
	defer server.Close()

	svc := newTestCompatible(server.URL, tokenServer.URL)
	reply, err := svc.SendMessage(context.Background(), []core.Message{
		{Role: core.RoleUser, Content: "What is the answer?"},
	})
	require.NoError(t, err)
	assert.Equal(t, "The answer is 42.", reply)

	assert.Equal(t, "gpt-4o-mini", captured["model"])
	assert.Equal(t, `{"appkey":"app-key-123"}`, captured["user"])

	messages := captured["messages"].([]any)
	require.Len(t, messages, 2)
	system := messages[0].(map[string]any)
	assert.Equal(t, "system", system["role"])
	content := system["content"].(string)
	assert.Contains(t, content, "Be concise.")
	assert.Contains(t, content, "You are a data analyst.")
	assert.Contains(t, content, "User Persona:")
	assert.Contains(t, content, "Current Scenario:")
	assert.Contains(t, content, "{{chart:TYPE")
}

func TestCompatibleRetriesOnceOnAuthFailure(t *testing.T) {
	var tokenCalls int
	tokenServer := newTokenServer(t, &tokenCalls)
	defer tokenServer.Close()

	var chatCalls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		chatCalls++
		if chatCalls == 1 {
			http.Error(w, `{"error":{"message":"token expired"}}`, http.StatusUnauthorized)
			return
		}
		assert.Equal(t, "Bearer tok-2", r.Header.Get("Authorization"), "retry must carry a fresh token")
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "recovered"}},
			},
		})
	}))
	defer server.Close()

	svc := newTestCompatible(server.URL, tokenServer.URL)
	reply, err := svc.SendMessage(context.Background(), []core.Message{
		{Role: core.RoleUser, Content: "hi"},
	})
	require.NoError(t, err)
	assert.Equal(t, "recovered", reply)
	assert.Equal(t, 2, chatCalls)
	assert.Equal(t, 2, tokenCalls)
}

func TestCompatibleAuthFailureIsTerminalAfterRetry(t *testing.T) {
	var tokenCalls int
	tokenServer := newTokenServer(t, &tokenCalls)
	defer tokenServer.Close()

	var chatCalls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		chatCalls++
		http.Error(w, `{"error":{"message":"nope"}}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	svc := newTestCompatible(server.URL, tokenServer.URL)
	_, err := svc.SendMessage(context.Background(), []core.Message{
		{Role: core.RoleUser, Content: "hi"},
	})
	require.Error(t, err)
	assert.True(t, IsAuth(err))
	assert.Equal(t, 2, chatCalls, "exactly one retry")
}

func TestCompatibleStreamMessage(t *testing.T) {
	var tokenCalls int
	tokenServer := newTokenServer(t, &tokenCalls)
	defer tokenServer.Close()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		chunks := []string{"Hel", "lo", " there"}
		for _, c := range chunks {
			data, _ := json.Marshal(map[string]any{
				"choices": []map[string]any{
					{"delta": map[string]any{"content": c}},
				},
			})
			fmt.Fprintf(w, "data: %s\n\n", data)
		}
		fmt.Fprint(w, "data: not-json\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer server.Close()

	svc := newTestCompatible(server.URL, tokenServer.URL)

	var chunks []string
	var full string
	err := svc.StreamMessage(context.Background(), []core.Message{
		{Role: core.RoleUser, Content: "hi"},
	}, func(c string) { chunks = append(chunks, c) }, func(f string) { full = f })

	require.NoError(t, err)
	assert.Equal(t, []string{"Hel", "lo", " there"}, chunks)
	assert.Equal(t, "Hello there", full)
}

func TestCompatibleStreamCancelSkipsComplete(t *testing.T) {
	var tokenCalls int
	tokenServer := newTokenServer(t, &tokenCalls)
	defer tokenServer.Close()

	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"x\"}}]}\n\n")
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		<-release
	}))
	defer server.Close()
	defer close(release)

	svc := newTestCompatible(server.URL, tokenServer.URL)

	ctx, cancel := context.WithCancel(context.Background())
	completed := false
	err := svc.StreamMessage(ctx, []core.Message{
		{Role: core.RoleUser, Content: "hi"},
	}, func(string) { cancel() }, func(string) { completed = true })

	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, completed, "onComplete must not fire on cancellation")
}

func TestAnthropicSendMessage(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "key-123", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))
		assert.Equal(t, "/v1/messages", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]any{
				{"type": "text", "text": "Hi "},
				{"type": "text", "text": "there"},
			},
		})
	}))
	defer server.Close()

	svc := NewAnthropic("key-123", newFakeStore())
	svc.baseURL = server.URL

	reply, err := svc.SendMessage(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "Hi there", reply)

	// Empty history still sends one user turn.
	messages := captured["messages"].([]any)
	require.Len(t, messages, 1)
	assert.Equal(t, "user", messages[0].(map[string]any)["role"])
	assert.NotEmpty(t, captured["system"])
}

func TestAnthropicStreamMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "event: message_start\ndata: {}\n\n")
		fmt.Fprint(w, "event: content_block_delta\ndata: {\"delta\":{\"type\":\"text_delta\",\"text\":\"A\"}}\n\n")
		fmt.Fprint(w, "event: content_block_delta\ndata: {\"delta\":{\"type\":\"text_delta\",\"text\":\"B\"}}\n\n")
		fmt.Fprint(w, "event: message_stop\ndata: {}\n\n")
	}))
	defer server.Close()

	svc := NewAnthropic("key", newFakeStore())
	svc.baseURL = server.URL

	var chunks []string
	var full string
	err := svc.StreamMessage(context.Background(), []core.Message{
		{Role: core.RoleUser, Content: "hi"},
	}, func(c string) { chunks = append(chunks, c) }, func(f string) { full = f })

	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, chunks)
	assert.Equal(t, "AB", full)
}

func TestAnthropicNotFoundError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"model not found"}}`, http.StatusNotFound)
	}))
	defer server.Close()

	svc := NewAnthropic("key", newFakeStore())
	svc.baseURL = server.URL

	_, err := svc.SendMessage(context.Background(), []core.Message{{Role: core.RoleUser, Content: "hi"}})
	require.Error(t, err)

	var ae *APIError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, KindNotFound, ae.Kind)
	assert.Equal(t, "model not found", ae.Message)
}

func TestSetModelRejectsUnknown(t *testing.T) {
	svc := NewAnthropic("key", newFakeStore())
	before := svc.SelectedModel()
	svc.SetModel(context.Background(), "no-such-model")
	assert.Equal(t, before, svc.SelectedModel())
}
