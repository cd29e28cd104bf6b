package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/sandevgo/vizchat/internal/core"
	"github.com/sandevgo/vizchat/internal/providers/ai"
	"github.com/sandevgo/vizchat/internal/service/workspace"
	"github.com/sandevgo/vizchat/internal/viz"
)

type memRepo struct {
	mu       sync.Mutex
	messages map[string][]core.Message
}

func newMemRepo() *memRepo {
	return &memRepo{messages: make(map[string][]core.Message)}
}

func (m *memRepo) AddMessage(_ context.Context, sessionID string, msg core.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages[sessionID] = append(m.messages[sessionID], msg)
	return nil
}

func (m *memRepo) GetMessages(_ context.Context, sessionID string, limit int) ([]core.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	msgs := m.messages[sessionID]
	if len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return append([]core.Message(nil), msgs...), nil
}

func (m *memRepo) ClearMessages(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.messages, sessionID)
	return nil
}

type memSelections struct {
	mu   sync.Mutex
	vals map[string]string
}

func newMemSelections() *memSelections { return &memSelections{vals: make(map[string]string)} }

func (m *memSelections) GetSelection(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.vals[key], nil
}

func (m *memSelections) SetSelection(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vals[key] = value
	return nil
}

// scriptedAI returns a canned reply or error.
type scriptedAI struct {
	reply string
	err   error

	mu       sync.Mutex
	history  []core.Message
	selected string
}

func (s *scriptedAI) AvailableModels() []core.ModelOption {
	return []core.ModelOption{{ID: "m1"}, {ID: "m2"}}
}

func (s *scriptedAI) SelectedModel() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected == "" {
		return "m1"
	}
	return s.selected
}

func (s *scriptedAI) SetModel(_ context.Context, id string) {
	s.mu.Lock()
	s.selected = id
	s.mu.Unlock()
}

func (s *scriptedAI) AvailableRoles() []string                            { return nil }
func (s *scriptedAI) AvailablePersonas() []string                         { return nil }
func (s *scriptedAI) AvailableScenarios() []string                        { return nil }
func (s *scriptedAI) LoadContexts(context.Context, core.ContextSelection) error { return nil }
func (s *scriptedAI) LoadRoleContext(_ context.Context, n string) string        { return n }
func (s *scriptedAI) LoadPersonaContext(_ context.Context, n string) string     { return n }
func (s *scriptedAI) LoadScenarioContext(_ context.Context, n string) string    { return n }
func (s *scriptedAI) HasLoadedContexts() bool                                   { return true }

func (s *scriptedAI) SendMessage(_ context.Context, history []core.Message) (string, error) {
	s.mu.Lock()
	s.history = history
	s.mu.Unlock()
	return s.reply, s.err
}

func (s *scriptedAI) StreamMessage(_ context.Context, history []core.Message, onChunk core.ChunkFunc, onComplete core.CompleteFunc) error {
	if s.err != nil {
		return s.err
	}
	for _, part := range strings.SplitAfter(s.reply, " ") {
		onChunk(part)
	}
	onComplete(s.reply)
	return nil
}

func newTestService(aiSvc core.AIService) (*Service, *memRepo, *workspace.Bus) {
	repo := newMemRepo()
	bus := workspace.NewBus()
	return New(aiSvc, viz.NewParser(), repo, newMemSelections(), bus, 0), repo, bus
}

func TestSendPersistsAndParses(t *testing.T) {
	aiSvc := &scriptedAI{reply: "Data:\n{{table:\ntitle: T\ncolumns: [\"A\"]\ndata: [[\"1\"]]\n}}"}
	svc, repo, bus := newTestService(aiSvc)
	events, cancel := bus.Subscribe()
	defer cancel()

	reply, err := svc.Send(context.Background(), "s1", "show me data")
	if err != nil {
		t.Fatal(err)
	}
	if reply.Text != "Data:\n[Data table created]" {
		t.Errorf("text = %q", reply.Text)
	}
	if len(reply.Visualizations) != 1 {
		t.Fatalf("visualizations = %d", len(reply.Visualizations))
	}

	ev := <-events
	if ev.Kind != workspace.EventAdd || ev.Visualization.VizTitle() != "T" {
		t.Errorf("event = %+v", ev)
	}

	msgs, _ := repo.GetMessages(context.Background(), "s1", 10)
	if len(msgs) != 2 {
		t.Fatalf("stored = %d", len(msgs))
	}
	if msgs[0].Role != core.RoleUser || msgs[1].Role != core.RoleAssistant {
		t.Errorf("roles = %q %q", msgs[0].Role, msgs[1].Role)
	}
	if strings.Contains(msgs[1].Content, "{{") {
		t.Errorf("raw directive persisted: %q", msgs[1].Content)
	}
}

func TestSendSubstitutesProviderError(t *testing.T) {
	aiSvc := &scriptedAI{err: &ai.APIError{Provider: "anthropic", Kind: ai.KindRateLimit}}
	svc, repo, _ := newTestService(aiSvc)

	reply, err := svc.Send(context.Background(), "s1", "hi")
	if err != nil {
		t.Fatalf("provider errors must not surface: %v", err)
	}
	if !strings.Contains(reply.Text, "rate limiting") {
		t.Errorf("text = %q", reply.Text)
	}

	msgs, _ := repo.GetMessages(context.Background(), "s1", 10)
	if len(msgs) != 2 {
		t.Fatalf("stored = %d", len(msgs))
	}
}

func TestSendCancelledContextSurfaces(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	aiSvc := &scriptedAI{err: errors.New("whatever the provider said")}
	svc, _, _ := newTestService(aiSvc)

	_, err := svc.Send(ctx, "s1", "hi")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v", err)
	}
}

func TestStreamForwardsChunksAndParses(t *testing.T) {
	aiSvc := &scriptedAI{reply: "All done"}
	svc, _, _ := newTestService(aiSvc)

	var chunks []string
	reply, err := svc.Stream(context.Background(), "s1", "go", func(c string) { chunks = append(chunks, c) })
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(chunks, "") != "All done" {
		t.Errorf("chunks = %v", chunks)
	}
	if reply.Text != "All done" {
		t.Errorf("text = %q", reply.Text)
	}
}

func TestStreamErrorDeliversReadableChunk(t *testing.T) {
	aiSvc := &scriptedAI{err: &ai.APIError{Provider: "azure", Kind: ai.KindAuth}}
	svc, _, _ := newTestService(aiSvc)

	var chunks []string
	reply, err := svc.Stream(context.Background(), "s1", "go", func(c string) { chunks = append(chunks, c) })
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) != 1 || !strings.Contains(chunks[0], "Authentication") {
		t.Errorf("chunks = %v", chunks)
	}
	if !strings.Contains(reply.Text, "Authentication") {
		t.Errorf("text = %q", reply.Text)
	}
}

func TestSelectModelPersistsOnlyApplied(t *testing.T) {
	aiSvc := &scriptedAI{reply: "ok"}
	sels := newMemSelections()
	svc := New(aiSvc, viz.NewParser(), newMemRepo(), sels, workspace.NewBus(), 0)

	svc.SelectModel(context.Background(), "m2")
	stored, _ := sels.GetSelection(context.Background(), core.SelectionModel)
	if stored != "m2" {
		t.Errorf("stored = %q", stored)
	}
}

func TestRestoreSelectionsFallsBack(t *testing.T) {
	aiSvc := &scriptedAI{reply: "ok"}
	sels := newMemSelections()
	sels.SetSelection(context.Background(), core.SelectionModel, "retired-model")
	svc := New(aiSvc, viz.NewParser(), newMemRepo(), sels, workspace.NewBus(), 0)

	if err := svc.RestoreSelections(context.Background()); err != nil {
		t.Fatal(err)
	}
	if aiSvc.SelectedModel() != "m1" {
		t.Errorf("selected = %q", aiSvc.SelectedModel())
	}
}
