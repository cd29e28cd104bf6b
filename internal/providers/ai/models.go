package ai

import (
	"context"
	"sync"

	"github.com/sandevgo/vizchat/internal/core"
	"github.com/sandevgo/vizchat/pkg/log"
)

// modelList is an adapter's static catalog plus the active selection.
type modelList struct {
	mu       sync.RWMutex
	options  []core.ModelOption
	selected string
}

func newModelList(options []core.ModelOption) *modelList {
	m := &modelList{options: options}
	if len(options) > 0 {
		m.selected = options[0].ID
	}
	return m
}

func (m *modelList) available() []core.ModelOption {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.options
}

func (m *modelList) current() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.selected
}

// set switches the selection. Unknown ids log and keep the previous
// selection.
func (m *modelList) set(ctx context.Context, id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, opt := range m.options {
		if opt.ID == id {
			m.selected = id
			return
		}
	}
	log.FromCtx(ctx).Error().Str("model", id).Msg("unknown model id, keeping current selection")
}
