package chat

import (
	"context"
	"sync"

	"github.com/pkoukk/tiktoken-go"

	"github.com/sandevgo/vizchat/internal/core"
	"github.com/sandevgo/vizchat/pkg/log"
)

const windowEncoding = "cl100k_base"

// fallbackMessageCount bounds the window when the tokenizer is
// unavailable.
const fallbackMessageCount = 40

// tokenWindow trims history to a token budget, dropping the oldest
// turns first.
type tokenWindow struct {
	budget int

	once    sync.Once
	encoder *tiktoken.Tiktoken
}

func newTokenWindow(budget int) *tokenWindow {
	return &tokenWindow{budget: budget}
}

func (w *tokenWindow) trim(ctx context.Context, history []core.Message) []core.Message {
	if w.budget <= 0 || len(history) == 0 {
		return history
	}

	w.once.Do(func() {
		enc, err := tiktoken.GetEncoding(windowEncoding)
		if err != nil {
			log.FromCtx(ctx).Warn().Err(err).Msg("tokenizer unavailable, windowing by message count")
			return
		}
		w.encoder = enc
	})

	if w.encoder == nil {
		if len(history) > fallbackMessageCount {
			return history[len(history)-fallbackMessageCount:]
		}
		return history
	}

	// total counts only the kept window, the message that busts the
	// budget is excluded before it is added.
	total := 0
	cut := 0
	for i := len(history) - 1; i >= 0; i-- {
		n := len(w.encoder.Encode(history[i].Content, nil, nil))
		if total+n > w.budget {
			cut = i + 1
			break
		}
		total += n
	}

	// Never drop the newest message, even when it alone busts the budget.
	if cut >= len(history) {
		cut = len(history) - 1
	}
	if cut > 0 {
		log.FromCtx(ctx).Debug().Int("dropped", cut).Int("tokens", total).Msg("trimmed history window")
	}
	return history[cut:]
}
