package telegram

import (
	"context"
	"fmt"
	"time"

	tele "gopkg.in/telebot.v3"

	"github.com/sandevgo/vizchat/internal/config"
	"github.com/sandevgo/vizchat/internal/core"
	"github.com/sandevgo/vizchat/internal/service/chat"
	"github.com/sandevgo/vizchat/pkg/log"
)

const baseContextKey = "base_context"

type Bot struct {
	bot     *tele.Bot
	cfg     *config.TelegramConfig
	chat    *chat.Service
	router  core.CmdRouter
	sender  *sender
	ownerID int64
}

func NewBot(
	ctx context.Context,
	cfg *config.TelegramConfig,
	chatSvc *chat.Service,
	cmdRouter core.CmdRouter,
) (*Bot, error) {
	pref := tele.Settings{
		Token:  cfg.Token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}

	b, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	bot := &Bot{
		bot:     b,
		cfg:     cfg,
		chat:    chatSvc,
		router:  cmdRouter,
		sender:  newSender(b),
		ownerID: cfg.OwnerID,
	}

	// Use context from Signal with logger
	b.Use(func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			c.Set(baseContextKey, ctx)
			return next(c)
		}
	})

	// Middleware: Only allow the owner
	b.Use(func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if c.Sender().ID != bot.ownerID {
				return nil // Ignore unauthorized users
			}
			return next(c)
		}
	})

	b.Handle(tele.OnText, bot.handleMessage)

	return bot, nil
}

func (b *Bot) Start(ctx context.Context) error {
	log.FromCtx(ctx).Info().Msg("starting telegram bot")
	b.bot.Start()
	return nil
}

func (b *Bot) Shutdown(ctx context.Context) error {
	b.bot.Stop()
	return nil
}

func (b *Bot) handleMessage(c tele.Context) error {
	ctx := c.Get(baseContextKey).(context.Context)
	logger := log.FromCtx(ctx)
	sessionID := fmt.Sprintf("telegram-%d", c.Chat().ID)

	if out, handled := b.router.Execute(ctx, sessionID, c.Text()); handled {
		return b.sender.sendMarkdown(ctx, c.Chat(), out, false)
	}

	_ = c.Notify(tele.Typing)

	reply, err := b.chat.Send(ctx, sessionID, c.Text())
	if err != nil {
		logger.Error().Err(err).Msg("chat turn failed")
		return c.Send(fmt.Sprintf("error: %v", err))
	}

	if reply.Text != "" {
		if err := b.sender.sendMarkdown(ctx, c.Chat(), reply.Text, false); err != nil {
			return err
		}
	}

	// Charts and tables follow the reply as separate messages.
	for _, v := range reply.Visualizations {
		if err := b.sender.sendMarkdown(ctx, c.Chat(), renderVisualization(v), true); err != nil {
			logger.Error().Err(err).Str("id", v.VizID()).Msg("failed to send visualization")
		}
	}

	return nil
}
