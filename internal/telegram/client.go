// Package telegram connects the bot to Telegram: it listens for alerts on
// the source channel, dispatches operator commands and sends notifications
// back to the configured chats.
package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"signal-copier-bot/internal/logger"
)

const alertBuffer = 128

type Params struct {
	Token         string
	SourceChatID  int64
	NotifyChatIDs []int64
}

// Client wraps the Bot API connection. Channel posts from the source chat
// become alerts; messages starting with / from any other chat become
// commands.
type Client struct {
	api      *tgbotapi.BotAPI
	params   Params
	commands *Commands
	alerts   chan string
}

func NewClient(p Params, commands *Commands) (*Client, error) {
	api, err := tgbotapi.NewBotAPI(p.Token)
	if err != nil {
		return nil, fmt.Errorf("telegram login failed: %w", err)
	}
	return &Client{
		api:      api,
		params:   p,
		commands: commands,
		alerts:   make(chan string, alertBuffer),
	}, nil
}

// Alerts is the stream of raw alert texts from the source channel.
func (c *Client) Alerts() <-chan string {
	return c.alerts
}

// Run polls for updates until ctx is cancelled.
func (c *Client) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := c.api.GetUpdatesChan(u)

	logger.Info(ctx, "Telegram client started",
		"bot", c.api.Self.UserName, "source_chat", c.params.SourceChatID)

	for {
		select {
		case <-ctx.Done():
			c.api.StopReceivingUpdates()
			logger.Info(context.Background(), "Telegram client stopped")
			return
		case update := <-updates:
			c.handleUpdate(ctx, update)
		}
	}
}

func (c *Client) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	// Alerts arrive as channel posts on the source channel.
	if post := update.ChannelPost; post != nil && post.Chat.ID == c.params.SourceChatID {
		c.enqueueAlert(ctx, post.Text)
		return
	}

	msg := update.Message
	if msg == nil {
		return
	}
	if msg.Chat.ID == c.params.SourceChatID {
		c.enqueueAlert(ctx, msg.Text)
		return
	}
	if !msg.IsCommand() {
		return
	}

	reply := c.commands.Handle(ctx, msg.Command(), msg.CommandArguments())
	if reply == "" {
		return
	}
	if _, err := c.api.Send(tgbotapi.NewMessage(msg.Chat.ID, reply)); err != nil {
		logger.ErrorWithErr(ctx, "Failed to send command reply", err, "chat_id", msg.Chat.ID)
	}
}

func (c *Client) enqueueAlert(ctx context.Context, text string) {
	if text == "" {
		return
	}
	logger.Info(ctx, "Alert received", "preview", alertPreview(text))

	select {
	case c.alerts <- text:
	default:
		logger.Warn(ctx, "Alert queue full, dropping alert", "queued", len(c.alerts))
	}
}

// alertPreview truncates over runes so a multi-byte alert text never logs
// as broken UTF-8.
func alertPreview(text string) string {
	const n = 100
	r := []rune(text)
	if len(r) > n {
		r = r[:n]
	}
	return string(r)
}

// Broadcast sends text to every configured notify chat. A failure on one
// chat does not stop delivery to the rest.
func (c *Client) Broadcast(ctx context.Context, text string) error {
	var firstErr error
	for _, chatID := range c.params.NotifyChatIDs {
		if _, err := c.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
			logger.ErrorWithErr(ctx, "Failed to send notification", err, "chat_id", chatID)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
