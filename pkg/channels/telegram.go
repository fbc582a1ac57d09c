package channels

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/mymmrac/telego"
	"github.com/mymmrac/telego/telegoutil"

	"katana/pkg/bus"
	"katana/pkg/config"
	"katana/pkg/logger"
)

type TelegramChannel struct {
	*BaseChannel
	bot       *telego.Bot
	config    config.TelegramConfig
	runCancel context.CancelFunc
	cancelMu  sync.Mutex
}

func NewTelegramChannel(cfg config.TelegramConfig, messageBus *bus.MessageBus) (*TelegramChannel, error) {
	tgBot, err := telego.NewBot(cfg.Token, telego.WithDefaultLogger(false, false))
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	return &TelegramChannel{
		BaseChannel: NewBaseChannel("telegram", messageBus, cfg.AllowFrom),
		bot:         tgBot,
		config:      cfg,
	}, nil
}

func (c *TelegramChannel) Start(ctx context.Context) error {
	if c.IsRunning() {
		return nil
	}
	logger.InfoC("telegram", "Starting Telegram bot (polling mode)")

	runCtx, cancel := context.WithCancel(ctx)
	c.cancelMu.Lock()
	c.runCancel = cancel
	c.cancelMu.Unlock()

	updates, err := c.bot.UpdatesViaLongPolling(runCtx, nil)
	if err != nil {
		cancel()
		return fmt.Errorf("failed to start updates polling: %w", err)
	}

	botInfo, err := c.bot.GetMe(ctx)
	if err != nil {
		cancel()
		return fmt.Errorf("failed to get bot info: %w", err)
	}
	logger.InfoCF("telegram", "Telegram bot connected", map[string]interface{}{
		"username": botInfo.Username,
	})

	c.setRunning(true)

	go func() {
		for {
			select {
			case <-runCtx.Done():
				return
			case update, ok := <-updates:
				if !ok {
					logger.WarnC("telegram", "Updates channel closed")
					c.setRunning(false)
					return
				}
				if update.Message != nil {
					c.handleMessage(update.Message)
				}
			}
		}
	}()

	return nil
}

func (c *TelegramChannel) Stop(ctx context.Context) error {
	if !c.IsRunning() {
		return nil
	}
	logger.InfoC("telegram", "Stopping Telegram bot")
	c.setRunning(false)

	c.cancelMu.Lock()
	if c.runCancel != nil {
		c.runCancel()
		c.runCancel = nil
	}
	c.cancelMu.Unlock()
	return nil
}

func (c *TelegramChannel) handleMessage(message *telego.Message) {
	text := strings.TrimSpace(message.Text)
	if text == "" {
		return
	}

	senderID := ""
	if message.From != nil {
		senderID = strconv.FormatInt(message.From.ID, 10)
	}
	if !c.Allowed(senderID) {
		logger.DebugCF("telegram", "Sender not in allow list, ignoring", map[string]interface{}{
			"sender_id": senderID,
		})
		return
	}

	c.publishInbound(bus.InboundMessage{
		Source:   c.Name(),
		SenderID: senderID,
		ChatID:   strconv.FormatInt(message.Chat.ID, 10),
		Text:     text,
	})
}

func (c *TelegramChannel) Send(ctx context.Context, msg bus.OutboundMessage) error {
	if !c.IsRunning() {
		return fmt.Errorf("telegram bot not running")
	}

	chatID, err := strconv.ParseInt(msg.ChatID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid chat ID %q: %w", msg.ChatID, err)
	}

	_, err = c.bot.SendMessage(ctx, telegoutil.Message(telegoutil.ID(chatID), msg.Text))
	if err != nil {
		return fmt.Errorf("telegram send failed: %w", err)
	}
	return nil
}
