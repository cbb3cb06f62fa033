// internal/ingest/discordbot/discordbot.go
package discordbot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/tamzrod/infohud/internal/flash"
	"github.com/tamzrod/infohud/internal/ingest"
)

// Command prefix a channel message must start with to become a flash.
const Prefix = "!flash"

const usage = "usage: " + Prefix + " [p<priority>] <text>"

// Bot turns "!flash <text>" messages in one channel into flashes.
// An optional leading "p<N>" token overrides the configured priority:
//
//	!flash p8 Dinner is ready
type Bot struct {
	token     string
	channelID string
	priority  int
	queue     ingest.Enqueuer
	decoder   ingest.Decoder
	log       *slog.Logger
}

func New(token, channelID string, priority int, q ingest.Enqueuer, d ingest.Decoder, log *slog.Logger) (*Bot, error) {
	if token == "" {
		return nil, errors.New("discordbot: token required")
	}
	if q == nil {
		return nil, errors.New("discordbot: queue required")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Bot{token: token, channelID: channelID, priority: priority, queue: q, decoder: d, log: log}, nil
}

// Run opens the gateway session and blocks until ctx is done.
func (b *Bot) Run(ctx context.Context) error {
	s, err := discordgo.New("Bot " + b.token)
	if err != nil {
		return fmt.Errorf("discordbot: %w", err)
	}
	s.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentsDirectMessages | discordgo.IntentMessageContent

	s.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		reply := b.handle(m)
		if reply == "" {
			return
		}
		if _, err := s.ChannelMessageSend(m.ChannelID, reply); err != nil {
			b.log.Debug("discordbot: reply failed", "error", err)
		}
	})

	if err := s.Open(); err != nil {
		return fmt.Errorf("discordbot: open: %w", err)
	}
	b.log.Info("discordbot: connected", "channel_id", b.channelID)

	<-ctx.Done()
	return s.Close()
}

// handle enqueues m if it is a flash command and returns the reply text.
func (b *Bot) handle(m *discordgo.MessageCreate) string {
	if m == nil || m.Message == nil || m.Author == nil || m.Author.Bot {
		return ""
	}
	if b.channelID != "" && m.ChannelID != b.channelID {
		return ""
	}

	body, ok := strings.CutPrefix(strings.TrimSpace(m.Content), Prefix)
	if !ok || (body != "" && body[0] != ' ') {
		return ""
	}

	prio := b.priority
	fields := strings.Fields(body)
	if len(fields) > 0 {
		var n int
		if _, err := fmt.Sscanf(fields[0], "p%d", &n); err == nil {
			prio = n
			fields = fields[1:]
		}
	}
	if len(fields) == 0 {
		return usage
	}

	msg, err := b.decoder.Build(ingest.Payload{
		ID:       "discord-" + m.ID,
		Title:    m.Author.Username,
		Text:     strings.Join(fields, " "),
		Priority: prio,
	}, flash.OriginDiscord)
	if err != nil {
		return usage
	}
	if err := b.queue.Enqueue(msg); err != nil {
		b.log.Warn("discordbot: enqueue failed", "flash_id", msg.ID, "error", err)
		return "could not queue flash"
	}

	b.log.Info("discordbot: flash accepted", "flash_id", msg.ID, "priority", msg.Priority, "author", m.Author.Username)
	return fmt.Sprintf("queued (priority %d)", msg.Priority)
}
