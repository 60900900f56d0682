package telegram

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"github.com/mauv0809/padel-roster/internal/calendar"
	"github.com/mauv0809/padel-roster/internal/club"
	"github.com/mauv0809/padel-roster/internal/metrics"
	"github.com/mauv0809/padel-roster/internal/notifier"
)

// telegramAPI is the part of tgbotapi.BotAPI the notifier uses.
type telegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

var _ notifier.Notifier = &Notifier{}

// Notifier sends roster events to group chats and members on Telegram.
// Group, admin and member ids double as Telegram chat ids.
type Notifier struct {
	api     telegramAPI
	metrics metrics.Metrics
}

// NewNotifier connects to the Bot API with token.
func NewNotifier(token string, metrics metrics.Metrics) (*Notifier, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	log.Info("Authorized on telegram", "account", api.Self.UserName)
	return NewNotifierWithAPI(api, metrics), nil
}

// NewNotifierWithAPI creates a Notifier on top of an existing API client.
func NewNotifierWithAPI(api telegramAPI, metrics metrics.Metrics) *Notifier {
	return &Notifier{api: api, metrics: metrics}
}

func (n *Notifier) send(chat, text string, dryRun bool) error {
	chatID, err := strconv.ParseInt(chat, 10, 64)
	if err != nil {
		log.Debug("Skipping telegram message, not a telegram chat", "chat", chat)
		return nil
	}
	if dryRun {
		log.Info("[Dry Run] Would send Telegram message", "chat", chatID, "text", text)
		return nil
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "Markdown"
	if _, err := n.api.Send(msg); err != nil {
		n.metrics.IncNotifFailed()
		log.Error("Failed to send Telegram message", "error", err, "chat", chatID)
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	n.metrics.IncNotifSent()
	return nil
}

func (n *Notifier) AnnouncePeriodOpened(ctx context.Context, group club.Group, sheet string, dryRun bool) error {
	text := fmt.Sprintf("🎾 Registration for *%s* is open up to %s.\nUse /register\\_game to book your place.",
		group.Name, calendar.FormatDate(group.RegistrationOpenUntil))
	return n.send(group.ID, text, dryRun)
}

func (n *Notifier) NotifyMemberJoined(ctx context.Context, group club.Group, member club.Member, dryRun bool) error {
	text := fmt.Sprintf("%s joined *%s* (phone %s).", member.DisplayName(), group.Name, member.Phone)
	return n.send(group.AdminID, text, dryRun)
}

func (n *Notifier) NotifyPromotion(ctx context.Context, group club.Group, member club.Member, date time.Time, dryRun bool) error {
	text := fmt.Sprintf("A place opened up: you are now playing with *%s* on %s.", group.Name, calendar.FormatDate(date))
	return n.send(member.ID, text, dryRun)
}

func (n *Notifier) NotifyReplacement(ctx context.Context, group club.Group, from, to club.Member, date time.Time, dryRun bool) error {
	text := fmt.Sprintf("%s passed you their place with *%s* on %s.", from.DisplayName(), group.Name, calendar.FormatDate(date))
	return n.send(to.ID, text, dryRun)
}

// NotifySyncFailures is a no-op; sync failures are reported to the admin channel only.
func (n *Notifier) NotifySyncFailures(ctx context.Context, failures []notifier.SyncFailure, dryRun bool) error {
	return nil
}
