package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/padel-roster/internal/calendar"
	"github.com/mauv0809/padel-roster/internal/club"
	"github.com/mauv0809/padel-roster/internal/metrics"
	"github.com/mauv0809/padel-roster/internal/notifier"
	"github.com/mauv0809/padel-roster/internal/roster"
	"github.com/slack-go/slack"
)

// slackClient is an interface that contains the methods from the slack.Client that we use.
// This allows for easy mocking in tests.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

var _ notifier.Notifier = &Notifier{}

// Notifier posts roster events to the admin channel in Slack.
type Notifier struct {
	api       slackClient
	channelID string
	metrics   metrics.Metrics
}

// NewNotifier creates a new Notifier.
func NewNotifier(token, channelID string, metrics metrics.Metrics) *Notifier {
	return NewNotifierWithAPI(slack.New(token), channelID, metrics)
}

// NewNotifierWithAPI creates a new Notifier with a specific slack.Client instance.
// Useful for tests that need to intercept API calls.
func NewNotifierWithAPI(api slackClient, channelID string, metrics metrics.Metrics) *Notifier {
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

func (s *Notifier) sendMessage(ctx context.Context, message slack.Message, dryRun bool) (string, string, error) {
	if dryRun {
		jsonMsg, _ := json.MarshalIndent(message, "", "  ")
		log.Info("[Dry Run] Would send Slack message", "channel", s.channelID, "message", string(jsonMsg))
		return "dry-run-ts", "dry-run-thread-ts", nil
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	channelID, timestamp, err := s.api.PostMessageContext(
		ctx,
		s.channelID,
		slack.MsgOptionBlocks(message.Blocks.BlockSet...),
		slack.MsgOptionAsUser(true),
	)
	if err != nil {
		s.metrics.IncNotifFailed()
		log.Error("Failed to send Slack message", "error", err, "channel", s.channelID)
		return "", "", fmt.Errorf("failed to post message: %w", err)
	}

	s.metrics.IncNotifSent()
	log.Info("Successfully sent Slack message", "channel", channelID, "timestamp", timestamp)
	return channelID, timestamp, nil
}

func (s *Notifier) send(ctx context.Context, message slack.Message, dryRun bool) error {
	_, _, err := s.sendMessage(ctx, message, dryRun)
	return err
}

func (s *Notifier) AnnouncePeriodOpened(ctx context.Context, group club.Group, sheet string, dryRun bool) error {
	return s.send(ctx, formatPeriodOpened(group, sheet), dryRun)
}

func (s *Notifier) NotifyMemberJoined(ctx context.Context, group club.Group, member club.Member, dryRun bool) error {
	text := fmt.Sprintf("%s joined *%s*.", member.DisplayName(), group.Name)
	return s.send(ctx, FormatText(text), dryRun)
}

func (s *Notifier) NotifyPromotion(ctx context.Context, group club.Group, member club.Member, date time.Time, dryRun bool) error {
	text := fmt.Sprintf("%s moved from the waiting list into the player list of *%s* on %s.",
		member.DisplayName(), group.Name, calendar.FormatDate(date))
	return s.send(ctx, FormatText(text), dryRun)
}

func (s *Notifier) NotifyReplacement(ctx context.Context, group club.Group, from, to club.Member, date time.Time, dryRun bool) error {
	text := fmt.Sprintf("%s handed their place in *%s* on %s over to %s.",
		from.DisplayName(), group.Name, calendar.FormatDate(date), to.DisplayName())
	return s.send(ctx, FormatText(text), dryRun)
}

func (s *Notifier) NotifySyncFailures(ctx context.Context, failures []notifier.SyncFailure, dryRun bool) error {
	if len(failures) == 0 {
		return nil
	}
	return s.send(ctx, formatSyncFailures(failures), dryRun)
}

// FormatText wraps plain markdown text in a single section block.
func FormatText(text string) slack.Message {
	return slack.NewBlockMessage(
		slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", text, false, false), nil, nil),
	)
}

// FormatGroups formats the groups an admin manages for a slash command response.
func FormatGroups(groups []club.Group) slack.Message {
	if len(groups) == 0 {
		return FormatText("You don't manage any groups yet. Use `/add-group` to create one.")
	}
	blocks := []slack.Block{
		slack.NewHeaderBlock(slack.NewTextBlockObject("plain_text", "Your groups", false, false)),
	}
	for _, g := range groups {
		text := fmt.Sprintf("*%s* (`%s`)\n%s, %d courts, booking open until %s",
			g.Name, g.ID, calendar.WeekdayName(g.GameWeekday), g.CourtLimit, calendar.FormatDate(g.RegistrationOpenUntil))
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", text, false, false), nil, nil))
	}
	return slack.NewBlockMessage(blocks...)
}

// FormatMatches formats a member's upcoming registrations for a slash command response.
func FormatMatches(matches []roster.MemberMatch) slack.Message {
	if len(matches) == 0 {
		return FormatText("You are not registered for any upcoming matches.")
	}
	lines := make([]string, 0, len(matches))
	for _, m := range matches {
		lines = append(lines, fmt.Sprintf("• %s %s in *%s*: %s",
			calendar.WeekdayName(calendar.Weekday(m.Date)), calendar.FormatDate(m.Date), m.Group.Name, DescribePlacement(m.Placement)))
	}
	return slack.NewBlockMessage(
		slack.NewHeaderBlock(slack.NewTextBlockObject("plain_text", "Your upcoming matches", false, false)),
		slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", strings.Join(lines, "\n"), false, false), nil, nil),
	)
}

// DescribePlacement renders a placement the way members see it.
func DescribePlacement(p roster.Placement) string {
	if p.Classification == roster.Waiting {
		return fmt.Sprintf("waiting list #%d", p.WaitingOrdinal)
	}
	return fmt.Sprintf("player #%d", p.Rank)
}

func formatPeriodOpened(group club.Group, sheet string) slack.Message {
	header := slack.NewTextBlockObject("plain_text", "🎾 Registration is open! 🎾", true, false)
	text := fmt.Sprintf("*%s*: bookings for %s are now open in worksheet `%s`, up to %s.",
		group.Name, calendar.WeekdayName(group.GameWeekday)+"s", sheet, calendar.FormatDate(group.RegistrationOpenUntil))
	return slack.NewBlockMessage(
		slack.NewHeaderBlock(header),
		slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", text, false, false), nil, nil),
		slack.NewContextBlock("", slack.NewTextBlockObject("mrkdwn", fmt.Sprintf("%d places per match day", group.PlayerCount()), false, false)),
	)
}

func formatSyncFailures(failures []notifier.SyncFailure) slack.Message {
	lines := make([]string, 0, len(failures))
	for _, f := range failures {
		lines = append(lines, fmt.Sprintf("• *%s* (`%s`): %s", f.GroupName, f.GroupID, f.Reason))
	}
	return slack.NewBlockMessage(
		slack.NewHeaderBlock(slack.NewTextBlockObject("plain_text", "⚠️ Spreadsheet sync failed", true, false)),
		slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", strings.Join(lines, "\n"), false, false), nil, nil),
	)
}
