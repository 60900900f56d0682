package notifier

import (
	"context"
	"errors"
	"time"

	"github.com/mauv0809/padel-roster/internal/club"
)

// Notifier defines a high-level interface for sending notifications about roster events.
// This decouples the rest of the application from the specific providers (Slack, Telegram).
type Notifier interface {
	// A new registration period was opened for the group.
	AnnouncePeriodOpened(ctx context.Context, group club.Group, sheet string, dryRun bool) error
	// A member joined the group; goes to the group's admin.
	NotifyMemberJoined(ctx context.Context, group club.Group, member club.Member, dryRun bool) error
	// A waiting member moved into the main list.
	NotifyPromotion(ctx context.Context, group club.Group, member club.Member, date time.Time, dryRun bool) error
	// A registration was handed over to a replacement.
	NotifyReplacement(ctx context.Context, group club.Group, from, to club.Member, date time.Time, dryRun bool) error
	// Groups whose spreadsheet sync failed.
	NotifySyncFailures(ctx context.Context, failures []SyncFailure, dryRun bool) error
}

// SyncFailure describes one group that could not be synced.
type SyncFailure struct {
	GroupID   string
	GroupName string
	Reason    string
}

// Multi fans every notification out to several notifiers.
type Multi []Notifier

var _ Notifier = Multi(nil)

func (m Multi) each(fn func(n Notifier) error) error {
	var errs []error
	for _, n := range m {
		if err := fn(n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) AnnouncePeriodOpened(ctx context.Context, group club.Group, sheet string, dryRun bool) error {
	return m.each(func(n Notifier) error { return n.AnnouncePeriodOpened(ctx, group, sheet, dryRun) })
}

func (m Multi) NotifyMemberJoined(ctx context.Context, group club.Group, member club.Member, dryRun bool) error {
	return m.each(func(n Notifier) error { return n.NotifyMemberJoined(ctx, group, member, dryRun) })
}

func (m Multi) NotifyPromotion(ctx context.Context, group club.Group, member club.Member, date time.Time, dryRun bool) error {
	return m.each(func(n Notifier) error { return n.NotifyPromotion(ctx, group, member, date, dryRun) })
}

func (m Multi) NotifyReplacement(ctx context.Context, group club.Group, from, to club.Member, date time.Time, dryRun bool) error {
	return m.each(func(n Notifier) error { return n.NotifyReplacement(ctx, group, from, to, date, dryRun) })
}

func (m Multi) NotifySyncFailures(ctx context.Context, failures []SyncFailure, dryRun bool) error {
	return m.each(func(n Notifier) error { return n.NotifySyncFailures(ctx, failures, dryRun) })
}
