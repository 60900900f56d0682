package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/padel-roster/internal/apperrors"
	"github.com/mauv0809/padel-roster/internal/calendar"
	"github.com/mauv0809/padel-roster/internal/club"
	"github.com/mauv0809/padel-roster/internal/notifier"
	slacknotifier "github.com/mauv0809/padel-roster/internal/notifier/slack"
	"github.com/mauv0809/padel-roster/internal/onboarding"
	"github.com/mauv0809/padel-roster/internal/processor"
	"github.com/mauv0809/padel-roster/internal/roster"
)

func joinKey(userID string) string { return "join:" + userID }

func errGroupNotFound(err error) error {
	if err == nil || errors.Is(err, club.ErrNotFound) {
		return roster.ErrGroupNotFound
	}
	return apperrors.External(err, "load group")
}

// loadGroup returns the group for notifications after a roster change.
func loadGroup(ctx context.Context, store club.ClubStore, groupID string) (club.Group, bool) {
	g, err := store.GetGroup(ctx, groupID)
	if err != nil {
		log.Error("Failed to load group for notification", "groupID", groupID, "error", err)
		return club.Group{}, false
	}
	return *g, true
}

// slotArgs parses "<group-id> <DD.MM.YYYY>".
func slotArgs(args []string) (string, time.Time, error) {
	date, err := calendar.ParseDate(args[1])
	if err != nil {
		return "", time.Time{}, err
	}
	return args[0], date, nil
}

// JoinCommandHandler adds the caller to a group. A first time member is asked for
// their profile over the following commands.
// Usage: /join <group-id>, then /join <answer | cancel>
func JoinCommandHandler(store club.ClubStore, engine *roster.Engine, sessions *onboarding.Sessions, n notifier.Notifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cmd, err := parseSlashCommand(r)
		if err != nil {
			http.Error(w, "Error parsing form", http.StatusBadRequest)
			return
		}
		key := joinKey(cmd.UserID)

		if conv, ok := sessions.Get(key); ok {
			join, ok := conv.(*onboarding.Join)
			if !ok {
				sessions.End(key)
				respondText(w, "Usage: `/join <group-id>`")
				return
			}
			switch cmd.Text {
			case "":
				respondText(w, join.Prompt())
				return
			case cancelAnswer:
				sessions.End(key)
				respondText(w, "Joining cancelled.")
				return
			}
			if err := join.Receive(cmd.Text); err != nil {
				respondText(w, apperrors.UserMessage(err)+"\n"+join.Prompt())
				return
			}
			if !join.Done() {
				respondText(w, join.Prompt())
				return
			}
			sessions.End(key)
			finishJoin(w, r, store, engine, n, join.GroupID(), join.Profile())
			return
		}

		if len(cmd.Args) != 1 {
			respondText(w, "Usage: `/join <group-id>`")
			return
		}
		groupID := cmd.Args[0]
		g, err := store.GetGroup(r.Context(), groupID)
		if err != nil || !g.Active() {
			respondError(w, "join", errGroupNotFound(err))
			return
		}

		_, err = store.GetMember(r.Context(), cmd.UserID)
		switch {
		case err == nil:
			finishJoin(w, r, store, engine, n, groupID, roster.Profile{MemberID: cmd.UserID, Username: cmd.UserName})
		case errors.Is(err, club.ErrNotFound):
			join := onboarding.NewJoin(groupID, cmd.UserID, cmd.UserName)
			sessions.Start(key, join)
			log.Info("Started join", "groupID", groupID, "memberID", cmd.UserID)
			respondText(w, fmt.Sprintf("Welcome to *%s*! %s", g.Name, join.Prompt()))
		default:
			respondError(w, "join", apperrors.External(err, "load member"))
		}
	}
}

func finishJoin(w http.ResponseWriter, r *http.Request, store club.ClubStore, engine *roster.Engine, n notifier.Notifier, groupID string, profile roster.Profile) {
	outcome, err := engine.Join(r.Context(), groupID, profile, time.Now())
	if err != nil {
		respondError(w, "join", err)
		return
	}
	if g, ok := loadGroup(r.Context(), store, groupID); ok {
		if err := n.NotifyMemberJoined(r.Context(), g, outcome.Member, IsDryRunFromContext(r)); err != nil {
			log.Error("Failed to notify admin of new member", "groupID", groupID, "error", err)
		}
	}
	respondText(w, fmt.Sprintf("You are now a member of `%s`. Use `/register-game %s <DD.MM.YYYY>` to sign up.", groupID, groupID))
}

// RegisterGameCommandHandler signs the caller up for a match day.
// Usage: /register-game <group-id> <DD.MM.YYYY>
func RegisterGameCommandHandler(engine *roster.Engine, proc *processor.Processor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cmd, err := parseSlashCommand(r)
		if err != nil {
			http.Error(w, "Error parsing form", http.StatusBadRequest)
			return
		}
		if len(cmd.Args) != 2 {
			respondText(w, "Usage: `/register-game <group-id> <DD.MM.YYYY>`")
			return
		}
		groupID, date, err := slotArgs(cmd.Args)
		if err != nil {
			respondError(w, "register-game", err)
			return
		}
		placement, err := engine.Register(r.Context(), groupID, cmd.UserID, date, time.Now())
		if err != nil {
			respondError(w, "register-game", err)
			return
		}
		requestSync(proc, groupID, IsDryRunFromContext(r))
		respondText(w, fmt.Sprintf("You are registered for %s as %s.", calendar.FormatDate(date), slacknotifier.DescribePlacement(placement)))
	}
}

// CancelGameCommandHandler withdraws the caller from a match day.
// Usage: /cancel-game <group-id> <DD.MM.YYYY>
func CancelGameCommandHandler(store club.ClubStore, engine *roster.Engine, proc *processor.Processor, n notifier.Notifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cmd, err := parseSlashCommand(r)
		if err != nil {
			http.Error(w, "Error parsing form", http.StatusBadRequest)
			return
		}
		if len(cmd.Args) != 2 {
			respondText(w, "Usage: `/cancel-game <group-id> <DD.MM.YYYY>`")
			return
		}
		groupID, date, err := slotArgs(cmd.Args)
		if err != nil {
			respondError(w, "cancel-game", err)
			return
		}
		outcome, err := engine.Cancel(r.Context(), groupID, cmd.UserID, date, time.Now())
		if err != nil {
			respondError(w, "cancel-game", err)
			return
		}
		dryRun := IsDryRunFromContext(r)
		requestSync(proc, groupID, dryRun)
		if outcome.Promoted != nil {
			if g, ok := loadGroup(r.Context(), store, groupID); ok {
				if err := n.NotifyPromotion(r.Context(), g, *outcome.Promoted, date, dryRun); err != nil {
					log.Error("Failed to notify promoted member", "memberID", outcome.Promoted.ID, "error", err)
				}
			}
		}
		respondText(w, fmt.Sprintf("Your registration for %s is cancelled.", calendar.FormatDate(date)))
	}
}

// ReplacePlayerCommandHandler hands the caller's place to another member.
// Usage: /replace-player <group-id> <DD.MM.YYYY> <@member>
func ReplacePlayerCommandHandler(store club.ClubStore, engine *roster.Engine, proc *processor.Processor, n notifier.Notifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cmd, err := parseSlashCommand(r)
		if err != nil {
			http.Error(w, "Error parsing form", http.StatusBadRequest)
			return
		}
		if len(cmd.Args) != 3 {
			respondText(w, "Usage: `/replace-player <group-id> <DD.MM.YYYY> <@member>`")
			return
		}
		groupID, date, err := slotArgs(cmd.Args)
		if err != nil {
			respondError(w, "replace-player", err)
			return
		}
		replacementID := parseMention(cmd.Args[2])
		outcome, err := engine.Replace(r.Context(), groupID, cmd.UserID, replacementID, date, time.Now())
		if err != nil {
			respondError(w, "replace-player", err)
			return
		}
		dryRun := IsDryRunFromContext(r)
		requestSync(proc, groupID, dryRun)

		from, err := store.GetMember(r.Context(), cmd.UserID)
		if err != nil {
			log.Error("Failed to load replaced member", "memberID", cmd.UserID, "error", err)
		} else if g, ok := loadGroup(r.Context(), store, groupID); ok {
			if err := n.NotifyReplacement(r.Context(), g, *from, outcome.Replacement, date, dryRun); err != nil {
				log.Error("Failed to notify replacement", "memberID", replacementID, "error", err)
			}
		}
		respondText(w, fmt.Sprintf("%s takes your place on %s as %s.",
			outcome.Replacement.DisplayName(), calendar.FormatDate(date), slacknotifier.DescribePlacement(outcome.Placement)))
	}
}

// ListMatchesCommandHandler lists the caller's upcoming registrations.
func ListMatchesCommandHandler(engine *roster.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cmd, err := parseSlashCommand(r)
		if err != nil {
			http.Error(w, "Error parsing form", http.StatusBadRequest)
			return
		}
		matches, err := engine.ListMemberMatches(r.Context(), cmd.UserID, time.Now())
		if err != nil {
			respondError(w, "list-matches", err)
			return
		}
		respondWithSlackMsg(w, slacknotifier.FormatMatches(matches))
	}
}
