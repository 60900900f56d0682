package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/padel-roster/internal/apperrors"
	"github.com/mauv0809/padel-roster/internal/calendar"
	"github.com/mauv0809/padel-roster/internal/club"
	slacknotifier "github.com/mauv0809/padel-roster/internal/notifier/slack"
	"github.com/mauv0809/padel-roster/internal/onboarding"
	"github.com/mauv0809/padel-roster/internal/period"
	"github.com/mauv0809/padel-roster/internal/processor"
)

func groupSetupKey(userID string) string { return "add-group:" + userID }

// unlink strips the angle brackets Slack puts around links, like <https://x|label>.
func unlink(s string) string {
	if !strings.HasPrefix(s, "<") || !strings.HasSuffix(s, ">") {
		return s
	}
	s = strings.TrimSuffix(strings.TrimPrefix(s, "<"), ">")
	if i := strings.IndexByte(s, '|'); i >= 0 {
		s = s[:i]
	}
	return s
}

// SignupCommandHandler registers the caller as an admin.
// Usage: /signup [first name] [last name]
func SignupCommandHandler(periods *period.Service, serviceAccountEmail string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cmd, err := parseSlashCommand(r)
		if err != nil {
			http.Error(w, "Error parsing form", http.StatusBadRequest)
			return
		}
		admin := club.Admin{ID: cmd.UserID, Username: cmd.UserName, CreatedAt: time.Now()}
		if len(cmd.Args) > 0 {
			admin.FirstName = cmd.Args[0]
			admin.LastName = strings.Join(cmd.Args[1:], " ")
		}
		if err := periods.RegisterAdmin(r.Context(), admin); err != nil {
			respondError(w, "signup", err)
			return
		}
		text := "You are now an admin. Use `/add-group` to set up your first group."
		if serviceAccountEmail != "" {
			text += fmt.Sprintf("\nShare your spreadsheet with `%s` as an editor before adding it.", serviceAccountEmail)
		}
		respondText(w, text)
	}
}

// AddGroupCommandHandler walks an admin through the group setup, one answer per command.
// Usage: /add-group [answer | cancel]
func AddGroupCommandHandler(periods *period.Service, sessions *onboarding.Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cmd, err := parseSlashCommand(r)
		if err != nil {
			http.Error(w, "Error parsing form", http.StatusBadRequest)
			return
		}
		key := groupSetupKey(cmd.UserID)
		conv, ok := sessions.Get(key)
		setup, isSetup := conv.(*onboarding.GroupSetup)
		if !ok || !isSetup {
			// Fail before asking any question when the caller cannot create groups.
			if _, err := periods.ListGroups(r.Context(), cmd.UserID); err != nil {
				respondError(w, "add-group", err)
				return
			}
			setup = onboarding.NewGroupSetup(cmd.UserID)
			sessions.Start(key, setup)
			log.Info("Started group setup", "adminID", cmd.UserID)
			if cmd.Text == "" {
				respondText(w, setup.Prompt())
				return
			}
		}

		switch cmd.Text {
		case "":
			respondText(w, setup.Prompt())
			return
		case cancelAnswer:
			sessions.End(key)
			respondText(w, "Group setup cancelled.")
			return
		}
		if err := setup.Receive(unlink(cmd.Text)); err != nil {
			respondText(w, apperrors.UserMessage(err)+"\n"+setup.Prompt())
			return
		}
		if !setup.Done() {
			respondText(w, setup.Prompt())
			return
		}

		sessions.End(key)
		opened, err := periods.CreateGroup(r.Context(), setup.Draft(), time.Now())
		if err != nil {
			respondError(w, "add-group", err)
			return
		}
		respondText(w, fmt.Sprintf("Group *%s* (`%s`) is ready. Registration is open until %s and signups go to worksheet `%s`.",
			opened.Group.Name, opened.Group.ID, calendar.FormatDate(opened.Group.RegistrationOpenUntil), opened.Sheet))
	}
}

// ListGroupsCommandHandler lists the caller's groups.
func ListGroupsCommandHandler(periods *period.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cmd, err := parseSlashCommand(r)
		if err != nil {
			http.Error(w, "Error parsing form", http.StatusBadRequest)
			return
		}
		groups, err := periods.ListGroups(r.Context(), cmd.UserID)
		if err != nil {
			respondError(w, "list-groups", err)
			return
		}
		respondWithSlackMsg(w, slacknotifier.FormatGroups(groups))
	}
}

// DeleteGroupCommandHandler deletes one of the caller's groups.
// Usage: /delete-group <group-id>
func DeleteGroupCommandHandler(periods *period.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cmd, err := parseSlashCommand(r)
		if err != nil {
			http.Error(w, "Error parsing form", http.StatusBadRequest)
			return
		}
		if len(cmd.Args) != 1 {
			respondText(w, "Usage: `/delete-group <group-id>`")
			return
		}
		if err := periods.DeleteGroup(r.Context(), cmd.Args[0], cmd.UserID, time.Now()); err != nil {
			respondError(w, "delete-group", err)
			return
		}
		respondText(w, fmt.Sprintf("Group `%s` deleted. Its worksheets are left as they are.", cmd.Args[0]))
	}
}

// UpdateSheetCommandHandler moves a group to another spreadsheet and syncs it.
// Usage: /update-sheet <group-id> <spreadsheet link>
func UpdateSheetCommandHandler(periods *period.Service, proc *processor.Processor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cmd, err := parseSlashCommand(r)
		if err != nil {
			http.Error(w, "Error parsing form", http.StatusBadRequest)
			return
		}
		if len(cmd.Args) != 2 {
			respondText(w, "Usage: `/update-sheet <group-id> <spreadsheet link>`")
			return
		}
		g, err := periods.UpdateSpreadsheet(r.Context(), cmd.Args[0], cmd.UserID, unlink(cmd.Args[1]))
		if err != nil {
			respondError(w, "update-sheet", err)
			return
		}
		requestSync(proc, g.ID, IsDryRunFromContext(r))
		respondText(w, fmt.Sprintf("Group *%s* now writes to the new spreadsheet.", g.Name))
	}
}

// OpenRegistrationCommandHandler opens the next registration period of a group.
// Usage: /open-registration <group-id>
func OpenRegistrationCommandHandler(periods *period.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cmd, err := parseSlashCommand(r)
		if err != nil {
			http.Error(w, "Error parsing form", http.StatusBadRequest)
			return
		}
		if len(cmd.Args) != 1 {
			respondText(w, "Usage: `/open-registration <group-id>`")
			return
		}
		dryRun := IsDryRunFromContext(r)
		opened, err := periods.OpenNext(r.Context(), cmd.Args[0], cmd.UserID, time.Now(), dryRun)
		if err != nil {
			respondError(w, "open-registration", err)
			return
		}
		text := fmt.Sprintf("Registration for *%s* is open until %s. Worksheet `%s` is ready.",
			opened.Group.Name, calendar.FormatDate(opened.End), opened.Sheet)
		if dryRun {
			text = "[Dry Run] " + text
		}
		respondText(w, text)
	}
}

// SyncCommandHandler queues a spreadsheet sync of one of the caller's groups.
// Usage: /sync <group-id>
func SyncCommandHandler(store club.ClubStore, proc *processor.Processor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cmd, err := parseSlashCommand(r)
		if err != nil {
			http.Error(w, "Error parsing form", http.StatusBadRequest)
			return
		}
		if len(cmd.Args) != 1 {
			respondText(w, "Usage: `/sync <group-id>`")
			return
		}
		g, err := store.GetGroup(r.Context(), cmd.Args[0])
		if err != nil || !g.Active() {
			respondText(w, apperrors.UserMessage(errGroupNotFound(err)))
			return
		}
		if g.AdminID != cmd.UserID {
			respondError(w, "sync", period.ErrNotGroupAdmin)
			return
		}
		if err := proc.RequestSync(g.ID, IsDryRunFromContext(r)); err != nil {
			respondError(w, "sync", err)
			return
		}
		respondText(w, fmt.Sprintf("Sync of *%s* requested.", g.Name))
	}
}

// requestSync queues a sync after a roster change. The change itself has already
// succeeded, so a failure is only logged and the next scheduled sync catches up.
func requestSync(proc *processor.Processor, groupID string, dryRun bool) {
	if err := proc.RequestSync(groupID, dryRun); err != nil {
		log.Error("Failed to request sync", "groupID", groupID, "error", err)
	}
}
