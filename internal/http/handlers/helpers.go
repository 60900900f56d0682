package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/padel-roster/internal/apperrors"
	slacknotifier "github.com/mauv0809/padel-roster/internal/notifier/slack"
	"github.com/slack-go/slack"
)

// ContextKey is a custom type to avoid key collisions in context.
type ContextKey string

const (
	DryRunKey ContextKey = "dryRun"
)

// cancelAnswer ends an open conversation.
const cancelAnswer = "cancel"

// IsDryRunFromContext is a helper to safely retrieve the dry_run flag from the request context.
func IsDryRunFromContext(r *http.Request) bool {
	dryRun, ok := r.Context().Value(DryRunKey).(bool)
	return ok && dryRun
}

// slashCommand is the part of a Slack slash command payload the handlers use.
type slashCommand struct {
	UserID   string
	UserName string
	Text     string
	Args     []string
}

func parseSlashCommand(r *http.Request) (slashCommand, error) {
	if err := r.ParseForm(); err != nil {
		return slashCommand{}, err
	}
	text := strings.TrimSpace(r.FormValue("text"))
	return slashCommand{
		UserID:   r.FormValue("user_id"),
		UserName: r.FormValue("user_name"),
		Text:     text,
		Args:     strings.Fields(text),
	}, nil
}

// parseMention extracts the user id from a Slack mention like <@U123|name>.
// Anything that is not a mention is returned as is.
func parseMention(s string) string {
	if !strings.HasPrefix(s, "<@") || !strings.HasSuffix(s, ">") {
		return s
	}
	id := strings.TrimSuffix(strings.TrimPrefix(s, "<@"), ">")
	if i := strings.IndexByte(id, '|'); i >= 0 {
		id = id[:i]
	}
	return id
}

// respondWithSlackMsg is a helper to format and write a Slack message as an HTTP response.
func respondWithSlackMsg(w http.ResponseWriter, msg slack.Message) {
	if msg.ResponseType == "" {
		msg.ResponseType = slack.ResponseTypeEphemeral
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(msg); err != nil {
		log.Error("Failed to encode slack message to JSON", "error", err)
	}
}

func respondText(w http.ResponseWriter, text string) {
	respondWithSlackMsg(w, slacknotifier.FormatText(text))
}

// respondError answers a slash command with the user facing message of err.
// Slack expects a 200 even when the command failed.
func respondError(w http.ResponseWriter, command string, err error) {
	if apperrors.IsPolicy(err) || apperrors.IsValidation(err) {
		log.Info("Command rejected", "command", command, "reason", err)
	} else {
		log.Error("Command failed", "command", command, "error", err)
	}
	respondText(w, apperrors.UserMessage(err))
}

// respondJSON writes v as the JSON body of an operational endpoint.
func respondJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Failed to write response", "error", err)
	}
}
