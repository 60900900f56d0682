package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/padel-roster/internal/apperrors"
	"github.com/mauv0809/padel-roster/internal/processor"
	"github.com/mauv0809/padel-roster/internal/pubsub"
)

// GroupSyncer syncs one group's worksheets.
type GroupSyncer interface {
	SyncGroup(ctx context.Context, groupID string, now time.Time, dryRun bool) (processor.GroupResult, error)
}

// AllSyncer syncs the worksheets of every active group.
type AllSyncer interface {
	SyncAll(ctx context.Context, now time.Time, dryRun bool) (processor.Report, error)
}

// SyncGroupHandler handles the push subscription of the sync-group topic.
// Requests that can never succeed are acknowledged so they are not redelivered.
func SyncGroupHandler(syncer GroupSyncer, pubsubClient pubsub.PubSubClient) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bodyBytes, err := io.ReadAll(r.Body)
		if err != nil {
			log.Error("Failed to read request body", "error", err)
			http.Error(w, "Failed to read request body", http.StatusInternalServerError)
			return
		}
		log.Debug("Received sync group message", "body", string(bodyBytes))

		var pubsubMsg struct {
			Subscription string `json:"subscription"`
			Message      struct {
				Data string `json:"data"`
			} `json:"message"`
		}

		if err := json.Unmarshal(bodyBytes, &pubsubMsg); err != nil {
			log.Error("Failed to unmarshal wrapper JSON", "error", err)
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}

		rawData, err := base64.StdEncoding.DecodeString(pubsubMsg.Message.Data)
		if err != nil {
			log.Error("Failed to decode base64 data", "error", err)
			http.Error(w, "Invalid base64 data", http.StatusBadRequest)
			return
		}
		var req pubsub.SyncRequest
		if err := pubsubClient.ProcessMessage(rawData, &req); err != nil || req.GroupID == "" {
			log.Error("Failed to decode sync request", "error", err)
			http.Error(w, "Invalid sync request", http.StatusBadRequest)
			return
		}

		dryRun := req.DryRun || IsDryRunFromContext(r)
		_, err = syncer.SyncGroup(r.Context(), req.GroupID, time.Now(), dryRun)
		switch {
		case apperrors.IsPolicy(err):
			log.Warn("Dropping sync request", "groupID", req.GroupID, "reason", err)
		case err != nil:
			log.Error("Failed to sync group", "groupID", req.GroupID, "error", err)
			http.Error(w, "Failed to sync group", http.StatusInternalServerError)
			return
		}
		w.Write([]byte("OK"))
	}
}

// SyncAllHandler runs a sync over every active group and returns the report.
func SyncAllHandler(syncer AllSyncer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		report, err := syncer.SyncAll(r.Context(), time.Now(), IsDryRunFromContext(r))
		if err != nil {
			log.Error("Sync run failed", "error", err)
			http.Error(w, "Failed to sync groups", http.StatusInternalServerError)
			return
		}
		respondJSON(w, report)
	}
}
