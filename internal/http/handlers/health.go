package handlers

import (
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/padel-roster/internal/metrics"
)

func HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Received health check request")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK!")
	}
}

// StatsHandler returns the persisted counters.
func StatsHandler(counters metrics.MetricsStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := counters.GetAll()
		if err != nil {
			log.Error("Failed to read counters", "error", err)
			http.Error(w, "Failed to read stats", http.StatusInternalServerError)
			return
		}
		respondJSON(w, stats)
	}
}
