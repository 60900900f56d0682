package http

import (
	"net/http"

	"github.com/mauv0809/padel-roster/internal/club"
	"github.com/mauv0809/padel-roster/internal/config"
	"github.com/mauv0809/padel-roster/internal/http/handlers"
	"github.com/mauv0809/padel-roster/internal/inngest"
	"github.com/mauv0809/padel-roster/internal/metrics"
	"github.com/mauv0809/padel-roster/internal/notifier"
	"github.com/mauv0809/padel-roster/internal/onboarding"
	"github.com/mauv0809/padel-roster/internal/period"
	"github.com/mauv0809/padel-roster/internal/processor"
	"github.com/mauv0809/padel-roster/internal/pubsub"
	"github.com/mauv0809/padel-roster/internal/roster"
)

// NewServer wires the handlers to their dependencies. inngestClient may be nil,
// in which case the scheduled sync is not served.
func NewServer(store club.ClubStore, metricsHandler http.Handler, counters metrics.MetricsStore, cfg config.Config, n notifier.Notifier, engine *roster.Engine, periods *period.Service, proc *processor.Processor, ps pubsub.PubSubClient, inngestClient inngest.InngestClient) *Server {
	server := &Server{
		Store:          store,
		MetricsHandler: metricsHandler,
		Counters:       counters,
		Cfg:            cfg,
		Notifier:       n,
		Engine:         engine,
		Periods:        periods,
		Processor:      proc,
		Sessions:       onboarding.NewSessions(),
		Router:         http.NewServeMux(),
		pubsub:         ps,
		inngest:        inngestClient,
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	// All handlers are wrapped with middleware using the Chain helper.
	// Slash commands additionally require a valid Slack signature.
	slackAuth := slackVerificationMiddleware(s.Cfg.Slack.SigningSecret)

	s.Router.Handle("/metrics", s.MetricsHandler)
	s.Router.Handle("/health", Chain(handlers.HealthCheckHandler(), paramsMiddleware))
	s.Router.Handle("/stats", Chain(handlers.StatsHandler(s.Counters), paramsMiddleware))
	s.Router.Handle("/sync", Chain(handlers.SyncAllHandler(s.Processor), paramsMiddleware))
	s.Router.Handle("/pubsub/sync-group", Chain(handlers.SyncGroupHandler(s.Processor, s.pubsub), paramsMiddleware))

	s.Router.Handle("/slack/command/signup", Chain(handlers.SignupCommandHandler(s.Periods, s.Cfg.Google.ServiceAccountEmail), paramsMiddleware, slackAuth))
	s.Router.Handle("/slack/command/add-group", Chain(handlers.AddGroupCommandHandler(s.Periods, s.Sessions), paramsMiddleware, slackAuth))
	s.Router.Handle("/slack/command/list-groups", Chain(handlers.ListGroupsCommandHandler(s.Periods), paramsMiddleware, slackAuth))
	s.Router.Handle("/slack/command/delete-group", Chain(handlers.DeleteGroupCommandHandler(s.Periods), paramsMiddleware, slackAuth))
	s.Router.Handle("/slack/command/update-sheet", Chain(handlers.UpdateSheetCommandHandler(s.Periods, s.Processor), paramsMiddleware, slackAuth))
	s.Router.Handle("/slack/command/open-registration", Chain(handlers.OpenRegistrationCommandHandler(s.Periods), paramsMiddleware, slackAuth))
	s.Router.Handle("/slack/command/sync", Chain(handlers.SyncCommandHandler(s.Store, s.Processor), paramsMiddleware, slackAuth))
	s.Router.Handle("/slack/command/join", Chain(handlers.JoinCommandHandler(s.Store, s.Engine, s.Sessions, s.Notifier), paramsMiddleware, slackAuth))
	s.Router.Handle("/slack/command/register-game", Chain(handlers.RegisterGameCommandHandler(s.Engine, s.Processor), paramsMiddleware, slackAuth))
	s.Router.Handle("/slack/command/cancel-game", Chain(handlers.CancelGameCommandHandler(s.Store, s.Engine, s.Processor, s.Notifier), paramsMiddleware, slackAuth))
	s.Router.Handle("/slack/command/replace-player", Chain(handlers.ReplacePlayerCommandHandler(s.Store, s.Engine, s.Processor, s.Notifier), paramsMiddleware, slackAuth))
	s.Router.Handle("/slack/command/list-matches", Chain(handlers.ListMatchesCommandHandler(s.Engine), paramsMiddleware, slackAuth))

	if s.inngest != nil {
		s.Router.Handle("/api/inngest", s.inngest.Serve())
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
