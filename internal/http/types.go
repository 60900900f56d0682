package http

import (
	"net/http"

	"github.com/mauv0809/padel-roster/internal/club"
	"github.com/mauv0809/padel-roster/internal/config"
	"github.com/mauv0809/padel-roster/internal/inngest"
	"github.com/mauv0809/padel-roster/internal/metrics"
	"github.com/mauv0809/padel-roster/internal/notifier"
	"github.com/mauv0809/padel-roster/internal/onboarding"
	"github.com/mauv0809/padel-roster/internal/period"
	"github.com/mauv0809/padel-roster/internal/processor"
	"github.com/mauv0809/padel-roster/internal/pubsub"
	"github.com/mauv0809/padel-roster/internal/roster"
)

type Server struct {
	Store          club.ClubStore
	MetricsHandler http.Handler
	Counters       metrics.MetricsStore
	Cfg            config.Config
	Notifier       notifier.Notifier
	Engine         *roster.Engine
	Periods        *period.Service
	Processor      *processor.Processor
	Sessions       *onboarding.Sessions
	Router         *http.ServeMux
	pubsub         pubsub.PubSubClient
	inngest        inngest.InngestClient
}
