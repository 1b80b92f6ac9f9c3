package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/unclebandit/outreach-backend/internal/controller"
	"github.com/unclebandit/outreach-backend/internal/logger"
	"github.com/unclebandit/outreach-backend/internal/metrics"
)

// Router collects everything mounted on the HTTP API.
type Router struct {
	Campaigns     *controller.CampaignController
	Contacts      *controller.ContactController
	Analytics     *controller.AnalyticsController
	Opportunities *controller.OpportunityController
	Webhooks      *WebhookHandler
	Metrics       *metrics.Metrics // nil disables /metrics
	Logger        *zap.Logger
}

func (rt *Router) Handler() http.Handler {
	log := logger.OrNop(rt.Logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(AccessLog(log))
	r.Use(middleware.Recoverer)
	if rt.Metrics != nil {
		r.Use(rt.Metrics.HTTPMiddleware)
	}

	r.Get("/health", Health("outreach", "1.0.0"))
	if rt.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", rt.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/campaigns", rt.Campaigns.Routes)
		r.Route("/contacts", rt.Contacts.Routes)
		r.Route("/analytics", rt.Analytics.Routes)
		r.Route("/queue", rt.Analytics.QueueRoutes)
		r.Route("/demex", rt.Opportunities.Routes)
		r.Route("/webhooks", rt.Webhooks.Routes)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		controller.WriteMessage(w, http.StatusNotFound, "Route not found")
	})
	return r
}

// AccessLog logs one line per request.
func AccessLog(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())))
		})
	}
}
