package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"nfccard-backend/internal/logger"
	"nfccard-backend/internal/metrics"
	"nfccard-backend/internal/security"
	"nfccard-backend/internal/service"
	"nfccard-backend/internal/storage"
)

// Pinger reports database health.
type Pinger interface {
	Ping(ctx context.Context) error
}

type RouterConfig struct {
	Applications  service.ApplicationService
	Orders        service.OrderService
	Payments      service.PaymentService
	Notifications service.NotificationService
	Auth          service.AuthService
	Tokens        security.TokenManager
	Files         storage.Storage
	DB            Pinger

	// ServeUploads mounts GET /uploads/{key}; only meaningful for local storage.
	ServeUploads   bool
	MaxUploadBytes int64
	AllowedOrigins []string
	Limiter        *RateLimiter
	Development    bool
}

func NewRouter(cfg RouterConfig) *mux.Router {
	errs := errorResponder{development: cfg.Development}
	apps := NewApplicationHandler(cfg.Applications, cfg.Notifications, cfg.MaxUploadBytes, errs)
	pays := NewPaymentHandler(cfg.Orders, cfg.Payments, errs)
	auth := NewAuthHandler(cfg.Auth, errs)

	r := mux.NewRouter()
	r.Use(RequestID, Instrument, CORS(cfg.AllowedOrigins))
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusNotFound, envelope{Success: false, Error: "NOT_FOUND", Message: "Route not found"})
	})

	r.HandleFunc("/healthz", healthHandler(cfg.DB)).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	if cfg.ServeUploads {
		r.HandleFunc("/uploads/{key}", NewUploadHandler(cfg.Files).Download).Methods(http.MethodGet)
	}

	routes := apiRoutes{
		apps:    apps,
		pays:    pays,
		auth:    auth,
		limiter: cfg.Limiter,
		admin:   AdminAuth(cfg.Tokens, errs),
	}
	routes.mount(r.PathPrefix("/api").Subrouter())
	// Older front-end builds call the same routes without the /api prefix.
	routes.mount(r)

	return r
}

type apiRoutes struct {
	apps    *ApplicationHandler
	pays    *PaymentHandler
	auth    *AuthHandler
	limiter *RateLimiter
	admin   mux.MiddlewareFunc
}

func (rt apiRoutes) limited(h http.HandlerFunc) http.Handler {
	if rt.limiter == nil {
		return h
	}
	return rt.limiter.Middleware(h)
}

func (rt apiRoutes) mount(r *mux.Router) {
	// Preflight requests must reach the CORS middleware on every path.
	r.Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	// Public
	r.Handle("/applications", rt.limited(rt.apps.Submit)).Methods(http.MethodPost)
	r.Handle("/applications/submit", rt.limited(rt.apps.Submit)).Methods(http.MethodPost)
	r.HandleFunc("/packs", rt.apps.Packs).Methods(http.MethodGet)
	r.HandleFunc("/applications/packs", rt.apps.Packs).Methods(http.MethodGet)
	r.Handle("/payments/create-order", rt.limited(rt.pays.CreateOrder)).Methods(http.MethodPost)
	r.Handle("/payments/verify-payment", rt.limited(rt.pays.VerifyPayment)).Methods(http.MethodPost)
	r.Handle("/auth/login", rt.limited(rt.auth.Login)).Methods(http.MethodPost)

	// Admin
	admin := r.NewRoute().Subrouter()
	admin.Use(rt.admin)
	admin.HandleFunc("/applications", rt.apps.List).Methods(http.MethodGet)
	admin.HandleFunc("/applications/test-email", rt.apps.TestEmail).Methods(http.MethodGet)
	admin.HandleFunc("/applications/{id:[0-9]+}", rt.apps.Get).Methods(http.MethodGet)
	admin.HandleFunc("/applications/{id:[0-9]+}/status", rt.apps.UpdateStatus).Methods(http.MethodPut)
	admin.HandleFunc("/applications/{id:[0-9]+}", rt.apps.Delete).Methods(http.MethodDelete)
	admin.HandleFunc("/applications/{id:[0-9]+}/resend-emails", rt.apps.ResendEmails).Methods(http.MethodPost)
}

func healthHandler(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := db.Ping(ctx); err != nil {
				logger.ErrorContext(r.Context(), "Health check failed", "error", err)
				writeJSON(w, http.StatusServiceUnavailable, envelope{Success: false, Error: "UNAVAILABLE", Message: "database unreachable"})
				return
			}
		}
		respondOK(w, http.StatusOK, "ok", map[string]string{"status": "healthy"})
	}
}
