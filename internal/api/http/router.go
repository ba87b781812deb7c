package http

import (
	"context"
	"net/http"
	"time"

	"camera-rental-backend/internal/metrics"
	"camera-rental-backend/internal/service"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// Services are the workflows exposed over HTTP.
type Services struct {
	Auth      service.AuthService
	Customers service.CustomerService
	Equipment service.EquipmentService
	Rentals   service.RentalService
	Payments  service.PaymentService
}

// Pinger reports whether the database is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Options struct {
	RequestTimeout     time.Duration
	LoginPerMinute     int
	LoginBurst         int
	CORSAllowedOrigins []string
	DB                 Pinger
}

// NewRouter registers every route under /api/v1 plus /healthz and /metrics.
func NewRouter(svcs Services, opts Options) *mux.Router {
	r := mux.NewRouter()
	r.Use(recovery, requestLogger, metrics.InstrumentHandler, requestTimeout(opts.RequestTimeout))
	r.Use((&authMiddleware{auth: svcs.Auth}).Handler)

	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/healthz", healthz(opts.DB)).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()

	auth := NewAuthHandler(svcs.Auth)
	limiter := newLoginLimiter(opts.LoginPerMinute, opts.LoginBurst)
	api.HandleFunc("/auth/login", limiter.Wrap(auth.Login)).Methods(http.MethodPost)
	api.HandleFunc("/auth/signup", auth.Signup).Methods(http.MethodPost)
	api.HandleFunc("/auth/refresh", auth.Refresh).Methods(http.MethodPost)
	api.HandleFunc("/auth/logout", auth.Logout).Methods(http.MethodPost)
	api.HandleFunc("/me", auth.Me).Methods(http.MethodGet)

	customers := NewCustomerHandler(svcs.Customers)
	api.HandleFunc("/customers", customers.List).Methods(http.MethodGet)
	api.HandleFunc("/customers", customers.Create).Methods(http.MethodPost)
	api.HandleFunc("/customers/{id:[0-9]+}", customers.Get).Methods(http.MethodGet)
	api.HandleFunc("/customers/{id:[0-9]+}", customers.Update).Methods(http.MethodPut)
	api.HandleFunc("/customers/{id:[0-9]+}", customers.Delete).Methods(http.MethodDelete)

	equipment := NewEquipmentHandler(svcs.Equipment)
	api.HandleFunc("/equipment-types", equipment.ListTypes).Methods(http.MethodGet)
	api.HandleFunc("/equipment-types", equipment.CreateType).Methods(http.MethodPost)
	api.HandleFunc("/equipment-types/{id:[0-9]+}", equipment.GetType).Methods(http.MethodGet)
	api.HandleFunc("/equipment-types/{id:[0-9]+}", equipment.UpdateType).Methods(http.MethodPut)
	api.HandleFunc("/equipment-types/{id:[0-9]+}", equipment.DeleteType).Methods(http.MethodDelete)
	api.HandleFunc("/equipment", equipment.List).Methods(http.MethodGet)
	api.HandleFunc("/equipment", equipment.Create).Methods(http.MethodPost)
	api.HandleFunc("/equipment/{id:[0-9]+}", equipment.Get).Methods(http.MethodGet)
	api.HandleFunc("/equipment/{id:[0-9]+}", equipment.Update).Methods(http.MethodPut)
	api.HandleFunc("/equipment/{id:[0-9]+}", equipment.Delete).Methods(http.MethodDelete)

	rentals := NewRentalHandler(svcs.Rentals, svcs.Payments)
	api.HandleFunc("/rentals", rentals.List).Methods(http.MethodGet)
	api.HandleFunc("/rentals", rentals.Create).Methods(http.MethodPost)
	api.HandleFunc("/rentals/quote", rentals.Quote).Methods(http.MethodPost)
	api.HandleFunc("/rentals/{id:[0-9]+}", rentals.Get).Methods(http.MethodGet)
	api.HandleFunc("/rentals/{id:[0-9]+}", rentals.Update).Methods(http.MethodPut)
	api.HandleFunc("/rentals/{id:[0-9]+}", rentals.Delete).Methods(http.MethodDelete)
	api.HandleFunc("/rentals/{id:[0-9]+}/return", rentals.Return).Methods(http.MethodPost)
	api.HandleFunc("/rentals/{id:[0-9]+}/payment-defaults", rentals.PaymentDefaults).Methods(http.MethodGet)

	payments := NewPaymentHandler(svcs.Payments)
	api.HandleFunc("/payments", payments.List).Methods(http.MethodGet)
	api.HandleFunc("/payments", payments.Create).Methods(http.MethodPost)
	api.HandleFunc("/payments/{id:[0-9]+}", payments.Get).Methods(http.MethodGet)
	api.HandleFunc("/payments/{id:[0-9]+}", payments.Delete).Methods(http.MethodDelete)
	api.HandleFunc("/payments/{id:[0-9]+}/receipt", payments.Receipt).Methods(http.MethodGet)

	return r
}

// NewHandler wraps the router with CORS for the configured origins.
func NewHandler(svcs Services, opts Options) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   opts.CORSAllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", requestIDHeader},
		ExposedHeaders:   []string{"Location", requestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	})
	return c.Handler(NewRouter(svcs, opts))
}

func healthz(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "database": err.Error()})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
