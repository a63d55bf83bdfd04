package http

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
)

type RouterOptions struct {
	Logger         *slog.Logger
	AllowedOrigins []string
}

func NewRouter(opts RouterOptions, payrollHandler PayrollHandler, eventsHandler EventsHandler) *chi.Mux {
	r := chi.NewRouter()

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(chiMiddleware.RequestID)
	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentType("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/healthz"))

	r.Route("/api/v1/payroll", func(r chi.Router) {
		r.Post("/calculate", payrollHandler.Calculate)
		r.Post("/process", payrollHandler.Process)

		r.Route("/records", func(r chi.Router) {
			r.Get("/", payrollHandler.ListRecords)
			r.Get("/{id}", payrollHandler.GetRecord)
			r.Post("/{id}/pay", payrollHandler.MarkPaid)
		})

		r.Post("/salary-structure/derive", payrollHandler.DeriveStructure)
		r.Post("/statutory/preview", payrollHandler.PreviewStatutory)

		r.Get("/events", eventsHandler.Stream)
	})
	return r
}
