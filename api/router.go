// Package api assembles the bioinfer REST API.
package api

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/aria-lang/bioinfer-go/api/handlers"
	"github.com/aria-lang/bioinfer-go/api/middleware"
	"github.com/aria-lang/bioinfer-go/internal/store"
	"github.com/aria-lang/bioinfer-go/pkg/bioinfer"
)

// NewRouter returns the API routes. A nil logger uses the standard logger;
// a nil store disables the model endpoints.
func NewRouter(st store.Store, logger *log.Logger) http.Handler {
	if logger == nil {
		logger = log.Default()
	}
	h := handlers.New(st)

	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.LoggerTo(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	r.Get("/version", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(bioinfer.Version()))
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/alignment", func(r chi.Router) {
			r.Post("/local", handlers.LocalAlignHandler)
			r.Post("/global", handlers.GlobalAlignHandler)
			r.Post("/score", handlers.AlignmentScoreHandler)
			r.Post("/compare", handlers.CompareHandler)
		})

		r.Route("/hmm", func(r chi.Router) {
			r.Post("/decode", h.Decode)
			r.Post("/train", h.Train)
		})

		r.Route("/motif", func(r chi.Router) {
			r.Post("/score", h.ScoreWindows)
			r.Post("/scan", h.Scan)
			r.Post("/entropy", h.Entropy)
			r.Post("/background", h.Background)
			r.Post("/refine", h.Refine)
		})

		r.Post("/orf/find", handlers.FindORFsHandler)

		r.Route("/sequence", func(r chi.Router) {
			r.Post("/clean", handlers.CleanHandler)
			r.Post("/reverse-complement", handlers.ReverseComplementHandler)
			r.Post("/info", handlers.SequenceInfoHandler)
			r.Post("/stats", handlers.SequenceSetStatsHandler)
		})

		r.Route("/models/{kind}", func(r chi.Router) {
			r.Get("/", h.ListModels)
			r.Get("/{name}", h.GetModel)
			r.Put("/{name}", h.PutModel)
			r.Delete("/{name}", h.DeleteModel)
		})
	})

	return r
}
