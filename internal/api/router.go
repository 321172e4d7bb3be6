package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/randytsao24/heisenberg/internal/api/handlers"
	"go.uber.org/zap"
)

// NewRouter creates the diagnostics router with all routes and middleware
func NewRouter(sources handlers.SourceProvider, log *zap.SugaredLogger) http.Handler {
	r := mux.NewRouter()

	healthHandler := handlers.NewHealthHandler(sources)
	rootHandler := handlers.NewRootHandler()

	r.HandleFunc("/", rootHandler.Index).Methods(http.MethodGet)
	r.HandleFunc("/health", healthHandler.Health).Methods(http.MethodGet)
	r.HandleFunc("/api/sources", healthHandler.Sources).Methods(http.MethodGet)
	r.NotFoundHandler = http.HandlerFunc(rootHandler.NotFound)

	return Chain(r,
		Recovery(log),
		Logging(log),
		Timeout(5*time.Second),
	)
}
