package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	store "github.com/jwebster45206/dialogue-engine/pkg/storage"
	"github.com/redis/go-redis/v9"
)

// NewRouter wires every endpoint. Event streams are only mounted when a
// Redis client is available.
func NewRouter(storage store.Storage, redisClient *redis.Client, log *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(log))

	r.Method(http.MethodGet, "/health", NewHealthHandler(storage, log))

	dialogues := NewDialogueHandler(log, storage)
	tagFiles := NewTagHandler(log, storage)
	pcs := NewPCHandler(log, storage)

	r.Route("/v1", func(r chi.Router) {
		r.Route("/dialogues", func(r chi.Router) {
			r.Get("/", dialogues.List)
			r.Get("/{filename}", dialogues.Get)
			r.Put("/{filename}", dialogues.Put)
			r.Delete("/{filename}", dialogues.Delete)
		})

		r.Get("/tags/{filename}", tagFiles.Get)

		r.Route("/pcs", func(r chi.Router) {
			r.Get("/", pcs.List)
			r.Get("/{id}", pcs.Get)
		})

		if redisClient != nil {
			stream := NewEventsHandler(redisClient, log)
			r.Get("/events/conversations/{conversationID}", stream.ServeSSE)
			r.Get("/events/conversations/{conversationID}/ws", stream.ServeWS)
		}
	})

	return r
}

func requestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Debug("Request handled",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()))
		})
	}
}
