package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"doccast/cache"
	"doccast/config"
	"doccast/core/upstream"
	"doccast/logger"
)

// Start initializes and runs the HTTP gateway until interrupted.
func Start() {
	cfg := config.Load()

	logger.Init(logger.Config{
		Level:      logger.LogLevel(cfg.LogLevel),
		OutputPath: cfg.LogPath,
		MaxSize:    50,
		MaxBackups: 5,
		MaxAge:     14,
		Compress:   true,
	})

	backend := upstream.NewClient(cfg.BackendAPIURL, cfg.UpstreamTimeout)

	// Session scratch state prefers Redis; a gateway without Redis still
	// works, it just forgets sessions on restart.
	var docs cache.DocumentStore
	if redisClient, err := cache.Connect(cfg); err != nil {
		logger.Warn("[Server] Redis unavailable, using in-memory session store", logger.ErrorField(err))
		docs = cache.NewMemoryDocumentStore(cfg.SessionTTL)
	} else {
		logger.Info("[Server] connected to Redis",
			logger.String("host", cfg.RedisHost),
			logger.String("port", cfg.RedisPort))
		docs = cache.NewRedisDocumentStore(redisClient, cfg.SessionTTL)
		defer redisClient.Close()
	}

	apiHandler := NewAPIHandler(backend, docs, cfg)

	// Re-point the backend client when .env changes; no restart needed to
	// switch environments.
	stopWatch, err := config.Watch("", func(updated *config.Config) {
		logger.Info("[Server] configuration reloaded",
			logger.String("backend", updated.BackendAPIURL))
		backend.SetBaseURL(updated.BackendAPIURL)
	})
	if err != nil {
		logger.Warn("[Server] config watcher disabled", logger.ErrorField(err))
	} else {
		defer stopWatch()
	}

	router := NewRouter(apiHandler)

	srv := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute, // audio generation responses are slow
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("[Server] gateway listening",
			logger.String("addr", cfg.ListenAddr),
			logger.String("backend", cfg.BackendAPIURL),
			logger.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("[Server] listen failed", logger.ErrorField(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("[Server] shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("[Server] forced shutdown", logger.ErrorField(err))
	}
}

// NewRouter wires every relay endpoint. Split from Start so tests can
// exercise the full routing table against mock upstreams.
func NewRouter(h *APIHandler) *mux.Router {
	router := mux.NewRouter()

	router.Use(corsMiddleware)
	router.Use(requestIDMiddleware)

	// Upload flow.
	router.HandleFunc("/api/upload", h.UploadHandler).Methods(http.MethodPost)

	// Assistant.
	router.HandleFunc("/api/chat", h.ChatHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/chat/ws", h.ChatSocketHandler).Methods(http.MethodGet)

	// Chat history (authenticated).
	router.HandleFunc("/api/chats", h.ListChatsHandler()).Methods(http.MethodGet)
	router.HandleFunc("/api/chats", h.CreateChatHandler()).Methods(http.MethodPost)
	router.HandleFunc("/api/chats/{id}", h.GetChatHandler()).Methods(http.MethodGet)
	router.HandleFunc("/api/chats/{id}", h.DeleteChatHandler()).Methods(http.MethodDelete)

	// Generation.
	router.HandleFunc("/api/generate-quiz", h.GenerateQuizHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/generate-audio", h.GenerateAudioHandler).Methods(http.MethodPost)

	// Account.
	router.HandleFunc("/api/files", h.ListFilesHandler()).Methods(http.MethodGet)
	router.HandleFunc("/api/me", h.MeHandler()).Methods(http.MethodGet)
	router.HandleFunc("/api/auth/login", h.LoginHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/signup", h.SignupHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/logout", h.LogoutHandler).Methods(http.MethodPost)

	// Session document scratch state.
	router.HandleFunc("/api/session/document", h.GetSessionDocumentHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/session/document", h.PutSessionDocumentHandler).Methods(http.MethodPut)
	router.HandleFunc("/api/session/document", h.DeleteSessionDocumentHandler).Methods(http.MethodDelete)

	// Static metadata and health.
	router.HandleFunc("/api/voices", h.VoicesHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/health", h.HealthHandler).Methods(http.MethodGet)

	return router
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// requestIDMiddleware tags every request for log correlation.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get("X-Request-ID")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", reqID)

		start := time.Now()
		next.ServeHTTP(w, r)

		logger.Debug("[HTTP] request handled",
			logger.String("requestID", reqID),
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
			logger.Duration("elapsed", time.Since(start)))
	})
}
