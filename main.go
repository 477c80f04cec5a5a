package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"tangle-backend/config"
	"tangle-backend/controllers/authentication"
	"tangle-backend/controllers/communities"
	"tangle-backend/controllers/events"
	"tangle-backend/controllers/groups"
	"tangle-backend/controllers/httpCors"
	"tangle-backend/controllers/messages"
	"tangle-backend/controllers/notes"
	"tangle-backend/controllers/notifications"
	"tangle-backend/controllers/posts"
	"tangle-backend/controllers/stories"
	"tangle-backend/logging"
	"tangle-backend/membership"
	"tangle-backend/metrics"
	"tangle-backend/storage/gormstore"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}
	logging.Setup(cfg.LogLevel)

	db, err := config.OpenDB(cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	store := gormstore.New(db)
	defer store.Close()
	slog.Info("database ready")

	auth, err := authentication.New(store, cfg.JWTSecret, cfg.SessionKey, cfg.TokenTTL)
	if err != nil {
		slog.Error("failed to initialize authentication", "error", err)
		os.Exit(1)
	}
	gate := membership.NewAuthority(store)

	groupsHandler := groups.NewHandler(store, auth, gate)
	postsHandler := posts.NewHandler(store, auth, gate)
	storiesHandler := stories.NewHandler(store, auth, gate)
	eventsHandler := events.NewHandler(store, auth, gate)
	notesHandler := notes.NewHandler(store, auth, gate)
	messagesHandler := messages.NewHandler(store, auth, gate)
	communitiesHandler := communities.NewHandler(store, auth)
	notificationsHandler := notifications.NewHandler(store, auth, gate)

	mux := http.NewServeMux()

	mux.HandleFunc("/auth/register", auth.Register)
	mux.HandleFunc("/auth/login", auth.Login)
	mux.HandleFunc("/auth/logout", auth.Logout)
	mux.HandleFunc("/auth/profile", auth.Profile)

	mux.HandleFunc("/groups", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			groupsHandler.Create(w, r)
		default:
			groupsHandler.Get(w, r)
		}
	})
	mux.HandleFunc("/groups/join", groupsHandler.Join)
	mux.HandleFunc("/groups/mine", groupsHandler.Mine)
	mux.HandleFunc("/groups/members", groupsHandler.Members)

	mux.HandleFunc("/posts", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			postsHandler.Create(w, r)
		default:
			postsHandler.List(w, r)
		}
	})
	mux.HandleFunc("/posts/like", postsHandler.Like)

	mux.HandleFunc("/stories", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			storiesHandler.Create(w, r)
		default:
			storiesHandler.List(w, r)
		}
	})

	mux.HandleFunc("/events", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			eventsHandler.Create(w, r)
		default:
			eventsHandler.List(w, r)
		}
	})
	mux.HandleFunc("/events/access/request", eventsHandler.RequestAccess)
	mux.HandleFunc("/events/access/approve", eventsHandler.ApproveAccess)

	mux.HandleFunc("/notes", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			notesHandler.Create(w, r)
		default:
			notesHandler.List(w, r)
		}
	})

	mux.HandleFunc("/messages", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			messagesHandler.Send(w, r)
		default:
			messagesHandler.List(w, r)
		}
	})

	mux.HandleFunc("/communities", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			communitiesHandler.Create(w, r)
		default:
			communitiesHandler.List(w, r)
		}
	})

	mux.HandleFunc("/notifications", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodDelete:
			notificationsHandler.Delete(w, r)
		default:
			notificationsHandler.List(w, r)
		}
	})
	mux.HandleFunc("/notifications/read", notificationsHandler.MarkRead)

	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.Ping()
		}
		if err != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	handler := httpCors.CorsSettings().Handler(
		loggingMiddleware(metrics.Middleware(mux)),
	)

	addr := fmt.Sprintf(":%d", cfg.Port)
	slog.Info("server starting", "addr", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

// loggingMiddleware logs every request with its duration.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Info("request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}
