package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/inamate/inamate/canvas-go/internal/asset"
	"github.com/inamate/inamate/canvas-go/internal/auth"
	"github.com/inamate/inamate/canvas-go/internal/collab"
	"github.com/inamate/inamate/canvas-go/internal/config"
	"github.com/inamate/inamate/canvas-go/internal/export"
	mw "github.com/inamate/inamate/canvas-go/internal/middleware"
	"github.com/inamate/inamate/canvas-go/internal/project"
	"github.com/inamate/inamate/canvas-go/internal/scene"
	"github.com/inamate/inamate/canvas-go/internal/store"
)

// playgroundProjectID is open to anonymous users.
const playgroundProjectID = "proj_playground"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	engineCfg, err := config.LoadEngine(cfg.EngineConfig)
	if err != nil {
		slog.Error("load engine config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	pool, err := store.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := store.Migrate(ctx, pool); err != nil {
		slog.Error("migrate database", "error", err)
		os.Exit(1)
	}
	queries := store.New(pool)

	authService := auth.NewService(queries, cfg.JWTSecret)
	authHandler := auth.NewHandler(authService)

	projectService := project.NewService(queries)
	projectHandler := project.NewHandler(projectService)

	assetHandler := asset.NewHandler(cfg.AssetDir)
	loader := asset.NewLoader(cfg.AssetDir)

	registry := scene.DefaultRegistry()
	registry.Loader = loader

	hub := collab.NewHub(collab.HubOptions{
		Store:        projectService,
		Registry:     registry,
		Logger:       logger,
		SaveInterval: cfg.SaveEvery(),
	})
	hubDone := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(hubDone)
	}()

	renderer := export.NewRenderer(engineCfg, loader, logger)
	exportHandler := export.NewHandler(renderer, projectService)

	r := mux.NewRouter()

	r.Use(mw.Recovery)
	r.Use(mw.Logger)
	r.Use(mw.CORS(cfg.Origins()))

	// Auth routes (public)
	r.HandleFunc("/auth/register", authHandler.Register).Methods("POST", "OPTIONS")
	r.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		auth.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods("GET")

	// Assets and document export are public so the playground can use them.
	r.HandleFunc("/assets/upload", assetHandler.Upload).Methods("POST", "OPTIONS")
	r.PathPrefix("/assets/").Handler(assetHandler.Serve()).Methods("GET")
	r.HandleFunc("/export/{format}", exportHandler.ExportDocument).Methods("POST", "OPTIONS")

	api := r.PathPrefix("/api").Subrouter()
	api.Use(authService.AuthMiddleware)

	api.HandleFunc("/me", authHandler.Me).Methods("GET")
	api.HandleFunc("/assets/{assetId}", assetHandler.Remove).Methods("DELETE")
	api.HandleFunc("/projects", projectHandler.List).Methods("GET")
	api.HandleFunc("/projects", projectHandler.Create).Methods("POST")
	api.HandleFunc("/projects/{projectId}", projectHandler.Get).Methods("GET")
	api.HandleFunc("/projects/{projectId}", projectHandler.Delete).Methods("DELETE")
	api.HandleFunc("/projects/{projectId}/invite", projectHandler.Invite).Methods("POST")
	api.HandleFunc("/projects/{projectId}/members", projectHandler.ListMembers).Methods("GET")
	api.HandleFunc("/projects/{projectId}/members/{userId}", projectHandler.RemoveMember).Methods("DELETE")
	api.HandleFunc("/projects/{projectId}/snapshots/latest", projectHandler.GetLatestSnapshot).Methods("GET")
	api.HandleFunc("/projects/{projectId}/snapshots", projectHandler.SaveSnapshot).Methods("POST")
	api.HandleFunc("/projects/{projectId}/export/{format}", exportHandler.ExportProject).Methods("GET")

	ws := &wsHandler{
		hub:      hub,
		auth:     authService,
		projects: projectService,
		origins:  cfg.OriginHosts(),
	}
	r.Handle("/ws/project/{projectId}", ws)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutting down server")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown", "error", err)
		}
	}()

	slog.Info("server starting", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	// The hub saves every edited room once more before it returns.
	<-hubDone
	slog.Info("documents saved")
}

type wsHandler struct {
	hub      *collab.Hub
	auth     *auth.Service
	projects *project.Service
	origins  []string
}

func (h *wsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	projectID := mux.Vars(r)["projectId"]

	userID, displayName, status, err := h.identify(r, projectID)
	if err != nil {
		http.Error(w, err.Error(), status)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.origins,
	})
	if err != nil {
		slog.Error("websocket accept", "error", err)
		return
	}

	ctx := r.Context()
	client := collab.NewClient(h.hub, conn, userID, displayName, projectID)
	if err := h.hub.Register(ctx, client); err != nil {
		slog.Error("join room", "project", projectID, "error", err)
		conn.Close(websocket.StatusInternalError, "document unavailable")
		return
	}

	go client.WritePump(ctx)
	client.ReadPump(ctx)
}

// identify resolves the user of a websocket request. Real projects need a
// token in the query string and a membership.
func (h *wsHandler) identify(r *http.Request, projectID string) (userID, displayName string, status int, err error) {
	if projectID == playgroundProjectID {
		return "anon-" + uuid.NewString()[:8], "Anonymous", 0, nil
	}

	token := r.URL.Query().Get("token")
	if token == "" {
		return "", "", http.StatusUnauthorized, errors.New("missing token")
	}
	userID, err = h.auth.ValidateToken(token)
	if err != nil {
		return "", "", http.StatusUnauthorized, errors.New("invalid token")
	}
	if err := h.projects.CheckMembership(r.Context(), projectID, userID); err != nil {
		return "", "", http.StatusForbidden, errors.New("not a project member")
	}
	user, err := h.auth.GetUser(r.Context(), userID)
	if err != nil {
		return "", "", http.StatusInternalServerError, errors.New("user not found")
	}
	return userID, user.DisplayName, 0, nil
}
