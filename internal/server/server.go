package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/oauth2"
	oauthgithub "golang.org/x/oauth2/github"

	"mergex-backend/internal/agents"
	"mergex-backend/internal/config"
	"mergex-backend/internal/db"
	"mergex-backend/internal/github"
	"mergex-backend/internal/review"
	"mergex-backend/internal/store"
	"mergex-backend/internal/types"
)

type Server struct {
	router        *chi.Mux
	cfg           config.Config
	engine        *review.Engine
	store         *store.MemoryStore
	oauthCfg      *oauth2.Config
	tokenStore    *store.FileTokenStore
	database      *db.DB
	databaseStore *store.DatabaseStore
}

func NewServer(cfg config.Config) (*Server, error) {
	client := openai.NewClient(cfg.OpenAIAPIKey)
	stages, err := agents.LoadDefaultStages(cfg.PromptsDir, client, cfg.Model)
	if err != nil {
		return nil, fmt.Errorf("failed to load review stages: %w", err)
	}
	fetcher := github.NewClient(cfg.GitHubToken, cfg.GitHubTimeout)
	engine := review.NewEngine(fetcher, stages, cfg.StageTimeout)

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.AllowedOrigin},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"X-Session-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// OAuth2 config (may be partially empty if env not set; handlers will check)
	oCfg := &oauth2.Config{
		ClientID:     cfg.GitHubClientID,
		ClientSecret: cfg.GitHubClientSecret,
		RedirectURL:  cfg.GitHubRedirectURL,
		Scopes:       cfg.GitHubScopes,
		Endpoint:     oauthgithub.Endpoint,
	}
	ts := store.NewFileTokenStore(cfg.GitHubTokenFile)

	var database *db.DB
	var databaseStore *store.DatabaseStore
	if cfg.DatabaseURL != "" {
		database, err = db.New(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		if err := database.EnsureSchema(); err != nil {
			database.Close()
			return nil, err
		}
		log.Println("database connection established")
		databaseStore = store.NewDatabaseStore(database)
	} else {
		log.Println("warning: DB_URL not provided, using file-based token storage only")
	}

	s := &Server{
		router:        r,
		cfg:           cfg,
		engine:        engine,
		store:         store.NewMemoryStore(),
		oauthCfg:      oCfg,
		tokenStore:    ts,
		database:      database,
		databaseStore: databaseStore,
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.router.Get("/api/v1/health", s.handleHealth)
	// Review pipeline
	s.router.Post("/api/v1/review/github", s.handleReviewGitHub)
	s.router.Post("/api/v1/review/diff", s.handleReviewDiff)
	s.router.Get("/api/v1/review/categories", s.handleCategories)
	s.router.Get("/api/v1/review/severities", s.handleSeverities)
	// GitHub OAuth
	s.router.Get("/api/github/status", s.handleGitHubStatus)
	s.router.Get("/api/github/auth", s.handleGitHubAuth)
	s.router.Get("/api/github/callback", s.handleGitHubCallback)
	s.router.Post("/api/github/disconnect", s.handleGitHubDisconnect)
}

func (s *Server) Router() http.Handler { return s.router }

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: msg})
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
