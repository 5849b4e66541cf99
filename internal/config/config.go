package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	AllowedOrigin string
	FrontendURL   string
	// OpenAI
	OpenAIAPIKey string
	Model        string
	PromptsDir   string
	StageTimeout time.Duration
	// GitHub API
	GitHubToken   string
	GitHubTimeout time.Duration
	// GitHub OAuth
	GitHubClientID     string
	GitHubClientSecret string
	GitHubRedirectURL  string
	GitHubTokenFile    string
	GitHubScopes       []string
	// Database
	DatabaseURL string
}

func Load() Config {
	_ = godotenv.Load()
	cfg := Config{
		Port:               getEnvDefault("PORT", "8080"),
		AllowedOrigin:      getEnvDefault("ALLOWED_ORIGIN", "*"),
		FrontendURL:        getEnvDefault("FRONTEND_URL", "http://localhost:3000"),
		OpenAIAPIKey:       os.Getenv("OPENAI_API_KEY"),
		Model:              getEnvDefault("OPENAI_MODEL", "gpt-4o-mini"),
		PromptsDir:         getEnvDefault("PROMPTS_DIR", "./prompts"),
		StageTimeout:       getEnvSecondsDefault("STAGE_TIMEOUT_SECONDS", 60*time.Second),
		GitHubToken:        os.Getenv("GITHUB_TOKEN"),
		GitHubTimeout:      getEnvSecondsDefault("GITHUB_API_TIMEOUT_SECONDS", 30*time.Second),
		GitHubClientID:     os.Getenv("GITHUB_CLIENT_ID"),
		GitHubClientSecret: os.Getenv("GITHUB_CLIENT_SECRET"),
		GitHubRedirectURL:  getEnvDefault("GITHUB_REDIRECT_URL", "http://localhost:8080/api/github/callback"),
		GitHubTokenFile:    getEnvDefault("GITHUB_TOKEN_FILE", "data/github_token.json"),
		GitHubScopes:       getEnvListDefault("GITHUB_OAUTH_SCOPES", []string{"repo", "read:user"}),
		DatabaseURL:        os.Getenv("DB_URL"),
	}
	if cfg.OpenAIAPIKey == "" {
		log.Println("warning: OPENAI_API_KEY is not set; review stages will fail until provided")
	}
	return cfg
}

func getEnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvListDefault(key string, def []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			s := strings.TrimSpace(p)
			if s != "" {
				out = append(out, s)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return def
}

func getEnvSecondsDefault(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 0 {
			return time.Duration(n) * time.Second
		}
	}
	return def
}
