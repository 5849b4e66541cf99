package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"mergex-backend/internal/review"
	"mergex-backend/internal/types"
)

// runTimeout bounds one whole review run: fetch plus the slowest stage plus
// aggregation slack.
func (s *Server) runTimeout() time.Duration {
	return s.cfg.GitHubTimeout + s.cfg.StageTimeout + 10*time.Second
}

// POST /api/v1/review/github
func (s *Server) handleReviewGitHub(w http.ResponseWriter, r *http.Request) {
	var req types.GitHubReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	tokenProvided := "No"
	if req.GitHubToken != "" {
		tokenProvided = "Yes"
	}
	log.Printf("[review] github review request: %s (token provided: %s)", req.PRURL, tokenProvided)

	// Triage free-text input before spending a pipeline run on it.
	vr := ValidateInput(req.PRURL)
	if !vr.Valid {
		s.writeJSON(w, review.Report{
			Status:   "info",
			Comments: []review.Comment{},
			Summary:  vr.Message,
		})
		return
	}

	token := req.GitHubToken
	if token == "" {
		// Fall back to a token stored by the OAuth connect flow.
		token = s.getGitHubToken(getSessionID(r))
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.runTimeout())
	defer cancel()
	report, err := s.engine.Run(ctx, review.Input{PRURL: vr.URL, GitHubToken: token})
	if err != nil {
		s.writeError(w, http.StatusBadRequest, report.Summary)
		return
	}
	s.writeJSON(w, report)
}

// POST /api/v1/review/diff
func (s *Server) handleReviewDiff(w http.ResponseWriter, r *http.Request) {
	var req types.DiffReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	log.Printf("[review] manual diff review request (language: %s)", req.Language)

	ctx, cancel := context.WithTimeout(r.Context(), s.runTimeout())
	defer cancel()
	report, err := s.engine.Run(ctx, review.Input{
		Diff:     req.Diff,
		Language: strings.TrimSpace(req.Language),
		Context:  req.Context,
	})
	if err != nil {
		s.writeError(w, http.StatusBadRequest, report.Summary)
		return
	}
	s.writeJSON(w, report)
}

// GET /api/v1/review/categories
func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]any{
		"categories": []map[string]string{
			{"name": "logic", "description": "Logical errors, edge cases, and correctness issues"},
			{"name": "security", "description": "Security vulnerabilities and risks"},
			{"name": "performance", "description": "Performance issues and optimization opportunities"},
			{"name": "readability", "description": "Code readability, style, and maintainability"},
		},
	})
}

// GET /api/v1/review/severities
func (s *Server) handleSeverities(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]any{
		"severities": []map[string]string{
			{"level": "critical", "description": "Critical issues that must be fixed immediately"},
			{"level": "error", "description": "Errors that should be fixed before merging"},
			{"level": "warning", "description": "Warnings that should be reviewed"},
			{"level": "info", "description": "Informational suggestions for improvement"},
		},
	})
}
