package server

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"mergex-backend/internal/store"
)

// GET /api/github/status
// Returns { authenticated: bool, username?: string }
func (s *Server) handleGitHubStatus(w http.ResponseWriter, r *http.Request) {
	sid := getSessionID(r)

	var authed bool
	var username string
	if s.databaseStore != nil && sid != "" {
		auth, err := s.databaseStore.GetGitHubAuth(sid)
		if err == nil && auth != nil {
			authed = true
			username = auth.GitHubOwner
		}
	} else {
		tok, _ := s.tokenStore.Read()
		authed = s.cfg.GitHubToken != "" || tok != nil
		if sid != "" {
			username = s.store.GetUsername(sid)
		}
	}

	resp := map[string]any{"authenticated": authed}
	if username != "" {
		resp["username"] = username
	}
	s.writeJSON(w, resp)
}

// GET /api/github/auth
// Initiates the OAuth flow and returns { url } to redirect the browser.
func (s *Server) handleGitHubAuth(w http.ResponseWriter, r *http.Request) {
	if s.oauthCfg == nil || s.oauthCfg.ClientID == "" || s.oauthCfg.ClientSecret == "" {
		s.writeError(w, http.StatusBadRequest, "github oauth not configured")
		return
	}
	sid := getOrCreateSessionID(r, w)
	state := randomState()
	s.store.SetOAuthState(sid, state)
	url := s.oauthCfg.AuthCodeURL(state)
	w.Header().Set("X-Session-Id", sid)
	s.writeJSON(w, map[string]string{"url": url, "sessionId": sid})
}

// GET /api/github/callback?code=...&state=...
// Exchanges the code for a token and persists it for the session.
func (s *Server) handleGitHubCallback(w http.ResponseWriter, r *http.Request) {
	if s.oauthCfg == nil {
		s.writeError(w, http.StatusBadRequest, "github oauth not configured")
		return
	}
	state := r.URL.Query().Get("state")
	code := r.URL.Query().Get("code")
	if state == "" || code == "" {
		s.writeError(w, http.StatusBadRequest, "missing state or code")
		return
	}
	sid := s.store.GetSessionByOAuthState(state)
	if sid == "" || s.store.GetOAuthState(sid) != state {
		s.writeError(w, http.StatusBadRequest, "invalid oauth state")
		return
	}

	tok, err := s.oauthCfg.Exchange(r.Context(), code)
	if err != nil {
		s.writeError(w, http.StatusBadGateway, "token exchange failed")
		return
	}

	username := fetchGitHubUsername(tok.AccessToken)
	if username == "" {
		s.writeError(w, http.StatusInternalServerError, "failed to fetch GitHub username")
		return
	}

	if s.databaseStore != nil {
		if err := s.databaseStore.SaveGitHubAuth(sid, tok.AccessToken, username); err != nil {
			s.writeError(w, http.StatusInternalServerError, "failed to save GitHub auth")
			return
		}
	} else {
		if err := s.tokenStore.Write(&store.GitHubToken{AccessToken: tok.AccessToken, TokenType: tok.TokenType}); err != nil {
			s.writeError(w, http.StatusInternalServerError, "token persist failed")
			return
		}
	}

	s.store.SetUsername(sid, username)
	s.store.ClearOAuthState(sid)

	// Popup and main window share the same session from here on.
	SetSessionCookie(w, sid)
	http.Redirect(w, r, fmt.Sprintf("%s?githubAuth=success", s.cfg.FrontendURL), http.StatusFound)
}

// POST /api/github/disconnect
// Forgets the stored GitHub credential for this session.
func (s *Server) handleGitHubDisconnect(w http.ResponseWriter, r *http.Request) {
	sid := getSessionID(r)
	if s.databaseStore != nil && sid != "" {
		if err := s.databaseStore.DeleteGitHubAuth(sid); err != nil {
			s.writeError(w, http.StatusInternalServerError, "failed to disconnect")
			return
		}
	}
	if err := s.tokenStore.Clear(); err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to disconnect")
		return
	}
	if sid != "" {
		s.store.ClearSession(sid)
	}
	ClearSessionCookie(w)
	s.writeJSON(w, map[string]any{"disconnected": true})
}

// getGitHubToken resolves the stored GitHub token for a session: database
// first, then the file token store. The environment fallback lives in the
// fetch client itself.
func (s *Server) getGitHubToken(sessionID string) string {
	if s.databaseStore != nil && sessionID != "" {
		if auth, err := s.databaseStore.GetGitHubAuth(sessionID); err == nil && auth != nil && strings.TrimSpace(auth.GitHubToken) != "" {
			return auth.GitHubToken
		}
	}
	if tok, err := s.tokenStore.Read(); err == nil && tok != nil && strings.TrimSpace(tok.AccessToken) != "" {
		return tok.AccessToken
	}
	return ""
}

func newSessionID() string {
	return fmt.Sprintf("s_%d", time.Now().UnixNano())
}

// getSessionID retrieves the session ID from cookie, header or query param.
func getSessionID(r *http.Request) string {
	if cookie, err := GetSessionCookie(r); err == nil && cookie != "" {
		return cookie
	}
	if sid := r.Header.Get("X-Session-Id"); sid != "" {
		return sid
	}
	if sid := r.URL.Query().Get("sessionId"); sid != "" {
		return sid
	}
	return ""
}

// getOrCreateSessionID gets the existing session ID or mints one, setting the cookie.
func getOrCreateSessionID(r *http.Request, w http.ResponseWriter) string {
	sid := getSessionID(r)
	if sid == "" {
		sid = newSessionID()
		log.Printf("[session] creating new session: %s for endpoint: %s", sid, r.URL.Path)
		SetSessionCookie(w, sid)
	}
	return sid
}

func randomState() string {
	var b [24]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

func fetchGitHubUsername(accessToken string) string {
	req, _ := http.NewRequest("GET", "https://api.github.com/user", nil)
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/vnd.github+json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return ""
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return ""
	}
	var body struct {
		Login string `json:"login"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return ""
	}
	return strings.TrimSpace(body.Login)
}
