package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"mergex-backend/internal/review"
)

// FetchError means the remote diff is unavailable. It is fatal to a review
// run; the cause is surfaced verbatim.
type FetchError struct {
	Reason string
}

func (e *FetchError) Error() string { return e.Reason }

// Client fetches pull request data from the GitHub REST API. It keeps a very
// small surface area tailored to building a reviewable unified diff.
type Client struct {
	httpClient *http.Client
	baseAPI    string
	// Fallback token from the environment; a request-scoped token takes
	// priority for private repositories.
	token string
}

func NewClient(token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseAPI:    "https://api.github.com",
		token:      token,
	}
}

// ---- Helpers ----

func (c *Client) getJSON(ctx context.Context, token, path string, out any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseAPI+path, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("User-Agent", "PR-Review-Agent")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var ghErr struct {
			Message string `json:"message"`
		}
		b, _ := io.ReadAll(resp.Body)
		msg := fmt.Sprintf("HTTP %d", resp.StatusCode)
		if json.Unmarshal(b, &ghErr) == nil && ghErr.Message != "" {
			msg = ghErr.Message
		}
		return resp.StatusCode, fmt.Errorf("%s", msg)
	}
	return resp.StatusCode, json.NewDecoder(resp.Body).Decode(out)
}

// parsePRURL extracts owner, repo and number from a URL shaped like
// https://github.com/owner/repo/pull/123.
func parsePRURL(prURL string) (owner, repo string, number int, err error) {
	parts := strings.Split(strings.TrimRight(prURL, "/"), "/")
	if len(parts) < 7 || parts[len(parts)-2] != "pull" {
		return "", "", 0, fmt.Errorf("invalid GitHub PR URL format: %s", prURL)
	}
	owner = parts[len(parts)-4]
	repo = parts[len(parts)-3]
	number, err = strconv.Atoi(parts[len(parts)-1])
	if err != nil {
		return "", "", 0, fmt.Errorf("invalid GitHub PR URL format: %s", prURL)
	}
	return owner, repo, number, nil
}

// maskToken keeps full tokens out of logs.
func maskToken(token string) string {
	if token == "" {
		return "None"
	}
	if len(token) <= 8 {
		return "****"
	}
	return token[:4] + "..." + token[len(token)-4:]
}

func (c *Client) statusError(status int, owner, repo string, number int, cause error, userToken bool) *FetchError {
	tokenHint := ""
	if !userToken {
		tokenHint = " If this is a private repository, provide your github_token in the request body."
	}
	switch status {
	case http.StatusUnauthorized:
		return &FetchError{Reason: "GitHub authentication failed. Please check your token is valid and not expired." + tokenHint}
	case http.StatusForbidden:
		return &FetchError{Reason: fmt.Sprintf("Access denied to repository '%s/%s'. This may be a private repository. "+
			"Ensure your GitHub token has access to it and the 'repo' scope.%s", owner, repo, tokenHint)}
	case http.StatusNotFound:
		return &FetchError{Reason: fmt.Sprintf("Repository '%s/%s' or PR #%d not found.%s", owner, repo, number, tokenHint)}
	default:
		return &FetchError{Reason: fmt.Sprintf("GitHub API error: %v", cause)}
	}
}

// ---- Responses (minimal fields used) ----

type prDetails struct {
	Number int    `json:"number"`
	Title  string `json:"title"`
	Body   string `json:"body"`
	State  string `json:"state"`
	User   struct {
		Login string `json:"login"`
	} `json:"user"`
	Base struct {
		Ref string `json:"ref"`
	} `json:"base"`
	Head struct {
		Ref string `json:"ref"`
	} `json:"head"`
	ChangedFiles int `json:"changed_files"`
	Additions    int `json:"additions"`
	Deletions    int `json:"deletions"`
}

type prFile struct {
	Filename string `json:"filename"`
	Status   string `json:"status"`
	Patch    string `json:"patch"`
}

// FetchPR retrieves PR metadata and synthesizes a unified diff from the
// per-file patches GitHub returns. The request-scoped token takes priority
// over the environment token and is never logged in full.
func (c *Client) FetchPR(ctx context.Context, prURL, token string) (*review.PRInfo, string, error) {
	userToken := token != ""
	if token == "" {
		token = c.token
	}
	if token == "" {
		return nil, "", &FetchError{Reason: "GitHub token not configured. For public repositories, set GITHUB_TOKEN in .env. " +
			"For private repositories, provide github_token in the request body."}
	}

	owner, repo, number, err := parsePRURL(prURL)
	if err != nil {
		return nil, "", &FetchError{Reason: err.Error()}
	}
	log.Printf("[github] fetching PR #%d from %s/%s (token: %s)", number, owner, repo, maskToken(token))

	var pr prDetails
	status, err := c.getJSON(ctx, token, fmt.Sprintf("/repos/%s/%s/pulls/%d", owner, repo, number), &pr)
	if err != nil {
		return nil, "", c.statusError(status, owner, repo, number, err, userToken)
	}

	var files []prFile
	status, err = c.getJSON(ctx, token, fmt.Sprintf("/repos/%s/%s/pulls/%d/files?per_page=100", owner, repo, number), &files)
	if err != nil {
		return nil, "", c.statusError(status, owner, repo, number, err, userToken)
	}

	info := &review.PRInfo{
		Number:       pr.Number,
		Title:        pr.Title,
		Description:  pr.Body,
		Author:       pr.User.Login,
		State:        pr.State,
		BaseBranch:   pr.Base.Ref,
		HeadBranch:   pr.Head.Ref,
		FilesChanged: pr.ChangedFiles,
		Additions:    pr.Additions,
		Deletions:    pr.Deletions,
	}

	var parts []string
	withPatch := 0
	for _, f := range files {
		if f.Patch == "" {
			log.Printf("[github] no patch for file %s (status: %s)", f.Filename, f.Status)
			continue
		}
		parts = append(parts, "--- a/"+f.Filename, "+++ b/"+f.Filename, f.Patch, "")
		withPatch++
	}
	diff := strings.Join(parts, "\n")
	log.Printf("[github] fetched PR data: %d file(s) changed, %d with patches", pr.ChangedFiles, withPatch)

	if diff == "" && pr.ChangedFiles > 0 {
		return nil, "", &FetchError{Reason: "No analyzable text changes found. The PR may contain only binary files (PDFs, images, docs) or large files."}
	}
	return info, diff, nil
}
