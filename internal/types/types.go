package types

// GitHubReviewRequest asks for a review of a remote pull request. The token,
// when provided, is used in-memory for this request only and never persisted.
type GitHubReviewRequest struct {
	PRURL       string `json:"pr_url"`
	GitHubToken string `json:"github_token,omitempty"`
}

// DiffReviewRequest asks for a review of an inline unified diff.
type DiffReviewRequest struct {
	Diff     string `json:"diff"`
	Language string `json:"language,omitempty"`
	Context  string `json:"context,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
