package server

import (
	"regexp"
	"strings"
)

// InputType classifies what the user actually sent to the review endpoint.
type InputType string

const (
	InputGreeting   InputType = "greeting"
	InputIrrelevant InputType = "irrelevant"
	InputInvalidURL InputType = "invalid_url"
	InputValidPRURL InputType = "valid_pr_url"
)

// ValidationResult is the triage outcome for one input string.
type ValidationResult struct {
	Type    InputType
	Valid   bool
	URL     string
	Message string
}

var greetingPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^hi+$`),
	regexp.MustCompile(`(?i)^hi\s+mergex$`),
	regexp.MustCompile(`(?i)^hello+$`),
	regexp.MustCompile(`(?i)^hello\s+mergex$`),
	regexp.MustCompile(`(?i)^hey+$`),
	regexp.MustCompile(`(?i)^hi\s+there$`),
	regexp.MustCompile(`(?i)^hello\s+there$`),
	regexp.MustCompile(`(?i)^hey\s+there$`),
	regexp.MustCompile(`(?i)^greetings?$`),
	regexp.MustCompile(`(?i)^good\s+(morning|afternoon|evening|day)$`),
	regexp.MustCompile(`(?i)^howdy$`),
	regexp.MustCompile(`(?i)^sup$`),
	regexp.MustCompile(`(?i)^what'?s\s+up$`),
}

var githubPRPattern = regexp.MustCompile(`(?i)^https?://github\.com/[\w\-.]+/[\w\-.]+/pull/\d+`)

var irrelevantKeywords = []string{
	"what is", "how to", "tell me", "explain", "tutorial",
	"teach me", "help me learn", "joke", "story", "weather",
	"time", "date", "calculate", "translate", "define",
	"meaning of", "who is", "where is", "when is", "why is",
}

// ValidateInput decides whether the input is a reviewable PR URL or a
// greeting / off-topic query that deserves a friendly reply instead of a
// pipeline run.
func ValidateInput(input string) ValidationResult {
	input = strings.TrimSpace(input)
	if input == "" {
		return ValidationResult{
			Type:    InputInvalidURL,
			Message: "Please provide a GitHub PR URL to review.",
		}
	}
	if isGreeting(input) {
		return ValidationResult{
			Type:    InputGreeting,
			Message: "Hi! How can I help you? Please provide your GitHub PR link, let's check and solve any issues together!",
		}
	}
	if githubPRPattern.MatchString(input) {
		return ValidationResult{
			Type:    InputValidPRURL,
			Valid:   true,
			URL:     input,
			Message: "Valid GitHub PR URL",
		}
	}
	if isIrrelevant(input) {
		return ValidationResult{
			Type: InputIrrelevant,
			Message: "Sorry, I am a GitHub PR review agent. I don't handle general questions or unrelated topics. " +
				"Please provide a GitHub Pull Request URL for me to review. Example: https://github.com/owner/repo/pull/123",
		}
	}
	return ValidationResult{
		Type:    InputInvalidURL,
		Message: "Invalid GitHub PR URL format. Please provide a valid URL like: https://github.com/owner/repo/pull/123",
	}
}

func isGreeting(input string) bool {
	for _, re := range greetingPatterns {
		if re.MatchString(input) {
			return true
		}
	}
	return false
}

func isIrrelevant(input string) bool {
	lower := strings.ToLower(input)
	if containsAny(lower, irrelevantKeywords) {
		return true
	}
	// A question that never mentions GitHub or PRs is off-topic.
	if strings.Contains(input, "?") &&
		!strings.Contains(lower, "github") &&
		!strings.Contains(lower, "pull request") &&
		!strings.Contains(lower, "pr") {
		return true
	}
	return false
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
