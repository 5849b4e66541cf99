package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"gopkg.in/yaml.v3"

	"mergex-backend/internal/diffparse"
	"mergex-backend/internal/review"
)

// maxChangeLines caps the change text sent per file to stay inside token limits.
const maxChangeLines = 50

// PromptSpec is the YAML definition of one review stage's prompt.
type PromptSpec struct {
	System string `yaml:"system"`
	Style  struct {
		Temperature float32 `yaml:"temperature"`
		MaxTokens   int     `yaml:"max_tokens"`
	} `yaml:"style"`
}

// LLMStage is a generic chat-completion review stage. All four registered
// reviewers are instances of this type with different prompt specs; the
// orchestration never special-cases any of them.
type LLMStage struct {
	name            string
	category        review.Category
	defaultSeverity review.Severity
	spec            PromptSpec
	client          *openai.Client
	model           string
}

// LoadLLMStage reads a prompt spec from disk and binds it to a client.
func LoadLLMStage(path, name string, category review.Category, defaultSeverity review.Severity, client *openai.Client, model string) (*LLMStage, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var spec PromptSpec
	if err := yaml.Unmarshal(b, &spec); err != nil {
		return nil, fmt.Errorf("parsing prompt spec %s: %w", path, err)
	}
	if strings.TrimSpace(spec.System) == "" {
		return nil, fmt.Errorf("prompt spec %s has no system prompt", path)
	}
	return &LLMStage{
		name:            name,
		category:        category,
		defaultSeverity: defaultSeverity,
		spec:            spec,
		client:          client,
		model:           model,
	}, nil
}

func (s *LLMStage) Name() string { return s.name }

// Analyze reviews every file with changes and collects the model's findings.
// A transport error fails the whole stage (the engine isolates it); a
// response that cannot be parsed only skips that file.
func (s *LLMStage) Analyze(ctx context.Context, files []diffparse.FileDiff, lang, reviewContext string) ([]review.Comment, error) {
	if reviewContext == "" {
		reviewContext = "No additional context"
	}
	if lang == "" {
		lang = "unknown"
	}
	var comments []review.Comment
	for _, fd := range files {
		changes := diffparse.RenderChanges(fd, maxChangeLines)
		if changes == "" {
			continue
		}
		raw, err := s.complete(ctx, fd.Path(), changes, lang, reviewContext)
		if err != nil {
			return nil, err
		}
		issues, err := parseIssues(raw)
		if err != nil {
			log.Printf("[%s] failed to parse model response for %s: %v", s.name, fd.Path(), err)
			continue
		}
		comments = append(comments, s.toComments(fd.Path(), issues)...)
	}
	log.Printf("[%s] found %d issue(s)", s.name, len(comments))
	return comments, nil
}

func (s *LLMStage) complete(ctx context.Context, path, changes, lang, reviewContext string) (string, error) {
	temp := s.spec.Style.Temperature
	if temp <= 0 {
		temp = 0.2
	}
	maxTok := s.spec.Style.MaxTokens
	if maxTok <= 0 {
		maxTok = 2048
	}
	user := fmt.Sprintf("Review these code changes:\n\nFile: %s\n\nChanges:\n%s\n\nLanguage: %s\nContext: %s",
		path, changes, lang, reviewContext)

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.model,
		Temperature: temp,
		MaxTokens:   maxTok,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: s.spec.System},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// issue is the JSON shape the prompts ask the model to emit.
type issue struct {
	FilePath   string `json:"file_path"`
	LineNumber int    `json:"line_number"`
	Severity   string `json:"severity"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion"`
}

// parseIssues decodes a JSON array of findings, tolerating markdown fences
// and surrounding prose by salvaging the outermost bracketed region.
func parseIssues(raw string) ([]issue, error) {
	content := strings.TrimSpace(raw)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimPrefix(content, "json")
		if i := strings.LastIndex(content, "```"); i >= 0 {
			content = content[:i]
		}
		content = strings.TrimSpace(content)
	}
	var out []issue
	if err := json.Unmarshal([]byte(content), &out); err != nil {
		first := strings.Index(content, "[")
		last := strings.LastIndex(content, "]")
		if first >= 0 && last > first {
			if err2 := json.Unmarshal([]byte(content[first:last+1]), &out); err2 == nil {
				return out, nil
			}
		}
		return nil, err
	}
	return out, nil
}

func (s *LLMStage) toComments(path string, issues []issue) []review.Comment {
	out := make([]review.Comment, 0, len(issues))
	for _, is := range issues {
		if strings.TrimSpace(is.Message) == "" {
			continue
		}
		filePath := is.FilePath
		if filePath == "" {
			filePath = path
		}
		sev := review.Severity(strings.ToLower(strings.TrimSpace(is.Severity)))
		if !review.ValidSeverity(sev) {
			sev = s.defaultSeverity
		}
		out = append(out, review.Comment{
			FilePath:    filePath,
			LineNumber:  is.LineNumber,
			Severity:    sev,
			Category:    s.category,
			Message:     is.Message,
			Suggestion:  is.Suggestion,
			SourceStage: s.name,
		})
	}
	return out
}

type stageDef struct {
	name            string
	file            string
	category        review.Category
	defaultSeverity review.Severity
}

var defaultDefs = []stageDef{
	{"logic_reviewer", "logic.yaml", review.CategoryLogic, review.SeverityWarning},
	{"security_reviewer", "security.yaml", review.CategorySecurity, review.SeverityWarning},
	{"performance_reviewer", "performance.yaml", review.CategoryPerformance, review.SeverityWarning},
	{"readability_reviewer", "readability.yaml", review.CategoryReadability, review.SeverityInfo},
}

// LoadDefaultStages loads the four standard reviewers from the prompts
// directory.
func LoadDefaultStages(dir string, client *openai.Client, model string) ([]review.Stage, error) {
	stages := make([]review.Stage, 0, len(defaultDefs))
	for _, d := range defaultDefs {
		st, err := LoadLLMStage(filepath.Join(dir, d.file), d.name, d.category, d.defaultSeverity, client, model)
		if err != nil {
			return nil, fmt.Errorf("loading stage %s: %w", d.name, err)
		}
		stages = append(stages, st)
	}
	return stages, nil
}
