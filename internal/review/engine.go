package review

import (
	"context"
	"log"
	"sync"
	"time"

	"mergex-backend/internal/diffparse"
	"mergex-backend/internal/language"
)

// Stage is one independent analysis pass over the parsed diff. Stages are
// treated uniformly: the engine does not know what any of them check.
type Stage interface {
	Name() string
	Analyze(ctx context.Context, files []diffparse.FileDiff, lang, reviewContext string) ([]Comment, error)
}

// Fetcher retrieves PR metadata and unified-diff text for a remote reference.
// Invoked at most once per run, only when Input carries a PR URL.
type Fetcher interface {
	FetchPR(ctx context.Context, prURL, token string) (*PRInfo, string, error)
}

// Input is what one review run consumes: either a PR URL or an inline diff,
// plus optional hints.
type Input struct {
	PRURL       string
	Diff        string
	Language    string
	Context     string
	GitHubToken string
}

// Engine runs the review pipeline: fetch (optional), parse, fan out to every
// registered stage concurrently, join, aggregate.
type Engine struct {
	fetcher      Fetcher
	stages       []Stage
	stageTimeout time.Duration
}

// NewEngine wires the pipeline with explicit collaborators. fetcher may be
// nil when only inline diffs will be reviewed.
func NewEngine(fetcher Fetcher, stages []Stage, stageTimeout time.Duration) *Engine {
	if stageTimeout <= 0 {
		stageTimeout = 60 * time.Second
	}
	return &Engine{fetcher: fetcher, stages: stages, stageTimeout: stageTimeout}
}

// Run executes one review. Only fetch and parse failures are fatal; both are
// returned alongside a report-shaped failure. A stage that errors or times
// out contributes zero comments and never fails the run.
func (e *Engine) Run(ctx context.Context, in Input) (Report, error) {
	diffText := in.Diff
	var prInfo *PRInfo

	if in.PRURL != "" {
		if e.fetcher == nil {
			err := &FetchUnavailableError{}
			return FailureReport(err.Error()), err
		}
		info, text, err := e.fetcher.FetchPR(ctx, in.PRURL, in.GitHubToken)
		if err != nil {
			return FailureReport(err.Error()), err
		}
		prInfo = info
		diffText = text
	}

	files, err := diffparse.Parse(diffText)
	if err != nil {
		return FailureReport(err.Error()), err
	}
	log.Printf("[review] parsed changes for %d file(s)", len(files))

	lang := in.Language
	if lang == "" {
		paths := make([]string, 0, len(files))
		for _, f := range files {
			paths = append(paths, f.Path())
		}
		lang = language.ClassifyPrimary(paths)
	}

	// Scatter: every stage gets the same immutable snapshot under its own
	// timeout. Gather: full join before aggregating, no early cancellation
	// of slower stages.
	results := make([][]Comment, len(e.stages))
	var wg sync.WaitGroup
	for i, st := range e.stages {
		wg.Add(1)
		go func(i int, st Stage) {
			defer wg.Done()
			sctx, cancel := context.WithTimeout(ctx, e.stageTimeout)
			defer cancel()
			comments, err := st.Analyze(sctx, files, lang, in.Context)
			if err != nil {
				log.Printf("[review] stage %s produced no findings: %v", st.Name(), err)
				return
			}
			results[i] = comments
		}(i, st)
	}
	wg.Wait()

	var all []Comment
	for _, r := range results {
		all = append(all, r...)
	}
	report := Aggregate(all)
	report.PRInfo = prInfo
	log.Printf("[review] aggregated %d unique comment(s) from %d total", report.TotalIssues, len(all))
	return report, nil
}

// FetchUnavailableError is returned when a remote reference is supplied but
// no diff source was configured.
type FetchUnavailableError struct{}

func (e *FetchUnavailableError) Error() string {
	return "no diff source configured for remote references"
}
