package review

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mergex-backend/internal/diffparse"
)

const engineTestDiff = `--- a/app.py
+++ b/app.py
@@ -1,2 +1,3 @@
 def handler():
-    return None
+    result = compute()
+    return result
`

type stubStage struct {
	name     string
	comments []Comment
	err      error
	delay    time.Duration

	gotLang    string
	gotContext string
	gotFiles   int
}

func (s *stubStage) Name() string { return s.name }

func (s *stubStage) Analyze(ctx context.Context, files []diffparse.FileDiff, lang, reviewContext string) ([]Comment, error) {
	s.gotLang = lang
	s.gotContext = reviewContext
	s.gotFiles = len(files)
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return s.comments, s.err
}

type stubFetcher struct {
	info *PRInfo
	diff string
	err  error

	gotURL   string
	gotToken string
}

func (f *stubFetcher) FetchPR(ctx context.Context, prURL, token string) (*PRInfo, string, error) {
	f.gotURL = prURL
	f.gotToken = token
	return f.info, f.diff, f.err
}

func TestEngineRunInlineDiff(t *testing.T) {
	logic := &stubStage{name: "logic", comments: []Comment{
		{FilePath: "app.py", LineNumber: 2, Severity: SeverityWarning, Category: CategoryLogic, Message: "compute may fail"},
	}}
	security := &stubStage{name: "security", comments: []Comment{
		{FilePath: "app.py", LineNumber: 3, Severity: SeverityCritical, Category: CategorySecurity, Message: "tainted result"},
	}}
	e := NewEngine(nil, []Stage{logic, security}, time.Second)

	report, err := e.Run(context.Background(), Input{Diff: engineTestDiff, Context: "focus on error paths"})
	require.NoError(t, err)
	assert.Equal(t, "success", report.Status)
	assert.Nil(t, report.PRInfo)
	require.Len(t, report.Comments, 2)
	assert.Equal(t, SeverityCritical, report.Comments[0].Severity)

	assert.Equal(t, 1, logic.gotFiles)
	assert.Equal(t, "focus on error paths", logic.gotContext)
}

func TestEngineRunDetectsLanguage(t *testing.T) {
	st := &stubStage{name: "logic"}
	e := NewEngine(nil, []Stage{st}, time.Second)

	_, err := e.Run(context.Background(), Input{Diff: engineTestDiff})
	require.NoError(t, err)
	assert.Equal(t, "python", st.gotLang)
}

func TestEngineRunLanguageHintWins(t *testing.T) {
	st := &stubStage{name: "logic"}
	e := NewEngine(nil, []Stage{st}, time.Second)

	_, err := e.Run(context.Background(), Input{Diff: engineTestDiff, Language: "ruby"})
	require.NoError(t, err)
	assert.Equal(t, "ruby", st.gotLang)
}

func TestEngineRunStageFailureIsolated(t *testing.T) {
	ok := &stubStage{name: "logic", comments: []Comment{
		{FilePath: "app.py", Severity: SeverityInfo, Message: "fine"},
	}}
	broken := &stubStage{name: "security", err: errors.New("model unavailable")}
	e := NewEngine(nil, []Stage{ok, broken}, time.Second)

	report, err := e.Run(context.Background(), Input{Diff: engineTestDiff})
	require.NoError(t, err)
	assert.Equal(t, "success", report.Status)
	require.Len(t, report.Comments, 1)
	assert.Equal(t, "fine", report.Comments[0].Message)
}

func TestEngineRunStageTimeoutIsolated(t *testing.T) {
	slow := &stubStage{name: "performance", delay: 500 * time.Millisecond, comments: []Comment{
		{FilePath: "app.py", Message: "never delivered"},
	}}
	fast := &stubStage{name: "logic", comments: []Comment{
		{FilePath: "app.py", Severity: SeverityWarning, Message: "quick"},
	}}
	e := NewEngine(nil, []Stage{slow, fast}, 20*time.Millisecond)

	report, err := e.Run(context.Background(), Input{Diff: engineTestDiff})
	require.NoError(t, err)
	require.Len(t, report.Comments, 1)
	assert.Equal(t, "quick", report.Comments[0].Message)
}

func TestEngineRunParseFailureFatal(t *testing.T) {
	e := NewEngine(nil, []Stage{&stubStage{name: "logic"}}, time.Second)

	report, err := e.Run(context.Background(), Input{Diff: "   "})
	require.Error(t, err)
	var pe *diffparse.ParseError
	assert.ErrorAs(t, err, &pe)
	assert.Equal(t, "error", report.Status)
	assert.Contains(t, report.Summary, "Review failed:")
}

func TestEngineRunFetchFailureFatal(t *testing.T) {
	f := &stubFetcher{err: errors.New("pull request not found")}
	e := NewEngine(f, []Stage{&stubStage{name: "logic"}}, time.Second)

	report, err := e.Run(context.Background(), Input{PRURL: "https://github.com/o/r/pull/7"})
	require.Error(t, err)
	assert.Equal(t, "error", report.Status)
	assert.Contains(t, report.Summary, "pull request not found")
}

func TestEngineRunFetchesWhenURLGiven(t *testing.T) {
	f := &stubFetcher{
		info: &PRInfo{Number: 42, Title: "Add handler", Author: "octocat"},
		diff: engineTestDiff,
	}
	st := &stubStage{name: "logic"}
	e := NewEngine(f, []Stage{st}, time.Second)

	report, err := e.Run(context.Background(), Input{PRURL: "https://github.com/o/r/pull/42", GitHubToken: "tok"})
	require.NoError(t, err)
	assert.Equal(t, "https://github.com/o/r/pull/42", f.gotURL)
	assert.Equal(t, "tok", f.gotToken)
	require.NotNil(t, report.PRInfo)
	assert.Equal(t, 42, report.PRInfo.Number)
}

func TestEngineRunNoFetcherForURL(t *testing.T) {
	e := NewEngine(nil, nil, time.Second)

	report, err := e.Run(context.Background(), Input{PRURL: "https://github.com/o/r/pull/1"})
	require.Error(t, err)
	var fe *FetchUnavailableError
	assert.ErrorAs(t, err, &fe)
	assert.Equal(t, "error", report.Status)
}

func TestEngineRunNoStages(t *testing.T) {
	e := NewEngine(nil, nil, time.Second)

	report, err := e.Run(context.Background(), Input{Diff: engineTestDiff})
	require.NoError(t, err)
	assert.Equal(t, "success", report.Status)
	assert.Equal(t, "No issues found. Code looks good!", report.Summary)
}
