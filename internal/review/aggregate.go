package review

import (
	"fmt"
	"sort"
	"strings"
)

// Aggregate merges stage outputs into a final report: deduplicate, order,
// count. Pure function; empty input yields an empty success report.
//
// The dedup key is (file_path, case-folded trimmed message). Line number and
// severity are deliberately excluded so near-duplicate findings reported at
// slightly different lines collapse to one entry. First occurrence wins.
func Aggregate(comments []Comment) Report {
	type key struct {
		path string
		msg  string
	}
	seen := make(map[key]struct{}, len(comments))
	unique := make([]Comment, 0, len(comments))
	for _, c := range comments {
		k := key{path: c.FilePath, msg: strings.ToLower(strings.TrimSpace(c.Message))}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		unique = append(unique, c)
	}

	sort.SliceStable(unique, func(i, j int) bool {
		a, b := unique[i], unique[j]
		if ra, rb := SeverityRank(a.Severity), SeverityRank(b.Severity); ra != rb {
			return ra < rb
		}
		if a.FilePath != b.FilePath {
			return a.FilePath < b.FilePath
		}
		return a.LineNumber < b.LineNumber
	})

	r := Report{
		Status:      "success",
		Comments:    unique,
		TotalIssues: len(unique),
	}
	for _, c := range unique {
		switch c.Severity {
		case SeverityCritical:
			r.Severities.Critical++
		case SeverityError:
			r.Severities.Error++
		case SeverityWarning:
			r.Severities.Warning++
		case SeverityInfo:
			r.Severities.Info++
		}
		switch c.Category {
		case CategoryLogic:
			r.Categories.Logic++
		case CategorySecurity:
			r.Categories.Security++
		case CategoryPerformance:
			r.Categories.Performance++
		case CategoryReadability:
			r.Categories.Readability++
		}
	}
	r.Summary = buildSummary(r)
	return r
}

func buildSummary(r Report) string {
	if r.TotalIssues == 0 {
		return "No issues found. Code looks good!"
	}
	parts := []string{fmt.Sprintf("Found %d issue(s):", r.TotalIssues)}
	if r.Severities.Critical > 0 {
		parts = append(parts, fmt.Sprintf("%d critical", r.Severities.Critical))
	}
	if r.Severities.Error > 0 {
		parts = append(parts, fmt.Sprintf("%d error(s)", r.Severities.Error))
	}
	if r.Severities.Warning > 0 {
		parts = append(parts, fmt.Sprintf("%d warning(s)", r.Severities.Warning))
	}
	if r.Severities.Info > 0 {
		parts = append(parts, fmt.Sprintf("%d info", r.Severities.Info))
	}
	parts = append(parts, "Categories:")
	if r.Categories.Logic > 0 {
		parts = append(parts, fmt.Sprintf("Logic: %d", r.Categories.Logic))
	}
	if r.Categories.Security > 0 {
		parts = append(parts, fmt.Sprintf("Security: %d", r.Categories.Security))
	}
	if r.Categories.Performance > 0 {
		parts = append(parts, fmt.Sprintf("Performance: %d", r.Categories.Performance))
	}
	if r.Categories.Readability > 0 {
		parts = append(parts, fmt.Sprintf("Readability: %d", r.Categories.Readability))
	}
	return strings.Join(parts, " ")
}

// FailureReport shapes a fatal run error as a report so any presentation
// layer sees the same contract on success and failure.
func FailureReport(cause string) Report {
	return Report{
		Status:   "error",
		Comments: []Comment{},
		Summary:  "Review failed: " + cause,
	}
}
