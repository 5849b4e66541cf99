package review

// Severity is the weight of a finding. Unknown severities sort after info.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityError    Severity = "error"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// SeverityRank returns a numeric rank for sorting (lower = more severe).
func SeverityRank(s Severity) int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityError:
		return 1
	case SeverityWarning:
		return 2
	case SeverityInfo:
		return 3
	default:
		return 4
	}
}

// ValidSeverity reports whether s is one of the four known levels.
func ValidSeverity(s Severity) bool {
	return SeverityRank(s) < 4
}

// Category is the review dimension a stage judges.
type Category string

const (
	CategoryLogic       Category = "logic"
	CategorySecurity    Category = "security"
	CategoryPerformance Category = "performance"
	CategoryReadability Category = "readability"
)

// Comment is a single finding produced by an analysis stage. Comments are
// immutable values; the aggregator only filters, orders and copies them.
type Comment struct {
	FilePath    string   `json:"file_path"`
	LineNumber  int      `json:"line_number,omitempty"`
	Severity    Severity `json:"severity"`
	Category    Category `json:"category"`
	Message     string   `json:"message"`
	Suggestion  string   `json:"suggestion,omitempty"`
	SourceStage string   `json:"source_stage"`
}

// SeverityCounts holds per-severity totals for a report.
type SeverityCounts struct {
	Critical int `json:"critical"`
	Error    int `json:"error"`
	Warning  int `json:"warning"`
	Info     int `json:"info"`
}

// CategoryCounts holds per-category totals for a report.
type CategoryCounts struct {
	Logic       int `json:"logic"`
	Security    int `json:"security"`
	Performance int `json:"performance"`
	Readability int `json:"readability"`
}

// PRInfo is the pull request metadata attached to a report when the diff was
// fetched from a remote reference.
type PRInfo struct {
	Number       int    `json:"number"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Author       string `json:"author"`
	State        string `json:"state"`
	BaseBranch   string `json:"base_branch"`
	HeadBranch   string `json:"head_branch"`
	FilesChanged int    `json:"files_changed"`
	Additions    int    `json:"additions"`
	Deletions    int    `json:"deletions"`
}

// Report is the terminal output of one review run.
type Report struct {
	Status      string         `json:"status"`
	PRInfo      *PRInfo        `json:"pr_info,omitempty"`
	Comments    []Comment      `json:"comments"`
	Summary     string         `json:"summary"`
	TotalIssues int            `json:"total_issues"`
	Severities  SeverityCounts `json:"severity_counts"`
	Categories  CategoryCounts `json:"category_counts"`
}
