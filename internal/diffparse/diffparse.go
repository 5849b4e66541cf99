package diffparse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"mergex-backend/internal/language"
)

// ChangeKind classifies a single line inside a hunk.
type ChangeKind string

const (
	Addition ChangeKind = "addition"
	Deletion ChangeKind = "deletion"
	Context  ChangeKind = "context"
)

// ChangeLine is one line of a hunk with the leading marker stripped.
// LineNumber is the post-image line for additions and context lines and the
// pre-image line for deletions.
type ChangeLine struct {
	Kind       ChangeKind `json:"type"`
	LineNumber int        `json:"line_number"`
	Content    string     `json:"content"`
}

// Hunk is one @@-delimited region of a file diff. OldStart and NewStart come
// straight from the hunk header and are never mutated after parsing.
type Hunk struct {
	OldStart int          `json:"old_start"`
	NewStart int          `json:"new_start"`
	Changes  []ChangeLine `json:"changes"`
}

// FileDiff is the parsed change set for a single file. A FileDiff with zero
// hunks is never emitted by Parse.
type FileDiff struct {
	OldPath  string `json:"file_path"`
	NewPath  string `json:"new_path,omitempty"`
	Language string `json:"language"`
	Hunks    []Hunk `json:"hunks"`
}

// Path returns the post-image path when present, else the pre-image path.
func (f FileDiff) Path() string {
	if f.NewPath != "" {
		return f.NewPath
	}
	return f.OldPath
}

// ParseError reports unusable diff input. Malformed hunk headers are skipped
// during parsing and never produce a ParseError.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string { return fmt.Sprintf("diff parse: %s", e.Reason) }

var hunkHeaderRE = regexp.MustCompile(`^@@ -(\d+)(?:,\d+)? \+(\d+)(?:,\d+)? @@`)

// Parse converts unified-diff text into an ordered slice of FileDiff records.
// It is a single forward scan: "--- a/" opens a file, "+++ b/" sets its new
// path, a hunk header opens a hunk and seeds the running line counters, and
// change lines advance those counters by classification alone. The parser
// trusts header start values and performs no count validation, matching
// standard unified-diff tooling. The only error is empty input.
func Parse(diffText string) ([]FileDiff, error) {
	if strings.TrimSpace(diffText) == "" {
		return nil, &ParseError{Reason: "no diff content available to parse"}
	}

	var parsed []FileDiff
	var current *FileDiff
	var hunk *Hunk
	oldLine, newLine := 0, 0

	flush := func() {
		if current != nil && len(current.Hunks) > 0 {
			parsed = append(parsed, *current)
		}
	}

	for _, line := range strings.Split(diffText, "\n") {
		switch {
		case strings.HasPrefix(line, "--- a/"):
			flush()
			current = &FileDiff{OldPath: line[6:]}
			current.Language = language.Classify(current.OldPath)
			hunk = nil
			continue
		case strings.HasPrefix(line, "+++ b/"):
			if current != nil {
				current.NewPath = line[6:]
			}
			continue
		case strings.HasPrefix(line, "@@"):
			hunk = nil
			if current == nil {
				continue
			}
			m := hunkHeaderRE.FindStringSubmatch(line)
			if m == nil {
				// Unrecognized header inside an open file: skip it,
				// keep scanning the rest of the diff.
				continue
			}
			oldLine, _ = strconv.Atoi(m[1])
			newLine, _ = strconv.Atoi(m[2])
			current.Hunks = append(current.Hunks, Hunk{OldStart: oldLine, NewStart: newLine})
			hunk = &current.Hunks[len(current.Hunks)-1]
			continue
		}

		if hunk == nil {
			continue
		}

		switch {
		case strings.HasPrefix(line, "+") && !strings.HasPrefix(line, "+++"):
			hunk.Changes = append(hunk.Changes, ChangeLine{Kind: Addition, LineNumber: newLine, Content: line[1:]})
			newLine++
		case strings.HasPrefix(line, "-") && !strings.HasPrefix(line, "---"):
			hunk.Changes = append(hunk.Changes, ChangeLine{Kind: Deletion, LineNumber: oldLine, Content: line[1:]})
			oldLine++
		case strings.HasPrefix(line, " "):
			// Context lines advance both counters; the post-image number
			// is the one reported.
			hunk.Changes = append(hunk.Changes, ChangeLine{Kind: Context, LineNumber: newLine, Content: line[1:]})
			oldLine++
			newLine++
		default:
			// Blank separators and anything else end the hunk.
			hunk = nil
		}
	}
	flush()

	return parsed, nil
}

// RenderChanges flattens a file's additions and deletions into the compact
// text form the review stages consume. Additions carry their post-image line
// number, deletions just the removed content. At most max lines are emitted;
// max <= 0 means no cap.
func RenderChanges(fd FileDiff, max int) string {
	var lines []string
	for _, h := range fd.Hunks {
		for _, c := range h.Changes {
			switch c.Kind {
			case Addition:
				lines = append(lines, fmt.Sprintf("+ %s (line %d)", c.Content, c.LineNumber))
			case Deletion:
				lines = append(lines, fmt.Sprintf("- %s", c.Content))
			}
			if max > 0 && len(lines) >= max {
				return strings.Join(lines, "\n")
			}
		}
	}
	return strings.Join(lines, "\n")
}
