package diffparse

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDiff = `--- a/test.py
+++ b/test.py
@@ -1,2 +1,3 @@
 def test():
-    pass
+    x = 1
+    return x
`

func TestParseSimpleDiff(t *testing.T) {
	files, err := Parse(sampleDiff)
	require.NoError(t, err)
	require.Len(t, files, 1)

	f := files[0]
	assert.Equal(t, "test.py", f.OldPath)
	assert.Equal(t, "test.py", f.NewPath)
	assert.Equal(t, "python", f.Language)
	require.Len(t, f.Hunks, 1)

	h := f.Hunks[0]
	assert.Equal(t, 1, h.OldStart)
	assert.Equal(t, 1, h.NewStart)
	require.Len(t, h.Changes, 4)

	assert.Equal(t, ChangeLine{Kind: Context, LineNumber: 1, Content: "def test():"}, h.Changes[0])
	assert.Equal(t, ChangeLine{Kind: Deletion, LineNumber: 1, Content: "    pass"}, h.Changes[1])
	assert.Equal(t, ChangeLine{Kind: Addition, LineNumber: 2, Content: "    x = 1"}, h.Changes[2])
	assert.Equal(t, ChangeLine{Kind: Addition, LineNumber: 3, Content: "    return x"}, h.Changes[3])
}

func TestParseEmptyDiff(t *testing.T) {
	for _, input := range []string{"", "   ", "\n\n"} {
		_, err := Parse(input)
		require.Error(t, err)
		var perr *ParseError
		assert.ErrorAs(t, err, &perr)
	}
}

func TestParseAdditionDeletionCounts(t *testing.T) {
	diff := `--- a/a.go
+++ b/a.go
@@ -10,4 +10,5 @@
 ctx line
-removed one
-removed two
+added one
+added two
+added three
`
	files, err := Parse(diff)
	require.NoError(t, err)
	require.Len(t, files, 1)

	adds, dels := 0, 0
	for _, c := range files[0].Hunks[0].Changes {
		switch c.Kind {
		case Addition:
			adds++
		case Deletion:
			dels++
		}
	}
	assert.Equal(t, 3, adds)
	assert.Equal(t, 2, dels)
}

func TestLineNumberMonotonicity(t *testing.T) {
	diff := `--- a/a.go
+++ b/a.go
@@ -5,3 +7,4 @@
-old a
-old b
+new a
+new b
+new c
`
	files, err := Parse(diff)
	require.NoError(t, err)

	var addLines, delLines []int
	for _, c := range files[0].Hunks[0].Changes {
		switch c.Kind {
		case Addition:
			addLines = append(addLines, c.LineNumber)
		case Deletion:
			delLines = append(delLines, c.LineNumber)
		}
	}
	assert.Equal(t, []int{7, 8, 9}, addLines)
	assert.Equal(t, []int{5, 6}, delLines)
}

func TestContextOnlyCountersAdvanceTogether(t *testing.T) {
	diff := `--- a/a.go
+++ b/a.go
@@ -3,3 +8,3 @@
 one
 two
 three
`
	files, err := Parse(diff)
	require.NoError(t, err)

	h := files[0].Hunks[0]
	for k, c := range h.Changes {
		require.Equal(t, Context, c.Kind)
		// Post-image number is reported; pre-image is derivable since both
		// counters advance in lockstep.
		assert.Equal(t, h.NewStart+k, c.LineNumber)
		assert.Equal(t, h.OldStart+k, c.LineNumber-(h.NewStart-h.OldStart))
	}
}

func TestParseIdempotent(t *testing.T) {
	first, err := Parse(sampleDiff)
	require.NoError(t, err)
	second, err := Parse(sampleDiff)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestFileWithoutHunksDropped(t *testing.T) {
	diff := `--- a/binary.png
+++ b/binary.png
--- a/code.go
+++ b/code.go
@@ -1 +1 @@
-old
+new
`
	files, err := Parse(diff)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "code.go", files[0].OldPath)
}

func TestMalformedHunkHeaderSkipped(t *testing.T) {
	diff := `--- a/a.go
+++ b/a.go
@@ not a real header @@
@@ -1,2 +1,2 @@
 keep
-old
+new
`
	files, err := Parse(diff)
	require.NoError(t, err)
	require.Len(t, files, 1)
	require.Len(t, files[0].Hunks, 1)
	assert.Equal(t, 1, files[0].Hunks[0].OldStart)
}

func TestHunkHeaderWithoutCounts(t *testing.T) {
	diff := `--- a/a.go
+++ b/a.go
@@ -3 +4 @@
-x
+y
`
	files, err := Parse(diff)
	require.NoError(t, err)
	h := files[0].Hunks[0]
	assert.Equal(t, 3, h.OldStart)
	assert.Equal(t, 4, h.NewStart)
}

func TestBlankLineEndsHunk(t *testing.T) {
	diff := `--- a/a.go
+++ b/a.go
@@ -1,1 +1,1 @@
-old
+new

+stray addition after separator
`
	files, err := Parse(diff)
	require.NoError(t, err)
	require.Len(t, files[0].Hunks, 1)
	// The stray line after the separator is not part of any hunk.
	assert.Len(t, files[0].Hunks[0].Changes, 2)
}

func TestLinesOutsideAnyFileIgnored(t *testing.T) {
	diff := `diff preamble text
@@ -1,1 +1,1 @@
+orphan
--- a/real.go
+++ b/real.go
@@ -1,1 +1,1 @@
-a
+b
`
	files, err := Parse(diff)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "real.go", files[0].OldPath)
	assert.Len(t, files[0].Hunks, 1)
}

func TestMultipleFiles(t *testing.T) {
	diff := `--- a/one.py
+++ b/one.py
@@ -1,1 +1,1 @@
-a
+b
--- a/two.js
+++ b/two.js
@@ -2,1 +2,1 @@
-c
+d
`
	files, err := Parse(diff)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "one.py", files[0].OldPath)
	assert.Equal(t, "python", files[0].Language)
	assert.Equal(t, "two.js", files[1].OldPath)
	assert.Equal(t, "javascript", files[1].Language)
}

func TestRenderChanges(t *testing.T) {
	files, err := Parse(sampleDiff)
	require.NoError(t, err)

	got := RenderChanges(files[0], 0)
	want := strings.Join([]string{
		"-     pass",
		"+     x = 1 (line 2)",
		"+     return x (line 3)",
	}, "\n")
	assert.Equal(t, want, got)

	capped := RenderChanges(files[0], 2)
	assert.Len(t, strings.Split(capped, "\n"), 2)
}

func TestRenderChangesContextOnlyEmpty(t *testing.T) {
	diff := `--- a/a.go
+++ b/a.go
@@ -1,2 +1,2 @@
 just
 context
`
	files, err := Parse(diff)
	require.NoError(t, err)
	assert.Empty(t, RenderChanges(files[0], 50))
}

func TestPathPrefersNewPath(t *testing.T) {
	fd := FileDiff{OldPath: "old.go", NewPath: "new.go"}
	assert.Equal(t, "new.go", fd.Path())
	fd.NewPath = ""
	assert.Equal(t, "old.go", fd.Path())
}
