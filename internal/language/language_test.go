package language

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"main.py", "python"},
		{"src/app/main.PY", "python"},
		{"web/index.tsx", "typescript"},
		{"web/app.jsx", "javascript"},
		{"pkg/server.go", "go"},
		{"lib/util.rs", "rust"},
		{"include/header.hpp", "cpp"},
		{"stats.R", "r"},
		{"Dockerfile", "dockerfile"},
		{"build/Makefile", "makefile"},
		{"Gemfile", "ruby"},
		{"config.yml", "yaml"},
		{"README.md", "markdown"},
		{"noextension", "unknown"},
		{"weird.xyz", "unknown"},
		{"", "unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.path), "path %q", tt.path)
	}
}

func TestClassifyPrimary(t *testing.T) {
	assert.Equal(t, "python", ClassifyPrimary([]string{"a.py", "b.py", "c.js"}))
	assert.Equal(t, Unknown, ClassifyPrimary(nil))
	assert.Equal(t, Unknown, ClassifyPrimary([]string{"a.xyz", "b.qqq"}))
	// Unknown paths never outvote known ones.
	assert.Equal(t, "go", ClassifyPrimary([]string{"a.xyz", "b.xyz", "m.go"}))
}

func TestClassifyPrimaryTieBreak(t *testing.T) {
	// First language to reach the maximum count wins the tie.
	assert.Equal(t, "python", ClassifyPrimary([]string{"a.py", "b.js", "c.py", "d.js"}))
	assert.Equal(t, "javascript", ClassifyPrimary([]string{"b.js", "a.py", "d.js", "c.py"}))
}
