package language

import (
	"path/filepath"
	"strings"
)

// Unknown is returned for paths that map to no known language.
const Unknown = "unknown"

// extensionMap maps lowercase file extensions to language tags.
var extensionMap = map[string]string{
	// Python
	".py":  "python",
	".pyw": "python",
	".pyi": "python",
	// JavaScript / TypeScript
	".js":  "javascript",
	".jsx": "javascript",
	".mjs": "javascript",
	".cjs": "javascript",
	".ts":  "typescript",
	".tsx": "typescript",
	// Web
	".html": "html",
	".htm":  "html",
	".css":  "css",
	".scss": "scss",
	".sass": "sass",
	".less": "less",
	// JVM
	".java":   "java",
	".kt":     "kotlin",
	".kts":    "kotlin",
	".scala":  "scala",
	".groovy": "groovy",
	// C / C++
	".c":   "c",
	".h":   "c",
	".cpp": "cpp",
	".cc":  "cpp",
	".cxx": "cpp",
	".hpp": "cpp",
	".hh":  "cpp",
	".hxx": "cpp",
	// C#
	".cs": "csharp",
	// Go
	".go": "go",
	// Rust
	".rs": "rust",
	// Ruby
	".rb":   "ruby",
	".rake": "ruby",
	// PHP
	".php":   "php",
	".phtml": "php",
	// Swift
	".swift": "swift",
	// Objective-C
	".m":  "objective-c",
	".mm": "objective-c",
	// Shell
	".sh":   "shell",
	".bash": "bash",
	".zsh":  "zsh",
	// R
	".r": "r",
	// Dart
	".dart": "dart",
	// Elixir
	".ex":  "elixir",
	".exs": "elixir",
	// Haskell
	".hs": "haskell",
	// Lua
	".lua": "lua",
	// Perl
	".pl": "perl",
	".pm": "perl",
	// SQL
	".sql": "sql",
	// Data / config
	".yaml":   "yaml",
	".yml":    "yaml",
	".json":   "json",
	".toml":   "toml",
	".xml":    "xml",
	".ini":    "ini",
	".conf":   "conf",
	".config": "config",
	// Docs
	".md":       "markdown",
	".markdown": "markdown",
	// Other
	".vim":        "vim",
	".dockerfile": "dockerfile",
}

// filenameMap maps special lowercase filenames that have no useful extension.
var filenameMap = map[string]string{
	"dockerfile":  "dockerfile",
	"makefile":    "makefile",
	"rakefile":    "ruby",
	"gemfile":     "ruby",
	"vagrantfile": "ruby",
}

// Classify maps a file path to a language tag. It checks special filenames
// first, then the extension, and returns Unknown for anything unmapped.
func Classify(path string) string {
	if path == "" {
		return Unknown
	}
	name := strings.ToLower(filepath.Base(path))
	if lang, ok := filenameMap[name]; ok {
		return lang
	}
	ext := strings.ToLower(filepath.Ext(path))
	if lang, ok := extensionMap[ext]; ok {
		return lang
	}
	return Unknown
}

// ClassifyPrimary returns the most common known language across the given
// paths. Ties go to whichever language reached the maximum count first during
// the scan. Returns Unknown when no path maps to a known language.
func ClassifyPrimary(paths []string) string {
	counts := make(map[string]int)
	best := Unknown
	bestCount := 0
	for _, p := range paths {
		lang := Classify(p)
		if lang == Unknown {
			continue
		}
		counts[lang]++
		if counts[lang] > bestCount {
			best = lang
			bestCount = counts[lang]
		}
	}
	return best
}
