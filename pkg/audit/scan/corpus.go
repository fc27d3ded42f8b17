package scan

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"mercator-hq/warden/pkg/policy"
	"mercator-hq/warden/pkg/worker"
)

// ToolInput is the input of a recorded tool invocation.
type ToolInput struct {
	SubagentType string `json:"subagent_type"`
	Description  string `json:"description"`
	Prompt       string `json:"prompt"`
}

// ToolUse is one recorded tool invocation.
type ToolUse struct {
	Tool  string    `json:"tool"`
	Input ToolInput `json:"input"`
}

// LogOutput is the output section of an execution record.
type LogOutput struct {
	ToolUses []ToolUse `json:"tool_uses"`
}

// LogRecord is one structured execution record.
type LogRecord struct {
	// Source identifies the record, usually its path relative to the log
	// directory in slash form.
	Source string `json:"-"`

	// Agent is the agent that produced the record.
	Agent string `json:"-"`

	// Timestamp is the raw record timestamp. It may be empty or unparseable.
	Timestamp string `json:"timestamp"`

	// Output holds the recorded tool invocations.
	Output LogOutput `json:"output"`
}

// SourceFile is one text file of a source corpus.
type SourceFile struct {
	// Path is the file path relative to the corpus root in slash form.
	Path string

	// Content is the file text.
	Content string

	// Timestamp is the file modification time. Zero when unknown.
	Timestamp time.Time
}

// DefaultSourceExtensions are scanned when no extensions are configured.
var DefaultSourceExtensions = []string{".py"}

// skippedDirs are never descended into when walking a source tree.
var skippedDirs = map[string]bool{
	"vendor":       true,
	"node_modules": true,
	"__pycache__":  true,
}

// LoadLogCorpus reads <dir>/<agent>/*.json. Files that cannot be read or
// decoded are listed in malformed and otherwise ignored. A missing dir is
// returned as a config-missing report error.
func LoadLogCorpus(dir string, workers int) ([]LogRecord, []string, *policy.ReportError) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, nil, policy.ConfigMissing("logs directory", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, policy.ConfigMissing("logs directory", dir)
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		matches, err := filepath.Glob(filepath.Join(dir, entry.Name(), "*.json"))
		if err != nil {
			continue
		}
		files = append(files, matches...)
	}

	pool := worker.NewPool[LogRecord](workers)
	results := pool.Process(files, func(file string) (LogRecord, error) {
		var rec LogRecord
		data, err := os.ReadFile(file)
		if err != nil {
			return rec, err
		}
		if err := json.Unmarshal(data, &rec); err != nil {
			return rec, fmt.Errorf("failed to decode %s: %w", file, err)
		}
		rel, _ := filepath.Rel(dir, file)
		rec.Source = filepath.ToSlash(rel)
		rec.Agent = filepath.Base(filepath.Dir(file))
		return rec, nil
	})

	records := make([]LogRecord, 0, len(results))
	var malformed []string
	for _, r := range results {
		if r.Err != nil {
			rel, _ := filepath.Rel(dir, r.Path)
			malformed = append(malformed, filepath.ToSlash(rel))
			continue
		}
		records = append(records, r.Value)
	}
	return records, malformed, nil
}

// LoadSourceCorpus walks root recursively and reads every file with one of
// the given extensions. Hidden directories and dependency directories are
// skipped. Unreadable files are listed in malformed. When root is a file,
// the corpus is that single file.
func LoadSourceCorpus(root string, exts []string, workers int) ([]SourceFile, []string, *policy.ReportError) {
	if len(exts) == 0 {
		exts = DefaultSourceExtensions
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, nil, policy.ConfigMissing("source directory", root)
	}

	var files []string
	base := root
	if !info.IsDir() {
		files = []string{root}
		base = filepath.Dir(root)
	} else {
		walkErr := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if d.IsDir() {
				if p != root && (strings.HasPrefix(d.Name(), ".") || skippedDirs[d.Name()]) {
					return filepath.SkipDir
				}
				return nil
			}
			if hasExtension(p, exts) {
				files = append(files, p)
			}
			return nil
		})
		if walkErr != nil {
			return nil, nil, policy.ConfigMissing("source directory", root)
		}
	}
	sort.Strings(files)

	pool := worker.NewPool[SourceFile](workers)
	results := pool.Process(files, func(file string) (SourceFile, error) {
		data, err := os.ReadFile(file)
		if err != nil {
			return SourceFile{}, err
		}
		sf := SourceFile{Content: string(data)}
		if st, err := os.Stat(file); err == nil {
			sf.Timestamp = st.ModTime().UTC()
		}
		rel, _ := filepath.Rel(base, file)
		sf.Path = filepath.ToSlash(rel)
		return sf, nil
	})

	corpus := make([]SourceFile, 0, len(results))
	var malformed []string
	for _, r := range results {
		if r.Err != nil {
			rel, _ := filepath.Rel(base, r.Path)
			malformed = append(malformed, filepath.ToSlash(rel))
			continue
		}
		corpus = append(corpus, r.Value)
	}
	return corpus, malformed, nil
}

func hasExtension(p string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(p))
	for _, e := range exts {
		if ext == strings.ToLower(e) {
			return true
		}
	}
	return false
}
