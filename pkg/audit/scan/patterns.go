package scan

import (
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultDelegationTool is the tool name whose invocations delegate work
// to a sub-agent.
const DefaultDelegationTool = "Task"

// DefaultContextLimit is the maximum number of characters kept from the
// offending text of a violation.
const DefaultContextLimit = 200

// DefaultBannedSubagents are the delegation sub-agent types that must not
// be used.
var DefaultBannedSubagents = []string{
	"general-purpose",
	"Explore",
	"Plan",
	"code-architect-reviewer",
	"statusline-setup",
}

// DefaultBannedLibraries are the web client libraries that only the
// exempted tool modules may import.
var DefaultBannedLibraries = []string{
	"requests",
	"httpx",
	"urllib",
	"urllib3",
	"aiohttp",
	"httplib",
	"http.client",
	"http",
	"bs4",
	"BeautifulSoup",
	"beautifulsoup4",
	"scrapy",
	"selenium",
	"playwright",
	"urllib.request",
	"urllib.parse",
	"urllib.error",
	"http.cookiejar",
}

// DefaultExemptions are the modules that wrap web access for the rest of
// the system.
var DefaultExemptions = []string{
	"tools/web_search.py",
	"tools/web_fetch.py",
	"tools/parallel_task.py",
	"tools/parallel_findall.py",
	"tools/parallel_chat.py",
	"tools/deep_research.py",
	"tools/synthesize_research.py",
}

// BannedSet is a fixed set of forbidden identifiers. Membership is exact and
// case-sensitive.
type BannedSet map[string]struct{}

// NewBannedSet builds a set from the given identifiers. Empty strings are
// ignored.
func NewBannedSet(items ...string) BannedSet {
	set := make(BannedSet, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		set[item] = struct{}{}
	}
	return set
}

// Contains reports whether token is banned.
func (b BannedSet) Contains(token string) bool {
	_, ok := b[token]
	return ok
}

// Sorted returns the identifiers in sorted order.
func (b BannedSet) Sorted() []string {
	out := make([]string, 0, len(b))
	for item := range b {
		out = append(out, item)
	}
	sort.Strings(out)
	return out
}

// ExemptionSet holds path or identifier patterns excluded from scanning.
//
// An identity matches a pattern when it is equal to it, when it ends with
// "/"+pattern, when its base name equals a pattern without a slash, or when
// the pattern is a doublestar glob that matches it. Identities and patterns
// are compared in slash form.
type ExemptionSet struct {
	patterns []string
}

// NewExemptionSet validates and stores the patterns.
func NewExemptionSet(patterns ...string) (*ExemptionSet, error) {
	set := &ExemptionSet{}
	for _, p := range patterns {
		p = filepath.ToSlash(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid exemption pattern %q", p)
		}
		set.patterns = append(set.patterns, p)
	}
	return set, nil
}

// Patterns returns the stored patterns.
func (s *ExemptionSet) Patterns() []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.patterns...)
}

// Match reports whether any of the identities is exempt.
func (s *ExemptionSet) Match(identities ...string) bool {
	if s == nil {
		return false
	}
	for _, id := range identities {
		if id == "" {
			continue
		}
		id = filepath.ToSlash(id)
		for _, p := range s.patterns {
			if matchExemption(p, id) {
				return true
			}
		}
	}
	return false
}

func matchExemption(pattern, id string) bool {
	if id == pattern || strings.HasSuffix(id, "/"+pattern) {
		return true
	}
	if !strings.Contains(pattern, "/") && path.Base(id) == pattern {
		return true
	}
	ok, err := doublestar.Match(pattern, id)
	return err == nil && ok
}
