package scan

import (
	"regexp"
	"strings"
)

var (
	importRe     = regexp.MustCompile(`^\s*import\s+(.+)$`)
	fromImportRe = regexp.MustCompile(`^\s*from\s+(\S+)\s+import\b`)
)

// importStatement is one import found in a source file.
type importStatement struct {
	line    int
	text    string
	modules []string
}

// extractImports returns the import statements of a source text in line
// order. Both "import a, b.c as d" and "from a.b import c" are recognised,
// and a line may hold several statements separated by ";". Relative imports
// are ignored.
func extractImports(content string) []importStatement {
	var out []importStatement

	for i, raw := range strings.Split(content, "\n") {
		line := stripComment(strings.TrimRight(raw, "\r"))
		for _, stmt := range strings.Split(line, ";") {
			if strings.TrimSpace(stmt) == "" {
				continue
			}
			if mods := importedModules(stmt); len(mods) > 0 {
				out = append(out, importStatement{
					line:    i + 1,
					text:    strings.TrimSpace(stmt),
					modules: mods,
				})
			}
		}
	}
	return out
}

// importedModules returns the absolute modules named by one statement.
func importedModules(stmt string) []string {
	if m := fromImportRe.FindStringSubmatch(stmt); m != nil {
		if strings.HasPrefix(m[1], ".") {
			return nil
		}
		return []string{m[1]}
	}

	m := importRe.FindStringSubmatch(stmt)
	if m == nil {
		return nil
	}
	var mods []string
	for _, part := range strings.Split(m[1], ",") {
		fields := strings.Fields(strings.Trim(part, " \t()\\"))
		if len(fields) == 0 {
			continue
		}
		mods = append(mods, fields[0])
	}
	return mods
}

// matchModule returns the banned token for a dotted module name: the full
// name when banned, otherwise its top-level package when banned.
func matchModule(banned BannedSet, module string) (string, bool) {
	if banned.Contains(module) {
		return module, true
	}
	if i := strings.IndexByte(module, '.'); i > 0 {
		top := module[:i]
		if banned.Contains(top) {
			return top, true
		}
	}
	return "", false
}

func stripComment(line string) string {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		return line[:i]
	}
	return line
}
