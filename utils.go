package nixconfig

import (
	"path/filepath"
	"strings"
	"unicode"

	"github.com/gobwas/glob"
	"github.com/gopasspw/gopass/pkg/appdir"
)

// op is the assignment operator of a setting line.
type op int

const (
	opSet op = iota
	opAppend
)

func (o op) String() string {
	if o == opAppend {
		return "+="
	}

	return "="
}

type directive int

const (
	directiveNone directive = iota
	// directiveInclude fails if the target is missing.
	directiveInclude
	// directiveIncludeIgnore skips a missing target.
	directiveIncludeIgnore
)

var directives = map[string]directive{
	"include":        directiveInclude,
	"include-ignore": directiveIncludeIgnore,
	"!include":       directiveIncludeIgnore,
}

// globMatch matches a setting name against a glob pattern. Setting names
// have no separator, so "*" and "**" both match any run of characters.
func globMatch(pattern, s string) (bool, error) {
	g, err := glob.Compile(pattern)
	if err != nil {
		return false, err
	}

	return g.Match(s), nil
}

// splitDirective checks if line is an include directive and returns its kind
// and the (possibly empty) path. A line like "include = foo" assigns a setting
// called include and is not a directive.
func splitDirective(line string) (directive, string) {
	keyword, rest := line, ""
	if i := strings.IndexFunc(line, unicode.IsSpace); i >= 0 {
		keyword, rest = line[:i], strings.TrimSpace(line[i:])
	}

	d, found := directives[keyword]
	if !found {
		return directiveNone, ""
	}
	if strings.HasPrefix(rest, "=") || strings.HasPrefix(rest, "+=") {
		return directiveNone, ""
	}

	return d, rest
}

// splitAssignment parses "key = value" or "key += value". Whitespace around
// the operator is optional, the value is trimmed and may be empty. If the
// line is not a valid assignment the returned reason explains why.
func splitAssignment(line string) (key string, o op, value string, reason string) { //nolint:nonamedreturns
	idx := strings.IndexByte(line, '=')
	if idx < 0 {
		return "", opSet, "", "no assignment operator"
	}

	keyEnd := idx
	if idx > 0 && line[idx-1] == '+' {
		o = opAppend
		keyEnd = idx - 1
	}

	key = strings.TrimSpace(line[:keyEnd])
	value = strings.TrimSpace(line[idx+1:])

	if key == "" {
		return "", o, "", "empty key"
	}
	if strings.ContainsFunc(key, unicode.IsSpace) {
		return "", o, "", "key contains whitespace"
	}

	return key, o, value, ""
}

// resolveIncludePath converts an include target ('/absolute', '~/from/home',
// 'relative/to/dir') to a clean absolute path. An empty dir means the current
// working directory.
func resolveIncludePath(p, dir string) (string, error) {
	switch {
	case strings.HasPrefix(p, "~/"):
		p = filepath.Join(appdir.UserHome(), strings.TrimPrefix(p, "~/"))
	case !filepath.IsAbs(p) && dir != "":
		p = filepath.Join(dir, p)
	}

	return filepath.Abs(p)
}
