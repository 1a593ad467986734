package nixconfig

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"dario.cat/mergo"
	"github.com/gopasspw/gopass/pkg/debug"
)

// DefaultMaxIncludeDepth bounds nested includes, independent of cycle detection.
const DefaultMaxIncludeDepth = 32

// Reader parses nix.conf content. The zero value is usable: it seeds no
// built-in settings and uses DefaultMaxIncludeDepth. Use NewReader for a
// Reader that seeds the built-ins from the environment.
//
// A Reader holds no parse state, so one Reader may be used for concurrent
// parses.
type Reader struct {
	// Builtins are seeded into every Config before parsing. Nil disables them.
	Builtins *Builtins
	// MaxIncludeDepth limits include nesting. Values below one mean
	// DefaultMaxIncludeDepth.
	MaxIncludeDepth int
	// Strict turns the first malformed line into a fatal error instead of
	// a diagnostic.
	Strict bool
	// Environ replaces the process environment for LoadAll. Nil means
	// the process environment. NIX_CONF_DIR set here takes precedence over
	// Builtins.ConfDir; otherwise the built-in conf-dir is used.
	Environ map[string]string
	// ConfFileName is the file LoadAll looks for in the system and user
	// config directories. Empty means ConfFile.
	ConfFileName string
}

// NewReader returns a Reader with the built-in settings loaded from the
// process environment. Invalid environment values fall back to the defaults.
func NewReader() *Reader {
	b, err := LoadBuiltins(nil)
	if err != nil {
		debug.Log("using default built-in settings: %s", err)
	}

	return &Reader{
		Builtins: &b,
	}
}

// ParseString parses content with a Reader from NewReader. baseDir is used
// to resolve relative include paths. If it is empty the working directory
// is used.
func ParseString(content, baseDir string) (*Config, error) {
	return NewReader().ParseString(content, baseDir)
}

// ParseFile parses the file at path with a Reader from NewReader.
func ParseFile(path string) (*Config, error) {
	return NewReader().ParseFile(path)
}

// ParseString parses content. Relative include paths are resolved against
// baseDir, or the working directory if baseDir is empty.
//
// Fatal errors (unreadable mandatory includes, include cycles, too deep
// nesting, malformed lines in strict mode) return a nil Config. Malformed
// lines are otherwise reported by Config.Diagnostics.
func (r *Reader) ParseString(content, baseDir string) (*Config, error) {
	p := r.newParser("")
	if err := p.parse(content, parseContext{dir: baseDir}); err != nil {
		return nil, err
	}

	return p.cfg, nil
}

// ParseFile parses the file at path and everything it includes.
func (r *Reader) ParseFile(path string) (*Config, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}

	p := r.newParser(abs)
	if err := p.parseFile(abs, parseContext{}); err != nil {
		return nil, err
	}

	return p.cfg, nil
}

func (r *Reader) withDefaults() Reader {
	var o Reader
	if r != nil {
		o = *r
	}
	if o.MaxIncludeDepth < 0 {
		o.MaxIncludeDepth = 0
	}

	defaults := Reader{
		MaxIncludeDepth: DefaultMaxIncludeDepth,
		ConfFileName:    ConfFile,
	}
	if err := mergo.Merge(&o, defaults); err != nil {
		debug.Log("failed to apply reader defaults: %s", err)
		if o.MaxIncludeDepth == 0 {
			o.MaxIncludeDepth = DefaultMaxIncludeDepth
		}
		if o.ConfFileName == "" {
			o.ConfFileName = ConfFile
		}
	}

	return o
}

// parseContext is threaded through nested includes.
type parseContext struct {
	// dir resolves relative include paths.
	dir string
	// file is the file being parsed, empty for string input.
	file string
	// chain holds the files currently open, outermost first.
	chain []string
}

func (pc parseContext) enter(path string) parseContext {
	return parseContext{
		dir:   filepath.Dir(path),
		file:  path,
		chain: append(slices.Clone(pc.chain), path),
	}
}

// parser owns the Config of a single parse call.
type parser struct {
	opts Reader
	cfg  *Config
}

func (r *Reader) newParser(path string) *parser {
	opts := r.withDefaults()

	return &parser{
		opts: opts,
		cfg:  newConfig(path, opts.Builtins),
	}
}

func (p *parser) parseFile(path string, pc parseContext) error {
	if i := slices.Index(pc.chain, path); i >= 0 {
		chain := append(slices.Clone(pc.chain[i:]), path)

		return &CycleError{Chain: chain}
	}

	buf, err := os.ReadFile(path)
	if err != nil {
		return &ReadError{Path: path, IncludedFrom: pc.file, Err: err}
	}

	// a missing file adds no nesting, so include-ignore can still skip it
	if len(pc.chain) >= p.opts.MaxIncludeDepth {
		return fmt.Errorf("%w: %q at depth %d (max %d)", ErrIncludeDepth, path, len(pc.chain), p.opts.MaxIncludeDepth)
	}

	debug.V(2).Log("parsing %q (depth %d)", path, len(pc.chain))

	return p.parse(string(buf), pc.enter(path))
}

func (p *parser) parse(content string, pc parseContext) error {
	for line := range logicalLines(content) {
		if err := p.dispatch(line, pc); err != nil {
			return err
		}
	}

	return nil
}

func (p *parser) dispatch(line logicalLine, pc parseContext) error {
	if d, target := splitDirective(line.text); d != directiveNone {
		if target == "" {
			return p.malformed(line, pc, "missing include path")
		}

		return p.include(d, target, pc)
	}

	key, o, value, reason := splitAssignment(line.text)
	if reason != "" {
		return p.malformed(line, pc, reason)
	}

	p.cfg.apply(o, key, value)

	return nil
}

func (p *parser) include(d directive, target string, pc parseContext) error {
	path, err := resolveIncludePath(target, pc.dir)
	if err != nil {
		return &ReadError{Path: target, IncludedFrom: pc.file, Err: err}
	}

	err = p.parseFile(path, pc)
	if err == nil {
		return nil
	}

	var re *ReadError
	if d == directiveIncludeIgnore && errors.As(err, &re) && re.Path == path && errors.Is(re.Err, fs.ErrNotExist) {
		debug.V(1).Log("ignoring missing include %q", path)

		return nil
	}

	return err
}

func (p *parser) malformed(line logicalLine, pc parseContext, reason string) error {
	d := Diagnostic{
		Path:   pc.file,
		Line:   line.number,
		Text:   line.text,
		Reason: reason,
	}

	if p.opts.Strict {
		return d
	}

	p.cfg.addDiagnostic(d)

	return nil
}
