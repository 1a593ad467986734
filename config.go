package nixconfig

import (
	"errors"
	"fmt"
	"iter"
	"maps"
	"slices"
	"sort"
	"strings"

	"github.com/gopasspw/gopass/pkg/debug"
	"github.com/gopasspw/gopass/pkg/set"
)

// Config holds the settings parsed from one nix.conf, including everything
// pulled in by include directives.
//
// A Config has two layers:
//   - explicit settings assigned by config content, in the order their keys
//     were first assigned
//   - built-in settings seeded from the environment before parsing
//
// Lookups consult the explicit layer first and fall back to the built-ins.
// An assignment with = replaces a built-in value, += appends to it.
//
// A Config returned by a parse is never modified again, so concurrent reads
// are safe.
//
// Typical Usage:
//
//	cfg, err := nixconfig.ParseFile("/etc/nix/nix.conf")
//	if err != nil { ... }
//	features, _ := cfg.Get("experimental-features")
//	for _, d := range cfg.Diagnostics() { ... }
type Config struct {
	path string

	keys []string
	vars map[string]string

	presetKeys []string
	preset     map[string]string

	diags []Diagnostic
}

// Diagnostic describes a line that was skipped because it is neither a
// directive nor a valid assignment.
type Diagnostic struct {
	// Path of the file the line was read from. Empty for string input.
	Path string
	// Line is the 1-based physical line the logical line starts on.
	Line int
	// Text is the logical line after comment stripping and joining.
	Text   string
	Reason string
}

func (d Diagnostic) Error() string {
	origin := d.Path
	if origin == "" {
		origin = "<string>"
	}

	return fmt.Sprintf("%s:%d: %s: %s: %q", origin, d.Line, ErrMalformedLine, d.Reason, d.Text)
}

func (d Diagnostic) Unwrap() error {
	return ErrMalformedLine
}

func newConfig(path string, b *Builtins) *Config {
	c := &Config{
		path: path,
		vars: make(map[string]string, 16),
	}

	if b == nil {
		return c
	}

	entries := b.entries()
	c.preset = make(map[string]string, len(entries))
	for _, e := range entries {
		c.presetKeys = append(c.presetKeys, e.key)
		c.preset[e.key] = e.value
	}

	return c
}

// apply assigns or appends a value. An append on a key without any value
// behaves like a plain assignment.
func (c *Config) apply(o op, key, value string) {
	old, found := c.Get(key)
	if o == opAppend && found {
		value = old + " " + value
	}

	if _, present := c.vars[key]; !present {
		c.keys = append(c.keys, key)
	}
	c.vars[key] = value

	debug.V(3).Log("%s %q -> %q", o, key, value)
}

func (c *Config) addDiagnostic(d Diagnostic) {
	debug.V(1).Log("skipping line: %s", d)

	c.diags = append(c.diags, d)
}

// Path returns the file the config was parsed from. It is empty for configs
// parsed from a string.
func (c *Config) Path() string {
	return c.path
}

// Get returns the value of a setting. Explicit settings take precedence over
// built-in ones.
//
// Returns (value, true) if the setting is known, ("", false) otherwise.
// A setting assigned an empty value is known.
func (c *Config) Get(key string) (string, bool) {
	if c == nil {
		return "", false
	}

	if v, found := c.vars[key]; found {
		return v, true
	}

	v, found := c.preset[key]

	return v, found
}

// IsSet returns true if the key was assigned by config content.
// Built-in settings do not count.
func (c *Config) IsSet(key string) bool {
	if c == nil {
		return false
	}
	_, present := c.vars[key]

	return present
}

// IsBuiltin returns true if the value of key comes from the built-in settings
// and was not assigned by config content.
func (c *Config) IsBuiltin(key string) bool {
	if c == nil || c.IsSet(key) {
		return false
	}
	_, present := c.preset[key]

	return present
}

// Keys returns the explicitly assigned keys in the order they were first assigned.
func (c *Config) Keys() []string {
	if c == nil {
		return nil
	}

	return slices.Clone(c.keys)
}

// AllKeys returns the built-in keys followed by the explicitly assigned keys
// that are not built-ins.
func (c *Config) AllKeys() []string {
	if c == nil {
		return nil
	}

	keys := make([]string, 0, len(c.presetKeys)+len(c.keys))
	keys = append(keys, c.presetKeys...)
	for _, k := range c.keys {
		if _, builtin := c.preset[k]; builtin {
			continue
		}
		keys = append(keys, k)
	}

	return keys
}

// Len returns the number of explicitly assigned settings.
func (c *Config) Len() int {
	if c == nil {
		return 0
	}

	return len(c.keys)
}

// IsEmpty returns true if no setting was assigned by config content.
func (c *Config) IsEmpty() bool {
	return c.Len() == 0
}

// All iterates over every effective setting in AllKeys order.
func (c *Config) All() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for _, k := range c.AllKeys() {
			v, _ := c.Get(k)
			if !yield(k, v) {
				return
			}
		}
	}
}

// Settings returns a copy of the explicitly assigned settings.
func (c *Config) Settings() map[string]string {
	if c == nil {
		return map[string]string{}
	}

	return maps.Clone(c.vars)
}

// Diagnostics returns the lines that were skipped while parsing, in the
// order they were encountered (includes are visited depth first).
func (c *Config) Diagnostics() []Diagnostic {
	if c == nil {
		return nil
	}

	return slices.Clone(c.diags)
}

// Err joins all diagnostics into one error. It returns nil if every line
// was understood. Use it to treat skipped lines as fatal.
func (c *Config) Err() error {
	if c == nil || len(c.diags) == 0 {
		return nil
	}

	errs := make([]error, 0, len(c.diags))
	for _, d := range c.diags {
		errs = append(errs, d)
	}

	return errors.Join(errs...)
}

// List returns all keys, built-in or explicit, with the given prefix in
// sorted order. The prefix can be empty.
func (c *Config) List(prefix string) []string {
	return set.SortedFiltered(c.AllKeys(), func(k string) bool {
		return strings.HasPrefix(k, prefix)
	})
}

// Glob returns all keys matching the glob pattern, e.g. "extra-*", in
// AllKeys order.
func (c *Config) Glob(pattern string) ([]string, error) {
	out := make([]string, 0, 8)
	for _, k := range c.AllKeys() {
		match, err := globMatch(pattern, k)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
		}
		if match {
			out = append(out, k)
		}
	}

	return out, nil
}

// KVList returns a sorted list of key/value pairs for all keys matching
// the given prefix. Settings with an empty value are left out.
func (c *Config) KVList(prefix, sep string) []string {
	if sep == "" {
		sep = "="
	}
	keys := c.List(prefix)
	kv := make([]string, 0, len(keys))
	for _, k := range keys {
		v, _ := c.Get(k)
		if v == "" {
			continue
		}
		kv = append(kv, k+sep+v)
	}

	sort.Strings(kv)

	return kv
}

// String renders the explicit settings in nix.conf syntax, in assignment order.
func (c *Config) String() string {
	if c == nil {
		return ""
	}

	var sb strings.Builder
	for _, k := range c.keys {
		v := c.vars[k]
		if v == "" {
			fmt.Fprintf(&sb, "%s =\n", k)

			continue
		}
		fmt.Fprintf(&sb, "%s = %s\n", k, v)
	}

	return sb.String()
}
