package nixconfig

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/gopasspw/gopass/pkg/appdir"
	"github.com/gopasspw/gopass/pkg/debug"
)

// ConfFile is the file name Nix looks for in every config directory. It is
// the default for Reader.ConfFileName.
const ConfFile = "nix.conf"

// locations are the environment variables that select the config sources
// for LoadAll.
type locations struct {
	ConfDir       string   `env:"NIX_CONF_DIR"        envDefault:"/etc/nix"`
	UserConfFiles []string `env:"NIX_USER_CONF_FILES" envSeparator:":"`
	Config        string   `env:"NIX_CONFIG"`
}

// LoadAll loads the configuration from all standard locations into a single
// Config. The sources are processed in order, so later ones take precedence:
//
//   - system: <conf-dir>/nix.conf, where conf-dir is $NIX_CONF_DIR from
//     Reader.Environ, else the built-in setting, else $NIX_CONF_DIR from the
//     process environment
//   - user: every file in $NIX_USER_CONF_FILES (colon separated) or, if that
//     is unset, nix/nix.conf in the user config directory
//     ($XDG_CONFIG_HOME or ~/.config)
//   - env: the content of $NIX_CONFIG
//
// Missing system and user files are skipped. Includes, built-ins and
// diagnostics work exactly like ParseFile.
func (r *Reader) LoadAll() (*Config, error) {
	var loc locations
	if err := env.ParseWithOptions(&loc, env.Options{Environment: r.Environ}); err != nil {
		return nil, fmt.Errorf("error getting config locations from env: %w", err)
	}

	p := r.newParser("")
	if _, set := r.Environ["NIX_CONF_DIR"]; !set {
		if b := p.opts.Builtins; b != nil && b.ConfDir != "" {
			loc.ConfDir = b.ConfDir
		}
	}

	name := p.opts.ConfFileName
	files := []string{filepath.Join(loc.ConfDir, name)}
	if len(loc.UserConfFiles) > 0 {
		files = append(files, loc.UserConfFiles...)
	} else {
		files = append(files, filepath.Join(appdir.New("nix").UserConfig(), name))
	}

	for _, fn := range files {
		if fn == "" {
			continue
		}
		if err := p.loadOptional(fn); err != nil {
			return nil, err
		}
	}

	if loc.Config != "" {
		debug.V(1).Log("loading config from NIX_CONFIG")
		if err := p.parse(loc.Config, parseContext{}); err != nil {
			return nil, err
		}
	}

	return p.cfg, nil
}

func (p *parser) loadOptional(fn string) error {
	abs, err := filepath.Abs(fn)
	if err != nil {
		return &ReadError{Path: fn, Err: err}
	}

	err = p.parseFile(abs, parseContext{})
	var re *ReadError
	if errors.As(err, &re) && re.Path == abs && errors.Is(re.Err, fs.ErrNotExist) {
		debug.V(1).Log("no config at %s", abs)

		return nil
	}
	if err != nil {
		return err
	}

	debug.V(1).Log("loaded config from %s", abs)

	return nil
}
