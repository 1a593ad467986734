package nixconfig

import (
	"fmt"
	"runtime"
	"strconv"

	"github.com/caarlos0/env/v11"
)

// Builtins are the settings whose defaults come from the runtime environment
// rather than from a config file. They are seeded into every Config before
// any content is parsed.
//
// Settings and their sources:
//
//	conf-dir   NIX_CONF_DIR     (default /etc/nix)
//	store-dir  NIX_STORE_DIR    (default /nix/store)
//	state-dir  NIX_STATE_DIR    (default /nix/var/nix)
//	log-dir    NIX_LOG_DIR      (default /nix/var/log/nix)
//	store      NIX_REMOTE       (default auto)
//	cores      NIX_BUILD_CORES  (default number of CPUs)
//	system     GOARCH and GOOS  (e.g. x86_64-linux)
type Builtins struct {
	ConfDir  string `env:"NIX_CONF_DIR"    envDefault:"/etc/nix"`
	StoreDir string `env:"NIX_STORE_DIR"   envDefault:"/nix/store"`
	StateDir string `env:"NIX_STATE_DIR"   envDefault:"/nix/var/nix"`
	LogDir   string `env:"NIX_LOG_DIR"     envDefault:"/nix/var/log/nix"`
	Store    string `env:"NIX_REMOTE"      envDefault:"auto"`
	Cores    int    `env:"NIX_BUILD_CORES"`
	System   string
}

type builtinEntry struct {
	key   string
	value string
}

// DefaultBuiltins returns the built-in settings without consulting the
// environment.
func DefaultBuiltins() Builtins {
	return Builtins{
		ConfDir:  "/etc/nix",
		StoreDir: "/nix/store",
		StateDir: "/nix/var/nix",
		LogDir:   "/nix/var/log/nix",
		Store:    "auto",
		Cores:    runtime.NumCPU(),
		System:   nixSystem(runtime.GOARCH, runtime.GOOS),
	}
}

// LoadBuiltins reads the built-in settings from environ. A nil environ
// means the process environment.
func LoadBuiltins(environ map[string]string) (Builtins, error) {
	var b Builtins
	if err := env.ParseWithOptions(&b, env.Options{Environment: environ}); err != nil {
		return DefaultBuiltins(), fmt.Errorf("error getting built-in settings from env: %w", err)
	}

	if b.Cores <= 0 {
		b.Cores = runtime.NumCPU()
	}
	b.System = nixSystem(runtime.GOARCH, runtime.GOOS)

	return b, nil
}

// entries lists the settings in their fixed seeding order.
func (b Builtins) entries() []builtinEntry {
	return []builtinEntry{
		{key: "conf-dir", value: b.ConfDir},
		{key: "store-dir", value: b.StoreDir},
		{key: "state-dir", value: b.StateDir},
		{key: "log-dir", value: b.LogDir},
		{key: "store", value: b.Store},
		{key: "cores", value: strconv.Itoa(b.Cores)},
		{key: "system", value: b.System},
	}
}

// nixSystem maps Go platform names to Nix system doubles.
func nixSystem(goarch, goos string) string {
	arch := map[string]string{
		"amd64":   "x86_64",
		"386":     "i686",
		"arm64":   "aarch64",
		"arm":     "armv7l",
		"riscv64": "riscv64",
		"ppc64le": "powerpc64le",
	}[goarch]
	if arch == "" {
		arch = goarch
	}

	return arch + "-" + goos
}
