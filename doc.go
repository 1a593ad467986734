// Package nixconfig implements a pure Go parser of Nix configuration files
// (nix.conf). Values are returned as raw strings; interpreting them (e.g.
// splitting "flakes nix-command" into a list) is left to the caller.
//
// The reference for the format is the nix.conf section of the Nix manual:
// https://nix.dev/manual/nix/stable/command-ref/conf-file
//
// # Syntax
//
//	# comments run to the end of the line
//	experimental-features = flakes       # trailing comments too
//	experimental-features += nix-command # appends: "flakes nix-command"
//	substituters = https://cache.nixos.org \
//	  https://example.cachix.org          # joined with the next line
//	include extra.conf                    # must exist
//	include-ignore local.conf             # skipped if missing
//
// A '#' inside double quotes does not start a comment. A line ending in a
// backslash is joined with the next line without inserting a separator.
// Relative include paths are resolved against the directory of the file
// that contains the directive. "!include" is accepted as an alias for
// include-ignore.
//
// # Usage
//
// Parse a single file (and everything it includes):
//
//	cfg, err := nixconfig.ParseFile("/etc/nix/nix.conf")
//	if err != nil {
//		return err
//	}
//	v, ok := cfg.Get("experimental-features")
//
// Parse from memory, resolving includes against a base directory:
//
//	cfg, err := nixconfig.ParseString(content, "/etc/nix")
//
// Load the system config, the user configs and $NIX_CONFIG the way Nix does:
//
//	cfg, err := nixconfig.NewReader().LoadAll()
//
// # Built-in settings
//
// Every Config is seeded with a small set of settings derived from the
// environment (conf-dir, store-dir, state-dir, log-dir, store, cores and
// system, see Builtins). An assignment with = replaces a built-in value,
// += appends to it. Use a zero Reader to parse without them.
//
// # Error Handling
//
// Lines that are neither a directive nor an assignment are skipped and
// reported by Config.Diagnostics. Set Reader.Strict or check Config.Err
// to treat them as fatal.
//
// Fatal errors can be detected with errors.Is:
//
//	cfg, err := nixconfig.ParseFile(path)
//	switch {
//	case errors.Is(err, fs.ErrNotExist):
//		// the file or a mandatory include is missing
//	case errors.Is(err, nixconfig.ErrCyclicInclude):
//		// includes form a loop
//	}
//
// # Known limitations
//
// * Values are not unescaped, a backslash inside a value is kept verbatim
// * Settings are not validated against the list of settings Nix knows
package nixconfig
