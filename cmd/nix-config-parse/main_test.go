package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConf(t *testing.T, content string) string {
	t.Helper()

	fn := filepath.Join(t.TempDir(), "nix.conf")
	require.NoError(t, os.WriteFile(fn, []byte(content), 0o644))

	return fn
}

func run(t *testing.T, args ...string) (int, string, string) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	code := realMain(context.Background(), append([]string{"nix-config-parse"}, args...), &stdout, &stderr)

	return code, stdout.String(), stderr.String()
}

func TestPrintSettings(t *testing.T) {
	t.Parallel()

	fn := writeConf(t, "experimental-features = flakes\nexperimental-features += nix-command\nbad line\ncores = 2\n")

	code, stdout, stderr := run(t, fn)
	assert.Equal(t, 0, code)
	assert.Equal(t, "experimental-features = flakes nix-command\ncores = 2\n", stdout)
	assert.Contains(t, stderr, "warning: ")
	assert.Contains(t, stderr, `"bad line"`)
}

func TestGetSetting(t *testing.T) {
	t.Parallel()

	fn := writeConf(t, "cores = 2\n")

	code, stdout, _ := run(t, "--get", "cores", fn)
	assert.Equal(t, 0, code)
	assert.Equal(t, "2\n", stdout)

	code, stdout, _ = run(t, "--get", "store-dir", fn)
	assert.Equal(t, 0, code)
	assert.NotEmpty(t, stdout)

	code, _, stderr := run(t, "--no-builtins", "--get", "store-dir", fn)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, `setting "store-dir" not found`)
}

func TestAllSettings(t *testing.T) {
	t.Parallel()

	fn := writeConf(t, "sandbox = true\n")

	code, stdout, _ := run(t, "--all", fn)
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "sandbox = true\n")
	assert.Contains(t, stdout, "conf-dir = ")

	code, stdout, _ = run(t, "--all", "--no-builtins", fn)
	assert.Equal(t, 0, code)
	assert.Equal(t, "sandbox = true\n", stdout)
}

func TestStrict(t *testing.T) {
	t.Parallel()

	fn := writeConf(t, "bad line\n")

	code, _, stderr := run(t, "--strict", fn)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "malformed line")
}

func TestMissingFile(t *testing.T) {
	t.Parallel()

	code, stdout, stderr := run(t, filepath.Join(t.TempDir(), "missing.conf"))
	assert.Equal(t, 1, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "failed to read config")
}
