package nixconfig

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

func BenchmarkParseFile(b *testing.B) {
	td := b.TempDir()
	fn := filepath.Join(td, "nix.conf")
	content := "cores = 4\nmax-jobs = auto\nexperimental-features = flakes nix-command\ninclude-ignore local.conf\n"

	if err := os.WriteFile(fn, []byte(content), 0o644); err != nil {
		b.Fatal(err)
	}

	r := NewReader()
	for b.Loop() {
		cfg, err := r.ParseFile(fn)
		if err != nil {
			b.Fatal(err)
		}
		if cfg == nil {
			b.Fatal("nil config")
		}
	}
}

func BenchmarkParseString(b *testing.B) {
	var sb strings.Builder
	for i := range 500 {
		sb.WriteString("setting-" + strconv.Itoa(i) + " = value " + strconv.Itoa(i) + " # comment\n")
		sb.WriteString("extra += " + strconv.Itoa(i) + " \\\n  continued\n")
	}
	content := sb.String()

	r := &Reader{}
	for b.Loop() {
		if _, err := r.ParseString(content, ""); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkGet(b *testing.B) {
	cfg, err := NewReader().ParseString("cores = 4\nsandbox = true\n", "")
	if err != nil {
		b.Fatal(err)
	}

	for b.Loop() {
		_, _ = cfg.Get("sandbox")
		_, _ = cfg.Get("store-dir")
	}
}
