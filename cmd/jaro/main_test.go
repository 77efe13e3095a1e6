package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, stdin string, args ...string) (stdout, stderr string, code int) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = run(context.Background(), args, strings.NewReader(stdin), &out, &errOut)
	return out.String(), errOut.String(), code
}

func TestCompare(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"winkler", []string{"compare", "martha", "marhta"}, "0.961111\n"},
		{"jaro", []string{"compare", "--metric", "jaro", "dwayne", "duane"}, "0.822222\n"},
		{"unlimited prefix", []string{"compare", "cheeseburger", "cheese fries"}, "0.911111\n"},
		{"classic", []string{"compare", "--classic", "cheeseburger", "cheese fries"}, "0.866667\n"},
		{"code points", []string{"compare", "héllo", "hello"}, "0.880000\n"},
		{"bytes", []string{"compare", "--bytes", "héllo", "hello"}, "0.840000\n"},
		{"empty", []string{"compare", "", ""}, "1.000000\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, errOut, code := execute(t, "", tt.args...)
			require.Equal(t, 0, code, errOut)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestCompareErrors(t *testing.T) {
	_, errOut, code := execute(t, "", "compare", "only-one")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "Error:")

	_, errOut, code = execute(t, "", "compare", "--metric", "soundex", "a", "b")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "unknown metric")
}

func TestMatchStdin(t *testing.T) {
	out, errOut, code := execute(t, "martha\nmarhta\nmarta\nnietzsche\n# comment\n", "match", "martha")
	require.Equal(t, 0, code, errOut)
	assert.Equal(t, "1.000000\tmartha\n0.966667\tmarta\n0.961111\tmarhta\n", out)
}

func TestMatchFlags(t *testing.T) {
	dir := t.TempDir()
	candidates := filepath.Join(dir, "names.yaml")
	require.NoError(t, os.WriteFile(candidates, []byte("- Martha\n- marhta\n- dixon\n"), 0o644))

	out, errOut, code := execute(t, "", "match", "martha", "--candidates", candidates, "--limit", "1", "--case-sensitive", "--threshold", "0")
	require.Equal(t, 0, code, errOut)
	assert.Equal(t, "0.961111\tmarhta\n", out)

	out, errOut, code = execute(t, "", "match", "martha", "-f", candidates, "--parallel", "--threshold", "0.9")
	require.Equal(t, 0, code, errOut)
	assert.Equal(t, "1.000000\tMartha\n0.961111\tmarhta\n", out)
}

func TestMatchScript(t *testing.T) {
	dir := t.TempDir()
	lua := filepath.Join(dir, "strip.lua")
	require.NoError(t, os.WriteFile(lua, []byte(`function normalize(s) return (string.gsub(s, "^[Tt]he%s+", "")) end`), 0o644))

	out, errOut, code := execute(t, "The Beatles\nThe Who\n", "match", "beatles", "--script", lua, "--threshold", "0.9")
	require.Equal(t, 0, code, errOut)
	assert.Equal(t, "1.000000\tThe Beatles\n", out)
}

func TestMatchErrors(t *testing.T) {
	_, errOut, code := execute(t, "", "match", "martha")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, errNoCandidates.Error())

	_, errOut, code = execute(t, "a\n", "match", "a", "--threshold", "2")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "matcher.threshold")

	_, errOut, code = execute(t, "a\n", "match", "a", "--candidates", filepath.Join(t.TempDir(), "missing.txt"))
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "missing.txt")
}

func TestConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jaro.toml")
	require.NoError(t, os.WriteFile(path, []byte("[matcher]\nmetric = \"jaro\"\n"), 0o644))

	out, errOut, code := execute(t, "", "--config", path, "compare", "dwayne", "duane")
	require.Equal(t, 0, code, errOut)
	assert.Equal(t, "0.822222\n", out)

	_, errOut, code = execute(t, "", "--config", filepath.Join(t.TempDir(), "nope.toml"), "version")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "config file not found")
}

func TestLogFlags(t *testing.T) {
	_, errOut, code := execute(t, "", "--log-level", "debug", "--log-format", "json", "compare", "a", "b")
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, errOut, `"msg":"compared"`)

	_, errOut, code = execute(t, "", "--log-level", "loud", "version")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "log level")
}

func TestVersion(t *testing.T) {
	out, _, code := execute(t, "", "version")
	require.Equal(t, 0, code)
	assert.Equal(t, "jaro dev (commit unknown, built unknown)\n", out)
}
